package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"shopmirror/internal/application"
	"shopmirror/internal/application/webhook_handlers"
	"shopmirror/internal/domain"
	"shopmirror/internal/infrastructure/metrics"
	"shopmirror/internal/infrastructure/pubsub"
	"shopmirror/internal/infrastructure/repository"
	"shopmirror/internal/infrastructure/sessionstore"
	shopifyinfra "shopmirror/internal/infrastructure/shopify"
	"shopmirror/internal/ports"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	// Initialize logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("⚠️  Warning: .env file not found")
	}

	// Get configuration from environment
	mongoURI := os.Getenv("MONGODB_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	appURL := os.Getenv("APP_URL")
	if appURL == "" {
		appURL = "http://localhost:8080"
	}

	frontendURL := os.Getenv("FRONTEND_URL")

	apiKey := os.Getenv("SHOPIFY_API_KEY")
	apiSecret := os.Getenv("SHOPIFY_API_SECRET")
	if apiKey == "" || apiSecret == "" {
		logger.Fatal().Msg("SHOPIFY_API_KEY and SHOPIFY_API_SECRET environment variables are required")
	}

	scopes := os.Getenv("SHOPIFY_SCOPES")
	if scopes == "" {
		scopes = "read_products,read_orders"
	}

	// Connect to MongoDB
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(mongoURI))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer client.Disconnect(context.Background())

	dbName := os.Getenv("MONGODB_DATABASE")
	if dbName == "" {
		dbName = "shopmirror"
	}
	db := client.Database(dbName)

	// Connect to Redis (OAuth session store)
	redisClient := redis.NewClient(&redis.Options{Addr: redisAddr})

	// Initialize repositories
	shopRepo := repository.NewMongoShopRepository(db)
	productRepo := repository.NewMongoProductRepository(db)
	collectionRepo := repository.NewMongoCollectionRepository(db)
	orderRepo := repository.NewMongoOrderRepository(db)
	sessions := sessionstore.NewRedisSessionStore(redisClient)

	// Initialize Shopify adapters
	remoteClient := shopifyinfra.NewClient(logger)
	oauth := shopifyinfra.NewOAuth(apiKey, apiSecret, strings.Split(scopes, ","), appURL+"/auth/callback", logger)

	// Initialize delta pub/sub for in-process subscribers
	deltas := pubsub.NewDeltaPubSub(logger)

	// Initialize application services
	authService := application.NewAuthService(oauth, remoteClient, shopRepo, sessions, appURL, logger)
	syncService := application.NewSyncService(remoteClient, shopRepo, productRepo, collectionRepo, orderRepo, deltas, logger)
	dashboardService := application.NewDashboardService(productRepo, collectionRepo, orderRepo, logger)
	productService := application.NewProductService(productRepo, logger)
	productWebhooks := webhook_handlers.NewProductHandler(shopRepo, productRepo, deltas, logger)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	r.Get("/", bannerHandler(shopRepo, logger))

	// Health check - must be public for monitoring
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	// Swagger documentation - public
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	r.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		http.ServeFile(w, r, "./docs/swagger.json")
	})

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	// OAuth routes
	r.Get("/install", installHandler(authService, logger))
	r.Get("/auth/callback", callbackHandler(authService, frontendURL, logger))

	// Sync routes: POST /sync/{entity}?shop={domain}
	r.Post("/sync/products", syncHandler(shopRepo, syncService.SyncProducts, logger))
	r.Post("/sync/collections", syncHandler(shopRepo, syncService.SyncCollections, logger))
	r.Post("/sync/orders", syncHandler(shopRepo, syncService.SyncOrders, logger))

	// Read API
	r.Get("/api/dashboard/stats", statsHandler(shopRepo, dashboardService, logger))
	r.Get("/api/products", productListHandler(shopRepo, productService, logger))
	r.Get("/api/products/{id}", productShowHandler(shopRepo, productService, logger))

	// Webhook endpoints: POST /webhooks/products/{action}
	r.Post("/webhooks/products/create", productWebhookHandler("products/create", productWebhooks.HandleCreate, logger))
	r.Post("/webhooks/products/update", productWebhookHandler("products/update", productWebhooks.HandleUpdate, logger))
	r.Post("/webhooks/products/delete", productDeleteWebhookHandler(productWebhooks, logger))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logger.Info().Str("port", port).Msg("Starting API server")
	logger.Info().Msg("Swagger documentation available at http://localhost:" + port + "/swagger/index.html")
	if err := http.ListenAndServe(":"+port, r); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start server")
	}
}

// resolveShop loads the shop named by the ?shop= query parameter. Every route
// that touches shop data takes the shop explicitly; there is no ambient
// "current shop" session.
func resolveShop(r *http.Request, shopRepo ports.ShopRepository) (*domain.Shop, int, error) {
	shopDomain := r.URL.Query().Get("shop")
	if shopDomain == "" {
		return nil, http.StatusBadRequest, errors.New("shop parameter is required")
	}

	shop, err := shopRepo.GetByDomain(r.Context(), shopDomain)
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}
	if shop == nil {
		return nil, http.StatusNotFound, errors.New("shop is not installed")
	}

	return shop, http.StatusOK, nil
}

// bannerHandler reports whether the queried shop is installed, or a plain
// landing message when no shop is given.
func bannerHandler(shopRepo ports.ShopRepository, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shopDomain := r.URL.Query().Get("shop")
		if shopDomain == "" {
			json.NewEncoder(w).Encode(map[string]string{
				"app":     "shopmirror",
				"message": "Pass ?shop={domain}.myshopify.com to check installation status",
			})
			return
		}

		shop, err := shopRepo.GetByDomain(r.Context(), shopDomain)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to look up shop")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"app":       "shopmirror",
			"shop":      shopDomain,
			"installed": shop != nil,
		})
	}
}

// installHandler initiates the OAuth flow
func installHandler(authService *application.AuthService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shop := r.URL.Query().Get("shop")
		if shop == "" {
			http.Error(w, "shop parameter is required", http.StatusBadRequest)
			return
		}

		authURL, err := authService.BeginInstall(r.Context(), shop)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidShop) {
				http.Error(w, "Invalid shop domain", http.StatusBadRequest)
				return
			}
			logger.Error().Err(err).Msg("Failed to initiate install")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		http.Redirect(w, r, authURL, http.StatusFound)
	}
}

// callbackHandler handles the OAuth callback
func callbackHandler(authService *application.AuthService, frontendURL string, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params := r.URL.Query()
		if params.Get("shop") == "" || params.Get("code") == "" || params.Get("state") == "" {
			http.Error(w, "Missing required parameters", http.StatusBadRequest)
			return
		}

		shop, err := authService.CompleteCallback(r.Context(), params)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrStateMismatch):
				http.Error(w, "Invalid session", http.StatusUnauthorized)
			case errors.Is(err, domain.ErrSignatureInvalid):
				http.Error(w, "Invalid signature", http.StatusUnauthorized)
			case errors.Is(err, domain.ErrTokenExchangeFailed):
				logger.Error().Err(err).Msg("Token exchange failed")
				http.Error(w, "Failed to complete installation", http.StatusBadGateway)
			default:
				logger.Error().Err(err).Msg("Failed to complete installation")
				http.Error(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		if frontendURL != "" {
			http.Redirect(w, r, frontendURL+"?shop="+url.QueryEscape(shop.Domain), http.StatusFound)
			return
		}

		json.NewEncoder(w).Encode(map[string]string{
			"status": "installed",
			"shop":   shop.Domain,
		})
	}
}

// syncHandler triggers one full sync pass for the named entity kind.
func syncHandler(
	shopRepo ports.ShopRepository,
	run func(ctx context.Context, shop *domain.Shop) domain.SyncResult,
	logger zerolog.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shop, status, err := resolveShop(r, shopRepo)
		if err != nil {
			if status == http.StatusInternalServerError {
				logger.Error().Err(err).Msg("Failed to resolve shop")
				http.Error(w, "Internal server error", status)
				return
			}
			http.Error(w, err.Error(), status)
			return
		}

		result := run(r.Context(), shop)
		if !result.Success {
			w.WriteHeader(http.StatusBadGateway)
		}
		json.NewEncoder(w).Encode(result)
	}
}

// statsHandler serves the dashboard totals for a shop.
func statsHandler(shopRepo ports.ShopRepository, dashboardService *application.DashboardService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shop, status, err := resolveShop(r, shopRepo)
		if err != nil {
			if status == http.StatusInternalServerError {
				logger.Error().Err(err).Msg("Failed to resolve shop")
				http.Error(w, "Internal server error", status)
				return
			}
			http.Error(w, err.Error(), status)
			return
		}

		stats, err := dashboardService.Stats(r.Context(), shop)
		if err != nil {
			logger.Error().Err(err).Str("shop", shop.Domain).Msg("Failed to compute stats")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		json.NewEncoder(w).Encode(stats)
	}
}

// productListHandler serves a filtered page of mirrored products.
func productListHandler(shopRepo ports.ShopRepository, productService *application.ProductService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shop, status, err := resolveShop(r, shopRepo)
		if err != nil {
			if status == http.StatusInternalServerError {
				logger.Error().Err(err).Msg("Failed to resolve shop")
				http.Error(w, "Internal server error", status)
				return
			}
			http.Error(w, err.Error(), status)
			return
		}

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
		opts := ports.ProductListOptions{
			Search:  r.URL.Query().Get("search"),
			Status:  r.URL.Query().Get("status"),
			Page:    page,
			PerPage: perPage,
		}

		listing, err := productService.List(r.Context(), shop, opts)
		if err != nil {
			logger.Error().Err(err).Str("shop", shop.Domain).Msg("Failed to list products")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		json.NewEncoder(w).Encode(listing)
	}
}

// productShowHandler serves one mirrored product by external id.
func productShowHandler(shopRepo ports.ShopRepository, productService *application.ProductService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shop, status, err := resolveShop(r, shopRepo)
		if err != nil {
			if status == http.StatusInternalServerError {
				logger.Error().Err(err).Msg("Failed to resolve shop")
				http.Error(w, "Internal server error", status)
				return
			}
			http.Error(w, err.Error(), status)
			return
		}

		product, err := productService.Get(r.Context(), shop, chi.URLParam(r, "id"))
		if err != nil {
			logger.Error().Err(err).Str("shop", shop.Domain).Msg("Failed to get product")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		if product == nil {
			http.Error(w, "Product not found", http.StatusNotFound)
			return
		}

		json.NewEncoder(w).Encode(product)
	}
}

// productWebhookHandler handles product create/update deliveries. The
// originating shop comes from the X-Shopify-Shop-Domain header.
func productWebhookHandler(
	topic string,
	handle func(ctx context.Context, shopDomain string, payload *application.WebhookProduct) error,
	logger zerolog.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shopDomain := r.Header.Get("X-Shopify-Shop-Domain")
		if shopDomain == "" {
			metrics.WebhookDeliveries.WithLabelValues(topic, "rejected").Inc()
			http.Error(w, "Missing X-Shopify-Shop-Domain header", http.StatusBadRequest)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			metrics.WebhookDeliveries.WithLabelValues(topic, "rejected").Inc()
			http.Error(w, "Failed to read request body", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		var payload application.WebhookProduct
		if err := json.Unmarshal(body, &payload); err != nil {
			metrics.WebhookDeliveries.WithLabelValues(topic, "rejected").Inc()
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}

		if err := handle(r.Context(), shopDomain, &payload); err != nil {
			if errors.Is(err, domain.ErrShopUnknown) {
				metrics.WebhookDeliveries.WithLabelValues(topic, "rejected").Inc()
				http.Error(w, "Unknown shop", http.StatusNotFound)
				return
			}
			metrics.WebhookDeliveries.WithLabelValues(topic, "failure").Inc()
			logger.Error().Err(err).Str("topic", topic).Str("shop", shopDomain).Msg("Failed to process webhook")
			// Return 500 to trigger a redelivery
			http.Error(w, "Failed to process webhook event", http.StatusInternalServerError)
			return
		}

		metrics.WebhookDeliveries.WithLabelValues(topic, "success").Inc()
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"received": "true"})
	}
}

// productDeleteWebhookHandler handles product delete deliveries, whose payload
// carries only the deleted product's id.
func productDeleteWebhookHandler(handlers *webhook_handlers.ProductHandler, logger zerolog.Logger) http.HandlerFunc {
	const topic = "products/delete"
	return func(w http.ResponseWriter, r *http.Request) {
		shopDomain := r.Header.Get("X-Shopify-Shop-Domain")
		if shopDomain == "" {
			metrics.WebhookDeliveries.WithLabelValues(topic, "rejected").Inc()
			http.Error(w, "Missing X-Shopify-Shop-Domain header", http.StatusBadRequest)
			return
		}

		var payload struct {
			ID int64 `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			metrics.WebhookDeliveries.WithLabelValues(topic, "rejected").Inc()
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		if err := handlers.HandleDelete(r.Context(), shopDomain, strconv.FormatInt(payload.ID, 10)); err != nil {
			if errors.Is(err, domain.ErrShopUnknown) {
				metrics.WebhookDeliveries.WithLabelValues(topic, "rejected").Inc()
				http.Error(w, "Unknown shop", http.StatusNotFound)
				return
			}
			metrics.WebhookDeliveries.WithLabelValues(topic, "failure").Inc()
			logger.Error().Err(err).Str("topic", topic).Str("shop", shopDomain).Msg("Failed to process webhook")
			http.Error(w, "Failed to process webhook event", http.StatusInternalServerError)
			return
		}

		metrics.WebhookDeliveries.WithLabelValues(topic, "success").Inc()
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"received": "true"})
	}
}

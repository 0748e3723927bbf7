package main

import (
	"context"
	"os"

	"shopmirror/internal/domain"
	"shopmirror/internal/infrastructure/repository"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DemoShopDomain names the explicit local fixture shop. Routes only see it
// when a request passes ?shop=demo-shop.myshopify.com, so seeded data never
// shadows a real installation.
const DemoShopDomain = "demo-shop.myshopify.com"

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("⚠️  Warning: .env file not found")
	}

	mongoURI := os.Getenv("MONGODB_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}

	ctx := context.Background()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer client.Disconnect(ctx)

	dbName := os.Getenv("MONGODB_DATABASE")
	if dbName == "" {
		dbName = "shopmirror"
	}
	db := client.Database(dbName)

	shopRepo := repository.NewMongoShopRepository(db)
	productRepo := repository.NewMongoProductRepository(db)

	shop := &domain.Shop{
		Domain:      DemoShopDomain,
		AccessToken: "demo-token-not-valid-upstream",
		Scope:       "read_products,read_orders",
	}
	if err := shopRepo.Save(ctx, shop); err != nil {
		logger.Fatal().Err(err).Msg("Failed to seed demo shop")
	}

	products := []*domain.Product{
		{
			ShopDomain:  DemoShopDomain,
			ExternalID:  "9000000001",
			Title:       "Demo Canvas Tote",
			BodyHTML:    "<p>A sturdy everyday tote.</p>",
			Vendor:      "Demo Supply Co",
			ProductType: "Bags",
			Status:      domain.ProductStatusActive,
			Tags:        []string{"demo", "bags"},
			Variants: []domain.Variant{
				{ID: "9100000001", Title: "Natural", Price: "24.00", SKU: "TOTE-NAT"},
				{ID: "9100000002", Title: "Black", Price: "24.00", SKU: "TOTE-BLK"},
			},
			Images: []domain.Image{
				{ID: "9200000001", URL: "https://cdn.example.com/demo/tote.jpg", Alt: "Canvas tote"},
			},
		},
		{
			ShopDomain:  DemoShopDomain,
			ExternalID:  "9000000002",
			Title:       "Demo Enamel Mug",
			BodyHTML:    "<p>Campfire classic.</p>",
			Vendor:      "Demo Supply Co",
			ProductType: "Drinkware",
			Status:      domain.ProductStatusActive,
			Tags:        []string{"demo", "kitchen"},
			Variants: []domain.Variant{
				{ID: "9100000003", Title: "12oz", Price: "14.50", SKU: "MUG-12"},
			},
			Images: []domain.Image{
				{ID: "9200000002", URL: "https://cdn.example.com/demo/mug.jpg", Alt: "Enamel mug"},
			},
		},
		{
			ShopDomain:  DemoShopDomain,
			ExternalID:  "9000000003",
			Title:       "Demo Wool Beanie",
			BodyHTML:    "<p>Warm, drafted for winter.</p>",
			Vendor:      "Demo Knitworks",
			ProductType: "Apparel",
			Status:      domain.ProductStatusDraft,
			Tags:        []string{"demo", "apparel"},
			Variants: []domain.Variant{
				{ID: "9100000004", Title: "One Size", Price: "18.00", SKU: "BEANIE-OS"},
			},
			Images: []domain.Image{},
		},
	}

	for _, p := range products {
		if err := productRepo.Upsert(ctx, p); err != nil {
			logger.Fatal().Err(err).Str("productId", p.ExternalID).Msg("Failed to seed demo product")
		}
	}

	logger.Info().
		Str("shop", DemoShopDomain).
		Int("products", len(products)).
		Msg("Demo fixture seeded")
}

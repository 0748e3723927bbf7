package application

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"shopmirror/internal/domain"
	"shopmirror/internal/infrastructure/shopify"
	"shopmirror/internal/ports"

	"github.com/rs/zerolog"
)

// sessionTTL bounds how long an authorize round trip may take.
const sessionTTL = 10 * time.Minute

// webhookTopics maps the subscription topics registered after install to
// their callback paths.
var webhookTopics = map[string]string{
	"PRODUCTS_CREATE": "/webhooks/products/create",
	"PRODUCTS_UPDATE": "/webhooks/products/update",
	"PRODUCTS_DELETE": "/webhooks/products/delete",
}

// AuthService implements the OAuth installation flow: authorize redirect,
// callback verification, token exchange and credential persistence.
type AuthService struct {
	oauth          *shopify.OAuth
	client         ports.ShopifyClient
	shopRepo       ports.ShopRepository
	sessions       ports.SessionStore
	appURL         string
	validateTokens bool
	logger         zerolog.Logger
}

// NewAuthService creates a new installation flow service
func NewAuthService(
	oauth *shopify.OAuth,
	client ports.ShopifyClient,
	shopRepo ports.ShopRepository,
	sessions ports.SessionStore,
	appURL string,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		oauth:          oauth,
		client:         client,
		shopRepo:       shopRepo,
		sessions:       sessions,
		appURL:         appURL,
		validateTokens: true,
		logger:         logger,
	}
}

// NewAuthServiceWithOptions creates an installation flow service with the
// advisory post-exchange credential check toggled.
func NewAuthServiceWithOptions(
	oauth *shopify.OAuth,
	client ports.ShopifyClient,
	shopRepo ports.ShopRepository,
	sessions ports.SessionStore,
	appURL string,
	validateTokens bool,
	logger zerolog.Logger,
) *AuthService {
	s := NewAuthService(oauth, client, shopRepo, sessions, appURL, logger)
	s.validateTokens = validateTokens
	return s
}

// BeginInstall validates the shop domain, stores a single-use anti-replay
// nonce and returns the authorization URL to redirect the merchant to.
func (s *AuthService) BeginInstall(ctx context.Context, shop string) (string, error) {
	if !shopify.ValidShopDomain(shop) {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidShop, shop)
	}

	state, err := s.oauth.GenerateState()
	if err != nil {
		return "", err
	}

	session := &domain.Session{
		State:     state,
		Shop:      shop,
		CreatedAt: time.Now(),
	}
	if err := s.sessions.Save(ctx, session, sessionTTL); err != nil {
		return "", fmt.Errorf("failed to save oauth session: %w", err)
	}

	authURL := s.oauth.AuthorizeURL(shop, state)

	s.logger.Info().
		Str("shop", shop).
		Msg("OAuth install initiated")

	return authURL, nil
}

// CompleteCallback verifies the signed callback parameters and the anti-replay
// token, exchanges the code for an access token and writes the credential.
// The stored shop is returned so the caller can attach its identifier to its
// own session.
func (s *AuthService) CompleteCallback(ctx context.Context, params url.Values) (*domain.Shop, error) {
	shopDomain := params.Get("shop")
	code := params.Get("code")
	state := params.Get("state")

	session, err := s.sessions.Get(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("failed to load oauth session: %w", err)
	}
	if session == nil || session.Shop != shopDomain {
		return nil, domain.ErrStateMismatch
	}

	if !s.oauth.VerifyHMAC(params) {
		return nil, domain.ErrSignatureInvalid
	}

	token, scope, err := s.oauth.ExchangeToken(ctx, shopDomain, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTokenExchangeFailed, err)
	}

	if s.validateTokens {
		if err := s.oauth.VerifyCredential(ctx, shopDomain, token); err != nil {
			// Advisory only: the token was just issued, so a failure here is
			// most likely transient.
			s.logger.Warn().
				Err(err).
				Str("shop", shopDomain).
				Msg("Credential verification failed after token exchange")
		}
	}

	shop := &domain.Shop{
		Domain:      shopDomain,
		AccessToken: token,
		Scope:       scope,
	}
	if err := s.shopRepo.Save(ctx, shop); err != nil {
		return nil, fmt.Errorf("failed to save shop: %w", err)
	}

	// Single-use: the nonce must not verify a second callback.
	if err := s.sessions.Delete(ctx, state); err != nil {
		s.logger.Warn().Err(err).Str("shop", shopDomain).Msg("Failed to delete oauth session")
	}

	stored, err := s.shopRepo.GetByDomain(ctx, shopDomain)
	if err != nil {
		return nil, fmt.Errorf("failed to reload shop: %w", err)
	}

	s.registerWebhooks(ctx, stored)

	s.logger.Info().
		Str("shop", shopDomain).
		Str("scope", scope).
		Msg("OAuth install completed")

	return stored, nil
}

// registerWebhooks subscribes the product topics to our callback endpoints.
// Registration problems never fail the install; they are logged for followup.
func (s *AuthService) registerWebhooks(ctx context.Context, shop *domain.Shop) {
	for topic, path := range webhookTopics {
		userErrors, err := s.client.RegisterWebhook(ctx, shop, topic, s.appURL+path)
		if err != nil {
			s.logger.Warn().
				Err(err).
				Str("shop", shop.Domain).
				Str("topic", topic).
				Msg("Webhook registration failed")
			continue
		}
		for _, ue := range userErrors {
			s.logger.Warn().
				Str("shop", shop.Domain).
				Str("topic", topic).
				Strs("field", ue.Field).
				Str("message", ue.Message).
				Msg("Webhook registration reported user error")
		}
	}
}

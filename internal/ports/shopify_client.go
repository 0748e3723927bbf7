package ports

import (
	"context"

	"shopmirror/internal/domain"
	"shopmirror/internal/infrastructure/shopify"
)

// ShopifyClient defines the outbound Admin API surface the sync engine and
// install flow depend on. Implementations perform no retries.
type ShopifyClient interface {
	// Query posts a raw GraphQL document; callers inspect the envelope's
	// top-level error list themselves.
	Query(ctx context.Context, shop *domain.Shop, document string, variables map[string]interface{}) (*shopify.GraphQLResponse, error)

	// Paginated fetchers over the canonical entity documents.
	FetchProducts(ctx context.Context, shop *domain.Shop, limit int, cursor *string) (*shopify.Page[shopify.ProductNode], error)
	FetchCollections(ctx context.Context, shop *domain.Shop, limit int, cursor *string) (*shopify.Page[shopify.CollectionNode], error)
	FetchOrders(ctx context.Context, shop *domain.Shop, limit int, cursor *string) (*shopify.Page[shopify.OrderNode], error)

	// RegisterWebhook subscribes a callback URL to a topic; field-level
	// userErrors are returned for inspection, not raised.
	RegisterWebhook(ctx context.Context, shop *domain.Shop, topic string, address string) ([]shopify.UserError, error)
}

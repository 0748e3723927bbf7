package ports

import (
	"context"
	"time"

	"shopmirror/internal/domain"
)

// ShopRepository persists shop credentials. Lookups return (nil, nil) when no
// row matches.
type ShopRepository interface {
	// Save creates or overwrites the credential keyed by shop domain.
	Save(ctx context.Context, shop *domain.Shop) error
	GetByDomain(ctx context.Context, shopDomain string) (*domain.Shop, error)
	// UpdateLastSync stamps the shop's last full-sync time.
	UpdateLastSync(ctx context.Context, shopDomain string, t time.Time) error
	List(ctx context.Context) ([]*domain.Shop, error)
}

// ProductListOptions filters and pages a product listing.
type ProductListOptions struct {
	Search  string
	Status  string
	Page    int
	PerPage int
}

// ProductRepository persists mirrored products keyed by (shop, external id).
type ProductRepository interface {
	// Upsert creates or refreshes the row for (ShopDomain, ExternalID).
	Upsert(ctx context.Context, product *domain.Product) error
	// Insert creates unconditionally; a duplicate key is the caller's problem.
	Insert(ctx context.Context, product *domain.Product) error
	GetByExternalID(ctx context.Context, shopDomain, externalID string) (*domain.Product, error)
	// Update overwrites the row for (ShopDomain, ExternalID); no-op when absent.
	Update(ctx context.Context, product *domain.Product) error
	// Delete removes the row for (shop, external id); no-op when absent.
	Delete(ctx context.Context, shopDomain, externalID string) error
	List(ctx context.Context, shopDomain string, opts ProductListOptions) ([]*domain.Product, int64, error)
	CountByShop(ctx context.Context, shopDomain string) (int64, error)
}

// CollectionRepository persists mirrored collections.
type CollectionRepository interface {
	Upsert(ctx context.Context, collection *domain.Collection) error
	CountByShop(ctx context.Context, shopDomain string) (int64, error)
	// SumProductsCount totals the products_count attribute across a shop's
	// collections.
	SumProductsCount(ctx context.Context, shopDomain string) (int64, error)
}

// OrderRepository persists mirrored orders.
type OrderRepository interface {
	Upsert(ctx context.Context, order *domain.Order) error
	CountByShop(ctx context.Context, shopDomain string) (int64, error)
}

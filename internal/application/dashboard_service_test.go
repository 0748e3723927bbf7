package application

import (
	"context"
	"testing"
	"time"

	"shopmirror/internal/domain"
	"shopmirror/internal/ports"

	"github.com/rs/zerolog"
)

func TestDashboardStats(t *testing.T) {
	ctx := context.Background()
	products := newMemProductRepo()
	collections := newMemCollectionRepo()
	orders := newMemOrderRepo()

	for _, id := range []string{"1", "2", "3"} {
		products.Upsert(ctx, &domain.Product{ShopDomain: "acme.myshopify.com", ExternalID: id})
	}
	collections.Upsert(ctx, &domain.Collection{ShopDomain: "acme.myshopify.com", ExternalID: "10", ProductsCount: 2})
	collections.Upsert(ctx, &domain.Collection{ShopDomain: "acme.myshopify.com", ExternalID: "11", ProductsCount: 5})
	orders.Upsert(ctx, &domain.Order{ShopDomain: "acme.myshopify.com", ExternalID: "77"})

	// Rows of another shop must not leak into the totals.
	products.Upsert(ctx, &domain.Product{ShopDomain: "other.myshopify.com", ExternalID: "9"})

	lastSync := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	shop := &domain.Shop{Domain: "acme.myshopify.com", LastSyncAt: &lastSync}

	service := NewDashboardService(products, collections, orders, zerolog.Nop())
	stats, err := service.Stats(ctx, shop)
	if err != nil {
		t.Fatalf("Stats returned error: %v", err)
	}

	if stats.TotalProducts != 3 {
		t.Errorf("expected 3 products, got %d", stats.TotalProducts)
	}
	if stats.TotalCollections != 2 {
		t.Errorf("expected 2 collections, got %d", stats.TotalCollections)
	}
	if stats.TotalOrders != 1 {
		t.Errorf("expected 1 order, got %d", stats.TotalOrders)
	}
	if stats.CollectionsWithProducts != 7 {
		t.Errorf("expected summed products_count 7, got %d", stats.CollectionsWithProducts)
	}
	if stats.LastSyncAt == nil || !stats.LastSyncAt.Equal(lastSync) {
		t.Errorf("unexpected last sync %v", stats.LastSyncAt)
	}
}

func TestProductServiceListDefaults(t *testing.T) {
	ctx := context.Background()
	products := newMemProductRepo()
	products.Upsert(ctx, &domain.Product{ShopDomain: "acme.myshopify.com", ExternalID: "1", Title: "Mug", Status: "active"})
	products.Upsert(ctx, &domain.Product{ShopDomain: "acme.myshopify.com", ExternalID: "2", Title: "Tote", Status: "draft"})

	shop := &domain.Shop{Domain: "acme.myshopify.com"}
	service := NewProductService(products, zerolog.Nop())

	listing, err := service.List(ctx, shop, ports.ProductListOptions{})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if listing.CurrentPage != 1 || listing.PerPage != 10 {
		t.Errorf("expected default paging 1/10, got %d/%d", listing.CurrentPage, listing.PerPage)
	}
	if listing.Total != 2 {
		t.Errorf("expected total 2, got %d", listing.Total)
	}

	filtered, err := service.List(ctx, shop, ports.ProductListOptions{Status: "draft"})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if filtered.Total != 1 || filtered.Data[0].ExternalID != "2" {
		t.Errorf("status filter applied incorrectly: %+v", filtered)
	}
}

func TestProductServiceGetMissingIsNil(t *testing.T) {
	service := NewProductService(newMemProductRepo(), zerolog.Nop())
	product, err := service.Get(context.Background(), &domain.Shop{Domain: "acme.myshopify.com"}, "404")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if product != nil {
		t.Errorf("expected nil for a missing product, got %+v", product)
	}
}

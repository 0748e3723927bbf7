package application

import (
	"context"
	"fmt"
	"time"

	"shopmirror/internal/domain"
	"shopmirror/internal/ports"

	"github.com/rs/zerolog"
)

// DashboardStats summarizes the state of a shop's local mirror.
type DashboardStats struct {
	TotalProducts           int64      `json:"total_products"`
	TotalCollections        int64      `json:"total_collections"`
	TotalOrders             int64      `json:"total_orders"`
	LastSyncAt              *time.Time `json:"last_sync_at"`
	CollectionsWithProducts int64      `json:"collections_with_products"`
}

// DashboardService aggregates mirror counts for the merchant dashboard.
type DashboardService struct {
	productRepo    ports.ProductRepository
	collectionRepo ports.CollectionRepository
	orderRepo      ports.OrderRepository
	logger         zerolog.Logger
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	productRepo ports.ProductRepository,
	collectionRepo ports.CollectionRepository,
	orderRepo ports.OrderRepository,
	logger zerolog.Logger,
) *DashboardService {
	return &DashboardService{
		productRepo:    productRepo,
		collectionRepo: collectionRepo,
		orderRepo:      orderRepo,
		logger:         logger,
	}
}

// Stats returns the mirror totals for one shop.
func (s *DashboardService) Stats(ctx context.Context, shop *domain.Shop) (*DashboardStats, error) {
	products, err := s.productRepo.CountByShop(ctx, shop.Domain)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	collections, err := s.collectionRepo.CountByShop(ctx, shop.Domain)
	if err != nil {
		return nil, fmt.Errorf("failed to count collections: %w", err)
	}

	orders, err := s.orderRepo.CountByShop(ctx, shop.Domain)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	inCollections, err := s.collectionRepo.SumProductsCount(ctx, shop.Domain)
	if err != nil {
		return nil, fmt.Errorf("failed to sum collection sizes: %w", err)
	}

	return &DashboardStats{
		TotalProducts:           products,
		TotalCollections:        collections,
		TotalOrders:             orders,
		LastSyncAt:              shop.LastSyncAt,
		CollectionsWithProducts: inCollections,
	}, nil
}

package application

import (
	"context"
	"fmt"
	"time"

	"shopmirror/internal/domain"
	"shopmirror/internal/infrastructure/metrics"
	"shopmirror/internal/infrastructure/pubsub"
	"shopmirror/internal/ports"

	"github.com/rs/zerolog"
)

// SyncService walks the remote pagination cursors and mirrors every returned
// node into the local store with an idempotent upsert keyed by
// (shop, external id). One invocation runs its whole multi-page loop
// sequentially; nothing already written is rolled back on failure.
type SyncService struct {
	client         ports.ShopifyClient
	shopRepo       ports.ShopRepository
	productRepo    ports.ProductRepository
	collectionRepo ports.CollectionRepository
	orderRepo      ports.OrderRepository
	deltas         *pubsub.DeltaPubSub
	logger         zerolog.Logger
	pageSize       int
}

// NewSyncService creates a new sync service
func NewSyncService(
	client ports.ShopifyClient,
	shopRepo ports.ShopRepository,
	productRepo ports.ProductRepository,
	collectionRepo ports.CollectionRepository,
	orderRepo ports.OrderRepository,
	deltas *pubsub.DeltaPubSub,
	logger zerolog.Logger,
) *SyncService {
	return &SyncService{
		client:         client,
		shopRepo:       shopRepo,
		productRepo:    productRepo,
		collectionRepo: collectionRepo,
		orderRepo:      orderRepo,
		deltas:         deltas,
		logger:         logger,
		pageSize:       50,
	}
}

func (s *SyncService) failed(entity string, shop *domain.Shop, synced int, err error) domain.SyncResult {
	s.logger.Error().
		Err(err).
		Str("shop", shop.Domain).
		Str("entity", entity).
		Int("synced", synced).
		Msg("Sync failed")
	metrics.SyncRuns.WithLabelValues(entity, "failure").Inc()
	return domain.SyncResult{
		Success: false,
		Synced:  synced,
		Message: "Sync failed: " + err.Error(),
	}
}

func (s *SyncService) succeeded(entity string, shop *domain.Shop, synced int) domain.SyncResult {
	s.logger.Info().
		Str("shop", shop.Domain).
		Str("entity", entity).
		Int("synced", synced).
		Msg("Sync completed")
	metrics.SyncRuns.WithLabelValues(entity, "success").Inc()
	return domain.SyncResult{
		Success: true,
		Synced:  synced,
		Message: fmt.Sprintf("Successfully synced %d %ss", synced, entity),
	}
}

func (s *SyncService) publish(entity string, shop *domain.Shop, externalID string) {
	metrics.SyncedNodes.WithLabelValues(entity).Inc()
	s.deltas.Publish(&domain.ChangeEvent{
		Entity:     entity,
		Kind:       domain.ChangeSynced,
		ShopDomain: shop.Domain,
		ExternalID: externalID,
	})
}

// SyncProducts mirrors all products of a shop page by page. A successful full
// pass also stamps the shop's last-sync time; the other entity kinds do not
// touch that timestamp.
func (s *SyncService) SyncProducts(ctx context.Context, shop *domain.Shop) domain.SyncResult {
	synced := 0
	var cursor *string

	for {
		page, err := s.client.FetchProducts(ctx, shop, s.pageSize, cursor)
		if err != nil {
			return s.failed("product", shop, synced, err)
		}

		for _, node := range page.Nodes {
			product := ProductFromNode(shop.Domain, node)
			if err := s.productRepo.Upsert(ctx, product); err != nil {
				return s.failed("product", shop, synced, err)
			}
			synced++
			s.publish("product", shop, product.ExternalID)
		}

		if !page.PageInfo.HasNextPage {
			break
		}
		cursor = page.PageInfo.EndCursor
	}

	if err := s.shopRepo.UpdateLastSync(ctx, shop.Domain, time.Now()); err != nil {
		return s.failed("product", shop, synced, err)
	}

	return s.succeeded("product", shop, synced)
}

// SyncCollections mirrors all collections of a shop page by page.
func (s *SyncService) SyncCollections(ctx context.Context, shop *domain.Shop) domain.SyncResult {
	synced := 0
	var cursor *string

	for {
		page, err := s.client.FetchCollections(ctx, shop, s.pageSize, cursor)
		if err != nil {
			return s.failed("collection", shop, synced, err)
		}

		for _, node := range page.Nodes {
			collection := CollectionFromNode(shop.Domain, node)
			if err := s.collectionRepo.Upsert(ctx, collection); err != nil {
				return s.failed("collection", shop, synced, err)
			}
			synced++
			s.publish("collection", shop, collection.ExternalID)
		}

		if !page.PageInfo.HasNextPage {
			break
		}
		cursor = page.PageInfo.EndCursor
	}

	return s.succeeded("collection", shop, synced)
}

// SyncOrders mirrors all orders of a shop page by page.
func (s *SyncService) SyncOrders(ctx context.Context, shop *domain.Shop) domain.SyncResult {
	synced := 0
	var cursor *string

	for {
		page, err := s.client.FetchOrders(ctx, shop, s.pageSize, cursor)
		if err != nil {
			return s.failed("order", shop, synced, err)
		}

		for _, node := range page.Nodes {
			order := OrderFromNode(shop.Domain, node)
			if err := s.orderRepo.Upsert(ctx, order); err != nil {
				return s.failed("order", shop, synced, err)
			}
			synced++
			s.publish("order", shop, order.ExternalID)
		}

		if !page.PageInfo.HasNextPage {
			break
		}
		cursor = page.PageInfo.EndCursor
	}

	return s.succeeded("order", shop, synced)
}

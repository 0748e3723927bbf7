package webhook_handlers

import (
	"context"
	"fmt"

	"shopmirror/internal/application"
	"shopmirror/internal/domain"
	"shopmirror/internal/infrastructure/pubsub"
	"shopmirror/internal/ports"

	"github.com/rs/zerolog"
)

// ProductHandler applies pushed product deltas to the local mirror. Every
// handler resolves the originating shop from the delivery header before
// touching the catalog.
type ProductHandler struct {
	shopRepo    ports.ShopRepository
	productRepo ports.ProductRepository
	deltas      *pubsub.DeltaPubSub
	logger      zerolog.Logger
}

// NewProductHandler creates a new product webhook handler
func NewProductHandler(
	shopRepo ports.ShopRepository,
	productRepo ports.ProductRepository,
	deltas *pubsub.DeltaPubSub,
	logger zerolog.Logger,
) *ProductHandler {
	return &ProductHandler{
		shopRepo:    shopRepo,
		productRepo: productRepo,
		deltas:      deltas,
		logger:      logger,
	}
}

func (h *ProductHandler) resolveShop(ctx context.Context, shopDomain string) (*domain.Shop, error) {
	shop, err := h.shopRepo.GetByDomain(ctx, shopDomain)
	if err != nil {
		return nil, fmt.Errorf("failed to look up shop: %w", err)
	}
	if shop == nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrShopUnknown, shopDomain)
	}
	return shop, nil
}

func (h *ProductHandler) publish(kind, shopDomain, externalID string) {
	h.deltas.Publish(&domain.ChangeEvent{
		Entity:     "product",
		Kind:       kind,
		ShopDomain: shopDomain,
		ExternalID: externalID,
	})
}

// HandleCreate inserts the pushed product as a new row. The insert is
// unconditional; redelivery of a create for an already-mirrored product
// surfaces as a duplicate key error.
func (h *ProductHandler) HandleCreate(ctx context.Context, shopDomain string, payload *application.WebhookProduct) error {
	shop, err := h.resolveShop(ctx, shopDomain)
	if err != nil {
		return err
	}

	product := application.ProductFromWebhook(shop.Domain, payload)
	if err := h.productRepo.Insert(ctx, product); err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}

	h.logger.Info().
		Str("shop", shop.Domain).
		Str("productId", product.ExternalID).
		Msg("Product created via webhook")

	h.publish(domain.ChangeCreated, shop.Domain, product.ExternalID)
	return nil
}

// HandleUpdate refreshes an already-mirrored product. A delivery for a
// product the mirror has never seen is acknowledged without writing anything.
func (h *ProductHandler) HandleUpdate(ctx context.Context, shopDomain string, payload *application.WebhookProduct) error {
	shop, err := h.resolveShop(ctx, shopDomain)
	if err != nil {
		return err
	}

	product := application.ProductFromWebhook(shop.Domain, payload)

	existing, err := h.productRepo.GetByExternalID(ctx, shop.Domain, product.ExternalID)
	if err != nil {
		return fmt.Errorf("failed to look up product: %w", err)
	}
	if existing == nil {
		h.logger.Debug().
			Str("shop", shop.Domain).
			Str("productId", product.ExternalID).
			Msg("Update for unmirrored product ignored")
		return nil
	}

	if err := h.productRepo.Update(ctx, product); err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	h.logger.Info().
		Str("shop", shop.Domain).
		Str("productId", product.ExternalID).
		Msg("Product updated via webhook")

	h.publish(domain.ChangeUpdated, shop.Domain, product.ExternalID)
	return nil
}

// HandleDelete removes the mirrored product. Deleting an unmirrored product
// is a no-op.
func (h *ProductHandler) HandleDelete(ctx context.Context, shopDomain string, externalID string) error {
	shop, err := h.resolveShop(ctx, shopDomain)
	if err != nil {
		return err
	}

	if err := h.productRepo.Delete(ctx, shop.Domain, externalID); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	h.logger.Info().
		Str("shop", shop.Domain).
		Str("productId", externalID).
		Msg("Product deleted via webhook")

	h.publish(domain.ChangeDeleted, shop.Domain, externalID)
	return nil
}

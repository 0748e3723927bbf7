package application

import (
	"context"
	"fmt"

	"shopmirror/internal/domain"
	"shopmirror/internal/ports"

	"github.com/rs/zerolog"
)

// ProductListing is a page of mirrored products plus paging metadata.
type ProductListing struct {
	Data        []*domain.Product `json:"data"`
	Total       int64             `json:"total"`
	CurrentPage int               `json:"current_page"`
	PerPage     int               `json:"per_page"`
}

// ProductService reads the mirrored product catalog.
type ProductService struct {
	productRepo ports.ProductRepository
	logger      zerolog.Logger
}

// NewProductService creates a new product read service
func NewProductService(productRepo ports.ProductRepository, logger zerolog.Logger) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		logger:      logger,
	}
}

// List returns a filtered page of the shop's mirrored products.
func (s *ProductService) List(ctx context.Context, shop *domain.Shop, opts ports.ProductListOptions) (*ProductListing, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.PerPage < 1 {
		opts.PerPage = 10
	}

	products, total, err := s.productRepo.List(ctx, shop.Domain, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	return &ProductListing{
		Data:        products,
		Total:       total,
		CurrentPage: opts.Page,
		PerPage:     opts.PerPage,
	}, nil
}

// Get returns one mirrored product by external id, or (nil, nil) when the
// shop has no such product.
func (s *ProductService) Get(ctx context.Context, shop *domain.Shop, externalID string) (*domain.Product, error) {
	product, err := s.productRepo.GetByExternalID(ctx, shop.Domain, externalID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

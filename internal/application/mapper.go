package application

import (
	"strconv"
	"strings"
	"time"

	"shopmirror/internal/domain"
	"shopmirror/internal/infrastructure/shopify"

	"github.com/shopspring/decimal"
)

// The sync loop and the webhook ingestion path both project remote records
// through this file, so the two paths cannot diverge on idempotency keys or
// field defaults.

func parseTime(value *string) *time.Time {
	if value == nil || *value == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, *value)
	if err != nil {
		return nil
	}
	return &t
}

// ProductFromNode projects a GraphQL product node into the local entity shape.
func ProductFromNode(shopDomain string, node shopify.ProductNode) *domain.Product {
	tags := node.Tags
	if tags == nil {
		tags = []string{}
	}

	variants := make([]domain.Variant, 0, len(node.Variants.Edges))
	for _, edge := range node.Variants.Edges {
		variants = append(variants, domain.Variant{
			ID:    shopify.ExtractID(edge.Node.ID),
			Title: edge.Node.Title,
			Price: edge.Node.Price,
			SKU:   edge.Node.SKU,
		})
	}

	images := make([]domain.Image, 0, len(node.Images.Edges))
	for _, edge := range node.Images.Edges {
		images = append(images, domain.Image{
			ID:  shopify.ExtractID(edge.Node.ID),
			URL: edge.Node.URL,
			Alt: edge.Node.AltText,
		})
	}

	return &domain.Product{
		ShopDomain:  shopDomain,
		ExternalID:  shopify.ExtractID(node.ID),
		Title:       node.Title,
		BodyHTML:    node.DescriptionHTML,
		Vendor:      node.Vendor,
		ProductType: node.ProductType,
		Status:      strings.ToLower(node.Status),
		Tags:        tags,
		Variants:    variants,
		Images:      images,
		PublishedAt: parseTime(node.PublishedAt),
	}
}

// CollectionFromNode projects a GraphQL collection node into the local
// entity shape.
func CollectionFromNode(shopDomain string, node shopify.CollectionNode) *domain.Collection {
	return &domain.Collection{
		ShopDomain:    shopDomain,
		ExternalID:    shopify.ExtractID(node.ID),
		Title:         node.Title,
		BodyHTML:      node.DescriptionHTML,
		Handle:        node.Handle,
		ProductsCount: node.ProductsCount,
		PublishedAt:   parseTime(node.PublishedAt),
	}
}

// OrderFromNode projects a GraphQL order node into the local entity shape.
func OrderFromNode(shopDomain string, node shopify.OrderNode) *domain.Order {
	total, err := decimal.NewFromString(node.TotalPriceSet.ShopMoney.Amount)
	if err != nil {
		total = decimal.Zero
	}

	currency := node.TotalPriceSet.ShopMoney.CurrencyCode
	if currency == "" {
		currency = "USD"
	}

	lineItems := make([]domain.LineItem, 0, len(node.LineItems.Edges))
	for _, edge := range node.LineItems.Edges {
		price := "0"
		if edge.Node.Variant != nil {
			price = edge.Node.Variant.Price
		}
		lineItems = append(lineItems, domain.LineItem{
			ID:       shopify.ExtractID(edge.Node.ID),
			Title:    edge.Node.Title,
			Quantity: edge.Node.Quantity,
			Price:    price,
		})
	}

	var customer *domain.Customer
	if node.Customer != nil {
		customer = &domain.Customer{
			ID:        shopify.ExtractID(node.Customer.ID),
			FirstName: node.Customer.FirstName,
			LastName:  node.Customer.LastName,
			Email:     node.Customer.Email,
		}
	}

	return &domain.Order{
		ShopDomain:        shopDomain,
		ExternalID:        shopify.ExtractID(node.ID),
		OrderNumber:       node.Name,
		Email:             node.Email,
		TotalPrice:        total,
		Currency:          currency,
		FinancialStatus:   node.DisplayFinancialStatus,
		FulfillmentStatus: node.DisplayFulfillmentStatus,
		LineItems:         lineItems,
		Customer:          customer,
		ProcessedAt:       parseTime(node.ProcessedAt),
	}
}

// WebhookProduct is the platform's native (non-GraphQL) product payload shape
// pushed to the webhook endpoints: numeric ids and comma-separated tags.
type WebhookProduct struct {
	ID          int64            `json:"id"`
	Title       string           `json:"title"`
	BodyHTML    string           `json:"body_html"`
	Vendor      string           `json:"vendor"`
	ProductType string           `json:"product_type"`
	Status      string           `json:"status"`
	Tags        string           `json:"tags"`
	Variants    []WebhookVariant `json:"variants"`
	Images      []WebhookImage   `json:"images"`
	PublishedAt *string          `json:"published_at"`
}

// WebhookVariant is the native variant shape inside a webhook payload.
type WebhookVariant struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Price string `json:"price"`
	SKU   string `json:"sku"`
}

// WebhookImage is the native image shape inside a webhook payload.
type WebhookImage struct {
	ID  int64  `json:"id"`
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// ProductFromWebhook projects a pushed webhook payload with the same field
// mapping and defaults as the sync path.
func ProductFromWebhook(shopDomain string, payload *WebhookProduct) *domain.Product {
	status := payload.Status
	if status == "" {
		status = domain.ProductStatusActive
	}

	tags := []string{}
	if payload.Tags != "" {
		tags = strings.Split(payload.Tags, ", ")
	}

	variants := make([]domain.Variant, 0, len(payload.Variants))
	for _, v := range payload.Variants {
		variants = append(variants, domain.Variant{
			ID:    strconv.FormatInt(v.ID, 10),
			Title: v.Title,
			Price: v.Price,
			SKU:   v.SKU,
		})
	}

	images := make([]domain.Image, 0, len(payload.Images))
	for _, img := range payload.Images {
		images = append(images, domain.Image{
			ID:  strconv.FormatInt(img.ID, 10),
			URL: img.Src,
			Alt: img.Alt,
		})
	}

	return &domain.Product{
		ShopDomain:  shopDomain,
		ExternalID:  strconv.FormatInt(payload.ID, 10),
		Title:       payload.Title,
		BodyHTML:    payload.BodyHTML,
		Vendor:      payload.Vendor,
		ProductType: payload.ProductType,
		Status:      strings.ToLower(status),
		Tags:        tags,
		Variants:    variants,
		Images:      images,
		PublishedAt: parseTime(payload.PublishedAt),
	}
}

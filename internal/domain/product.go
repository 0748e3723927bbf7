package domain

import "time"

// Product statuses as reported by Shopify, stored lowercased.
const (
	ProductStatusActive   = "active"
	ProductStatusDraft    = "draft"
	ProductStatusArchived = "archived"
)

// Product is the local mirror of a Shopify product. ExternalID is the numeric
// suffix of the Shopify GID and is unique per shop; (ShopDomain, ExternalID)
// is the idempotency key for every write.
type Product struct {
	ID          string     `json:"id" bson:"_id,omitempty"`
	ShopDomain  string     `json:"shop_domain" bson:"shop_domain"`
	ExternalID  string     `json:"shopify_product_id" bson:"external_id"`
	Title       string     `json:"title" bson:"title"`
	BodyHTML    string     `json:"body_html" bson:"body_html"`
	Vendor      string     `json:"vendor" bson:"vendor"`
	ProductType string     `json:"product_type" bson:"product_type"`
	Status      string     `json:"status" bson:"status"`
	Tags        []string   `json:"tags" bson:"tags"`
	Variants    []Variant  `json:"variants" bson:"variants"`
	Images      []Image    `json:"images" bson:"images"`
	PublishedAt *time.Time `json:"published_at" bson:"published_at"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" bson:"updated_at"`
}

// Variant is a bounded sub-record attached to a product.
type Variant struct {
	ID    string `json:"id" bson:"id"`
	Title string `json:"title" bson:"title"`
	Price string `json:"price" bson:"price"`
	SKU   string `json:"sku" bson:"sku"`
}

// Image is a bounded sub-record attached to a product.
type Image struct {
	ID  string `json:"id" bson:"id"`
	URL string `json:"url" bson:"url"`
	Alt string `json:"alt" bson:"alt"`
}

package domain

import "time"

// Collection is the local mirror of a Shopify collection, keyed by
// (ShopDomain, ExternalID) like every other synced entity.
type Collection struct {
	ID            string     `json:"id" bson:"_id,omitempty"`
	ShopDomain    string     `json:"shop_domain" bson:"shop_domain"`
	ExternalID    string     `json:"shopify_collection_id" bson:"external_id"`
	Title         string     `json:"title" bson:"title"`
	BodyHTML      string     `json:"body_html" bson:"body_html"`
	Handle        string     `json:"handle" bson:"handle"`
	ProductsCount int        `json:"products_count" bson:"products_count"`
	PublishedAt   *time.Time `json:"published_at" bson:"published_at"`
	CreatedAt     time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" bson:"updated_at"`
}

package entity

import (
	"time"

	"shopmirror/internal/domain"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MongoProductDoc represents a mirrored product in MongoDB. The compound key
// (shop_domain, external_id) carries a unique index.
type MongoProductDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	ShopDomain  string             `bson:"shop_domain"`
	ExternalID  string             `bson:"external_id"`
	Title       string             `bson:"title"`
	BodyHTML    string             `bson:"body_html"`
	Vendor      string             `bson:"vendor"`
	ProductType string             `bson:"product_type"`
	Status      string             `bson:"status"`
	Tags        []string           `bson:"tags"`
	Variants    []domain.Variant   `bson:"variants"`
	Images      []domain.Image     `bson:"images"`
	PublishedAt *time.Time         `bson:"published_at,omitempty"`
	CreatedAt   time.Time          `bson:"created_at,omitempty"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

// ToDomain converts the MongoDB document to a domain entity
func (d *MongoProductDoc) ToDomain() *domain.Product {
	return &domain.Product{
		ID:          d.ID.Hex(),
		ShopDomain:  d.ShopDomain,
		ExternalID:  d.ExternalID,
		Title:       d.Title,
		BodyHTML:    d.BodyHTML,
		Vendor:      d.Vendor,
		ProductType: d.ProductType,
		Status:      d.Status,
		Tags:        d.Tags,
		Variants:    d.Variants,
		Images:      d.Images,
		PublishedAt: d.PublishedAt,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// MongoProductDocFromDomain converts a domain entity to a MongoDB document
func MongoProductDocFromDomain(product *domain.Product) *MongoProductDoc {
	return &MongoProductDoc{
		ShopDomain:  product.ShopDomain,
		ExternalID:  product.ExternalID,
		Title:       product.Title,
		BodyHTML:    product.BodyHTML,
		Vendor:      product.Vendor,
		ProductType: product.ProductType,
		Status:      product.Status,
		Tags:        product.Tags,
		Variants:    product.Variants,
		Images:      product.Images,
		PublishedAt: product.PublishedAt,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
}

// MongoCollectionDoc represents a mirrored collection in MongoDB
type MongoCollectionDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	ShopDomain    string             `bson:"shop_domain"`
	ExternalID    string             `bson:"external_id"`
	Title         string             `bson:"title"`
	BodyHTML      string             `bson:"body_html"`
	Handle        string             `bson:"handle"`
	ProductsCount int                `bson:"products_count"`
	PublishedAt   *time.Time         `bson:"published_at,omitempty"`
	CreatedAt     time.Time          `bson:"created_at,omitempty"`
	UpdatedAt     time.Time          `bson:"updated_at"`
}

// ToDomain converts the MongoDB document to a domain entity
func (d *MongoCollectionDoc) ToDomain() *domain.Collection {
	return &domain.Collection{
		ID:            d.ID.Hex(),
		ShopDomain:    d.ShopDomain,
		ExternalID:    d.ExternalID,
		Title:         d.Title,
		BodyHTML:      d.BodyHTML,
		Handle:        d.Handle,
		ProductsCount: d.ProductsCount,
		PublishedAt:   d.PublishedAt,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

// MongoCollectionDocFromDomain converts a domain entity to a MongoDB document
func MongoCollectionDocFromDomain(collection *domain.Collection) *MongoCollectionDoc {
	return &MongoCollectionDoc{
		ShopDomain:    collection.ShopDomain,
		ExternalID:    collection.ExternalID,
		Title:         collection.Title,
		BodyHTML:      collection.BodyHTML,
		Handle:        collection.Handle,
		ProductsCount: collection.ProductsCount,
		PublishedAt:   collection.PublishedAt,
		CreatedAt:     collection.CreatedAt,
		UpdatedAt:     collection.UpdatedAt,
	}
}

// MongoOrderDoc represents a mirrored order in MongoDB. The monetary total is
// stored as its decimal string form.
type MongoOrderDoc struct {
	ID                primitive.ObjectID `bson:"_id,omitempty"`
	ShopDomain        string             `bson:"shop_domain"`
	ExternalID        string             `bson:"external_id"`
	OrderNumber       string             `bson:"order_number"`
	Email             string             `bson:"email"`
	TotalPrice        string             `bson:"total_price"`
	Currency          string             `bson:"currency"`
	FinancialStatus   string             `bson:"financial_status"`
	FulfillmentStatus string             `bson:"fulfillment_status"`
	LineItems         []domain.LineItem  `bson:"line_items"`
	Customer          *domain.Customer   `bson:"customer,omitempty"`
	ProcessedAt       *time.Time         `bson:"processed_at,omitempty"`
	CreatedAt         time.Time          `bson:"created_at,omitempty"`
	UpdatedAt         time.Time          `bson:"updated_at"`
}

// ToDomain converts the MongoDB document to a domain entity
func (d *MongoOrderDoc) ToDomain() *domain.Order {
	total, err := decimal.NewFromString(d.TotalPrice)
	if err != nil {
		total = decimal.Zero
	}
	return &domain.Order{
		ID:                d.ID.Hex(),
		ShopDomain:        d.ShopDomain,
		ExternalID:        d.ExternalID,
		OrderNumber:       d.OrderNumber,
		Email:             d.Email,
		TotalPrice:        total,
		Currency:          d.Currency,
		FinancialStatus:   d.FinancialStatus,
		FulfillmentStatus: d.FulfillmentStatus,
		LineItems:         d.LineItems,
		Customer:          d.Customer,
		ProcessedAt:       d.ProcessedAt,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

// MongoOrderDocFromDomain converts a domain entity to a MongoDB document
func MongoOrderDocFromDomain(order *domain.Order) *MongoOrderDoc {
	return &MongoOrderDoc{
		ShopDomain:        order.ShopDomain,
		ExternalID:        order.ExternalID,
		OrderNumber:       order.OrderNumber,
		Email:             order.Email,
		TotalPrice:        order.TotalPrice.String(),
		Currency:          order.Currency,
		FinancialStatus:   order.FinancialStatus,
		FulfillmentStatus: order.FulfillmentStatus,
		LineItems:         order.LineItems,
		Customer:          order.Customer,
		ProcessedAt:       order.ProcessedAt,
		CreatedAt:         order.CreatedAt,
		UpdatedAt:         order.UpdatedAt,
	}
}

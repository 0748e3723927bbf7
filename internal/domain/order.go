package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is the local mirror of a Shopify order. Orders are created and
// refreshed by sync only; there is no delete path for them.
type Order struct {
	ID                string          `json:"id" bson:"_id,omitempty"`
	ShopDomain        string          `json:"shop_domain" bson:"shop_domain"`
	ExternalID        string          `json:"shopify_order_id" bson:"external_id"`
	OrderNumber       string          `json:"order_number" bson:"order_number"`
	Email             string          `json:"email" bson:"email"`
	TotalPrice        decimal.Decimal `json:"total_price" bson:"total_price"`
	Currency          string          `json:"currency" bson:"currency"`
	FinancialStatus   string          `json:"financial_status" bson:"financial_status"`
	FulfillmentStatus string          `json:"fulfillment_status" bson:"fulfillment_status"`
	LineItems         []LineItem      `json:"line_items" bson:"line_items"`
	Customer          *Customer       `json:"customer" bson:"customer"`
	ProcessedAt       *time.Time      `json:"processed_at" bson:"processed_at"`
	CreatedAt         time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at" bson:"updated_at"`
}

// LineItem is a bounded sub-record attached to an order.
type LineItem struct {
	ID       string `json:"id" bson:"id"`
	Title    string `json:"title" bson:"title"`
	Quantity int    `json:"quantity" bson:"quantity"`
	Price    string `json:"price" bson:"price"`
}

// Customer is the optional buyer attached to an order.
type Customer struct {
	ID        string `json:"id" bson:"id"`
	FirstName string `json:"first_name" bson:"first_name"`
	LastName  string `json:"last_name" bson:"last_name"`
	Email     string `json:"email" bson:"email"`
}

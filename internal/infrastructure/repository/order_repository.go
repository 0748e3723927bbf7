package repository

import (
	"context"
	"fmt"
	"time"

	"shopmirror/internal/domain"
	"shopmirror/internal/infrastructure/repository/entity"
	"shopmirror/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoOrderRepository implements OrderRepository using MongoDB
type MongoOrderRepository struct {
	collection *mongo.Collection
}

// NewMongoOrderRepository creates a new MongoDB order repository
func NewMongoOrderRepository(db *mongo.Database) ports.OrderRepository {
	return &MongoOrderRepository{
		collection: db.Collection("orders"),
	}
}

// Upsert creates or refreshes the row for (shop, external id). An existing
// row keeps its created_at; only a fresh insert gets one stamped.
func (r *MongoOrderRepository) Upsert(ctx context.Context, order *domain.Order) error {
	doc := entity.MongoOrderDocFromDomain(order)
	doc.UpdatedAt = time.Now()
	doc.CreatedAt = time.Time{}

	opts := options.Update().SetUpsert(true)
	filter := bson.M{
		"shop_domain": order.ShopDomain,
		"external_id": order.ExternalID,
	}

	_, err := r.collection.UpdateOne(ctx, filter, upsertUpdate(doc), opts)
	if err != nil {
		return fmt.Errorf("failed to upsert order: %w", err)
	}

	return nil
}

// CountByShop counts a shop's mirrored orders
func (r *MongoOrderRepository) CountByShop(ctx context.Context, shopDomain string) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"shop_domain": shopDomain})
	if err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return count, nil
}

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

// MongoCollectionRepository implements CollectionRepository using MongoDB
type MongoCollectionRepository struct {
	collection *mongo.Collection
}

// NewMongoCollectionRepository creates a new MongoDB collection repository
func NewMongoCollectionRepository(db *mongo.Database) ports.CollectionRepository {
	return &MongoCollectionRepository{
		collection: db.Collection("collections"),
	}
}

// Upsert creates or refreshes the row for (shop, external id). An existing
// row keeps its created_at; only a fresh insert gets one stamped.
func (r *MongoCollectionRepository) Upsert(ctx context.Context, collection *domain.Collection) error {
	doc := entity.MongoCollectionDocFromDomain(collection)
	doc.UpdatedAt = time.Now()
	doc.CreatedAt = time.Time{}

	opts := options.Update().SetUpsert(true)
	filter := bson.M{
		"shop_domain": collection.ShopDomain,
		"external_id": collection.ExternalID,
	}

	_, err := r.collection.UpdateOne(ctx, filter, upsertUpdate(doc), opts)
	if err != nil {
		return fmt.Errorf("failed to upsert collection: %w", err)
	}

	return nil
}

// CountByShop counts a shop's mirrored collections
func (r *MongoCollectionRepository) CountByShop(ctx context.Context, shopDomain string) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"shop_domain": shopDomain})
	if err != nil {
		return 0, fmt.Errorf("failed to count collections: %w", err)
	}
	return count, nil
}

// SumProductsCount totals products_count across a shop's collections
func (r *MongoCollectionRepository) SumProductsCount(ctx context.Context, shopDomain string) (int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"shop_domain": shopDomain}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$products_count"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to sum products count: %w", err)
	}
	defer cursor.Close(ctx)

	var result struct {
		Total int64 `bson:"total"`
	}
	if cursor.Next(ctx) {
		if err := cursor.Decode(&result); err != nil {
			return 0, fmt.Errorf("failed to decode aggregation: %w", err)
		}
	}

	return result.Total, nil
}

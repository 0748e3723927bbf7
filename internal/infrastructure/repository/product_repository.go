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

// MongoProductRepository implements ProductRepository using MongoDB
type MongoProductRepository struct {
	collection *mongo.Collection
}

// NewMongoProductRepository creates a new MongoDB product repository
func NewMongoProductRepository(db *mongo.Database) ports.ProductRepository {
	r := &MongoProductRepository{
		collection: db.Collection("products"),
	}
	r.ensureIndex(context.Background())
	return r
}

func (r *MongoProductRepository) keyFilter(shopDomain, externalID string) bson.M {
	return bson.M{
		"shop_domain": shopDomain,
		"external_id": externalID,
	}
}

func (r *MongoProductRepository) ensureIndex(ctx context.Context) {
	indexModel := mongo.IndexModel{
		Keys: bson.D{
			{Key: "shop_domain", Value: 1},
			{Key: "external_id", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	}
	_, _ = r.collection.Indexes().CreateOne(ctx, indexModel)
}

// Upsert creates or refreshes the row for (shop, external id). An existing
// row keeps its created_at; only a fresh insert gets one stamped.
func (r *MongoProductRepository) Upsert(ctx context.Context, product *domain.Product) error {
	doc := entity.MongoProductDocFromDomain(product)
	doc.UpdatedAt = time.Now()
	doc.CreatedAt = time.Time{}

	opts := options.Update().SetUpsert(true)
	filter := r.keyFilter(product.ShopDomain, product.ExternalID)

	_, err := r.collection.UpdateOne(ctx, filter, upsertUpdate(doc), opts)
	if err != nil {
		return fmt.Errorf("failed to upsert product: %w", err)
	}

	return nil
}

// Insert creates a product unconditionally; the unique index on the key pair
// rejects a duplicate.
func (r *MongoProductRepository) Insert(ctx context.Context, product *domain.Product) error {
	doc := entity.MongoProductDocFromDomain(product)
	doc.CreatedAt = time.Now()
	doc.UpdatedAt = doc.CreatedAt

	_, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}

	return nil
}

// GetByExternalID retrieves a product by (shop, external id)
func (r *MongoProductRepository) GetByExternalID(ctx context.Context, shopDomain, externalID string) (*domain.Product, error) {
	var doc entity.MongoProductDoc

	err := r.collection.FindOne(ctx, r.keyFilter(shopDomain, externalID)).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return doc.ToDomain(), nil
}

// Update overwrites the row for (shop, external id); no-op when absent
func (r *MongoProductRepository) Update(ctx context.Context, product *domain.Product) error {
	doc := entity.MongoProductDocFromDomain(product)
	doc.UpdatedAt = time.Now()

	// created_at is deliberately left untouched on update
	update := bson.M{"$set": bson.M{
		"title":        doc.Title,
		"body_html":    doc.BodyHTML,
		"vendor":       doc.Vendor,
		"product_type": doc.ProductType,
		"status":       doc.Status,
		"tags":         doc.Tags,
		"variants":     doc.Variants,
		"images":       doc.Images,
		"published_at": doc.PublishedAt,
		"updated_at":   doc.UpdatedAt,
	}}

	_, err := r.collection.UpdateOne(ctx, r.keyFilter(product.ShopDomain, product.ExternalID), update)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	return nil
}

// Delete removes the row for (shop, external id); deleting a missing row is
// not an error.
func (r *MongoProductRepository) Delete(ctx context.Context, shopDomain, externalID string) error {
	_, err := r.collection.DeleteOne(ctx, r.keyFilter(shopDomain, externalID))
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

// List returns a page of products for a shop with optional title search and
// status filter, newest first.
func (r *MongoProductRepository) List(ctx context.Context, shopDomain string, opts ports.ProductListOptions) ([]*domain.Product, int64, error) {
	filter := bson.M{"shop_domain": shopDomain}
	if opts.Search != "" {
		filter["title"] = bson.M{"$regex": opts.Search, "$options": "i"}
	}
	if opts.Status != "" {
		filter["status"] = opts.Status
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	page := opts.Page
	if page < 1 {
		page = 1
	}
	perPage := opts.PerPage
	if perPage < 1 {
		perPage = 10
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * perPage)).
		SetLimit(int64(perPage))

	cursor, err := r.collection.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []*domain.Product
	for cursor.Next(ctx) {
		var doc entity.MongoProductDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, 0, fmt.Errorf("failed to decode product: %w", err)
		}
		products = append(products, doc.ToDomain())
	}

	if err := cursor.Err(); err != nil {
		return nil, 0, fmt.Errorf("cursor error: %w", err)
	}

	return products, total, nil
}

// CountByShop counts a shop's mirrored products
func (r *MongoProductRepository) CountByShop(ctx context.Context, shopDomain string) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"shop_domain": shopDomain})
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

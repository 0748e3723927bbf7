package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"shopmirror/internal/domain"
	"shopmirror/internal/infrastructure/pubsub"
	"shopmirror/internal/infrastructure/shopify"
	"shopmirror/internal/ports"

	"github.com/rs/zerolog"
)

// fakeRemote serves pre-built connection pages and records how many fetches
// each entity kind received.
type fakeRemote struct {
	productPages    []*shopify.Page[shopify.ProductNode]
	collectionPages []*shopify.Page[shopify.CollectionNode]
	orderPages      []*shopify.Page[shopify.OrderNode]

	productCalls int
	failProducts int // 1-based call index that errors; 0 disables

	registeredTopics []string
}

func (f *fakeRemote) Query(ctx context.Context, shop *domain.Shop, document string, variables map[string]interface{}) (*shopify.GraphQLResponse, error) {
	return &shopify.GraphQLResponse{}, nil
}

func (f *fakeRemote) FetchProducts(ctx context.Context, shop *domain.Shop, limit int, cursor *string) (*shopify.Page[shopify.ProductNode], error) {
	f.productCalls++
	if f.failProducts > 0 && f.productCalls == f.failProducts {
		return nil, errors.New("upstream unavailable")
	}
	return f.productPages[f.productCalls-1], nil
}

func (f *fakeRemote) FetchCollections(ctx context.Context, shop *domain.Shop, limit int, cursor *string) (*shopify.Page[shopify.CollectionNode], error) {
	page := f.collectionPages[0]
	f.collectionPages = f.collectionPages[1:]
	return page, nil
}

func (f *fakeRemote) FetchOrders(ctx context.Context, shop *domain.Shop, limit int, cursor *string) (*shopify.Page[shopify.OrderNode], error) {
	page := f.orderPages[0]
	f.orderPages = f.orderPages[1:]
	return page, nil
}

func (f *fakeRemote) RegisterWebhook(ctx context.Context, shop *domain.Shop, topic string, address string) ([]shopify.UserError, error) {
	f.registeredTopics = append(f.registeredTopics, topic)
	return nil, nil
}

type memShopRepo struct {
	shops map[string]*domain.Shop
}

func newMemShopRepo() *memShopRepo {
	return &memShopRepo{shops: make(map[string]*domain.Shop)}
}

func (r *memShopRepo) Save(ctx context.Context, shop *domain.Shop) error {
	copied := *shop
	r.shops[shop.Domain] = &copied
	return nil
}

func (r *memShopRepo) GetByDomain(ctx context.Context, shopDomain string) (*domain.Shop, error) {
	shop, ok := r.shops[shopDomain]
	if !ok {
		return nil, nil
	}
	copied := *shop
	return &copied, nil
}

func (r *memShopRepo) UpdateLastSync(ctx context.Context, shopDomain string, t time.Time) error {
	shop, ok := r.shops[shopDomain]
	if !ok {
		return nil
	}
	shop.LastSyncAt = &t
	return nil
}

func (r *memShopRepo) List(ctx context.Context) ([]*domain.Shop, error) {
	out := make([]*domain.Shop, 0, len(r.shops))
	for _, shop := range r.shops {
		copied := *shop
		out = append(out, &copied)
	}
	return out, nil
}

type memProductRepo struct {
	rows map[string]*domain.Product
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{rows: make(map[string]*domain.Product)}
}

func productKey(shopDomain, externalID string) string {
	return shopDomain + "/" + externalID
}

func (r *memProductRepo) Upsert(ctx context.Context, product *domain.Product) error {
	copied := *product
	r.rows[productKey(product.ShopDomain, product.ExternalID)] = &copied
	return nil
}

func (r *memProductRepo) Insert(ctx context.Context, product *domain.Product) error {
	key := productKey(product.ShopDomain, product.ExternalID)
	if _, exists := r.rows[key]; exists {
		return fmt.Errorf("duplicate key: %s", key)
	}
	copied := *product
	r.rows[key] = &copied
	return nil
}

func (r *memProductRepo) GetByExternalID(ctx context.Context, shopDomain, externalID string) (*domain.Product, error) {
	product, ok := r.rows[productKey(shopDomain, externalID)]
	if !ok {
		return nil, nil
	}
	copied := *product
	return &copied, nil
}

func (r *memProductRepo) Update(ctx context.Context, product *domain.Product) error {
	key := productKey(product.ShopDomain, product.ExternalID)
	if _, exists := r.rows[key]; !exists {
		return nil
	}
	copied := *product
	r.rows[key] = &copied
	return nil
}

func (r *memProductRepo) Delete(ctx context.Context, shopDomain, externalID string) error {
	delete(r.rows, productKey(shopDomain, externalID))
	return nil
}

func (r *memProductRepo) List(ctx context.Context, shopDomain string, opts ports.ProductListOptions) ([]*domain.Product, int64, error) {
	var out []*domain.Product
	for _, product := range r.rows {
		if product.ShopDomain != shopDomain {
			continue
		}
		if opts.Status != "" && product.Status != opts.Status {
			continue
		}
		if opts.Search != "" && !strings.Contains(strings.ToLower(product.Title), strings.ToLower(opts.Search)) {
			continue
		}
		copied := *product
		out = append(out, &copied)
	}
	return out, int64(len(out)), nil
}

func (r *memProductRepo) CountByShop(ctx context.Context, shopDomain string) (int64, error) {
	var n int64
	for _, product := range r.rows {
		if product.ShopDomain == shopDomain {
			n++
		}
	}
	return n, nil
}

type memCollectionRepo struct {
	rows map[string]*domain.Collection
}

func newMemCollectionRepo() *memCollectionRepo {
	return &memCollectionRepo{rows: make(map[string]*domain.Collection)}
}

func (r *memCollectionRepo) Upsert(ctx context.Context, collection *domain.Collection) error {
	copied := *collection
	r.rows[collection.ShopDomain+"/"+collection.ExternalID] = &copied
	return nil
}

func (r *memCollectionRepo) CountByShop(ctx context.Context, shopDomain string) (int64, error) {
	var n int64
	for _, c := range r.rows {
		if c.ShopDomain == shopDomain {
			n++
		}
	}
	return n, nil
}

func (r *memCollectionRepo) SumProductsCount(ctx context.Context, shopDomain string) (int64, error) {
	var sum int64
	for _, c := range r.rows {
		if c.ShopDomain == shopDomain {
			sum += int64(c.ProductsCount)
		}
	}
	return sum, nil
}

type memOrderRepo struct {
	rows map[string]*domain.Order
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{rows: make(map[string]*domain.Order)}
}

func (r *memOrderRepo) Upsert(ctx context.Context, order *domain.Order) error {
	copied := *order
	r.rows[order.ShopDomain+"/"+order.ExternalID] = &copied
	return nil
}

func (r *memOrderRepo) CountByShop(ctx context.Context, shopDomain string) (int64, error) {
	var n int64
	for _, o := range r.rows {
		if o.ShopDomain == shopDomain {
			n++
		}
	}
	return n, nil
}

func productNode(id string) shopify.ProductNode {
	return shopify.ProductNode{
		ID:     "gid://shopify/Product/" + id,
		Title:  "Product " + id,
		Status: "ACTIVE",
	}
}

func productPage(hasNext bool, cursor string, ids ...string) *shopify.Page[shopify.ProductNode] {
	page := &shopify.Page[shopify.ProductNode]{}
	for _, id := range ids {
		page.Nodes = append(page.Nodes, productNode(id))
	}
	page.PageInfo.HasNextPage = hasNext
	if cursor != "" {
		page.PageInfo.EndCursor = &cursor
	}
	return page
}

type syncFixture struct {
	remote      *fakeRemote
	shops       *memShopRepo
	products    *memProductRepo
	collections *memCollectionRepo
	orders      *memOrderRepo
	service     *SyncService
	shop        *domain.Shop
}

func newSyncFixture(t *testing.T, remote *fakeRemote) *syncFixture {
	t.Helper()

	f := &syncFixture{
		remote:      remote,
		shops:       newMemShopRepo(),
		products:    newMemProductRepo(),
		collections: newMemCollectionRepo(),
		orders:      newMemOrderRepo(),
	}
	f.shop = &domain.Shop{Domain: "acme.myshopify.com", AccessToken: "tok"}
	if err := f.shops.Save(context.Background(), f.shop); err != nil {
		t.Fatalf("failed to seed shop: %v", err)
	}
	f.service = NewSyncService(
		remote, f.shops, f.products, f.collections, f.orders,
		pubsub.NewDeltaPubSub(zerolog.Nop()), zerolog.Nop(),
	)
	return f
}

func TestSyncProductsWalksAllPages(t *testing.T) {
	remote := &fakeRemote{
		productPages: []*shopify.Page[shopify.ProductNode]{
			productPage(true, "c1", "1", "2"),
			productPage(true, "c2", "3", "4"),
			productPage(false, "", "5"),
		},
	}
	f := newSyncFixture(t, remote)

	result := f.service.SyncProducts(context.Background(), f.shop)

	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if result.Synced != 5 {
		t.Errorf("expected 5 synced, got %d", result.Synced)
	}
	if result.Message != "Successfully synced 5 products" {
		t.Errorf("unexpected message %q", result.Message)
	}
	if remote.productCalls != 3 {
		t.Errorf("expected 3 fetches, got %d", remote.productCalls)
	}
	count, _ := f.products.CountByShop(context.Background(), f.shop.Domain)
	if count != 5 {
		t.Errorf("expected 5 stored products, got %d", count)
	}
}

func TestSyncProductsIsIdempotent(t *testing.T) {
	remote := &fakeRemote{
		productPages: []*shopify.Page[shopify.ProductNode]{
			productPage(false, "", "1", "2", "3"),
			productPage(false, "", "1", "2", "3"),
		},
	}
	f := newSyncFixture(t, remote)

	first := f.service.SyncProducts(context.Background(), f.shop)
	second := f.service.SyncProducts(context.Background(), f.shop)

	if !first.Success || !second.Success {
		t.Fatalf("expected both passes to succeed: %+v / %+v", first, second)
	}
	count, _ := f.products.CountByShop(context.Background(), f.shop.Domain)
	if count != 3 {
		t.Errorf("expected 3 rows after a repeat pass, got %d", count)
	}
}

func TestSyncProductsKeepsPartialProgressOnFailure(t *testing.T) {
	remote := &fakeRemote{
		productPages: []*shopify.Page[shopify.ProductNode]{
			productPage(true, "c1", "1", "2"),
			nil, // replaced by the injected error
		},
		failProducts: 2,
	}
	f := newSyncFixture(t, remote)

	result := f.service.SyncProducts(context.Background(), f.shop)

	if result.Success {
		t.Fatal("expected failure result")
	}
	if result.Synced != 2 {
		t.Errorf("expected 2 synced before the failure, got %d", result.Synced)
	}
	if !strings.HasPrefix(result.Message, "Sync failed: ") {
		t.Errorf("unexpected message %q", result.Message)
	}
	// Rows written before the failure stay.
	count, _ := f.products.CountByShop(context.Background(), f.shop.Domain)
	if count != 2 {
		t.Errorf("expected 2 rows kept, got %d", count)
	}
	// A failed pass must not stamp the last sync time.
	shop, _ := f.shops.GetByDomain(context.Background(), f.shop.Domain)
	if shop.LastSyncAt != nil {
		t.Error("expected last sync to stay unset after a failed pass")
	}
}

func TestSyncProductsStampsLastSync(t *testing.T) {
	remote := &fakeRemote{
		productPages: []*shopify.Page[shopify.ProductNode]{productPage(false, "", "1")},
	}
	f := newSyncFixture(t, remote)

	before := time.Now()
	result := f.service.SyncProducts(context.Background(), f.shop)
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}

	shop, _ := f.shops.GetByDomain(context.Background(), f.shop.Domain)
	if shop.LastSyncAt == nil {
		t.Fatal("expected last sync to be stamped")
	}
	if shop.LastSyncAt.Before(before) {
		t.Errorf("last sync %v is before the pass started", shop.LastSyncAt)
	}
}

func TestSyncCollectionsDoesNotStampLastSync(t *testing.T) {
	cursor := ""
	remote := &fakeRemote{
		collectionPages: []*shopify.Page[shopify.CollectionNode]{{
			Nodes: []shopify.CollectionNode{
				{ID: "gid://shopify/Collection/10", Title: "Featured", ProductsCount: 4},
			},
			PageInfo: shopify.PageInfo{HasNextPage: false, EndCursor: &cursor},
		}},
	}
	f := newSyncFixture(t, remote)

	result := f.service.SyncCollections(context.Background(), f.shop)
	if !result.Success || result.Synced != 1 {
		t.Fatalf("unexpected result %+v", result)
	}

	shop, _ := f.shops.GetByDomain(context.Background(), f.shop.Domain)
	if shop.LastSyncAt != nil {
		t.Error("collection sync must not touch the last sync time")
	}
}

func TestSyncOrdersProjectsMoney(t *testing.T) {
	node := shopify.OrderNode{
		ID:    "gid://shopify/Order/77",
		Name:  "#1001",
		Email: "buyer@example.com",
	}
	node.TotalPriceSet.ShopMoney = shopify.Money{Amount: "123.45", CurrencyCode: "EUR"}

	remote := &fakeRemote{
		orderPages: []*shopify.Page[shopify.OrderNode]{{
			Nodes:    []shopify.OrderNode{node},
			PageInfo: shopify.PageInfo{HasNextPage: false},
		}},
	}
	f := newSyncFixture(t, remote)

	result := f.service.SyncOrders(context.Background(), f.shop)
	if !result.Success || result.Synced != 1 {
		t.Fatalf("unexpected result %+v", result)
	}

	order := f.orders.rows[f.shop.Domain+"/77"]
	if order == nil {
		t.Fatal("expected order 77 to be stored")
	}
	if order.TotalPrice.String() != "123.45" || order.Currency != "EUR" {
		t.Errorf("unexpected money projection %s %s", order.TotalPrice, order.Currency)
	}
}

package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"shopmirror/internal/domain"
)

// DefaultPageSize is the page bound requested per query.
const DefaultPageSize = 50

const productsQuery = `
query($limit: Int!, $cursor: String) {
    products(first: $limit, after: $cursor) {
        edges {
            node {
                id
                title
                descriptionHtml
                vendor
                productType
                status
                tags
                publishedAt
                variants(first: 10) {
                    edges { node { id title price sku } }
                }
                images(first: 5) {
                    edges { node { id url altText } }
                }
            }
            cursor
        }
        pageInfo { hasNextPage endCursor }
    }
}`

const collectionsQuery = `
query($limit: Int!, $cursor: String) {
    collections(first: $limit, after: $cursor) {
        edges {
            node {
                id
                title
                descriptionHtml
                handle
                productsCount
                publishedAt
            }
            cursor
        }
        pageInfo { hasNextPage endCursor }
    }
}`

const ordersQuery = `
query($limit: Int!, $cursor: String) {
    orders(first: $limit, after: $cursor) {
        edges {
            node {
                id
                name
                email
                totalPriceSet { shopMoney { amount currencyCode } }
                displayFinancialStatus
                displayFulfillmentStatus
                processedAt
                lineItems(first: 20) {
                    edges { node { id title quantity variant { id price } } }
                }
                customer { id firstName lastName email }
            }
            cursor
        }
        pageInfo { hasNextPage endCursor }
    }
}`

const webhookSubscriptionCreateMutation = `
mutation webhookSubscriptionCreate($topic: WebhookSubscriptionTopic!, $webhookSubscription: WebhookSubscriptionInput!) {
    webhookSubscriptionCreate(topic: $topic, webhookSubscription: $webhookSubscription) {
        webhookSubscription {
            id
            topic
            endpoint {
                __typename
                ... on WebhookHttpEndpoint { callbackUrl }
            }
        }
        userErrors { field message }
    }
}`

// PageInfo carries the forward cursor state of a connection.
type PageInfo struct {
	HasNextPage bool    `json:"hasNextPage"`
	EndCursor   *string `json:"endCursor"`
}

// Money is a Shopify money value; the amount is a decimal string.
type Money struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

// ProductNode is one product as returned by the products query.
type ProductNode struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	DescriptionHTML string   `json:"descriptionHtml"`
	Vendor          string   `json:"vendor"`
	ProductType     string   `json:"productType"`
	Status          string   `json:"status"`
	Tags            []string `json:"tags"`
	PublishedAt     *string  `json:"publishedAt"`
	Variants        struct {
		Edges []struct {
			Node VariantNode `json:"node"`
		} `json:"edges"`
	} `json:"variants"`
	Images struct {
		Edges []struct {
			Node ImageNode `json:"node"`
		} `json:"edges"`
	} `json:"images"`
}

// VariantNode is one nested product variant.
type VariantNode struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Price string `json:"price"`
	SKU   string `json:"sku"`
}

// ImageNode is one nested product image.
type ImageNode struct {
	ID      string `json:"id"`
	URL     string `json:"url"`
	AltText string `json:"altText"`
}

// CollectionNode is one collection as returned by the collections query.
type CollectionNode struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	DescriptionHTML string  `json:"descriptionHtml"`
	Handle          string  `json:"handle"`
	ProductsCount   int     `json:"productsCount"`
	PublishedAt     *string `json:"publishedAt"`
}

// OrderNode is one order as returned by the orders query.
type OrderNode struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	TotalPriceSet struct {
		ShopMoney Money `json:"shopMoney"`
	} `json:"totalPriceSet"`
	DisplayFinancialStatus   string  `json:"displayFinancialStatus"`
	DisplayFulfillmentStatus string  `json:"displayFulfillmentStatus"`
	ProcessedAt              *string `json:"processedAt"`
	LineItems                struct {
		Edges []struct {
			Node LineItemNode `json:"node"`
		} `json:"edges"`
	} `json:"lineItems"`
	Customer *CustomerNode `json:"customer"`
}

// LineItemNode is one nested order line item.
type LineItemNode struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Quantity int    `json:"quantity"`
	Variant  *struct {
		ID    string `json:"id"`
		Price string `json:"price"`
	} `json:"variant"`
}

// CustomerNode is the optional buyer of an order.
type CustomerNode struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// Page is one decoded connection page of nodes.
type Page[N any] struct {
	Nodes    []N
	PageInfo PageInfo
}

// UserError is a field-level error reported by a Shopify mutation.
type UserError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

type connection[N any] struct {
	Edges []struct {
		Node N `json:"node"`
	} `json:"edges"`
	PageInfo PageInfo `json:"pageInfo"`
}

func fetchPage[N any](ctx context.Context, c *Client, shop *domain.Shop, document, root string, limit int, cursor *string) (*Page[N], error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}

	resp, err := c.Query(ctx, shop, document, map[string]interface{}{
		"limit":  limit,
		"cursor": cursor,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Errors) > 0 {
		return nil, resp.Errors
	}

	var data map[string]connection[N]
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to decode %s page: %w", root, err)
	}

	conn := data[root]
	page := &Page[N]{PageInfo: conn.PageInfo}
	for _, edge := range conn.Edges {
		page.Nodes = append(page.Nodes, edge.Node)
	}
	return page, nil
}

// FetchProducts returns one page of products starting after cursor.
func (c *Client) FetchProducts(ctx context.Context, shop *domain.Shop, limit int, cursor *string) (*Page[ProductNode], error) {
	return fetchPage[ProductNode](ctx, c, shop, productsQuery, "products", limit, cursor)
}

// FetchCollections returns one page of collections starting after cursor.
func (c *Client) FetchCollections(ctx context.Context, shop *domain.Shop, limit int, cursor *string) (*Page[CollectionNode], error) {
	return fetchPage[CollectionNode](ctx, c, shop, collectionsQuery, "collections", limit, cursor)
}

// FetchOrders returns one page of orders starting after cursor.
func (c *Client) FetchOrders(ctx context.Context, shop *domain.Shop, limit int, cursor *string) (*Page[OrderNode], error) {
	return fetchPage[OrderNode](ctx, c, shop, ordersQuery, "orders", limit, cursor)
}

// RegisterWebhook subscribes the given callback address to a topic. Field
// level userErrors are returned for the caller to inspect, not raised.
func (c *Client) RegisterWebhook(ctx context.Context, shop *domain.Shop, topic string, address string) ([]UserError, error) {
	resp, err := c.Query(ctx, shop, webhookSubscriptionCreateMutation, map[string]interface{}{
		"topic": topic,
		"webhookSubscription": map[string]interface{}{
			"callbackUrl": address,
			"format":      "JSON",
		},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Errors) > 0 {
		return nil, resp.Errors
	}

	var data struct {
		WebhookSubscriptionCreate struct {
			UserErrors []UserError `json:"userErrors"`
		} `json:"webhookSubscriptionCreate"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to decode webhook subscription response: %w", err)
	}

	return data.WebhookSubscriptionCreate.UserErrors, nil
}

// ExtractID derives the local external id from a Shopify GID such as
// gid://shopify/Product/123456: the trailing path segment.
func ExtractID(gid string) string {
	parts := strings.Split(gid, "/")
	return parts[len(parts)-1]
}

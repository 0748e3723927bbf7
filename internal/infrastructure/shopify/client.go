package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"shopmirror/internal/domain"

	"github.com/rs/zerolog"
)

// DefaultAPIVersion is the Shopify Admin API version queried when none is
// configured.
const DefaultAPIVersion = "2024-01"

// RemoteError is returned for transport failures and non-2xx responses from
// the Admin API. It carries the raw response body for the caller.
type RemoteError struct {
	Status int
	Body   string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("shopify api request failed: status %d: %s", e.Status, e.Body)
}

// GraphQLError is one entry of a top-level GraphQL error list.
type GraphQLError struct {
	Message string `json:"message"`
}

// GraphQLErrors is the top-level error list of an otherwise successful
// GraphQL response.
type GraphQLErrors []GraphQLError

func (e GraphQLErrors) Error() string {
	msgs, _ := json.Marshal(e)
	return "shopify graphql errors: " + string(msgs)
}

// GraphQLResponse is the raw response envelope of the Admin GraphQL API.
type GraphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors GraphQLErrors   `json:"errors,omitempty"`
}

// Client issues GraphQL queries against a shop's Admin API endpoint. It knows
// nothing about local entities and performs no retries.
type Client struct {
	apiVersion string
	httpClient *http.Client
	baseURL    string // overrides the shop-derived endpoint when set
	logger     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient injects the HTTP client used for all calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL routes every request to a fixed endpoint instead of the
// shop-derived URL. Used by tests and proxies.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithAPIVersion sets the Admin API version segment of the endpoint path.
func WithAPIVersion(v string) Option {
	return func(c *Client) { c.apiVersion = v }
}

// NewClient creates a new Admin GraphQL API client.
func NewClient(logger zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		apiVersion: DefaultAPIVersion,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) endpoint(shopDomain string) string {
	if c.baseURL != "" {
		return fmt.Sprintf("%s/admin/api/%s/graphql.json", c.baseURL, c.apiVersion)
	}
	return fmt.Sprintf("https://%s/admin/api/%s/graphql.json", shopDomain, c.apiVersion)
}

// Query posts a GraphQL document with variables to the shop's versioned
// endpoint, authenticated with the shop's access token. The decoded envelope
// is returned as-is; callers inspect the top-level error list themselves.
func (c *Client) Query(ctx context.Context, shop *domain.Shop, document string, variables map[string]interface{}) (*GraphQLResponse, error) {
	body, err := json.Marshal(map[string]interface{}{
		"query":     document,
		"variables": variables,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(shop.Domain), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create graphql request: %w", err)
	}
	req.Header.Set("X-Shopify-Access-Token", shop.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RemoteError{Body: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read graphql response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn().
			Str("shop", shop.Domain).
			Int("status", resp.StatusCode).
			Msg("Shopify API request failed")
		return nil, &RemoteError{Status: resp.StatusCode, Body: string(respBody)}
	}

	var decoded GraphQLResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode graphql response: %w", err)
	}

	return &decoded, nil
}

package shopify

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
)

var shopDomainPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9\-]*\.myshopify\.com$`)

// ValidShopDomain reports whether shop is a well-formed myshopify.com domain.
func ValidShopDomain(shop string) bool {
	return shopDomainPattern.MatchString(shop)
}

// OAuth implements the app-install handshake: authorize URL construction,
// callback signature verification and the code-for-token exchange.
type OAuth struct {
	apiKey      string
	apiSecret   string
	scopes      []string
	redirectURI string
	httpClient  *http.Client
	baseURL     string // overrides the shop-derived token endpoint when set
	logger      zerolog.Logger
}

// OAuthOption configures an OAuth helper.
type OAuthOption func(*OAuth)

// WithOAuthHTTPClient injects the HTTP client used for the token exchange.
func WithOAuthHTTPClient(hc *http.Client) OAuthOption {
	return func(o *OAuth) { o.httpClient = hc }
}

// WithOAuthBaseURL routes the token exchange to a fixed endpoint instead of
// the shop-derived URL. Used by tests.
func WithOAuthBaseURL(u string) OAuthOption {
	return func(o *OAuth) { o.baseURL = u }
}

// NewOAuth creates an OAuth helper for the app identified by apiKey/apiSecret.
func NewOAuth(apiKey, apiSecret string, scopes []string, redirectURI string, logger zerolog.Logger, opts ...OAuthOption) *OAuth {
	o := &OAuth{
		apiKey:      apiKey,
		apiSecret:   apiSecret,
		scopes:      scopes,
		redirectURI: redirectURI,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		logger:      logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// GenerateState returns a fresh anti-replay nonce for the state parameter.
func (o *OAuth) GenerateState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// AuthorizeURL builds the authorization redirect URL for a shop. Shopify
// expects scopes comma-separated with no spaces.
func (o *OAuth) AuthorizeURL(shop string, state string) string {
	return fmt.Sprintf(
		"https://%s/admin/oauth/authorize?client_id=%s&scope=%s&redirect_uri=%s&state=%s",
		shop,
		o.apiKey,
		url.QueryEscape(strings.Join(o.scopes, ",")),
		url.QueryEscape(o.redirectURI),
		url.QueryEscape(state),
	)
}

// VerifyHMAC checks the keyed-hash signature of the callback query: all
// parameters except hmac itself, sorted by key and URL-encoded, signed with
// HMAC-SHA256 over the shared secret. Comparison is constant-time.
func (o *OAuth) VerifyHMAC(params url.Values) bool {
	received := params.Get("hmac")
	if received == "" {
		return false
	}

	filtered := url.Values{}
	for key, values := range params {
		if key == "hmac" {
			continue
		}
		for _, v := range values {
			filtered.Add(key, v)
		}
	}

	mac := hmac.New(sha256.New, []byte(o.apiSecret))
	mac.Write([]byte(filtered.Encode()))
	computed := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(computed), []byte(received))
}

type accessTokenResponse struct {
	AccessToken string `json:"access_token"`
	Scope       string `json:"scope"`
}

func (o *OAuth) tokenEndpoint(shop string) string {
	if o.baseURL != "" {
		return o.baseURL + "/admin/oauth/access_token"
	}
	return fmt.Sprintf("https://%s/admin/oauth/access_token", shop)
}

// ExchangeToken trades the authorization code for an access token and the
// granted scope string.
func (o *OAuth) ExchangeToken(ctx context.Context, shop string, code string) (token string, scope string, err error) {
	body, err := json.Marshal(map[string]string{
		"client_id":     o.apiKey,
		"client_secret": o.apiSecret,
		"code":          code,
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to encode token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.tokenEndpoint(shop), strings.NewReader(string(body)))
	if err != nil {
		return "", "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("failed to exchange token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", "", fmt.Errorf("token endpoint returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var decoded accessTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", "", fmt.Errorf("failed to decode token response: %w", err)
	}

	return decoded.AccessToken, decoded.Scope, nil
}

// VerifyCredential makes a lightweight Shop.Get call with the freshly issued
// token. An error means the credential did not authenticate.
func (o *OAuth) VerifyCredential(ctx context.Context, shopDomain string, accessToken string) error {
	app := goshopify.App{ApiKey: o.apiKey, ApiSecret: o.apiSecret}
	client, err := goshopify.NewClient(app, shopDomain, accessToken)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	if _, err := client.Shop.Get(ctx, nil); err != nil {
		return fmt.Errorf("failed to get shop: %w", err)
	}
	return nil
}

package shopify

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestValidShopDomain(t *testing.T) {
	valid := []string{
		"acme.myshopify.com",
		"acme-store.myshopify.com",
		"a.myshopify.com",
		"Shop123.myshopify.com",
	}
	for _, shop := range valid {
		if !ValidShopDomain(shop) {
			t.Errorf("expected %q to be valid", shop)
		}
	}

	invalid := []string{
		"",
		"acme.example.com",
		"-acme.myshopify.com",
		"acme.myshopify.com.evil.com",
		"https://acme.myshopify.com",
		"acme.myshopify.comx",
	}
	for _, shop := range invalid {
		if ValidShopDomain(shop) {
			t.Errorf("expected %q to be invalid", shop)
		}
	}
}

func TestAuthorizeURL(t *testing.T) {
	oauth := NewOAuth("key123", "secret", []string{"read_products", "read_orders"}, "https://app.example.com/auth/callback", zerolog.Nop())

	raw := oauth.AuthorizeURL("acme.myshopify.com", "nonce456")
	parsed, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("authorize URL did not parse: %v", err)
	}

	if parsed.Host != "acme.myshopify.com" || parsed.Path != "/admin/oauth/authorize" {
		t.Errorf("unexpected endpoint %s%s", parsed.Host, parsed.Path)
	}
	q := parsed.Query()
	if q.Get("client_id") != "key123" {
		t.Errorf("unexpected client_id %q", q.Get("client_id"))
	}
	if q.Get("scope") != "read_products,read_orders" {
		t.Errorf("unexpected scope %q", q.Get("scope"))
	}
	if q.Get("redirect_uri") != "https://app.example.com/auth/callback" {
		t.Errorf("unexpected redirect_uri %q", q.Get("redirect_uri"))
	}
	if q.Get("state") != "nonce456" {
		t.Errorf("unexpected state %q", q.Get("state"))
	}
}

func signParams(secret string, params url.Values) string {
	filtered := url.Values{}
	for key, values := range params {
		if key == "hmac" {
			continue
		}
		for _, v := range values {
			filtered.Add(key, v)
		}
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(filtered.Encode()))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyHMAC(t *testing.T) {
	oauth := NewOAuth("key", "hush", nil, "", zerolog.Nop())

	params := url.Values{}
	params.Set("shop", "acme.myshopify.com")
	params.Set("code", "authcode")
	params.Set("state", "nonce")
	params.Set("timestamp", "1700000000")
	params.Set("hmac", signParams("hush", params))

	if !oauth.VerifyHMAC(params) {
		t.Fatal("expected correctly signed params to verify")
	}

	// Any tampering after signing must fail verification.
	params.Set("shop", "evil.myshopify.com")
	if oauth.VerifyHMAC(params) {
		t.Error("expected tampered params to fail verification")
	}

	params.Set("shop", "acme.myshopify.com")
	good := signParams("hush", params)
	flipped := good[:len(good)-1]
	if good[len(good)-1] == 'a' {
		flipped += "b"
	} else {
		flipped += "a"
	}
	params.Set("hmac", flipped)
	if oauth.VerifyHMAC(params) {
		t.Error("expected a one-character signature change to fail verification")
	}

	params.Del("hmac")
	if oauth.VerifyHMAC(params) {
		t.Error("expected missing signature to fail verification")
	}
}

func TestGenerateStateIsUnique(t *testing.T) {
	oauth := NewOAuth("key", "secret", nil, "", zerolog.Nop())

	a, err := oauth.GenerateState()
	if err != nil {
		t.Fatalf("GenerateState returned error: %v", err)
	}
	b, err := oauth.GenerateState()
	if err != nil {
		t.Fatalf("GenerateState returned error: %v", err)
	}
	if len(a) != 32 {
		t.Errorf("expected 32 hex chars, got %d", len(a))
	}
	if a == b {
		t.Error("expected successive states to differ")
	}
}

func TestExchangeToken(t *testing.T) {
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/oauth/access_token" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode token request: %v", err)
		}
		w.Write([]byte(`{"access_token":"shpat_issued","scope":"read_products,read_orders"}`))
	}))
	defer server.Close()

	oauth := NewOAuth("key123", "secret456", nil, "", zerolog.Nop(), WithOAuthBaseURL(server.URL))
	token, scope, err := oauth.ExchangeToken(context.Background(), "acme.myshopify.com", "authcode789")
	if err != nil {
		t.Fatalf("ExchangeToken returned error: %v", err)
	}

	if token != "shpat_issued" {
		t.Errorf("unexpected token %q", token)
	}
	if scope != "read_products,read_orders" {
		t.Errorf("unexpected scope %q", scope)
	}
	if gotBody["client_id"] != "key123" || gotBody["client_secret"] != "secret456" || gotBody["code"] != "authcode789" {
		t.Errorf("unexpected token request body %v", gotBody)
	}
}

func TestExchangeTokenRejectsNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_request"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	oauth := NewOAuth("key", "secret", nil, "", zerolog.Nop(), WithOAuthBaseURL(server.URL))
	_, _, err := oauth.ExchangeToken(context.Background(), "acme.myshopify.com", "badcode")
	if err == nil {
		t.Fatal("expected error for non-200 token response")
	}
	if !strings.Contains(err.Error(), "400") {
		t.Errorf("expected error to carry the status, got %v", err)
	}
}

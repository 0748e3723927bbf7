package domain

import "errors"

// Failure taxonomy for the installation and ingestion flows. Callers match
// with errors.Is; lower layers wrap these with context.
var (
	ErrInvalidShop         = errors.New("invalid shop domain")
	ErrStateMismatch       = errors.New("oauth state mismatch")
	ErrSignatureInvalid    = errors.New("hmac signature invalid")
	ErrTokenExchangeFailed = errors.New("token exchange failed")
	ErrShopUnknown         = errors.New("shop not found")
)

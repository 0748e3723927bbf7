package ports

import (
	"context"
	"time"

	"shopmirror/internal/domain"
)

// SessionStore holds transient OAuth install sessions keyed by the state
// nonce. Get returns (nil, nil) for an unknown or expired state.
type SessionStore interface {
	Save(ctx context.Context, session *domain.Session, ttl time.Duration) error
	Get(ctx context.Context, state string) (*domain.Session, error)
	Delete(ctx context.Context, state string) error
}

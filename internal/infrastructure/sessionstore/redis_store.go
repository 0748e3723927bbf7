package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"shopmirror/internal/domain"
	"shopmirror/internal/ports"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "oauth:state:"

// RedisSessionStore implements SessionStore on Redis. Sessions expire with
// their TTL, so a stale state can never be replayed.
type RedisSessionStore struct {
	client *redis.Client
}

// NewRedisSessionStore creates a new Redis-backed session store
func NewRedisSessionStore(client *redis.Client) ports.SessionStore {
	return &RedisSessionStore{client: client}
}

// Save stores the session under its state nonce with the given TTL
func (s *RedisSessionStore) Save(ctx context.Context, session *domain.Session, ttl time.Duration) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if err := s.client.Set(ctx, keyPrefix+session.State, payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// Get retrieves a session by state; unknown or expired states return nil
func (s *RedisSessionStore) Get(ctx context.Context, state string) (*domain.Session, error) {
	payload, err := s.client.Get(ctx, keyPrefix+state).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}

	return &session, nil
}

// Delete removes a session; deleting a missing session is not an error
func (s *RedisSessionStore) Delete(ctx context.Context, state string) error {
	if err := s.client.Del(ctx, keyPrefix+state).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

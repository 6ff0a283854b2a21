// game/store/session_store.go
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyFormat = "session:%s"

// SessionStore keeps the active round's portal session key in Redis with a
// TTL matching its expiry. The Round document stays authoritative; this is
// the fast path for verification, and lookups fall back to MongoDB on a miss
// so a Redis restart never locks players out.
type SessionStore struct {
	client *redis.Client
}

// NewSessionStore creates a new SessionStore instance.
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{
		client: client,
	}
}

// PutSession stores a session key pointing at its round, expiring with it.
func (ss *SessionStore) PutSession(ctx context.Context, token, roundID string, ttl time.Duration) error {
	key := fmt.Sprintf(sessionKeyFormat, token)
	if err := ss.client.Set(ctx, key, roundID, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session key in Redis: %w", err)
	}
	return nil
}

// GetSession resolves a session key to its round ID. ErrNotFound when the
// key is absent or expired.
func (ss *SessionStore) GetSession(ctx context.Context, token string) (string, error) {
	key := fmt.Sprintf(sessionKeyFormat, token)
	roundID, err := ss.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", fmt.Errorf("session key %s: %w", token, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up session key in Redis: %w", err)
	}
	return roundID, nil
}

// DeleteSession drops a session key, called when its round is archived.
func (ss *SessionStore) DeleteSession(ctx context.Context, token string) error {
	key := fmt.Sprintf(sessionKeyFormat, token)
	if err := ss.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete session key from Redis: %w", err)
	}
	return nil
}

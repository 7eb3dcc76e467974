// Package verification implements the server-side store for opaque
// email-verification tokens on Redis. Tokens follow a possession-only
// trust model: a random string keyed in Redis with a TTL, consumed
// exactly once.
package verification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrTokenNotFound is returned when a token is unknown, expired, or was
// already consumed. The three cases are indistinguishable on purpose.
var ErrTokenNotFound = errors.New("verification: token not found")

const keyPrefix = "verify:"

// Store keeps verification tokens in Redis.
type Store struct {
	client *redis.Client
}

// NewStore creates a Redis-backed verification token store.
func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// Store saves the token with the given TTL. Overwriting an existing
// token key is allowed; the previous token simply stops mattering.
func (s *Store) Store(ctx context.Context, token, email string, ttl time.Duration) error {
	if err := s.client.SetEx(ctx, keyPrefix+token, email, ttl).Err(); err != nil {
		return fmt.Errorf("verification: store token: %w", err)
	}
	return nil
}

// Consume returns the email stored for the token and deletes it in a
// single atomic operation, so a token can never be redeemed twice.
func (s *Store) Consume(ctx context.Context, token string) (string, error) {
	email, err := s.client.GetDel(ctx, keyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", fmt.Errorf("verification: consume token: %w", err)
	}
	return email, nil
}

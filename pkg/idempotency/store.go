package idempotency

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store guards once-only operations with a Redis SETNX marker. Checkout
// handlers use it to drop replayed requests carrying the same
// Idempotency-Key.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

// Key scopes an idempotency key to one owner so clients cannot collide
// across accounts.
func (s *Store) Key(ownerKey, requestKey string) string {
	return fmt.Sprintf("idem:%s:%s", ownerKey, requestKey)
}

// Seen marks the key and reports whether it was already present.
func (s *Store) Seen(ctx context.Context, key string) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, key, "1", s.ttl).Result()
	if err != nil {
		return false, err
	}
	return !ok, nil
}

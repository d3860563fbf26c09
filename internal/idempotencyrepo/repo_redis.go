// Package idempotencyrepo caches idempotency keys of settled transactions.
package idempotencyrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "idempotency:"

// RepoRedis is a lookaside cache from idempotency key to transaction id.
// Entries expire after the configured TTL; expired keys are still resolved
// through the transaction store.
type RepoRedis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRepoRedis returns the idempotency cache.
func NewRepoRedis(client *redis.Client, ttl time.Duration) *RepoRedis {
	return &RepoRedis{client: client, ttl: ttl}
}

// Get returns the transaction id cached under key, if any.
func (r *RepoRedis) Get(ctx context.Context, key string) (uuid.UUID, bool, error) {
	val, err := r.client.Get(ctx, keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("failed to get idempotency key: %w", err)
	}

	id, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("failed to parse cached transaction id: %w", err)
	}

	return id, true, nil
}

// Save caches the transaction id under key for the configured TTL.
func (r *RepoRedis) Save(ctx context.Context, key string, id uuid.UUID) error {
	return r.client.Set(ctx, keyPrefix+key, id.String(), r.ttl).Err()
}

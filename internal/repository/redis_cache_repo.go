package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/edupress/edupress/internal/domain"
)

// RedisCacheRepo implements domain.CacheRepository for the course read
// paths. Keys are caller-owned ("course:<id>", "courses"); a zero ttl stores
// the entry without expiry.
type RedisCacheRepo struct {
	client *redis.Client
}

// NewRedisCacheRepo creates a new repository instance.
func NewRedisCacheRepo(client *redis.Client) *RedisCacheRepo {
	return &RedisCacheRepo{client: client}
}

// Get returns the raw cached bytes or domain.ErrCacheMiss.
func (r *RedisCacheRepo) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrCacheMiss
		}
		return nil, fmt.Errorf("redis error: %w", err)
	}
	return data, nil
}

// Set stores a value, optionally with a TTL.
func (r *RedisCacheRepo) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

// Delete removes entries. Mutating handlers call this for every key whose
// underlying data they changed.
func (r *RedisCacheRepo) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

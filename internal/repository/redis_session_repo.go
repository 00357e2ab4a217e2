package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/edupress/edupress/internal/domain"
)

// RedisSessionRepo implements domain.SessionRepository using Redis.
// The key pattern is "session:<userID>" -> JSON user snapshot. Sensitive
// fields (password hash, TOTP secret) are excluded by the snapshot's JSON
// tags and never reach the cache.
type RedisSessionRepo struct {
	client *redis.Client
}

// NewRedisSessionRepo creates a new repository instance.
func NewRedisSessionRepo(client *redis.Client) *RedisSessionRepo {
	return &RedisSessionRepo{client: client}
}

func sessionKey(userID string) string {
	return fmt.Sprintf("session:%s", userID)
}

// Put overwrites any existing snapshot for the user and refreshes the TTL.
func (r *RedisSessionRepo) Put(ctx context.Context, userID string, user *domain.User, ttl time.Duration) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal session snapshot: %w", err)
	}

	if err := r.client.Set(ctx, sessionKey(userID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session in redis: %w", err)
	}

	return nil
}

// Get returns the cached snapshot or domain.ErrSessionNotFound, which covers
// both an explicit logout and TTL eviction.
func (r *RedisSessionRepo) Get(ctx context.Context, userID string) (*domain.User, error) {
	data, err := r.client.Get(ctx, sessionKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("redis error: %w", err)
	}

	var user domain.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("unmarshal session snapshot: %w", err)
	}

	return &user, nil
}

// Remove deletes the session immediately. This is the server-side revocation
// point: once gone, access tokens stop resolving even before they expire.
func (r *RedisSessionRepo) Remove(ctx context.Context, userID string) error {
	return r.client.Del(ctx, sessionKey(userID)).Err()
}

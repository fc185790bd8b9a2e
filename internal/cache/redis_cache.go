package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/onlinestore/catalog-admin/internal/config"
	"github.com/onlinestore/catalog-admin/internal/utils"
	"github.com/redis/go-redis/v9"
)

type redisCache struct {
	client *redis.Client
	cfg    *config.CacheConfig
}

func NewRedisCache(client *redis.Client, cfg *config.CacheConfig) Cache {
	return &redisCache{
		client: client,
		cfg:    cfg,
	}
}

func (r *redisCache) Get(ctx context.Context, key string, value any) (bool, error) {

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {

		if err == redis.Nil {
			return false, nil
		}

		return false, fmt.Errorf("failed to get key %s from redis: %w", key, err)
	}

	if err := json.Unmarshal(data, value); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache data for key %s: %w", key, err)
	}

	return true, nil
}

// GetOrAdd is the read-through path. The populate uses SET NX so concurrent
// misses store a single value under a single TTL clock; losers adopt the
// winner's entry. A store fault on the read side falls back to the factory
// (a broken cache must not take down reads), and a store fault on the
// populate side is logged and the fresh value returned.
func (r *redisCache) GetOrAdd(ctx context.Context, key string, dest any, ttl time.Duration, factory func(ctx context.Context) (any, error)) error {

	data, err := r.client.Get(ctx, key).Bytes()

	switch {
	case err == nil:
		if err := json.Unmarshal(data, dest); err == nil {
			return nil
		}

		// Undecodable entry. Drop it and repopulate below.
		slog.Warn("Discarding corrupt cache entry", slog.String("key", key))

		if err := r.client.Del(ctx, key).Err(); err != nil {
			slog.Warn("Failed to drop corrupt cache entry", slog.String("key", key), slog.String("error", err.Error()))
		}

	case err != redis.Nil:
		slog.Warn("Cache read failed, falling back to source", slog.String("key", key), slog.String("error", err.Error()))

		value, ferr := factory(ctx)
		if ferr != nil {
			return ferr
		}

		return assign(value, dest)
	}

	value, err := factory(ctx)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(value)
	if err != nil {
		slog.Warn("Failed to marshal value for cache", slog.String("key", key), slog.String("error", err.Error()))

		return assign(value, dest)
	}

	if ttl <= 0 {
		ttl = r.cfg.DefaultTTL
	}

	set, err := r.client.SetNX(ctx, key, payload, ttl).Result()
	if err != nil {
		slog.Warn("Cache populate failed, returning fresh value", slog.String("key", key), slog.String("error", err.Error()))

		return json.Unmarshal(payload, dest)
	}

	if !set {
		// Lost the populate race. Prefer the winner's entry so every
		// concurrent reader observes the same stored value.
		if data, err := r.client.Get(ctx, key).Bytes(); err == nil {
			if err := json.Unmarshal(data, dest); err == nil {
				return nil
			}
		}
	}

	return json.Unmarshal(payload, dest)
}

func (r *redisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value for key %s: %w", key, err)
	}

	if ttl <= 0 {
		ttl = r.cfg.DefaultTTL
	}

	cacheCtx, cancel := utils.WithCacheTimeout(ctx)
	defer cancel()

	err = r.client.Set(cacheCtx, key, data, ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to set key %s in redis: %w", key, err)
	}

	return nil
}

func (r *redisCache) Delete(ctx context.Context, key string) error {

	cacheCtx, cancel := utils.WithCacheTimeout(ctx)
	defer cancel()

	err := r.client.Del(cacheCtx, key).Err()
	if err != nil {
		return fmt.Errorf("failed to delete key %s from redis: %w", key, err)
	}

	return nil
}

func (r *redisCache) Close() error {
	return r.client.Close()
}

// assign copies a factory result into the caller's destination through a
// JSON round trip, matching what a cache hit would have produced.
func assign(value, dest any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal fallback value: %w", err)
	}

	return json.Unmarshal(data, dest)
}

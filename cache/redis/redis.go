package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/calyxa/galerie/cache/types"
	goredis "github.com/go-redis/redis/v8"
)

// Redis is a redis-backed cache provider.
type Redis struct {
	client *goredis.Client
}

// NewRedis creates a redis cache provider and verifies connectivity.
func NewRedis(addr, password string, db int) (*Redis, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, err
	}

	return &Redis{
		client: client,
	}, nil
}

// Set stores a value under key, JSON-encoded.
func (r *Redis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return r.client.Set(ctx, key, data, expiration).Err()
}

// Get loads the value under key into dest.
func (r *Redis) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return types.ErrCacheMiss
		}
		return err
	}

	return json.Unmarshal([]byte(data), dest)
}

// Delete removes a key.
func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

// Exists reports whether a key is present.
func (r *Redis) Exists(ctx context.Context, key string) (bool, error) {
	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}

// Close closes the redis connection.
func (r *Redis) Close() error {
	return r.client.Close()
}

// Name returns the cache provider name.
func (r *Redis) Name() string {
	return "redis"
}

// Package types holds the cache abstractions shared by the providers and
// the factory, avoiding an import cycle between them.
package types

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned when a key is absent.
var ErrCacheMiss = errors.New("cache miss")

// Provider abstracts the cache backend.
type Provider interface {
	// Set stores a value under key.
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error

	// Get loads the value under key into dest.
	Get(ctx context.Context, key string, dest interface{}) error

	// Delete removes a key.
	Delete(ctx context.Context, key string) error

	// Exists reports whether a key is present.
	Exists(ctx context.Context, key string) (bool, error)

	// Close shuts down the cache backend.
	Close() error

	// Name returns the cache provider name.
	Name() string
}

package cache

import (
	"errors"

	"github.com/calyxa/galerie/cache/types"
)

// Provider abstracts the cache backend.
type Provider = types.Provider

// ErrCacheMiss is returned when a key is absent.
var ErrCacheMiss = types.ErrCacheMiss

// IsCacheMiss reports whether err is a cache miss.
func IsCacheMiss(err error) bool {
	return errors.Is(err, types.ErrCacheMiss)
}

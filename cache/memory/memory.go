package memory

import (
	"context"
	"encoding/json"
	"time"

	"github.com/calyxa/galerie/cache/types"
	"github.com/dgraph-io/ristretto"
)

// Memory is an in-process ristretto-backed cache.
type Memory struct {
	client *ristretto.Cache
}

// Config tunes the underlying ristretto cache.
type Config struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
	Metrics     bool
}

// NewMemory creates a new memory cache provider.
func NewMemory(config Config) (*Memory, error) {
	client, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: config.NumCounters,
		MaxCost:     config.MaxCost,
		BufferItems: config.BufferItems,
		Metrics:     config.Metrics,
	})
	if err != nil {
		return nil, err
	}

	return &Memory{
		client: client,
	}, nil
}

// Set stores a value under key. Byte slices are costed by length.
func (m *Memory) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	size := int64(1)
	if data, ok := value.([]byte); ok {
		size = int64(len(data))
	}

	set := m.client.SetWithTTL(key, value, size, expiration)
	if set {
		m.client.Wait()
	}
	return nil
}

// Get loads the value under key into dest.
func (m *Memory) Get(ctx context.Context, key string, dest interface{}) error {
	value, found := m.client.Get(key)
	if !found {
		return types.ErrCacheMiss
	}

	switch dest := dest.(type) {
	case *[]byte:
		if data, ok := value.([]byte); ok {
			*dest = data
			return nil
		}
		jsonData, err := json.Marshal(value)
		if err != nil {
			return types.ErrCacheMiss
		}
		*dest = jsonData
		return nil
	default:
		data, err := json.Marshal(value)
		if err != nil {
			return types.ErrCacheMiss
		}
		return json.Unmarshal(data, dest)
	}
}

// Delete removes a key.
func (m *Memory) Delete(ctx context.Context, key string) error {
	m.client.Del(key)
	return nil
}

// Exists reports whether a key is present.
func (m *Memory) Exists(ctx context.Context, key string) (bool, error) {
	_, found := m.client.Get(key)
	return found, nil
}

// Close shuts down the cache.
func (m *Memory) Close() error {
	m.client.Close()
	return nil
}

// Name returns the cache provider name.
func (m *Memory) Name() string {
	return "memory"
}

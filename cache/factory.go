package cache

import (
	"fmt"
	"log"

	"github.com/calyxa/galerie/cache/memory"
	"github.com/calyxa/galerie/cache/redis"
	"github.com/calyxa/galerie/config"
)

// NewProvider creates the cache provider selected by the configuration.
// An unknown or empty cache type falls back to the in-process memory cache.
func NewProvider(cfg *config.Config) (Provider, error) {
	switch cfg.CacheType {
	case "redis":
		provider, err := redis.NewRedis(cfg.CacheRedisAddr, cfg.CacheRedisPassword, cfg.CacheRedisDB)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis cache: %w", err)
		}
		log.Printf("Cache provider initialized: redis (%s)", cfg.CacheRedisAddr)
		return provider, nil
	case "memory", "":
		maxCost := cfg.CacheMaxSizeMB * 1024 * 1024
		if maxCost <= 0 {
			maxCost = 256 * 1024 * 1024
		}
		provider, err := memory.NewMemory(memory.Config{
			NumCounters: 1000000,
			MaxCost:     maxCost,
			BufferItems: 64,
			Metrics:     true,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create memory cache: %w", err)
		}
		log.Println("Cache provider initialized: memory")
		return provider, nil
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cfg.CacheType)
	}
}

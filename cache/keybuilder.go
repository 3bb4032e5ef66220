package cache

import (
	"fmt"
	"strings"
)

// KeyBuilder assembles namespaced cache keys.
type KeyBuilder struct {
	prefix string
	sep    string
}

// NewKeyBuilder creates a key builder with the given namespace prefix.
func NewKeyBuilder(prefix string) *KeyBuilder {
	return &KeyBuilder{
		prefix: prefix,
		sep:    ":",
	}
}

// Build joins the parts under the prefix.
func (kb *KeyBuilder) Build(parts ...string) string {
	if len(parts) == 0 {
		return kb.prefix
	}
	return kb.prefix + kb.sep + strings.Join(parts, kb.sep)
}

// BuildID builds a key for a single identifier.
func (kb *KeyBuilder) BuildID(id interface{}) string {
	return fmt.Sprintf("%s%s%v", kb.prefix, kb.sep, id)
}

// Predefined key builders, one per cached entity.
var (
	// ArtworkMeta caches artwork metadata by identifier.
	ArtworkMeta = NewKeyBuilder("artwork_meta")

	// ArtworkData caches artwork binary payloads by identifier.
	ArtworkData = NewKeyBuilder("artwork_data")

	// ThumbnailData caches thumbnail payloads by identifier.
	ThumbnailData = NewKeyBuilder("thumbnail_data")

	// User caches user rows by ID.
	User = NewKeyBuilder("user")

	// StaticToken caches API token lookups by token hash.
	StaticToken = NewKeyBuilder("static_token")

	// Exhibition caches published exhibition payloads by ID.
	Exhibition = NewKeyBuilder("exhibition")
)

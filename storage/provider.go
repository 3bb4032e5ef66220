package storage

import (
	"context"
	"io"
)

// Provider abstracts binary artwork storage. All storage implementations
// must satisfy this interface.
type Provider interface {
	// SaveWithContext stores a file under identifier.
	SaveWithContext(ctx context.Context, identifier string, file io.Reader) error

	// GetWithContext retrieves a file by identifier.
	GetWithContext(ctx context.Context, identifier string) (io.ReadSeeker, error)

	// DeleteWithContext removes a file by identifier.
	DeleteWithContext(ctx context.Context, identifier string) error

	// Exists reports whether a file exists.
	Exists(ctx context.Context, identifier string) (bool, error)

	// Health checks the storage backend.
	Health(ctx context.Context) error

	// Name returns the storage name.
	Name() string
}

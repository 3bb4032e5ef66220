package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/studio-b12/gowebdav"
)

// WebDAVConfig configures the WebDAV storage backend.
type WebDAVConfig struct {
	URL      string
	Username string
	Password string
	RootPath string
}

// WebDAVStorage stores files on a WebDAV share.
type WebDAVStorage struct {
	client   *gowebdav.Client
	rootPath string
}

// NewWebDAVStorage creates a WebDAV storage provider and verifies the
// connection.
func NewWebDAVStorage(cfg WebDAVConfig) (*WebDAVStorage, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("webdav URL is required")
	}

	rootPath := strings.Trim(cfg.RootPath, "/")
	if rootPath != "" {
		rootPath = "/" + rootPath
	}

	client := gowebdav.NewClient(cfg.URL, cfg.Username, cfg.Password)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := testWebDAVConnection(ctx, client, rootPath); err != nil {
		return nil, fmt.Errorf("webdav connection test failed: %w", err)
	}

	if rootPath != "" {
		if err := client.MkdirAll(rootPath, 0755); err != nil {
			return nil, fmt.Errorf("failed to create webdav root '%s': %w", rootPath, err)
		}
	}

	return &WebDAVStorage{
		client:   client,
		rootPath: rootPath,
	}, nil
}

func testWebDAVConnection(ctx context.Context, client *gowebdav.Client, rootPath string) error {
	done := make(chan error, 1)
	go func() {
		_, err := client.ReadDir("/")
		done <- err
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

func (s *WebDAVStorage) fullPath(identifier string) string {
	if s.rootPath != "" {
		return s.rootPath + "/" + identifier
	}
	return "/" + identifier
}

// SaveWithContext stores a file on the share.
func (s *WebDAVStorage) SaveWithContext(ctx context.Context, identifier string, file io.Reader) error {
	if !IsValidIdentifier(identifier) {
		return fmt.Errorf("invalid file identifier: %s", identifier)
	}

	if err := s.client.WriteStream(s.fullPath(identifier), file, 0644); err != nil {
		return fmt.Errorf("failed to write '%s' to webdav: %w", identifier, err)
	}
	return nil
}

// GetWithContext retrieves a file from the share. The file is buffered in
// memory to satisfy io.ReadSeeker.
func (s *WebDAVStorage) GetWithContext(ctx context.Context, identifier string) (io.ReadSeeker, error) {
	if !IsValidIdentifier(identifier) {
		return nil, fmt.Errorf("invalid file identifier: %s", identifier)
	}

	data, err := s.client.Read(s.fullPath(identifier))
	if err != nil {
		return nil, fmt.Errorf("failed to read '%s' from webdav: %w", identifier, err)
	}
	return bytes.NewReader(data), nil
}

// DeleteWithContext removes a file from the share.
func (s *WebDAVStorage) DeleteWithContext(ctx context.Context, identifier string) error {
	if !IsValidIdentifier(identifier) {
		return fmt.Errorf("invalid file identifier: %s", identifier)
	}

	if err := s.client.Remove(s.fullPath(identifier)); err != nil {
		return fmt.Errorf("failed to delete '%s' from webdav: %w", identifier, err)
	}
	return nil
}

// Exists reports whether a file exists on the share.
func (s *WebDAVStorage) Exists(ctx context.Context, identifier string) (bool, error) {
	if !IsValidIdentifier(identifier) {
		return false, fmt.Errorf("invalid file identifier: %s", identifier)
	}

	_, err := s.client.Stat(s.fullPath(identifier))
	if err != nil {
		if os.IsNotExist(err) || strings.Contains(err.Error(), "404") {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Health checks share reachability.
func (s *WebDAVStorage) Health(ctx context.Context) error {
	_, err := s.client.ReadDir("/")
	return err
}

// Name returns the storage name.
func (s *WebDAVStorage) Name() string {
	return "webdav"
}

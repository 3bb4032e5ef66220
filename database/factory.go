package database

import (
	"fmt"
	"log"

	"github.com/calyxa/galerie/config"
	"github.com/calyxa/galerie/database/models"
)

// Factory creates and owns the database provider.
type Factory struct {
	provider Provider
}

// NewFactory creates a new database factory.
func NewFactory(cfg *config.Config) (*Factory, error) {
	log.Println("Initializing database provider...")

	provider, err := NewGormProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database provider: %w", err)
	}

	log.Printf("Database provider '%s' initialized successfully", provider.Name())

	return &Factory{
		provider: provider,
	}, nil
}

// GetProvider returns the database provider.
func (f *Factory) GetProvider() Provider {
	return f.provider
}

// Close closes the database connection.
func (f *Factory) Close() error {
	if f.provider != nil {
		return f.provider.Close()
	}
	return nil
}

// AutoMigrate migrates the full application schema.
func (f *Factory) AutoMigrate() error {
	if f.provider == nil {
		return fmt.Errorf("database provider not initialized")
	}

	modelsToMigrate := []interface{}{
		&models.User{},
		&models.Device{},
		&models.ApiToken{},
		&models.Artwork{},
		&models.Exhibition{},
		&models.Wall{},
		&models.ArtworkPlacement{},
		&models.Comment{},
		&models.Notification{},
	}

	log.Println("Running database auto migration...")
	if err := f.provider.AutoMigrate(modelsToMigrate...); err != nil {
		return fmt.Errorf("failed to auto migrate database: %w", err)
	}
	log.Println("Database auto migration completed.")
	return nil
}

// Ping checks the database connection.
func (f *Factory) Ping() error {
	if f.provider == nil {
		return fmt.Errorf("database provider not initialized")
	}
	return f.provider.Ping()
}

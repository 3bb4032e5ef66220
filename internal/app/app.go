package app

import (
	"fmt"
	"log"

	"github.com/calyxa/galerie/cache"
	"github.com/calyxa/galerie/config"
	"github.com/calyxa/galerie/database"
	"github.com/calyxa/galerie/database/repo/accounts"
	"github.com/calyxa/galerie/database/repo/artworks"
	"github.com/calyxa/galerie/database/repo/comments"
	"github.com/calyxa/galerie/database/repo/exhibitions"
	"github.com/calyxa/galerie/database/repo/keys"
	"github.com/calyxa/galerie/database/repo/notifications"
	"github.com/calyxa/galerie/storage"
)

// Container wires the application's shared dependencies and owns their
// lifecycle. Repositories are created once from the database factory;
// services receive the container and pull what they need.
type Container struct {
	config          *config.Config
	databaseFactory *database.Factory
	storageFactory  *storage.Factory
	cacheProvider   cache.Provider

	AccountsRepo      *accounts.Repository
	DevicesRepo       *accounts.DeviceRepository
	ArtworksRepo      *artworks.Repository
	ExhibitionsRepo   *exhibitions.Repository
	CommentsRepo      *comments.Repository
	NotificationsRepo *notifications.Repository
	KeysRepo          *keys.Repository
}

// NewContainer creates an uninitialized container.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config: cfg,
	}
}

// InitDatabase brings up only the database layer and the repositories.
// Used by commands that do not need storage or cache.
func (c *Container) InitDatabase() error {
	if err := c.initDatabaseFactory(); err != nil {
		return fmt.Errorf("failed to initialize database factory: %w", err)
	}
	c.initRepositories()
	return nil
}

// Init brings up the database, storage and cache layers and the repositories.
func (c *Container) Init() error {
	if err := c.initDatabaseFactory(); err != nil {
		return fmt.Errorf("failed to initialize database factory: %w", err)
	}
	c.initRepositories()

	if err := c.initStorageFactory(); err != nil {
		return fmt.Errorf("failed to initialize storage factory: %w", err)
	}
	if err := c.initCacheProvider(); err != nil {
		return fmt.Errorf("failed to initialize cache provider: %w", err)
	}
	return nil
}

func (c *Container) initDatabaseFactory() error {
	factory, err := database.NewFactory(c.config)
	if err != nil {
		return err
	}
	c.databaseFactory = factory
	return nil
}

func (c *Container) initStorageFactory() error {
	factory, err := storage.NewFactory(c.config)
	if err != nil {
		return err
	}
	c.storageFactory = factory
	return nil
}

func (c *Container) initCacheProvider() error {
	provider, err := cache.NewProvider(c.config)
	if err != nil {
		return err
	}
	c.cacheProvider = provider
	return nil
}

func (c *Container) initRepositories() {
	db := c.databaseFactory.GetProvider().DB()
	c.AccountsRepo = accounts.NewRepository(db)
	c.DevicesRepo = accounts.NewDeviceRepository(db)
	c.ArtworksRepo = artworks.NewRepository(db)
	c.ExhibitionsRepo = exhibitions.NewRepository(db)
	c.CommentsRepo = comments.NewRepository(db)
	c.NotificationsRepo = notifications.NewRepository(db)
	c.KeysRepo = keys.NewRepository(db)
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// GetDatabaseFactory returns the database factory.
func (c *Container) GetDatabaseFactory() *database.Factory {
	return c.databaseFactory
}

// GetDatabaseProvider returns the active database provider.
func (c *Container) GetDatabaseProvider() database.Provider {
	if c.databaseFactory == nil {
		return nil
	}
	return c.databaseFactory.GetProvider()
}

// GetStorageFactory returns the storage factory.
func (c *Container) GetStorageFactory() *storage.Factory {
	return c.storageFactory
}

// GetCacheProvider returns the cache provider.
func (c *Container) GetCacheProvider() cache.Provider {
	return c.cacheProvider
}

// Close releases the container's resources in reverse init order.
func (c *Container) Close() {
	if c.cacheProvider != nil {
		if err := c.cacheProvider.Close(); err != nil {
			log.Printf("Failed to close cache provider: %v", err)
		}
	}
	if c.databaseFactory != nil {
		if err := c.databaseFactory.Close(); err != nil {
			log.Printf("Failed to close database factory: %v", err)
		}
	}
}

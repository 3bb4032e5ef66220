package cmd

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/calyxa/galerie/api/core"
	"github.com/calyxa/galerie/config"
	"github.com/calyxa/galerie/database/repo/accounts"
	"github.com/calyxa/galerie/internal/app"
	"github.com/calyxa/galerie/internal/artworks"
	"github.com/calyxa/galerie/internal/auth"
	"github.com/calyxa/galerie/internal/comments"
	"github.com/calyxa/galerie/internal/dashboard"
	"github.com/calyxa/galerie/internal/exhibitions"
	"github.com/calyxa/galerie/internal/notify"
	"github.com/spf13/cobra"
)

const deviceCleanupInterval = 1 * time.Hour

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start API server",
	Run: func(cmd *cobra.Command, args []string) {
		RunServer()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func RunServer() {
	config.InitConfig()
	cfg := config.Get()

	container := app.NewContainer(cfg)
	if err := container.Init(); err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	initDatabase(container)

	jwtService, err := auth.NewJWTService(cfg, container.KeysRepo)
	if err != nil {
		log.Fatalf("Failed to initialize JWT: %v", err)
	}

	loginService := auth.NewLoginService(container.AccountsRepo, container.DevicesRepo, jwtService)
	keyService := auth.NewKeyService(container.KeysRepo, jwtService)

	hub := notify.NewHub()
	notifyService := notify.NewService(container.NotificationsRepo, hub)

	artworkService := artworks.NewService(
		container.ArtworksRepo,
		container.GetStorageFactory(),
		container.GetCacheProvider(),
		notifyService,
		cfg,
	)
	exhibitionService := exhibitions.NewService(container.ExhibitionsRepo, container.ArtworksRepo, notifyService)
	commentService := comments.NewService(container.CommentsRepo, artworkService, notifyService)
	dashboardService := dashboard.NewService(
		container.AccountsRepo,
		container.ArtworksRepo,
		container.ExhibitionsRepo,
		hub,
		container.GetCacheProvider(),
	)

	deps := &core.ServerDependencies{
		DatabaseProvider: container.GetDatabaseProvider(),
		StorageFactory:   container.GetStorageFactory(),
		CacheProvider:    container.GetCacheProvider(),

		AccountsRepo: container.AccountsRepo,

		JWTService:        jwtService,
		LoginService:      loginService,
		KeyService:        keyService,
		ArtworkService:    artworkService,
		ExhibitionService: exhibitionService,
		CommentService:    commentService,
		NotifyService:     notifyService,
		DashboardService:  dashboardService,
	}

	server, cleanup := core.StartServer(deps)
	go func() {
		log.Printf("Server started on %s", cfg.Addr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Expired refresh token sessions are purged in the background.
	stopDeviceCleanup := make(chan struct{})
	go startDeviceCleanup(container.DevicesRepo, stopDeviceCleanup)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if cleanup != nil {
		cleanup()
		log.Println("Cleanup tasks finished.")
	}

	close(stopDeviceCleanup)

	container.Close()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited successfully")
}

// initDatabase runs the schema migration and seeds the admin account.
func initDatabase(container *app.Container) {
	factory := container.GetDatabaseFactory()
	log.Printf("Initializing database, database type: %s", factory.GetProvider().Name())

	if err := factory.AutoMigrate(); err != nil {
		log.Fatalf("Failed to auto migrate database: %v", err)
	}

	if password, err := container.AccountsRepo.CreateDefaultAdminUser(); err != nil {
		log.Printf("Failed to create default admin user: %v", err)
	} else if password != "" {
		log.Printf("Created default admin user 'admin' with password: %s", password)
		log.Println("IMPORTANT: change the default admin password immediately")
	}

	log.Println("Database initialized successfully")
}

func startDeviceCleanup(devices *accounts.DeviceRepository, stop <-chan struct{}) {
	ticker := time.NewTicker(deviceCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if deleted, err := devices.DeleteExpiredDevices(); err != nil {
				log.Printf("Failed to delete expired login devices: %v", err)
			} else if deleted > 0 {
				log.Printf("Deleted %d expired login devices", deleted)
			}
		case <-stop:
			return
		}
	}
}

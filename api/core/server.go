package core

import (
	"net/http"
	"time"

	"github.com/calyxa/galerie/api/middleware"
	"github.com/calyxa/galerie/cache"
	"github.com/calyxa/galerie/config"
	"github.com/calyxa/galerie/database"
	"github.com/calyxa/galerie/database/repo/accounts"
	"github.com/calyxa/galerie/internal/artworks"
	"github.com/calyxa/galerie/internal/auth"
	"github.com/calyxa/galerie/internal/comments"
	"github.com/calyxa/galerie/internal/dashboard"
	"github.com/calyxa/galerie/internal/exhibitions"
	"github.com/calyxa/galerie/internal/notify"
	"github.com/calyxa/galerie/storage"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var startTime = time.Now()

// ServerDependencies carries everything the router needs.
type ServerDependencies struct {
	DatabaseProvider database.Provider
	StorageFactory   *storage.Factory
	CacheProvider    cache.Provider

	AccountsRepo *accounts.Repository

	JWTService        *auth.JWTService
	LoginService      *auth.LoginService
	KeyService        *auth.KeyService
	ArtworkService    *artworks.Service
	ExhibitionService *exhibitions.Service
	CommentService    *comments.Service
	NotifyService     *notify.Service
	DashboardService  *dashboard.Service
}

func setupRouter(deps *ServerDependencies) (*gin.Engine, func()) {
	cfg := config.Get()
	router := gin.New()

	// gin request logging only in development builds
	if config.CommitHash == "n/a" {
		gin.SetMode(gin.ReleaseMode)
		router.Use(gin.Logger())
	}
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.BaseURL()},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.SetTrustedProxies(nil)

	router.MaxMultipartMemory = int64(cfg.UploadMaxSizeMB) << 20

	concurrencyLimiter := middleware.NewConcurrencyLimiter(100)
	router.Use(concurrencyLimiter.Middleware())

	// Body limit sized for batch uploads, 100MB floor.
	requestBodyLimit := int64(cfg.UploadMaxBatchTotalMB) * 2 << 20
	if requestBodyLimit < 100<<20 {
		requestBodyLimit = 100 << 20
	}
	router.Use(middleware.MaxBytesReader(requestBodyLimit))

	router.Use(middleware.RequestID())
	router.Use(middleware.Metrics())

	authRateLimiter := middleware.NewIPRateLimiter(cfg.RateLimitAuthRPS, cfg.RateLimitAuthBurst, cfg.RateLimitExpireTime)
	apiRateLimiter := middleware.NewIPRateLimiter(cfg.RateLimitApiRPS, cfg.RateLimitApiBurst, cfg.RateLimitExpireTime)
	artworkRateLimiter := middleware.NewIPRateLimiter(cfg.RateLimitArtworkRPS, cfg.RateLimitArtworkBurst, cfg.RateLimitExpireTime)
	cleanup := func() {
		authRateLimiter.StopCleanup()
		apiRateLimiter.StopCleanup()
		artworkRateLimiter.StopCleanup()
	}

	router.GET("/health", func(context *gin.Context) {
		health := gin.H{
			"status":  "ok",
			"uptime":  time.Since(startTime).Round(time.Second).String(),
			"version": config.Version,
			"checks": gin.H{
				"database": checkDatabaseHealth(deps.DatabaseProvider),
				"cache":    checkCacheHealth(deps.CacheProvider),
				"storage":  checkStorageHealth(deps.StorageFactory),
			},
		}
		httpStatus := http.StatusOK
		for _, checkResult := range health["checks"].(gin.H) {
			if result, ok := checkResult.(string); ok && result != "ok" {
				httpStatus = http.StatusServiceUnavailable
				break
			}
		}
		context.JSON(httpStatus, health)
	})

	registerRoutes(router, deps, &routeLimiters{
		auth:    authRateLimiter,
		api:     apiRateLimiter,
		artwork: artworkRateLimiter,
	})

	return router, cleanup
}

// StartServer builds the http.Server; the returned func stops the rate
// limiter cleanup goroutines.
func StartServer(deps *ServerDependencies) (*http.Server, func()) {
	cfg := config.Get()
	router, clean := setupRouter(deps)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}

	return srv, clean
}

package core

import (
	"net/http"

	"github.com/calyxa/galerie/api/common"
	handlerArtworks "github.com/calyxa/galerie/api/handler/artworks"
	handlerAuth "github.com/calyxa/galerie/api/handler/auth"
	handlerComments "github.com/calyxa/galerie/api/handler/comments"
	handlerDashboard "github.com/calyxa/galerie/api/handler/dashboard"
	handlerExhibitions "github.com/calyxa/galerie/api/handler/exhibitions"
	"github.com/calyxa/galerie/api/handler/key"
	handlerNotifications "github.com/calyxa/galerie/api/handler/notifications"
	handlerUsers "github.com/calyxa/galerie/api/handler/users"
	"github.com/calyxa/galerie/api/middleware"
	"github.com/calyxa/galerie/config"
	"github.com/calyxa/galerie/database/models"
	"github.com/gin-gonic/gin"
)

type routeLimiters struct {
	auth    *middleware.IPRateLimiter
	api     *middleware.IPRateLimiter
	artwork *middleware.IPRateLimiter
}

func registerRoutes(router *gin.Engine, deps *ServerDependencies, limiters *routeLimiters) {
	cfg := config.Get()

	authHandler := handlerAuth.NewHandler(deps.LoginService, cfg)
	userHandler := handlerUsers.NewHandler(deps.AccountsRepo, deps.LoginService)
	artworkHandler := handlerArtworks.NewHandler(deps.ArtworkService, cfg)
	exhibitionHandler := handlerExhibitions.NewHandler(deps.ExhibitionService, cfg)
	commentHandler := handlerComments.NewHandler(deps.CommentService)
	notificationHandler := handlerNotifications.NewHandler(deps.NotifyService)
	keyHandler := key.NewHandler(deps.KeyService)
	dashboardHandler := handlerDashboard.NewHandler(deps.DashboardService)

	router.GET("/version", func(context *gin.Context) {
		common.RespondSuccess(context, gin.H{
			"version": config.Version,
			"commit":  config.CommitHash,
		})
	})
	router.GET("/metrics", func(context *gin.Context) {
		context.JSON(http.StatusOK, middleware.GetMetrics())
	})

	// Anonymous artwork access, approved pieces only.
	publicGroup := router.Group("/artworks")
	publicGroup.Use(limiters.artwork.Middleware())
	{
		publicGroup.GET("/:identifier", artworkHandler.GetData) // GET /artworks/{piece}
	}
	thumbnailGroup := router.Group("/thumbnails")
	thumbnailGroup.Use(limiters.artwork.Middleware())
	{
		thumbnailGroup.GET("/:identifier", artworkHandler.GetThumbnail) // GET /thumbnails/{piece}
	}

	apiGroup := router.Group("/api")
	apiGroup.Use(func(context *gin.Context) { // API responses are never cached
		context.Header("Cache-Control", "no-store")
		context.Next()
	})
	{
		authGroup := apiGroup.Group("/auth")
		authGroup.Use(limiters.auth.Middleware())
		{
			authGroup.POST("/register", authHandler.Register) // POST /api/auth/register
			authGroup.POST("/login", authHandler.Login)       // POST /api/auth/login
			authGroup.POST("/refresh", authHandler.Refresh)   // POST /api/auth/refresh
			authGroup.POST("/logout", authHandler.Logout)     // POST /api/auth/logout
		}

		// The websocket feed reads the token from the query string, so the
		// shim has to run before the auth middleware.
		streamGroup := apiGroup.Group("/v1/notifications")
		streamGroup.Use(middleware.WebsocketTokenShim())
		streamGroup.Use(middleware.CombinedAuth(deps.JWTService))
		streamGroup.Use(middleware.Authorize("jwt"))
		{
			streamGroup.GET("/stream", notificationHandler.Stream) // GET /api/v1/notifications/stream
		}

		v1 := apiGroup.Group("/v1")
		v1.Use(limiters.api.Middleware())
		v1.Use(middleware.CombinedAuth(deps.JWTService))
		{
			// artworks
			artworksGroup := v1.Group("/artworks")
			artworksGroup.Use(middleware.Authorize("jwt", "static_token"))
			{
				artworksGroup.POST("/upload", artworkHandler.Upload)   // POST /api/v1/artworks/upload (single file)
				artworksGroup.POST("/uploads", artworkHandler.Uploads) // POST /api/v1/artworks/uploads (multiple files)

				artworksGroup.POST("", artworkHandler.List)                              // POST /api/v1/artworks
				artworksGroup.GET("/:identifier", artworkHandler.Info)                   // GET /api/v1/artworks/{piece}
				artworksGroup.GET("/:identifier/data", artworkHandler.GetData)           // GET /api/v1/artworks/{piece}/data
				artworksGroup.GET("/:identifier/thumbnail", artworkHandler.GetThumbnail) // GET /api/v1/artworks/{piece}/thumbnail
				artworksGroup.PATCH("/:identifier", artworkHandler.Update)               // PATCH /api/v1/artworks/{piece}
				artworksGroup.DELETE("/:identifier", artworkHandler.Delete)              // DELETE /api/v1/artworks/{piece}

				artworksGroup.POST("/:identifier/comments", commentHandler.Create) // POST /api/v1/artworks/{piece}/comments
				artworksGroup.GET("/:identifier/comments", commentHandler.List)    // GET /api/v1/artworks/{piece}/comments

				moderationGroup := artworksGroup.Group("")
				moderationGroup.Use(middleware.RequireRole(models.RoleCurator, models.RoleAdmin))
				{
					moderationGroup.POST("/:identifier/approve", artworkHandler.Approve) // POST /api/v1/artworks/{piece}/approve
					moderationGroup.POST("/:identifier/reject", artworkHandler.Reject)   // POST /api/v1/artworks/{piece}/reject
				}
			}

			// comments
			commentsGroup := v1.Group("/comments")
			commentsGroup.Use(middleware.Authorize("jwt"))
			{
				commentsGroup.DELETE("/:id", commentHandler.Delete) // DELETE /api/v1/comments/{id}
			}

			// exhibitions
			exhibitionsGroup := v1.Group("/exhibitions")
			exhibitionsGroup.Use(middleware.Authorize("jwt"))
			{
				exhibitionsGroup.GET("", exhibitionHandler.List)                // GET /api/v1/exhibitions
				exhibitionsGroup.GET("/:id", exhibitionHandler.Get)             // GET /api/v1/exhibitions/{id}
				exhibitionsGroup.GET("/:id/walls", exhibitionHandler.ListWalls) // GET /api/v1/exhibitions/{id}/walls

				curatorGroup := exhibitionsGroup.Group("")
				curatorGroup.Use(middleware.RequireRole(models.RoleCurator, models.RoleAdmin))
				{
					curatorGroup.POST("", exhibitionHandler.Create)                 // POST /api/v1/exhibitions
					curatorGroup.PUT("/:id", exhibitionHandler.Update)              // PUT /api/v1/exhibitions/{id}
					curatorGroup.POST("/:id/publish", exhibitionHandler.Publish)    // POST /api/v1/exhibitions/{id}/publish
					curatorGroup.POST("/:id/archive", exhibitionHandler.Archive)    // POST /api/v1/exhibitions/{id}/archive
					curatorGroup.DELETE("/:id", exhibitionHandler.Delete)           // DELETE /api/v1/exhibitions/{id}
					curatorGroup.GET("/:id/stockpile", exhibitionHandler.Stockpile) // GET /api/v1/exhibitions/{id}/stockpile

					curatorGroup.POST("/:id/walls", exhibitionHandler.AddWall)              // POST /api/v1/exhibitions/{id}/walls
					curatorGroup.PUT("/:id/walls/:wallId", exhibitionHandler.UpdateWall)    // PUT /api/v1/exhibitions/{id}/walls/{wall}
					curatorGroup.DELETE("/:id/walls/:wallId", exhibitionHandler.DeleteWall) // DELETE /api/v1/exhibitions/{id}/walls/{wall}

					curatorGroup.PUT("/:id/walls/:wallId/slots/:slot", exhibitionHandler.PlaceArtwork) // PUT /api/v1/exhibitions/{id}/walls/{wall}/slots/{slot}
					curatorGroup.DELETE("/:id/walls/:wallId/slots/:slot", exhibitionHandler.ClearSlot) // DELETE /api/v1/exhibitions/{id}/walls/{wall}/slots/{slot}
				}
			}

			// notifications
			notificationsGroup := v1.Group("/notifications")
			notificationsGroup.Use(middleware.Authorize("jwt"))
			{
				notificationsGroup.GET("", notificationHandler.List)                     // GET /api/v1/notifications
				notificationsGroup.GET("/unread/count", notificationHandler.UnreadCount) // GET /api/v1/notifications/unread/count
				notificationsGroup.POST("/:id/read", notificationHandler.MarkRead)       // POST /api/v1/notifications/{id}/read
				notificationsGroup.POST("/read-all", notificationHandler.MarkAllRead)    // POST /api/v1/notifications/read-all
			}

			// static token
			apiTokenGroup := v1.Group("/token")
			apiTokenGroup.Use(middleware.Authorize("jwt"))
			{
				apiTokenGroup.POST("", keyHandler.CreateStaticToken) // POST /api/v1/token
				apiTokenGroup.GET("", keyHandler.GetTokens)          // GET /api/v1/token

				apiTokenGroup.POST("/:id/disable", keyHandler.DisableToken) // POST /api/v1/token/{id}/disable
				apiTokenGroup.POST("/:id/enable", keyHandler.EnableToken)   // POST /api/v1/token/{id}/enable
				apiTokenGroup.DELETE("/:id", keyHandler.RevokeToken)        // DELETE /api/v1/token/{id}
			}

			// users
			usersGroup := v1.Group("/users")
			usersGroup.Use(middleware.Authorize("jwt"))
			{
				usersGroup.GET("/me", userHandler.Me)                    // GET /api/v1/users/me
				usersGroup.PATCH("/me", userHandler.UpdateProfile)       // PATCH /api/v1/users/me
				usersGroup.POST("/password", userHandler.ChangePassword) // POST /api/v1/users/password

				adminUsersGroup := usersGroup.Group("")
				adminUsersGroup.Use(middleware.RequireRole(models.RoleAdmin))
				{
					adminUsersGroup.GET("", userHandler.List)             // GET /api/v1/users
					adminUsersGroup.PUT("/:id/role", userHandler.SetRole) // PUT /api/v1/users/{id}/role
					adminUsersGroup.DELETE("/:id", userHandler.Delete)    // DELETE /api/v1/users/{id}
				}
			}

			// admin dashboard
			dashboardGroup := v1.Group("/dashboard")
			dashboardGroup.Use(middleware.Authorize("jwt"))
			dashboardGroup.Use(middleware.RequireRole(models.RoleAdmin))
			{
				dashboardGroup.GET("/stats", dashboardHandler.GetStats)              // GET /api/v1/dashboard/stats
				dashboardGroup.POST("/stats/refresh", dashboardHandler.RefreshStats) // POST /api/v1/dashboard/stats/refresh
			}
		}
	}
}

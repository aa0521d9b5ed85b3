package http

import (
	"time"

	"github.com/gin-gonic/gin"

	appsvc "accel-catalog/internal/app"
	"accel-catalog/internal/bootstrap"
	"accel-catalog/internal/cache"
	"accel-catalog/internal/platform/rabbitmq"
	"accel-catalog/internal/store"
	"accel-catalog/internal/transport/http/handler"
	"accel-catalog/internal/transport/http/middleware"
)

// NewRouter wires every handler onto a gin engine from the bootstrapped app.
func NewRouter(app *bootstrap.App) *gin.Engine {
	cfg := app.Config
	gin.SetMode(cfg.App.GinMode)

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	router.Static("/presentations", cfg.PresentationsDir())

	health := handler.NewHealthHandler(cfg.App.Name, app.StartedAt)
	router.GET("/healthz", health.Health)

	accelerators := store.NewCatalog(app.Docs, "accelerators", nil)
	slidedecks := store.NewCatalog(app.Docs, "slidedecks", store.SlideDeckDefaults)
	videos := store.NewCatalog(app.Docs, "videos", nil)
	preferences := store.NewPreferences(app.Docs)

	var contentCache appsvc.ContentCache
	if app.Redis != nil {
		ttl := time.Duration(cfg.Redis.ContentTTLSeconds) * time.Second
		contentCache = cache.NewContentCache(app.Redis, ttl)
	}
	var publisher appsvc.CatalogEventPublisher
	if app.MQConn != nil {
		publisher = rabbitmq.NewEventPublisher(app.MQConn, cfg.RabbitMQ.EventQueue)
	}

	uploads := appsvc.NewUploadService(
		slidedecks, app.Extractor, publisher, contentCache,
		cfg.Data.PublicDir, cfg.SlidesDir(),
	)

	acceleratorHandler := handler.NewCatalogHandler(accelerators, "Accelerator").WithPreferences(preferences)
	slidedeckHandler := handler.NewCatalogHandler(slidedecks, "Slide deck")
	videoHandler := handler.NewCatalogHandler(videos, "Video")
	preferencesHandler := handler.NewPreferencesHandler(preferences)
	uploadHandler := handler.NewUploadHandler(uploads, cfg.PresentationsDir(), cfg.MaxUploadBytes())

	api := router.Group("/api")
	if cfg.Auth.Enabled {
		api.Use(middleware.AuthJWT(cfg.Auth.JWTSecret))
	}

	registerCatalogRoutes(api.Group("/accelerators"), acceleratorHandler)
	registerCatalogRoutes(api.Group("/videos"), videoHandler)

	decks := api.Group("/slidedecks")
	{
		decks.POST("/upload", uploadHandler.Upload)
		decks.GET("/search", uploadHandler.Search)
		decks.POST("/:id/extract", uploadHandler.Extract)
		decks.GET("/:id/content", uploadHandler.Content)
	}
	registerCatalogRoutes(decks, slidedeckHandler)

	prefs := api.Group("/user-preferences")
	{
		prefs.GET("/:email", preferencesHandler.Get)
		prefs.PUT("/:email", preferencesHandler.Merge)
		prefs.PATCH("/:email", preferencesHandler.Merge)
		prefs.POST("/:email/playlists", preferencesHandler.CreatePlaylist)
		prefs.PUT("/:email/playlists/:playlistId", preferencesHandler.UpdatePlaylist)
		prefs.DELETE("/:email/playlists/:playlistId", preferencesHandler.DeletePlaylist)
		prefs.POST("/:email/playlists/:playlistId/toggle/:acceleratorId", preferencesHandler.ToggleAccelerator)
		prefs.PUT("/:email/hidden", preferencesHandler.SetHidden)
		prefs.PUT("/:email/order", preferencesHandler.SetOrder)
	}

	return router
}

func registerCatalogRoutes(group *gin.RouterGroup, h *handler.CatalogHandler) {
	group.GET("", h.List)
	group.GET("/:id", h.Get)
	group.POST("", h.Create)
	group.PUT("/:id", h.Update)
	group.DELETE("/:id", h.Delete)
}

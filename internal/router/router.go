package router

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-prep/internal/config"
	"github.com/stemsi/exstem-prep/internal/handler"
	"github.com/stemsi/exstem-prep/internal/middleware"
	"github.com/stemsi/exstem-prep/internal/response"
)

// catalogMaxAge is the Cache-Control max-age for catalog routes. The catalog
// is synthesized once per process.
const catalogMaxAge = 300

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Catalog *handler.CatalogHandler
	Session *handler.SessionHandler
	History *handler.HistoryHandler
	WS      *handler.WSHandler
	System  *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// ctx bounds background middleware goroutines.
func SetupRouter(ctx context.Context, handlers *Handlers, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.RequestLogger(log))

	// Health check.
	router.GET("/health", handlers.System.Health)

	limiter := middleware.NewRateLimiter(ctx, cfg.RateLimitPerMinute, time.Minute)
	api := router.Group("/api/v1")
	api.Use(limiter.Middleware())

	// ─── 1. Catalog (immutable, cacheable) ─────────────────────────────
	modules := api.Group("/modules")
	modules.Use(middleware.CacheControl(catalogMaxAge))
	{
		modules.GET("", handlers.Catalog.ListModules)
		modules.GET("/:module_id", handlers.Catalog.GetModule)
	}

	// ─── 2. Session (live state, never cached) ─────────────────────────
	sess := api.Group("/session")
	sess.Use(middleware.NoStore())
	{
		sess.GET("", handlers.Session.GetSession)
		sess.GET("/performance", handlers.Session.GetPerformance)
		sess.POST("/start", handlers.Session.StartSession)
		sess.POST("/resume", handlers.Session.ResumeSession)
		sess.POST("/answers", handlers.Session.RecordAnswer)
		sess.POST("/flags", handlers.Session.ToggleFlag)
		sess.POST("/navigate", handlers.Session.Navigate)
		sess.POST("/signals", handlers.Session.ReportSignal)
		sess.POST("/submit", handlers.Session.Submit)
		sess.POST("/reset", handlers.Session.Reset)
		sess.POST("/exit", handlers.Session.Exit)
	}

	// ─── 3. History ────────────────────────────────────────────────────
	history := api.Group("/history")
	history.Use(middleware.NoStore())
	{
		history.GET("", handlers.History.ListHistory)
		history.GET("/archive", handlers.History.ListArchive)
	}

	// ─── 4. System ─────────────────────────────────────────────────────
	api.GET("/system/metrics", handlers.System.SystemMetricsSSE)

	// ─── 5. WebSocket ──────────────────────────────────────────────────
	ws := router.Group("/ws/v1")
	{
		ws.GET("/session/stream", handlers.WS.SessionStream)
	}

	return router
}

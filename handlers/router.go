package handlers

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"portfolio/api/config"
	"portfolio/api/middleware"
	"portfolio/api/realtime"
	"portfolio/api/store"
	"portfolio/api/tracking"
)

type Dependencies struct {
	Config   *config.Config
	Content  store.ContentStore
	Tracker  *tracking.Tracker
	Realtime *realtime.Server

	// Analytics is nil unless ClickHouse export is configured.
	Analytics ActivityAnalytics
	Logger    *slog.Logger
}

// NewRouter wires middleware and every route of the API.
func NewRouter(deps Dependencies) *gin.Engine {
	cfg := deps.Config
	logger := deps.Logger

	r := gin.New()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORSMiddleware(cfg.CORSOrigins))
	r.Use(middleware.VisitorTracking(deps.Tracker, cfg.VisitorCookieSecure, logger))

	contentHandlers := NewContentHandlers(deps.Content, deps.Tracker, logger)
	logHandlers := NewLogHandlers(deps.Tracker, logger)
	visitorHandlers := NewVisitorHandlers(deps.Tracker, logger)
	realtimeHandlers := NewRealtimeHandlers(deps.Realtime)
	healthHandlers := &HealthHandlers{Environment: cfg.Environment}

	api := r.Group("/api")
	{
		api.GET("/health", healthHandlers.Health)

		content := api.Group("/")
		content.Use(middleware.NoCache())
		{
			content.GET("/profile", contentHandlers.GetProfile)
			content.GET("/skills", contentHandlers.GetSkills)
			content.GET("/experience", contentHandlers.GetExperience)
			content.GET("/projects", contentHandlers.GetProjects)
			content.GET("/metrics", contentHandlers.GetMetrics)
		}

		api.GET("/logs", logHandlers.GetLogs)

		visitors := api.Group("/visitors")
		{
			visitors.GET("/active", visitorHandlers.GetActive)
			visitors.GET("/stats", visitorHandlers.GetStats)
			visitors.POST("/activity", visitorHandlers.UpdateActivity)
			visitors.POST("/end-session", visitorHandlers.EndSession)
		}

		api.GET("/events", realtimeHandlers.Events)
		api.GET("/realtime/stats", realtimeHandlers.Stats)

		if deps.Analytics != nil {
			analyticsHandlers := NewAnalyticsHandlers(deps.Analytics, logger)
			analytics := api.Group("/analytics")
			{
				analytics.GET("/activity-counts", analyticsHandlers.GetActivityCounts)
				analytics.GET("/unique-visitors", analyticsHandlers.GetUniqueVisitors)
				analytics.GET("/top-pages", analyticsHandlers.GetTopPages)
			}
		}
	}
	r.GET("/ws", realtimeHandlers.WebSocket)

	r.NoRoute(noRoute(cfg.StaticDir))

	return r
}

// noRoute serves the built frontend when staticDir is set, falling back to
// index.html for client-side routes. API paths always get a JSON 404.
func noRoute(staticDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := c.Request.URL.Path
		if staticDir == "" || c.Request.Method != http.MethodGet || strings.HasPrefix(p, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
			return
		}

		file := filepath.Join(staticDir, filepath.FromSlash(filepath.Clean("/"+p)))
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			c.File(file)
			return
		}
		c.File(filepath.Join(staticDir, "index.html"))
	}
}

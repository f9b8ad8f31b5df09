package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/journal/internal/auth"
	"github.com/mrlokans/journal/internal/config"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Optional dependencies left nil in cfg simply leave their routes out.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())
	if cfg.AuthConfig.SecureCookies {
		router.Use(auth.StrictTransportSecurityMiddleware())
	}

	authEnabled := cfg.AuthConfig.Mode == config.AuthModeLocal

	// CSRF must run before session so that session context is preserved
	if authEnabled && len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.AuthConfig.SecureCookies))
	}

	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.GinMiddleware())
	}

	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	} else {
		// No auth - inject default user ID
		router.Use(func(c *gin.Context) {
			c.Set(auth.ContextKeyUserID, auth.DefaultUserID)
			c.Set(auth.ContextKeyAuthType, auth.AuthTypeNone)
			c.Next()
		})
	}

	health := NewHealthController(cfg.Health, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)

	if cfg.AuthController != nil {
		cfg.AuthController.RegisterRoutes(router)
	}

	api := router.Group("/api")

	if cfg.Entries != nil {
		entries := NewEntriesController(cfg.Entries, cfg.EntryEvents)
		api.GET("/entries", entries.ListEntries)
		api.GET("/entries/:date", entries.GetEntry)
		api.PUT("/entries/:date", entries.SaveEntry)
		api.DELETE("/entries/:date", entries.DeleteEntry)
	}

	if cfg.Stats != nil {
		stats := NewStatsController(cfg.Stats)
		api.GET("/stats", stats.GetStats)
		api.GET("/reference", stats.GetReference)
	}

	if cfg.Exporter != nil || cfg.TaskQueue != nil {
		export := NewExportController(cfg.Exporter, cfg.ExportEvents, cfg.TaskQueue, cfg.ExportSchedule, cfg.ExportDir)
		api.POST("/export", export.Export)
		api.GET("/export/schedule", export.GetSchedule)
	}

	if cfg.TaskQueue != nil {
		tasksController := NewTasksController(cfg.TaskQueue)
		api.GET("/tasks/types", tasksController.ListTaskTypes)
		api.GET("/tasks/:id", tasksController.GetTaskStatus)
	}

	if cfg.AuditEvents != nil {
		auditController := NewAuditController(cfg.AuditEvents)
		api.GET("/audit", auditController.GetAuditEvents)
	}

	return router
}

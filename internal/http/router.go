package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/donorbase/internal/auth"
	"github.com/mrlokans/donorbase/internal/entities"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.Use(auth.SecurityHeadersMiddleware())

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.AuthConfig.SecureCookies, cfg.AuthService))
	}
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	} else {
		// No auth - inject the default actor
		router.Use(func(c *gin.Context) {
			c.Set(auth.ContextKeyAdminID, auth.DefaultActorID)
			c.Set(auth.ContextKeyAuthType, auth.AuthTypeNone)
			c.Next()
		})
	}

	// Role middleware for mutating endpoints; viewers stay read-only.
	requireAdmin := func() gin.HandlerFunc {
		if cfg.AuthMiddleware != nil {
			return cfg.AuthMiddleware.RequireRole(entities.AdminRoleAdmin)
		}
		return func(c *gin.Context) { c.Next() }
	}()

	// Auth routes
	if cfg.AuthService != nil && cfg.AuthService.IsAuthEnabled() {
		authController := auth.NewController(cfg.AuthService, cfg.SessionManager, cfg.AuditService, cfg.AuthConfig)
		authController.RegisterRoutes(router)
	}

	health := NewHealthController(cfg.Database, cfg.Version)
	importsController := NewImportsController(cfg.Pipeline, cfg.RunRepo, cfg.MaxFileSizeMB)
	donorsController := NewDonorsController(cfg.DonorRepo, cfg.DonationRepo)
	donationsController := NewDonationsController(cfg.DonorRepo, cfg.DonationRepo, cfg.AuditService, cfg.DefaultCurrency)
	auditController := NewAuditController(cfg.AuditService)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Import endpoints
	router.POST("/api/imports", requireAdmin, importsController.Upload)
	router.GET("/api/imports", importsController.ListRuns)
	router.GET("/api/imports/templates", importsController.Templates)
	router.GET("/api/imports/:id", importsController.GetRun)

	// Donor endpoints
	router.GET("/api/donors", donorsController.List)
	router.GET("/api/donors/top", donorsController.Top)
	router.GET("/api/donors/stats", donorsController.Stats)
	router.GET("/api/donors/:id", donorsController.Get)
	router.GET("/api/donors/:id/donations", donorsController.Donations)

	// Donation endpoints
	router.POST("/api/donations", requireAdmin, donationsController.Create)
	router.GET("/api/donations", donationsController.List)
	router.DELETE("/api/donations/:id", requireAdmin, donationsController.Delete)

	// Audit trail
	router.GET("/api/audit", auditController.List)

	// Task management endpoints
	if cfg.TaskClient != nil {
		tasksController := NewTasksController(cfg.TaskClient, cfg.AuditRetentionDays)
		router.GET("/api/tasks/types", tasksController.ListTaskTypes)
		router.GET("/api/tasks/:id", tasksController.GetTaskStatus)
		router.POST("/api/tasks/:type/run", requireAdmin, tasksController.RunTask)
	}

	return router
}

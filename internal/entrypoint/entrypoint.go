// Package entrypoint wires the application together and runs the HTTP server.
package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/donorbase/internal/audit"
	"github.com/mrlokans/donorbase/internal/auth"
	"github.com/mrlokans/donorbase/internal/config"
	"github.com/mrlokans/donorbase/internal/database"
	"github.com/mrlokans/donorbase/internal/database/admins"
	auditevents "github.com/mrlokans/donorbase/internal/database/audit"
	"github.com/mrlokans/donorbase/internal/database/donations"
	"github.com/mrlokans/donorbase/internal/database/donors"
	"github.com/mrlokans/donorbase/internal/database/imports"
	http_controllers "github.com/mrlokans/donorbase/internal/http"
	"github.com/mrlokans/donorbase/internal/importer"
	"github.com/mrlokans/donorbase/internal/scheduler"
	"github.com/mrlokans/donorbase/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until an interrupt or termination signal
// arrives, then shuts down gracefully within the configured timeout.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Shutdown callback first (e.g., to stop the task queue)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// Run wires all dependencies together and starts serving.
func Run(cfg *config.Config, version string) {
	log.Printf("Starting Donorbase v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	// Repositories
	donorRepo := donors.NewRepository(db.DB)
	donationRepo := donations.NewRepository(db.DB)
	runRepo := imports.NewRepository(db.DB)
	adminRepo := admins.NewRepository(db.DB)
	auditService := audit.NewService(auditevents.NewRepository(db.DB))

	// Import pipeline
	pipeline := importer.NewPipeline(donorRepo, donationRepo, runRepo, auditService)
	pipeline.SetDefaultCurrency(cfg.Import.DefaultCurrency)

	// Task queue
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:           cfg.Tasks.Workers,
			ReleaseAfter:      cfg.Tasks.ReleaseAfter,
			CleanupInterval:   cfg.Tasks.CleanupInterval,
			RetentionDuration: cfg.Tasks.RetentionDuration,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewRefreshDonorStatusesQueue(donorRepo),
			tasks.NewCleanupAuditEventsQueue(auditService),
			tasks.NewCleanupImportRunsQueue(runRepo),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	// Nightly maintenance scheduler
	var statusScheduler *scheduler.StatusRefreshScheduler
	if cfg.StatusRefresh.Enabled && taskClient != nil {
		statusScheduler = scheduler.NewStatusRefreshScheduler(
			taskClient, cfg.StatusRefresh.Schedule, cfg.Audit.RetentionDays)
		if err := statusScheduler.Start(context.Background()); err != nil {
			log.Fatalf("Failed to start status refresh scheduler: %v", err)
		}
	}

	// Authentication
	var authService *auth.Service
	var authMiddleware *auth.Middleware
	var sessionManager *auth.SessionManager
	var csrfSecret []byte

	if cfg.Auth.Mode == config.AuthModeLocal {
		log.Printf("Authentication mode: local")

		authService = auth.NewService(adminRepo, cfg.Auth)

		sqlDB, err := db.DB.DB()
		if err != nil {
			log.Fatalf("Failed to get SQL DB for sessions: %v", err)
		}

		sessionManager, err = auth.NewSessionManager(sqlDB, cfg.Auth)
		if err != nil {
			log.Fatalf("Failed to initialize session manager: %v", err)
		}

		authMiddleware = auth.NewMiddleware(authService, sessionManager, cfg.Auth)

		if cfg.Auth.SessionSecret != "" {
			csrfSecret, err = hex.DecodeString(cfg.Auth.SessionSecret)
			if err != nil {
				// Not hex, use as raw bytes
				csrfSecret = []byte(cfg.Auth.SessionSecret)
			}
		} else {
			secret, err := auth.GenerateSessionSecret()
			if err != nil {
				log.Fatalf("Failed to generate CSRF secret: %v", err)
			}
			csrfSecret, _ = hex.DecodeString(secret)
			log.Printf("Generated session secret (set AUTH_SESSION_SECRET to persist)")
		}

		hasAdmins, _ := authService.HasAdmins()
		if !hasAdmins {
			log.Printf("No admin accounts found. POST to /api/auth/setup to create one.")
		}
	} else {
		log.Printf("Authentication mode: none (no authentication required)")
	}

	routerCfg := http_controllers.RouterConfig{
		Database:           db,
		Pipeline:           pipeline,
		DonorRepo:          donorRepo,
		DonationRepo:       donationRepo,
		RunRepo:            runRepo,
		AuditService:       auditService,
		AuthService:        authService,
		AuthMiddleware:     authMiddleware,
		SessionManager:     sessionManager,
		AuthConfig:         cfg.Auth,
		CSRFSecret:         csrfSecret,
		TaskClient:         taskClient,
		AuditRetentionDays: cfg.Audit.RetentionDays,
		MaxFileSizeMB:      cfg.Import.MaxFileSizeMB,
		DefaultCurrency:    cfg.Import.DefaultCurrency,
		Version:            version,
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if statusScheduler != nil {
			statusScheduler.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}

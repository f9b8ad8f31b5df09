package entrypoint

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/journal/internal/auth"
	"github.com/mrlokans/journal/internal/config"
	"github.com/mrlokans/journal/internal/database/users"
	http_controllers "github.com/mrlokans/journal/internal/http"
	"github.com/mrlokans/journal/internal/scheduler"
	"github.com/mrlokans/journal/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// CheckExportDir makes sure the export directory exists and is writable.
func CheckExportDir(dir string) error {
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("export directory %s could not be created: %w", dir, err)
	}

	marker := filepath.Join(dir, ".journal")
	f, err := os.Create(marker)
	if err != nil {
		return fmt.Errorf("export directory %s is not writable: %w", dir, err)
	}
	f.Close()
	return os.Remove(marker)
}

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) error {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	listenErr := make(chan error, 1)
	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErr <- err
		}
	}()

	// kill (no param) sends SIGTERM, kill -2 is SIGINT; SIGKILL cannot be caught
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	var serveErr error
	select {
	case <-quit:
		log.Printf("Shutdown Server, waiting %v before killing", timeout)
	case err := <-listenErr:
		serveErr = fmt.Errorf("listen: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// stop background workers before the listener
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if serveErr != nil {
		return serveErr
	}
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	log.Println("Server exiting")
	return nil
}

// Run builds every component from cfg and serves the HTTP API until interrupted.
func Run(cfg *config.Config, version string) error {
	log.Printf("Starting Journal v%s", version)

	if err := CheckExportDir(cfg.Export.Dir); err != nil {
		return err
	}

	app, err := Open(cfg, logger.Warn)
	if err != nil {
		return err
	}
	defer app.Close()

	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.ConfigFrom(cfg.Tasks))
		if err != nil {
			return fmt.Errorf("failed to initialize task queue: %w", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewExportJournalQueue(app.Exporter, app.Audit),
			tasks.NewCleanupAuditEventsQueue(app.Audit),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	schedOpts := scheduler.Options{
		Exporter:           app.Exporter,
		Events:             app.Audit,
		Cleaner:            app.Audit,
		Export:             cfg.Export,
		AuditRetentionDays: cfg.Audit.RetentionDays,
	}
	if taskClient != nil {
		schedOpts.Queue = taskClient
	}
	exportScheduler := scheduler.NewExportScheduler(schedOpts)
	schedCtx, schedCancel := context.WithCancel(context.Background())
	defer schedCancel()
	if err := exportScheduler.Start(schedCtx); err != nil {
		return err
	}

	routerCfg := http_controllers.RouterConfig{
		Entries:        app.Journal,
		Stats:          app.Stats,
		Exporter:       app.Exporter,
		Health:         app.DB,
		EntryEvents:    app.Audit,
		ExportEvents:   app.Audit,
		AuditEvents:    app.Audit,
		ExportDir:      cfg.Export.Dir,
		ExportSchedule: exportScheduler,
		AuthConfig:     cfg.Auth,
		Version:        version,
	}
	if taskClient != nil {
		routerCfg.TaskQueue = taskClient
	}

	if cfg.Auth.Mode == config.AuthModeLocal {
		log.Printf("Authentication mode: local")

		authService := auth.NewService(users.NewRepository(app.DB.DB), cfg.Auth)

		sqlDB, err := app.DB.DB.DB()
		if err != nil {
			return fmt.Errorf("failed to get SQL DB for sessions: %w", err)
		}
		sessionManager, err := auth.NewSessionManager(sqlDB, cfg.Auth)
		if err != nil {
			return fmt.Errorf("failed to initialize session manager: %w", err)
		}

		authController := auth.NewAuthController(authService, sessionManager, app.Audit, cfg.Auth)
		defer authController.Stop()

		csrfSecret, err := csrfSecretFrom(cfg.Auth.SessionSecret)
		if err != nil {
			return err
		}

		routerCfg.SessionManager = sessionManager
		routerCfg.AuthMiddleware = auth.NewMiddleware(authService, sessionManager, cfg.Auth)
		routerCfg.AuthController = authController
		routerCfg.CSRFSecret = csrfSecret

		if hasUsers, _ := authService.HasUsers(); !hasUsers {
			log.Printf("No users found. POST /api/auth/setup or run 'journal user create' to create one.")
		}
	} else {
		log.Printf("Authentication mode: none (no authentication required)")
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		exportScheduler.Stop()
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	return Serve(router, cfg, onShutdown)
}

// csrfSecretFrom decodes a hex session secret, falls back to its raw bytes,
// and generates a fresh one when none is configured.
func csrfSecretFrom(sessionSecret string) ([]byte, error) {
	if sessionSecret != "" {
		if secret, err := hex.DecodeString(sessionSecret); err == nil {
			return secret, nil
		}
		return []byte(sessionSecret), nil
	}

	secret, err := auth.GenerateSessionSecret()
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSRF secret: %w", err)
	}
	log.Printf("Generated session secret (set AUTH_SESSION_SECRET to persist)")
	return hex.DecodeString(secret)
}

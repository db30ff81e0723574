package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iudanet/teamdesk/internal/auth"
	"github.com/iudanet/teamdesk/internal/board"
	"github.com/iudanet/teamdesk/internal/config"
	"github.com/iudanet/teamdesk/internal/server/handlers"
	"github.com/iudanet/teamdesk/internal/server/middleware"
	"github.com/iudanet/teamdesk/internal/server/storage/sqlite"
	"github.com/iudanet/teamdesk/internal/vault"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Parse flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	// Show version and exit if requested
	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "teamdesk server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Конфигурация загружается один раз на старте;
	// отсутствие JWT секрета - фатальная ошибка
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := newLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Store handle создается один раз и переиспользуется всеми запросами
	store, err := sqlite.New(ctx, cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to init storage: %w", err)
	}
	defer store.Close()

	codec := auth.NewTokenCodec([]byte(cfg.JWTSecret))
	authService := auth.NewService(logger, store, codec)
	boardService := board.NewService(logger, store)

	oauthConf := cfg.Vault.OAuth()
	if oauthConf == nil {
		logger.Warn("vault provider credentials missing, integration routes disabled")
	}
	vaultService := vault.NewService(logger, store, oauthConf)
	notesClient := vault.NewNotesClient(logger, cfg.Vault.DriveURL)

	authHandler := handlers.NewAuthHandler(logger, authService, codec, store)
	boardHandler := handlers.NewBoardHandler(logger, boardService)
	vaultHandler := handlers.NewVaultHandler(logger, vaultService, notesClient, store, cfg.Vault.Path, cfg.DashboardURL)
	healthHandler := handlers.NewHealthHandler(logger, Version)

	requireAuth := middleware.Auth(logger, codec)

	// Лимитируем только credential-эндпоинты против перебора
	limiter := middleware.NewRateLimiter(10, time.Minute, logger)
	defer limiter.Stop()
	limited := middleware.RateLimit(limiter, logger)

	mux := http.NewServeMux()

	mux.Handle("POST /api/v1/auth/register", limited(http.HandlerFunc(authHandler.Register)))
	mux.Handle("POST /api/v1/auth/login", limited(http.HandlerFunc(authHandler.Login)))
	mux.HandleFunc("GET /api/v1/auth/session", authHandler.Session)

	mux.Handle("GET /api/v1/projects", requireAuth(http.HandlerFunc(boardHandler.ListProjects)))
	mux.Handle("POST /api/v1/projects", requireAuth(http.HandlerFunc(boardHandler.CreateProject)))
	mux.Handle("POST /api/v1/tasks", requireAuth(http.HandlerFunc(boardHandler.CreateTask)))
	mux.Handle("GET /api/v1/tasks/my", requireAuth(http.HandlerFunc(boardHandler.MyTasks)))
	mux.Handle("PATCH /api/v1/tasks/{id}", requireAuth(http.HandlerFunc(boardHandler.UpdateTaskStatus)))

	mux.Handle("GET /api/v1/vault/connect", requireAuth(http.HandlerFunc(vaultHandler.Connect)))
	// Callback не защищен: пользователя идентифицирует state параметр
	mux.HandleFunc("GET /api/v1/vault/callback", vaultHandler.Callback)
	mux.Handle("POST /api/v1/vault/disconnect", requireAuth(http.HandlerFunc(vaultHandler.Disconnect)))
	mux.Handle("GET /api/v1/vault/status", requireAuth(http.HandlerFunc(vaultHandler.Status)))
	mux.Handle("GET /api/v1/vault/notes", requireAuth(http.HandlerFunc(vaultHandler.Notes)))
	mux.Handle("GET /api/v1/vault/structure", requireAuth(http.HandlerFunc(vaultHandler.Structure)))

	mux.HandleFunc("GET /api/v1/health", healthHandler.Health)

	handler := middleware.Recovery(logger)(middleware.Logging(logger)(mux))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errC := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			"addr", cfg.Addr,
			"version", Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errC <- err
		}
	}()

	select {
	case err := <-errC:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	return nil
}

// newLogger создает slog логгер с уровнем из конфига
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func printVersion() {
	fmt.Printf("TeamDesk Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}

// Package main is the entry point for the catalog server. It loads
// configuration, connects to services, sets up routing, and starts the
// HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"curio/internal/assets"
	"curio/internal/catalog"
	"curio/internal/config"
	"curio/internal/database"
	"curio/internal/handlers"
	"curio/internal/identity"
	"curio/internal/render"
	"curio/internal/router"
	"curio/internal/session"
	"curio/internal/store"
)

func main() {
	// Structured logger — text output, debug level.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration. A missing client secrets file is fatal: the
	// server cannot verify login tokens without a client id.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL and run pending migrations.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Connect to Valkey and set up the session store. In non-development
	// environments, session cookies are Secure (HTTPS-only).
	valkeyClient, err := session.Connect(cfg.Valkey.Host, cfg.Valkey.Port, cfg.Valkey.Password)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	sessionStore := session.NewStore(valkeyClient, !cfg.IsDev())

	// Pick the image-asset backend.
	var (
		assetStore assets.Store
		uploadsDir string
	)
	switch cfg.Assets.Backend {
	case "s3":
		assetStore = assets.NewS3(
			cfg.Assets.S3Endpoint, cfg.Assets.S3Region,
			cfg.Assets.S3AccessKey, cfg.Assets.S3SecretKey,
			cfg.Assets.S3Bucket,
		)
		slog.Info("s3 asset store connected",
			"endpoint", cfg.Assets.S3Endpoint, "bucket", cfg.Assets.S3Bucket)
	default:
		disk := assets.NewDisk(cfg.Assets.Root)
		assetStore = disk
		uploadsDir = disk.Root()
	}

	// Data stores.
	userStore := store.NewUserStore(db)
	categoryStore := store.NewCategoryStore(db)
	itemStore := store.NewItemStore(db)

	// Services.
	verifier := identity.NewTokenVerifier(cfg.ClientID, identity.GoogleKeyfunc())
	identitySvc := identity.NewService(verifier, userStore, sessionStore)
	catalogSvc := catalog.NewService(categoryStore, itemStore, assetStore)

	// Page renderer.
	renderer, err := render.New()
	if err != nil {
		slog.Error("failed to initialize template renderer", "error", err)
		os.Exit(1)
	}

	// Handler groups and routing.
	publicHandlers := handlers.NewPublic(catalogSvc, renderer)
	catalogHandlers := handlers.NewCatalog(catalogSvc, renderer)
	authHandlers := handlers.NewAuth(identitySvc)

	r := router.New(sessionStore, publicHandlers, catalogHandlers, authHandlers, uploadsDir)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

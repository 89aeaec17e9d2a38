package main

import (
	"context"
	"errors"
	stdlog "log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/dom/heritage-gallery/internal/api"
	"github.com/dom/heritage-gallery/internal/config"
	"github.com/dom/heritage-gallery/internal/identity"
	"github.com/dom/heritage-gallery/internal/objectstore"
	"github.com/dom/heritage-gallery/internal/platform/logger"
	"github.com/dom/heritage-gallery/internal/repository/postgres"
	"github.com/dom/heritage-gallery/internal/service"
	"github.com/dom/heritage-gallery/internal/websocket"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		stdlog.Printf("failed to load .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("failed to load config: %v", err)
	}

	log, err := logger.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		stdlog.Fatalf("failed to build logger: %v", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := postgres.NewConnection(postgres.ConnectionOptions{
		Driver:      cfg.DatabaseDriver,
		URL:         cfg.DatabaseURL,
		LogLevel:    cfg.LogLevel,
		AutoMigrate: cfg.AutoMigrate,
	})
	if err != nil {
		log.Fatal("failed to connect to database", "error", err)
	}
	repos := postgres.NewRepositories(db)

	// Object storage for artwork images
	store, err := objectstore.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to initialize object storage", "backend", cfg.StorageBackend, "error", err)
	}

	// Third-party sign-in is optional
	var verifier identity.Verifier
	if cfg.OIDCIssuerURL != "" {
		v, err := identity.NewOIDCVerifier(ctx, cfg.OIDCIssuerURL, cfg.OIDCAudience)
		if err != nil {
			log.Fatal("failed to initialize identity verifier", "issuer", cfg.OIDCIssuerURL, "error", err)
		}
		verifier = v
	} else {
		log.Warn("OIDC_ISSUER_URL not set, third-party sign-in disabled")
	}

	// Realtime feed
	hub := websocket.NewHub(log)
	go hub.Run()

	services := service.NewServices(service.Dependencies{
		Repos:    repos,
		Store:    store,
		Verifier: verifier,
		Events:   hub,
		Config:   cfg,
		Logger:   log,
	})

	var handler http.Handler = api.NewRouter(services, hub, cfg, log)
	if mem, ok := store.(*objectstore.MemoryStore); ok {
		mux := http.NewServeMux()
		mux.Handle("/objects/", http.StripPrefix("/objects", mem))
		mux.Handle("/", handler)
		handler = mux
		log.Warn("serving artwork images from memory, uploads are lost on restart")
	}

	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout(),
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "environment", cfg.Environment, "storage", cfg.StorageBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}
	hub.Stop()

	if err := store.Close(); err != nil {
		log.Warn("failed to close object storage", "error", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}

	log.Info("server stopped")
}

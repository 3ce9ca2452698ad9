//	@title			Mediabox API
//	@version		1.0
//	@description	Upload proxy to a cloud media store with an in-memory file index.
//
//	@host		localhost:5000
//	@BasePath	/api
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Optional JWT Bearer token, required only when API_JWT_SECRET is set. Format: **Bearer {token}**

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	"github.com/mediabox/service/internal/config"
	"github.com/mediabox/service/internal/db"
	"github.com/mediabox/service/internal/logger"
	"github.com/mediabox/service/internal/media"
	appMiddleware "github.com/mediabox/service/internal/middleware"
	"github.com/mediabox/service/internal/storage"

	_ "github.com/mediabox/service/docs/swagger"
)

func main() {
	cfg := config.Load()

	logg, err := logger.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer logg.Sync() //nolint:errcheck

	ctx := context.Background()

	provider, err := storage.New(ctx, cfg)
	if err != nil {
		logg.Fatal("storage provider init failed", zap.Error(err))
	}
	if _, ok := provider.(storage.Unconfigured); ok {
		logg.Warn("storage provider has no credentials, uploads will fail", zap.String("provider", provider.Name()))
	}

	var journal media.Journal = media.NopJournal{}
	if cfg.JournalEnabled() {
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logg.Fatal("database connection failed", zap.Error(err))
		}
		defer pool.Close()

		if err := db.Migrate(cfg.DatabaseURL); err != nil {
			logg.Fatal("database migration failed", zap.Error(err))
		}
		journal = media.NewPostgresJournal(pool)
		logg.Info("upload journal enabled")
	}

	// Wire dependencies: registry → service → handler.
	// The registry lives in memory only; a restart starts with an empty index.
	registry := media.NewRegistry()
	mediaSvc := media.NewService(registry, provider, journal, cfg.UploadConcurrency, logg.Named("media"))
	mediaHandler := media.NewHandler(mediaSvc, cfg.CloudinaryConfigured(), logg.Named("http"))

	// Router
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger(logg))
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	// Swagger UI, available at http://localhost:5000/swagger/
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/api", func(r chi.Router) {
		mediaHandler.Register(r, appMiddleware.RequireAuth(cfg.JWTSecret))
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
		// Uploads of up to 100 MiB are streamed through to the provider.
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine; wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logg.Info("server listening",
			zap.String("port", cfg.Port),
			zap.String("env", cfg.AppEnv),
			zap.String("provider", provider.Name()),
			zap.Bool("cloudinary_configured", cfg.CloudinaryConfigured()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	logg.Info("shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Fatal("forced shutdown", zap.Error(err))
	}

	logg.Info("server stopped")
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tonypconway/netlify-baseline-extension/baseline"
	"github.com/tonypconway/netlify-baseline-extension/blob"
	"github.com/tonypconway/netlify-baseline-extension/cache"
	"github.com/tonypconway/netlify-baseline-extension/config"
	"github.com/tonypconway/netlify-baseline-extension/counter"
	_ "github.com/tonypconway/netlify-baseline-extension/docs" // Swagger docs
	"github.com/tonypconway/netlify-baseline-extension/handler"
	"github.com/tonypconway/netlify-baseline-extension/ingest"
	appLogger "github.com/tonypconway/netlify-baseline-extension/logger"
	"github.com/tonypconway/netlify-baseline-extension/middleware"
	redisClient "github.com/tonypconway/netlify-baseline-extension/redis"
	"github.com/tonypconway/netlify-baseline-extension/security"
	"github.com/tonypconway/netlify-baseline-extension/settings"
	"github.com/tonypconway/netlify-baseline-extension/ua"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	httpSwagger "github.com/swaggo/http-swagger"
)

// @title Baseline Browser Analytics API
// @version 1.0
// @description Records per-day browser histograms from request traffic and reports the share of traffic able to use Baseline web-platform feature sets.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

// @tag.name Analytics
// @tag.description Baseline support reports and raw counter data

// @tag.name Settings
// @tag.description Per-site settings record (admin)

// @tag.name System
// @tag.description Health checks

func main() {
	// Initialize logger
	appLogger.Initialize()

	// Load configuration
	cfg := config.MustLoadConfig()
	log.Info().Msg("Configuration loaded successfully")

	// Initialize Redis client and the namespaced blob store on top of it
	rdb := redisClient.NewClient(cfg.Redis)
	blobStore := blob.NewRedisStore(rdb, cfg.Analytics.Namespace)

	// Initialize user-agent resolution cache (if enabled)
	var resolutionCache *cache.Cache
	if cfg.Cache.Enabled {
		var err error
		resolutionCache, err = cache.New(cfg.Cache)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize cache")
		}
	} else {
		log.Info().Msg("Cache disabled in configuration")
	}

	// Core pipeline components
	classifier := ua.NewClassifier(ua.DefaultMapping())
	botFilter := security.NewDefaultBotFilter(cfg.Security.BotFilterEnabled)
	settingsStore := settings.NewStore(blobStore)

	counters, err := counter.New(blobStore, cfg.Analytics.ShardCount)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize counter store")
	}

	baselineClient := baseline.NewClient(
		cfg.Baseline.DatasetURL,
		time.Duration(cfg.Baseline.FetchTimeout)*time.Second,
	)

	// Fire-and-forget ingestion
	ingestHandler := ingest.NewHandler(
		classifier, botFilter, counters, settingsStore, resolutionCache,
		cfg.Analytics.RetentionDays,
	)
	dispatcher := ingest.NewDispatcher(
		ingestHandler,
		cfg.Analytics.QueueSize,
		cfg.Analytics.Workers,
		time.Duration(cfg.Redis.OperationTimeout)*time.Second,
	)

	// HTTP handlers
	analyticsHandler := handler.NewAnalyticsHandler(counters, baselineClient, settingsStore, rdb, cfg)
	settingsHandler := handler.NewSettingsHandler(settingsStore)

	// Set up router
	r := mux.NewRouter()

	// Apply global middleware
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	tracker := middleware.NewTracker(dispatcher)

	r.Use(middleware.CORS)
	r.Use(middleware.RequestLogger)
	r.Use(rateLimiter.Limit)

	// Public routes
	r.HandleFunc("/health", analyticsHandler.HealthCheck).Methods("GET")
	r.HandleFunc("/api/analytics/report", analyticsHandler.GetReport).Methods("GET")

	// Admin routes
	adminAuth := middleware.NewAdminAuth(cfg.Security.AdminAPIKey, cfg.Security.AdminAuthEnabled)
	admin := r.PathPrefix("/api").Subrouter()
	admin.Use(adminAuth.Protect)
	admin.HandleFunc("/analytics/raw", analyticsHandler.GetRawData).Methods("GET")
	admin.HandleFunc("/analytics", analyticsHandler.DeleteAllData).Methods("DELETE")
	admin.HandleFunc("/settings", settingsHandler.GetSettings).Methods("GET")
	admin.HandleFunc("/settings", settingsHandler.UpdateSettings).Methods("PUT")

	// Swagger UI
	r.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	// Configure HTTP server. Impression tracking wraps the router rather
	// than running as route middleware: page requests match no registered
	// route, and mux only runs Use middleware on matched routes.
	serverAddress := fmt.Sprintf("%s:%s", cfg.WebServer.IP, cfg.WebServer.Port)
	server := &http.Server{
		Addr:         serverAddress,
		Handler:      tracker.Track(r),
		ReadTimeout:  time.Duration(cfg.WebServer.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WebServer.WriteTimeout) * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("address", serverAddress).
			Str("scheme", cfg.WebServer.Scheme).
			Msg("Starting server")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.WebServer.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	// Drain queued impressions before closing the store
	dispatcher.Close()

	// Close cache
	resolutionCache.Close()

	// Close Redis connection
	if err := rdb.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close Redis connection")
	}

	log.Info().Msg("Server stopped gracefully")
}

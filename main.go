package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for database/sql (migrations)
	"go.uber.org/zap"

	"github.com/starfusion/engine/pkg/clients"
	"github.com/starfusion/engine/pkg/config"
	"github.com/starfusion/engine/pkg/database"
	"github.com/starfusion/engine/pkg/handlers"
	"github.com/starfusion/engine/pkg/logging"
	"github.com/starfusion/engine/pkg/middleware"
	"github.com/starfusion/engine/pkg/repositories"
	"github.com/starfusion/engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("people_url", cfg.Sources.PeopleURL),
		zap.String("weather_url", cfg.Sources.WeatherURL),
		zap.Duration("cache_ttl", cfg.Pipeline.CacheTTL),
		zap.Int("enrich_concurrency", cfg.Pipeline.EnrichConcurrency),
		zap.String("database", cfg.Database.Host))

	ctx := context.Background()
	connStr := cfg.Database.ConnectionString()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            connStr,
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Migrations run through database/sql (required by golang-migrate)
	sqlDB, err := sql.Open("pgx", connStr)
	if err != nil {
		logger.Fatal("Failed to open migration connection", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, cfg.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	_ = sqlDB.Close()

	// Repositories
	historyRepo := repositories.NewMergeHistoryRepository(db)
	storageRepo := repositories.NewStorageRepository(db)

	// Services
	fetcher := clients.NewHTTPClient(&http.Client{Timeout: cfg.Sources.HTTPTimeout}, logger)
	mergeService := services.NewMergeService(fetcher, historyRepo, cfg.Sources, cfg.Pipeline, logger)
	historyService := services.NewHistoryService(historyRepo, cfg.History, logger)
	storageService := services.NewStorageService(storageRepo, logger)

	// API routes, optionally behind bearer auth
	api := http.NewServeMux()
	handlers.NewMergedHandler(mergeService, logger).RegisterRoutes(api)
	handlers.NewHistoryHandler(historyService, logger).RegisterRoutes(api)
	handlers.NewStorageHandler(storageService, logger).RegisterRoutes(api)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)

	authWrapped := middleware.BearerAuth(cfg.Auth.JWTSecret, logger)(api)
	mux.Handle("/api/v1/", http.StripPrefix("/api/v1", authWrapped))

	handler := middleware.RequestLogger(logger)(mux)

	server := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Starting starfusion-engine",
		zap.String("addr", cfg.ListenAddr()),
		zap.String("version", cfg.Version))
	if err := server.ListenAndServe(); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

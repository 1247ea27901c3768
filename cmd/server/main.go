package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SuhaniChatterjee/medstock-wise/internal/api"
	"github.com/SuhaniChatterjee/medstock-wise/internal/auth"
	"github.com/SuhaniChatterjee/medstock-wise/internal/cache"
	"github.com/SuhaniChatterjee/medstock-wise/internal/config"
	"github.com/SuhaniChatterjee/medstock-wise/internal/forecast"
	"github.com/SuhaniChatterjee/medstock-wise/internal/repository/postgres"
	"github.com/SuhaniChatterjee/medstock-wise/internal/service"
	"github.com/SuhaniChatterjee/medstock-wise/internal/storage"
	"github.com/SuhaniChatterjee/medstock-wise/internal/telemetry"
	"github.com/SuhaniChatterjee/medstock-wise/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func main() {
	cfg := config.Load()

	logger.Setup(cfg.Server.Mode, cfg.Server.LogLevel)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	// unit_cost is sent as a JSON number
	decimal.MarshalJSONWithoutQuotes = true

	ctx := context.Background()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to initialize tracing")
	}

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to apply schema")
		}
	}

	dashboardCache, err := cache.NewDashboardCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Redis unavailable, dashboard cache disabled")
		dashboardCache = cache.NewNoopDashboardCache()
	}

	archive, err := storage.New(cfg.Storage)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Object storage unavailable, uploads will not be archived")
		archive = storage.NewNoopStorage()
	}

	verifier, err := auth.NewJWTVerifier(cfg.Auth)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to configure token verification")
	}

	store := postgres.NewStore(db)
	thresholds := forecast.AlertThresholds{
		Critical: cfg.Forecast.CriticalPercentage,
		Warning:  cfg.Forecast.WarningPercentage,
	}
	costParams := forecast.CostParams{
		OrderingCost:      cfg.Forecast.OrderingCost,
		HoldingRate:       cfg.Forecast.HoldingRate,
		ServiceZ:          cfg.Forecast.ServiceZ,
		DemandVariability: cfg.Forecast.DemandVariability,
	}

	predictions := service.NewPredictionService(store, dashboardCache, thresholds)
	optimizations := service.NewOptimizationService(store, costParams)

	router := api.NewRouter(&api.Services{
		Predictions:   predictions,
		Optimizations: optimizations,
		Seed:          service.NewSeedService(store, dashboardCache),
		Inventory:     service.NewInventoryService(store, dashboardCache, archive),
		Alerts:        service.NewAlertService(store.Alerts, dashboardCache),
		Dashboard:     service.NewDashboardService(store, dashboardCache, thresholds.Critical),
		Identity:      verifier,
	}, api.RouterConfig{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		ServiceName:    cfg.Telemetry.ServiceName,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Log.Warn().Err(err).Msg("Failed to flush traces")
	}

	logger.Log.Info().Msg("Server exiting")
}

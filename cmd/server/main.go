package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"

	"github.com/seu-repo/sigem-energia/internal/adapter/cache"
	"github.com/seu-repo/sigem-energia/internal/adapter/http/fiber/handlers"
	"github.com/seu-repo/sigem-energia/internal/adapter/http/fiber/middleware"
	"github.com/seu-repo/sigem-energia/internal/adapter/queue"
	"github.com/seu-repo/sigem-energia/internal/adapter/source"
	"github.com/seu-repo/sigem-energia/internal/adapter/storage/postgres"
	"github.com/seu-repo/sigem-energia/internal/domain"
	"github.com/seu-repo/sigem-energia/internal/service/analytics"
	"github.com/seu-repo/sigem-energia/internal/service/health"
	"github.com/seu-repo/sigem-energia/internal/service/ingest"
	"github.com/seu-repo/sigem-energia/pkg/config"
)

const (
	serviceName    = "sigem-energia"
	serviceVersion = "v1.0.0"
)

func main() {
	// 1. Initialize Logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	logger.Info("Starting SIGEM-Energia",
		zap.String("service", serviceName),
		zap.String("version", serviceVersion),
	)

	// 2. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	// 3. Initialize PostgreSQL Connection Pool
	db, err := postgres.NewConnection(cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("Failed to get underlying SQL DB", zap.Error(err))
	}
	defer sqlDB.Close()

	if cfg.Database.AutoMigrate {
		if err := postgres.RunMigrations(db); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	// 4. Initialize Cache (Redis, local in-memory fallback)
	appCache, err := cache.NewRedisCache(cfg.Redis.URL, logger)
	if err != nil {
		logger.Warn("Redis unavailable, falling back to local cache", zap.Error(err))
		appCache = cache.NewLocalCache(time.Minute, logger)
	}
	defer appCache.Close()

	// 5. Initialize Message Queue
	messageQueue, err := queue.New(cfg.Queue, logger)
	if err != nil {
		logger.Fatal("Failed to connect to message queue", zap.Error(err))
	}
	defer messageQueue.Close()

	// 6. Initialize Repositories and Source
	readingRepo := postgres.NewReadingRepository(db, logger)
	meterSource := source.NewClient(cfg.Source, logger)

	// 7. Initialize Services (Business Logic Layer)
	tariff := buildTariff(cfg.Tariff)
	ingestService := ingest.NewService(meterSource, readingRepo, messageQueue, cfg.Sync, logger)
	analyticsService := analytics.NewService(readingRepo, appCache, tariff, cfg, logger)

	// 8. Start the Sync Scheduler (eager first cycle, then fixed interval)
	schedulerCtx, stopScheduler := context.WithCancel(context.Background())
	defer stopScheduler()
	scheduler := ingest.NewScheduler(ingestService, cfg.Sync.Interval, logger)
	go scheduler.Run(schedulerCtx)

	// 9. Subscribe to sync reports for operational logging
	messageQueue.Subscribe(ingest.SyncCompletedSubject, func(msg []byte) error {
		logger.Info("Sync cycle reported", zap.ByteString("report", msg))
		return nil
	})

	// 10. Initialize Fiber HTTP Server
	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		ServerHeader:          serviceName,
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	// Global Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	if cfg.CORS.Enabled {
		app.Use(middleware.NewCORS(cfg.CORS))
	}

	// Health Check Endpoints
	healthService := health.NewService(&health.Config{
		Version: cfg.App.Version,
		DB:      sqlDB,
		Cache:   appCache,
		Ingest:  ingestService,
	}, logger)
	health.NewFiberHandler(healthService).RegisterRoutes(app)

	// Metrics endpoint for Prometheus
	if cfg.Prometheus.Enabled {
		app.Get(cfg.Prometheus.Path, func(c *fiber.Ctx) error {
			handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
			handler(c.Context())
			return nil
		})
	}

	// API v1 Routes
	v1 := app.Group("/api/v1")

	readingsHandler := handlers.NewReadingsHandler(analyticsService, cfg.Pagination.DefaultPerPage, logger)
	v1.Get("/readings", readingsHandler.Get)

	pricingHandler := handlers.NewPricingHandler(tariff)
	v1.Get("/pricing", pricingHandler.Get)
	v1.Get("/pricing/hourly-rates", pricingHandler.HourlyRates)

	// 11. Start HTTP Server
	go func() {
		logger.Info("Starting HTTP Server", zap.Int("port", cfg.HTTP.Port))
		if err := app.Listen(fmt.Sprintf(":%d", cfg.HTTP.Port)); err != nil {
			logger.Fatal("HTTP Server failed", zap.Error(err))
		}
	}()

	// 12. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	stopScheduler()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited gracefully")
}

// buildTariff materializes the immutable pricing value from configuration,
// keeping the static savings tips of the default Swiss schedule.
func buildTariff(cfg config.TariffConfig) *domain.TariffConfig {
	tariff := domain.DefaultSwissTariff()
	if cfg.Currency != "" {
		tariff.Currency = cfg.Currency
	}
	if cfg.CurrencySymbol != "" {
		tariff.CurrencySymbol = cfg.CurrencySymbol
	}
	if cfg.PeakRate > 0 {
		tariff.PeakRate = cfg.PeakRate
	}
	if cfg.OffPeakRate > 0 {
		tariff.OffPeakRate = cfg.OffPeakRate
	}
	if cfg.AverageRate > 0 {
		tariff.AverageRate = cfg.AverageRate
	}
	if cfg.PeakEndHour > 0 {
		tariff.PeakStartHour = cfg.PeakStartHour
		tariff.PeakEndHour = cfg.PeakEndHour
	}
	return tariff
}

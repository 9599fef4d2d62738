package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/transitops/transit-collector/internal/config"
	"github.com/transitops/transit-collector/internal/domain"
	"github.com/transitops/transit-collector/internal/fetcher"
	"github.com/transitops/transit-collector/internal/handler"
	"github.com/transitops/transit-collector/internal/infra/postgresql"
	"github.com/transitops/transit-collector/internal/infra/postgresql/migrations"
	infraredis "github.com/transitops/transit-collector/internal/infra/redis"
	"github.com/transitops/transit-collector/internal/observability"
	"github.com/transitops/transit-collector/internal/repository"
	"github.com/transitops/transit-collector/internal/service"
	"github.com/transitops/transit-collector/internal/transport"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config", zap.Error(err))
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal("failed to initialize logger", zap.Error(err))
	}
	defer logger.Sync() //nolint:errcheck

	db, err := postgresql.NewPostgres(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("postgres initialization failed", zap.Error(err))
	}

	if err := migrations.Migrate(db); err != nil {
		logger.Fatal("database migrations failed", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("postgres underlying db init failed", zap.Error(err))
	}
	defer sqlDB.Close()

	rdb, err := infraredis.NewRedis(cfg.RedisURL)
	if err != nil {
		logger.Fatal("redis initialization failed", zap.Error(err))
	}
	defer rdb.Close()

	metrics := observability.NewMetrics()

	limiter, err := infraredis.NewRedisRateLimiter(rdb, cfg.FetchRateLimitPerSec)
	if err != nil {
		logger.Fatal("rate limiter initialization failed", zap.Error(err))
	}

	fetchClient := fetcher.NewClient(cfg.FetchTimeout(), cfg.FeedAPIKey)

	attemptRepo := repository.NewGormAttemptRepo(db)
	recordRepo := repository.NewGormRecordRepo(db)
	outageRepo := repository.NewGormOutageRepo(db)

	ingestor, err := service.NewIngestService(fetchClient, attemptRepo, recordRepo, limiter, logger, metrics)
	if err != nil {
		logger.Fatal("ingest service initialization failed", zap.Error(err))
	}

	catalog := domain.DefaultCatalog()

	poller, err := service.NewPoller(catalog, ingestor, cfg.PollInterval(), cfg.WorkerConcurrency, logger, metrics)
	if err != nil {
		logger.Fatal("poller initialization failed", zap.Error(err))
	}

	outages, err := service.NewOutageService(fetchClient, outageRepo, cfg.OutagePollInterval(), logger, metrics)
	if err != nil {
		logger.Fatal("outage service initialization failed", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: transport.ErrorHandler(logger),
	})
	app.Use(recover.New())
	app.Use(metrics.HTTPMiddleware())
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
	handler.RegisterHealthRoutes(app, sqlDB, rdb, poller)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return poller.Start(ctx)
	})

	g.Go(func() error {
		return outages.Start(ctx)
	})

	g.Go(func() error {
		logger.Info("http server started", zap.Int("port", cfg.HTTPPort))
		return app.Listen(fmt.Sprintf(":%d", cfg.HTTPPort))
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		return app.Shutdown()
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("collector stopped with error", zap.Error(err))
	}

	logger.Info("collector stopped")
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/kursadbilgin/dispatch-console/internal/config"
	"github.com/kursadbilgin/dispatch-console/internal/handler"
	"github.com/kursadbilgin/dispatch-console/internal/infra/postgresql"
	"github.com/kursadbilgin/dispatch-console/internal/infra/postgresql/migrations"
	infraredis "github.com/kursadbilgin/dispatch-console/internal/infra/redis"
	"github.com/kursadbilgin/dispatch-console/internal/observability"
	"github.com/kursadbilgin/dispatch-console/internal/repository"
	"github.com/kursadbilgin/dispatch-console/internal/service"
	"github.com/kursadbilgin/dispatch-console/internal/transport"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const serviceName = "dispatch-console"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.LogLevel, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if err := run(cfg, logger); err != nil {
		logger.Fatal("api exited with error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	db, err := postgresql.NewPostgres(cfg.DatabaseDSN, postgresql.PoolConfig{})
	if err != nil {
		return fmt.Errorf("postgres initialization failed: %w", err)
	}

	if err := migrations.Migrate(db); err != nil {
		return fmt.Errorf("database migrations failed: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("postgres underlying db init failed: %w", err)
	}
	defer sqlDB.Close()

	rdb, err := infraredis.NewRedis(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis initialization failed: %w", err)
	}
	defer rdb.Close()

	metrics := observability.NewMetrics()

	var cache service.StatsCache
	if ttl := cfg.StatsCacheTTL(); ttl > 0 {
		statsCache, err := infraredis.NewStatsCache(rdb, ttl)
		if err != nil {
			return fmt.Errorf("stats cache init failed: %w", err)
		}
		cache = statsCache
	} else {
		logger.Info("stats cache disabled")
	}

	loginLimiter, err := infraredis.NewRedisRateLimiter(rdb, "login", cfg.LoginRateLimitPerSec)
	if err != nil {
		return fmt.Errorf("login rate limiter init failed: %w", err)
	}

	statsService, err := service.NewStatsService(repository.NewGormNotificationRepo(db), cache, metrics, logger)
	if err != nil {
		return err
	}
	applicationService, err := service.NewApplicationService(repository.NewGormApplicationRepo(db), metrics, logger)
	if err != nil {
		return err
	}
	authService, err := service.NewAuthService(service.AuthConfig{
		Username:     cfg.AdminUsername,
		PasswordHash: cfg.AdminPasswordHash,
		Secret:       cfg.JWTSecret,
	}, loginLimiter, metrics, logger)
	if err != nil {
		return err
	}

	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		DisableStartupMessage: true,
		ErrorHandler:          transport.ErrorHandler(logger),
	})
	app.Use(handler.CorrelationIDMiddleware())
	app.Use(metrics.HTTPMiddleware())

	handler.RegisterHealthRoutes(app, sqlDB, rdb)
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	if err := handler.RegisterAdminRoutes(app, handler.Services{
		Auth:         authService,
		Applications: applicationService,
		Analytics:    statsService,
		SecureCookie: cfg.CookieSecure,
	}); err != nil {
		return fmt.Errorf("route registration failed: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := fmt.Sprintf(":%d", cfg.APIPort)
		logger.Info("dispatch-console api started", zap.String("addr", addr))
		if err := app.Listen(addr); err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down api", zap.Duration("timeout", cfg.ShutdownTimeout()))
		return app.ShutdownWithTimeout(cfg.ShutdownTimeout())
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("dispatch-console api stopped")
	return nil
}

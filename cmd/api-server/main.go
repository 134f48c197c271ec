package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/carebridge/telemed-scheduling/internal/api"
	"github.com/carebridge/telemed-scheduling/internal/booking"
	"github.com/carebridge/telemed-scheduling/internal/config"
	"github.com/carebridge/telemed-scheduling/internal/db"
	"github.com/carebridge/telemed-scheduling/internal/identity"
	"github.com/carebridge/telemed-scheduling/internal/logging"
	redisclient "github.com/carebridge/telemed-scheduling/internal/redis"
	"github.com/carebridge/telemed-scheduling/internal/schedule"
	"github.com/carebridge/telemed-scheduling/internal/slotlock"
)

const version = "0.3.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("config load error: " + err.Error())
	}

	logger := logging.New(cfg.Env)
	defer logger.Sync()

	logger.Info("api-server starting up",
		zap.String("env", cfg.Env),
		zap.String("http_port", cfg.HTTPPort),
		zap.String("lock_backend", string(cfg.LockBackend)),
	)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		logger.Fatal("postgres connection error", zap.Error(err))
	}
	defer pgPool.Close()
	logger.Info("connected to Postgres")

	if cfg.MigrationsDir != "" {
		if err := db.Migrate(rootCtx, pgPool, cfg.MigrationsDir); err != nil {
			logger.Fatal("migration error", zap.Error(err))
		}
		logger.Info("migrations applied")
	}

	var rdb *redis.Client
	var locker slotlock.Locker
	if cfg.LockBackend == config.LockBackendRedis {
		rdb, err = redisclient.NewClient(rootCtx, cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
		if err != nil {
			logger.Fatal("redis connection error", zap.Error(err))
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				logger.Warn("error closing redis", zap.Error(err))
			}
		}()
		logger.Info("connected to Redis")
		locker = slotlock.NewRedisLocker(rdb, cfg.LockTTL, logger)
	} else {
		locker = slotlock.NewPgLocker(pgPool, cfg.LockTTL, logger)
	}

	identityRepo := identity.NewPgRepository(pgPool)
	scheduleSvc := schedule.NewService(schedule.NewPgRepository(pgPool), identityRepo, logger)
	coordinator := booking.NewCoordinator(booking.NewPgRepository(pgPool), identityRepo, scheduleSvc, locker, logger)

	router := api.NewRouter(api.RouterConfig{
		Schedule:    scheduleSvc,
		Coordinator: coordinator,
		PgPool:      pgPool,
		Redis:       rdb,
		Logger:      logger,
		Env:         cfg.Env,
		Version:     version,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-rootCtx.Done()
	logger.Info("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

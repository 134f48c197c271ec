// lock-sweeper purges expired slot-lock rows from Postgres on an
// interval. Acquisition already purges opportunistically; the sweeper only
// keeps the table small when booking traffic is idle. Redis locks expire
// natively and need no sweeping.
package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/carebridge/telemed-scheduling/internal/config"
	"github.com/carebridge/telemed-scheduling/internal/db"
	"github.com/carebridge/telemed-scheduling/internal/logging"
	"github.com/carebridge/telemed-scheduling/internal/slotlock"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("config load error: " + err.Error())
	}

	logger := logging.New(cfg.Env)
	defer logger.Sync()

	logger.Info("lock-sweeper starting up",
		zap.String("env", cfg.Env),
		zap.Duration("interval", cfg.SweepInterval),
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

	locker := slotlock.NewPgLocker(pgPool, cfg.LockTTL, logger)

	// Run once at startup
	sweep(rootCtx, locker, logger)

	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rootCtx.Done():
			logger.Info("shutdown signal received, stopping lock sweeper")
			return
		case <-ticker.C:
			sweep(rootCtx, locker, logger)
		}
	}
}

func sweep(ctx context.Context, locker *slotlock.PgLocker, logger *zap.Logger) {
	runCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	start := time.Now()
	purged, err := locker.PurgeExpired(runCtx)
	if err != nil {
		logger.Error("sweep error", zap.Error(err))
		return
	}
	logger.Info("sweep complete",
		zap.Int64("purged", purged),
		zap.Duration("took", time.Since(start)),
	)
}

package main

import (
	"context"
	"os"
	"time"

	"github.com/KanhaiyaGupta0089/Full-Fledged-POS-BILLING-System/config"
	"github.com/KanhaiyaGupta0089/Full-Fledged-POS-BILLING-System/workflow"
	"github.com/bsm/redislock"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Reconciliation job: walks the daybook and rewrites any running balance that
// disagrees with prev + debit - credit. Run from cron; a redis lock keeps
// overlapping schedules from doubling up, and the advisory lock inside the
// rebalance itself protects correctness if redis is down.
func main() {
	_ = godotenv.Load()
	logger := config.GetLogger()

	config.ConnectDatabaseWithRetry()
	config.ConnectRedis()

	ctx := context.Background()
	if locker := config.GetRedisLock(); locker != nil {
		lock, err := locker.Obtain(ctx, "daybook:rebalance", 10*time.Minute, nil)
		if err == redislock.ErrNotObtained {
			logger.Info("another rebalance run holds the lock; exiting")
			return
		}
		if err == nil {
			defer func() { _ = lock.Release(ctx) }()
		} else {
			logger.WithError(err).Warn("redis lock unavailable; continuing on advisory lock only")
		}
	}

	fixed, err := workflow.RebalanceDayBook(ctx, logger)
	if err != nil {
		logger.WithError(err).Error("rebalance failed")
		os.Exit(1)
	}
	logger.WithFields(logrus.Fields{"rows_fixed": fixed}).Info("daybook rebalance complete")
}

package health

import (
	"context"
	"runtime"
	"time"

	"github.com/go-faster/errors"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingCheck fails when the database cannot be reached.
func PingCheck(db Pinger) CheckFunc {
	return func(ctx context.Context) error {
		if err := db.Ping(ctx); err != nil {
			return errors.Wrap(err, "ping")
		}
		return nil
	}
}

// PoolStats reports connection pool usage.
type PoolStats func() (acquired, max int32)

// PoolSaturationCheck fails when every pooled connection is checked out.
// Cart mutations hold a row lock for the whole transaction, so a saturated
// pool means requests are queueing.
func PoolSaturationCheck(stats PoolStats) CheckFunc {
	return func(context.Context) error {
		acquired, limit := stats()
		if limit > 0 && acquired >= limit {
			return errors.Errorf("pool saturated: %d/%d connections in use", acquired, limit)
		}
		return nil
	}
}

// GoroutineCountCheck fails when the process runs more than threshold
// goroutines.
func GoroutineCountCheck(threshold int) CheckFunc {
	return func(context.Context) error {
		if n := runtime.NumGoroutine(); n > threshold {
			return errors.Errorf("goroutine count %d exceeds threshold %d", n, threshold)
		}
		return nil
	}
}

// GCMaxPauseCheck fails when a recent GC pause exceeded threshold.
func GCMaxPauseCheck(threshold time.Duration) CheckFunc {
	return func(context.Context) error {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		for _, ns := range ms.PauseNs {
			if pause := time.Duration(ns); pause > threshold {
				return errors.Errorf("GC pause %s exceeds threshold %s", pause, threshold)
			}
		}
		return nil
	}
}

// Package scheduler turns cron expressions into running periodic jobs. The
// preferred engine is robfig/cron; when it cannot serve the configured
// schedule at startup a fixed-interval engine takes over.
package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"go.uber.org/zap"
)

// Task is the unit of work invoked on every tick.
type Task func(ctx context.Context) error

// Options tune a single schedule.
type Options struct {
	// Timezone is an IANA name; empty means the engine default (UTC).
	Timezone string
	// Name identifies the schedule in logs.
	Name string
}

// Handle controls a scheduled task. A handle is running once Schedule
// returns; Start is idempotent and Stop permanently prevents further runs.
type Handle interface {
	Start()
	Stop()
}

// Engine registers periodic tasks.
type Engine interface {
	Schedule(spec string, task Task, opts Options) (Handle, error)
	// Name reports which implementation was selected.
	Name() string
	// Shutdown stops the driver and waits for in-flight ticks.
	Shutdown(ctx context.Context) error
}

// runTick executes one tick, recovering panics and logging failures so that
// a bad run never tears down the schedule.
func runTick(ctx context.Context, logger *zap.Logger, name string, task Task) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("scheduled task panicked",
				zap.String("job", name),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)
		}
	}()

	start := time.Now()
	if err := task(ctx); err != nil {
		logger.Error("scheduled task failed",
			zap.String("job", name),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
	}
}

func withTimezone(spec, tz string) string {
	if tz == "" {
		return spec
	}
	return fmt.Sprintf("CRON_TZ=%s %s", tz, spec)
}

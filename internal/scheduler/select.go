package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Probe describes what the cron engine must be able to serve.
type Probe struct {
	Timezone         string
	Spec             string
	FallbackInterval time.Duration
}

// SelectEngine runs the capability probe once and returns the engine every
// job in the process should use.
func SelectEngine(probe Probe, logger *zap.Logger) Engine {
	if err := checkCron(probe); err != nil {
		logger.Warn("cron engine unavailable, falling back to fixed interval",
			zap.String("timezone", probe.Timezone),
			zap.String("spec", probe.Spec),
			zap.Duration("interval", fallbackOrDefault(probe.FallbackInterval)),
			zap.Error(err),
		)
		return NewIntervalEngine(probe.FallbackInterval, logger)
	}
	return NewCronEngine(logger)
}

func checkCron(probe Probe) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cron probe panicked: %v", r)
		}
	}()

	if probe.Timezone != "" {
		if _, err := time.LoadLocation(probe.Timezone); err != nil {
			return fmt.Errorf("load timezone: %w", err)
		}
	}
	if _, err := cron.ParseStandard(withTimezone(probe.Spec, probe.Timezone)); err != nil {
		return fmt.Errorf("parse %q: %w", probe.Spec, err)
	}
	return nil
}

func fallbackOrDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return DefaultFallbackInterval
	}
	return d
}

package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// CronEngine schedules tasks on a shared robfig/cron driver using the
// standard five-field syntax.
type CronEngine struct {
	cron   *cron.Cron
	logger *zap.Logger
}

// NewCronEngine builds and starts the cron driver.
func NewCronEngine(logger *zap.Logger) *CronEngine {
	c := cron.New()
	c.Start()
	return &CronEngine{cron: c, logger: logger}
}

// Name implements Engine.
func (e *CronEngine) Name() string { return "cron" }

// Schedule implements Engine.
func (e *CronEngine) Schedule(spec string, task Task, opts Options) (Handle, error) {
	schedule, err := cron.ParseStandard(withTimezone(spec, opts.Timezone))
	if err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", spec, err)
	}

	h := &cronHandle{engine: e, schedule: schedule, task: task, opts: opts}
	h.Start()

	e.logger.Info("job scheduled",
		zap.String("job", opts.Name),
		zap.String("engine", e.Name()),
		zap.String("spec", spec),
		zap.String("timezone", opts.Timezone),
	)
	return h, nil
}

// Shutdown stops the driver and waits for running jobs to return.
func (e *CronEngine) Shutdown(ctx context.Context) error {
	done := e.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type cronHandle struct {
	engine   *CronEngine
	schedule cron.Schedule
	task     Task
	opts     Options

	mu      sync.Mutex
	entryID cron.EntryID
	active  bool
	stopped atomic.Bool
}

func (h *cronHandle) Start() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.active || h.stopped.Load() {
		return
	}
	h.entryID = h.engine.cron.Schedule(h.schedule, cron.FuncJob(h.fire))
	h.active = true
}

func (h *cronHandle) Stop() {
	if h.stopped.Swap(true) {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.active {
		h.engine.cron.Remove(h.entryID)
		h.active = false
	}
	h.engine.logger.Info("job stopped", zap.String("job", h.opts.Name))
}

func (h *cronHandle) fire() {
	// Remove does not cancel a tick the driver already dispatched.
	if h.stopped.Load() {
		return
	}
	runTick(context.Background(), h.engine.logger, h.opts.Name, h.task)
}

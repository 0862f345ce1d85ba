package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// DefaultFallbackInterval is the period used when cron is unavailable.
const DefaultFallbackInterval = 24 * time.Hour

type ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// IntervalEngine runs every task on a fixed period and ignores the cron
// expression.
type IntervalEngine struct {
	period    time.Duration
	logger    *zap.Logger
	newTicker func(time.Duration) ticker
	wg        sync.WaitGroup
}

// NewIntervalEngine returns the fallback engine.
func NewIntervalEngine(period time.Duration, logger *zap.Logger) *IntervalEngine {
	if period <= 0 {
		period = DefaultFallbackInterval
	}
	return &IntervalEngine{
		period: period,
		logger: logger,
		newTicker: func(d time.Duration) ticker {
			return timeTicker{t: time.NewTicker(d)}
		},
	}
}

// Name implements Engine.
func (e *IntervalEngine) Name() string { return "interval" }

// Schedule implements Engine. The spec is only logged.
func (e *IntervalEngine) Schedule(spec string, task Task, opts Options) (Handle, error) {
	h := &intervalHandle{
		engine: e,
		ticker: e.newTicker(e.period),
		task:   task,
		opts:   opts,
		done:   make(chan struct{}),
	}

	e.wg.Add(1)
	go h.loop()

	e.logger.Info("job scheduled",
		zap.String("job", opts.Name),
		zap.String("engine", e.Name()),
		zap.String("ignored_spec", spec),
		zap.Duration("period", e.period),
	)
	return h, nil
}

// Shutdown waits for every loop to exit. Handles must be stopped first.
func (e *IntervalEngine) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type intervalHandle struct {
	engine *IntervalEngine
	ticker ticker
	task   Task
	opts   Options

	done    chan struct{}
	once    sync.Once
	stopped atomic.Bool
}

// Start is a no-op: the interval is already running.
func (h *intervalHandle) Start() {}

func (h *intervalHandle) Stop() {
	h.once.Do(func() {
		h.stopped.Store(true)
		h.ticker.Stop()
		close(h.done)
		h.engine.logger.Info("job stopped", zap.String("job", h.opts.Name))
	})
}

func (h *intervalHandle) loop() {
	defer h.engine.wg.Done()
	for {
		select {
		case <-h.done:
			return
		case <-h.ticker.C():
			if h.stopped.Load() {
				return
			}
			runTick(context.Background(), h.engine.logger, h.opts.Name, h.task)
		}
	}
}

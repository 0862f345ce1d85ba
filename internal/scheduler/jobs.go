package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/property-notifier/internal/config"
	"github.com/spec-kit/property-notifier/internal/observability"
	"github.com/spec-kit/property-notifier/internal/service"
)

// Job names, also used as lock keys and metric labels.
const (
	JobOverdueInspections = "overdue-inspections"
	JobTrialReminders     = "trial-reminders"
	JobTrialExpiration    = "trial-expiration"
)

var (
	ErrUnknownJob = errors.New("unknown job")
	ErrJobRunning = errors.New("job already running")
)

// RunFunc performs one run of a job and returns its summary.
type RunFunc func(ctx context.Context) (any, error)

// Definition names a job and how it is triggered.
type Definition struct {
	Name     string
	Spec     string
	Timezone string
	Run      RunFunc
}

// OverdueRunner is satisfied by service.OverdueService.
type OverdueRunner interface {
	ProcessOverdueInspections(ctx context.Context) (service.OverdueSummary, error)
}

// TrialRunner is satisfied by service.TrialService.
type TrialRunner interface {
	CheckAndSendTrialReminders(ctx context.Context, reminderDays []int) ([]service.ReminderSent, error)
	ExpireTrials(ctx context.Context) (service.ExpireSummary, error)
}

// Jobs owns the scheduled jobs of the process and the overlap guard around
// each run.
type Jobs struct {
	engine      Engine
	local       *LocalLocker
	distributed Locker
	lockTTL     time.Duration
	metrics     *observability.Metrics
	logger      *zap.Logger

	mu      sync.RWMutex
	defs    map[string]Definition
	handles map[string]Handle
}

// NewJobs builds a registry. distributed may be nil, in which case only the
// in-process guard applies.
func NewJobs(engine Engine, distributed Locker, lockTTL time.Duration, metrics *observability.Metrics, logger *zap.Logger) *Jobs {
	return &Jobs{
		engine:      engine,
		local:       NewLocalLocker(),
		distributed: distributed,
		lockTTL:     lockTTL,
		metrics:     metrics,
		logger:      logger,
		defs:        make(map[string]Definition),
		handles:     make(map[string]Handle),
	}
}

// Define registers a job for manual runs without scheduling it.
func (j *Jobs) Define(def Definition) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.defs[def.Name] = def
}

// Schedule registers the job and hands it to the engine.
func (j *Jobs) Schedule(def Definition) (Handle, error) {
	j.Define(def)

	handle, err := j.engine.Schedule(def.Spec, func(ctx context.Context) error {
		_, err := j.execute(ctx, def)
		if errors.Is(err, ErrJobRunning) {
			return nil
		}
		return err
	}, Options{Timezone: def.Timezone, Name: def.Name})
	if err != nil {
		return nil, fmt.Errorf("schedule %s: %w", def.Name, err)
	}

	j.mu.Lock()
	j.handles[def.Name] = handle
	j.mu.Unlock()
	return handle, nil
}

// RunNow executes a job immediately, outside its schedule.
func (j *Jobs) RunNow(ctx context.Context, name string) (any, error) {
	j.mu.RLock()
	def, ok := j.defs[name]
	j.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	return j.execute(ctx, def)
}

// Handle returns the schedule handle of a job, if it was scheduled.
func (j *Jobs) Handle(name string) (Handle, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	h, ok := j.handles[name]
	return h, ok
}

// Names lists every defined job.
func (j *Jobs) Names() []string {
	j.mu.RLock()
	defer j.mu.RUnlock()
	names := make([]string, 0, len(j.defs))
	for name := range j.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StopAll stops every scheduled handle. Runs in progress finish normally.
func (j *Jobs) StopAll() {
	j.mu.Lock()
	defer j.mu.Unlock()
	for name, h := range j.handles {
		h.Stop()
		delete(j.handles, name)
	}
}

func (j *Jobs) execute(ctx context.Context, def Definition) (any, error) {
	unlock, ok, _ := j.local.TryLock(ctx, def.Name, j.lockTTL)
	if !ok {
		j.skipped(def.Name, "local")
		return nil, ErrJobRunning
	}
	defer unlock()

	if j.distributed != nil {
		release, ok, err := j.distributed.TryLock(ctx, def.Name, j.lockTTL)
		switch {
		case err != nil:
			j.logger.Warn("distributed job lock unavailable, continuing with local guard",
				zap.String("job", def.Name), zap.Error(err))
		case !ok:
			j.skipped(def.Name, "distributed")
			return nil, ErrJobRunning
		default:
			defer release()
		}
	}

	start := time.Now()
	result, err := def.Run(ctx)
	elapsed := time.Since(start)
	j.metrics.RecordJobRun(def.Name, err, elapsed)
	if err != nil {
		return nil, err
	}

	j.logger.Info("job finished",
		zap.String("job", def.Name),
		zap.Duration("elapsed", elapsed),
		zap.Any("result", result),
	)
	return result, nil
}

func (j *Jobs) skipped(name, guard string) {
	j.metrics.RecordJobSkipped(name)
	j.logger.Warn("job still running, skipping tick",
		zap.String("job", name),
		zap.String("guard", guard),
	)
}

// RegisterPropertyJobs wires the overdue-inspection and trial lifecycle jobs.
// A disabled overdue job is still available through RunNow.
func RegisterPropertyJobs(j *Jobs, cfg config.SchedulerConfig, overdue OverdueRunner, trials TrialRunner) error {
	overdueDef := Definition{
		Name:     JobOverdueInspections,
		Spec:     cfg.OverdueInspectionCron,
		Timezone: cfg.Timezone,
		Run: func(ctx context.Context) (any, error) {
			return overdue.ProcessOverdueInspections(ctx)
		},
	}
	if cfg.DisableOverdueCron {
		j.logger.Warn("overdue inspection cron disabled by configuration",
			zap.String("env", "DISABLE_OVERDUE_INSPECTION_CRON"))
		j.Define(overdueDef)
	} else if _, err := j.Schedule(overdueDef); err != nil {
		return err
	}

	reminderDays := cfg.TrialReminderDays
	defs := []Definition{
		{
			Name:     JobTrialReminders,
			Spec:     cfg.TrialReminderCron,
			Timezone: cfg.Timezone,
			Run: func(ctx context.Context) (any, error) {
				return trials.CheckAndSendTrialReminders(ctx, reminderDays)
			},
		},
		{
			Name:     JobTrialExpiration,
			Spec:     cfg.TrialExpirationCron,
			Timezone: cfg.Timezone,
			Run: func(ctx context.Context) (any, error) {
				return trials.ExpireTrials(ctx)
			},
		},
	}
	for _, def := range defs {
		if _, err := j.Schedule(def); err != nil {
			return err
		}
	}
	return nil
}

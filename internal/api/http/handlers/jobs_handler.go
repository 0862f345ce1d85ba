package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/property-notifier/internal/api/dto"
	"github.com/spec-kit/property-notifier/internal/scheduler"
	apperrors "github.com/spec-kit/property-notifier/pkg/util/errorutil"
)

// JobRunner is the part of the job registry used over HTTP.
type JobRunner interface {
	RunNow(ctx context.Context, name string) (any, error)
	Names() []string
}

// JobsHandler lets operators trigger scheduled jobs manually.
type JobsHandler struct {
	jobs   JobRunner
	engine string
	logger *zap.Logger
}

// NewJobsHandler constructs handler.
func NewJobsHandler(jobs JobRunner, engine string, logger *zap.Logger) *JobsHandler {
	return &JobsHandler{jobs: jobs, engine: engine, logger: logger}
}

// List handles GET /api/jobs.
func (h *JobsHandler) List(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": dto.JobListResponse{Jobs: h.jobs.Names(), Engine: h.engine}})
}

// Run handles POST /api/jobs/:name/run. The run completes before the
// response is written.
func (h *JobsHandler) Run(c *fiber.Ctx) error {
	name := c.Params("name")
	started := time.Now()

	result, err := h.jobs.RunNow(c.UserContext(), name)
	switch {
	case errors.Is(err, scheduler.ErrUnknownJob):
		return apperrors.NewNotFound("job", map[string]any{"name": name})
	case errors.Is(err, scheduler.ErrJobRunning):
		return apperrors.NewConflict("job already running", map[string]any{"name": name})
	case err != nil:
		h.logger.Error("manual job run failed", zap.String("job", name), zap.Error(err))
		return apperrors.MapError(err)
	}

	return c.JSON(fiber.Map{"data": dto.JobRunResponse{
		Job:        name,
		StartedAt:  started.UTC(),
		DurationMS: time.Since(started).Milliseconds(),
		Result:     result,
	}})
}

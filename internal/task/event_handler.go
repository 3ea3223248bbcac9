package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/boxofficehq/boxoffice-api/internal/events"
	"github.com/boxofficehq/boxoffice-api/internal/store"
)

// JobEventHandler implements the events.EventHandler interface. It
// loads the persisted job announced by an event, builds the executable
// task through the registry, and submits it to the runner.
type JobEventHandler struct {
	jobs     store.JobStore
	registry *Registry
	runner   *Runner
	logger   *slog.Logger
}

// Ensure JobEventHandler implements events.EventHandler
var _ events.EventHandler = (*JobEventHandler)(nil)

// NewJobEventHandler creates a new event handler wired to the given
// store, registry and runner.
func NewJobEventHandler(
	jobs store.JobStore,
	registry *Registry,
	runner *Runner,
	logger *slog.Logger,
) *JobEventHandler {
	return &JobEventHandler{
		jobs:     jobs,
		registry: registry,
		runner:   runner,
		logger:   logger.With("component", "job_event_handler"),
	}
}

// HandleEvent processes a job request by building and submitting the
// matching task.
func (h *JobEventHandler) HandleEvent(ctx context.Context, event *events.JobRequestEvent) error {
	job, err := h.jobs.GetJob(ctx, event.JobID)
	if err != nil {
		h.logger.Error("failed to load job for event",
			"error", err,
			"job_id", event.JobID,
			"event_id", event.ID)
		return fmt.Errorf("failed to load job: %w", err)
	}

	task, err := h.registry.Build(job)
	if err != nil {
		h.logger.Error("failed to build task",
			"error", err,
			"job_id", job.ID,
			"job_type", job.Type,
			"event_id", event.ID)
		return fmt.Errorf("failed to build task: %w", err)
	}

	if err := h.runner.Submit(ctx, task); err != nil {
		h.logger.Error("failed to submit task",
			"error", err,
			"job_id", job.ID,
			"job_type", job.Type,
			"event_id", event.ID)
		return fmt.Errorf("failed to submit task: %w", err)
	}

	h.logger.Info("task submitted",
		"job_id", job.ID,
		"job_type", job.Type,
		"event_id", event.ID)
	return nil
}

package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/boxofficehq/boxoffice-api/internal/domain"
	"github.com/boxofficehq/boxoffice-api/internal/service"
)

// checkinExportPayload is the serialized job payload for check-in list
// exports.
type checkinExportPayload struct {
	Event    string `json:"event"`
	ListName string `json:"list_name"`
}

// ErrEmptyExportEvent is returned when an export payload names no event.
var ErrEmptyExportEvent = errors.New("export event cannot be empty")

// CheckinExportTask generates a check-in list download in the
// background. On success the redirect target is the download URL of
// the generated file.
type CheckinExportTask struct {
	jobID   uuid.UUID
	payload checkinExportPayload
	exports service.ExportService
	logger  *slog.Logger
}

// Ensure CheckinExportTask implements Task
var _ Task = (*CheckinExportTask)(nil)

// NewCheckinExportTask builds the executable task for a persisted
// check-in export job.
func NewCheckinExportTask(
	job *domain.Job,
	exports service.ExportService,
	logger *slog.Logger,
) (*CheckinExportTask, error) {
	if job == nil {
		return nil, ErrNilJob
	}
	if exports == nil {
		return nil, ErrNilExportService
	}
	if logger == nil {
		return nil, ErrNilLogger
	}

	var payload checkinExportPayload
	if err := job.UnmarshalPayload(&payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal export payload: %w", err)
	}

	if payload.Event == "" {
		return nil, ErrEmptyExportEvent
	}

	if payload.ListName == "" {
		payload.ListName = "checkin"
	}

	return &CheckinExportTask{
		jobID:   job.ID,
		payload: payload,
		exports: exports,
		logger:  logger.With("task_type", TaskTypeCheckinExport, "event", payload.Event),
	}, nil
}

// ID returns the executed job's unique identifier.
func (t *CheckinExportTask) ID() uuid.UUID {
	return t.jobID
}

// Type returns the task type identifier.
func (t *CheckinExportTask) Type() string {
	return TaskTypeCheckinExport
}

// Execute generates the export and returns its download URL.
func (t *CheckinExportTask) Execute(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("task cancelled by context: %w", err)
	}

	t.logger.Info("generating check-in list", "list_name", t.payload.ListName)

	url, err := t.exports.GenerateCheckinList(ctx, t.payload.Event, t.payload.ListName)
	if err != nil {
		return "", fmt.Errorf("failed to generate check-in list: %w", err)
	}

	return url, nil
}

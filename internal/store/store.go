package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/boxofficehq/boxoffice-api/internal/domain"
)

// JobStore defines the interface for persisting background jobs.
type JobStore interface {
	// SaveJob persists a new job.
	SaveJob(ctx context.Context, job *domain.Job) error

	// GetJob retrieves a job by its ID. Returns ErrJobNotFound if no
	// job with the given ID exists.
	GetJob(ctx context.Context, id uuid.UUID) (*domain.Job, error)

	// UpdateJob persists the job's current status, redirect URL and
	// error message. Returns ErrJobNotFound if the job does not exist.
	UpdateJob(ctx context.Context, job *domain.Job) error

	// GetPendingJobs retrieves all jobs with "pending" status.
	GetPendingJobs(ctx context.Context) ([]*domain.Job, error)

	// GetProcessingJobs retrieves jobs with "processing" status.
	// If olderThan is non-zero, only jobs that have been in this state
	// longer than the specified duration are returned.
	GetProcessingJobs(ctx context.Context, olderThan time.Duration) ([]*domain.Job, error)
}

// DeviceStore defines the interface for persisting check-in devices.
type DeviceStore interface {
	// SaveDevice persists a new device.
	SaveDevice(ctx context.Context, device *domain.Device) error

	// GetDevice retrieves a device by its ID. Returns ErrDeviceNotFound
	// if no device with the given ID exists.
	GetDevice(ctx context.Context, id uuid.UUID) (*domain.Device, error)
}

package task

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/boxofficehq/boxoffice-api/internal/domain"
)

// Task type constants
const (
	// TaskTypeOrderPlacement confirms a pending ticket order.
	TaskTypeOrderPlacement = "order_placement"

	// TaskTypeCheckinExport produces a check-in list download.
	TaskTypeCheckinExport = "checkin_export"
)

// Common registry errors
var (
	ErrUnknownTaskType = errors.New("unknown task type")
	ErrNilJob          = errors.New("job cannot be nil")
)

// Task represents a unit of background work to be processed. The ID is
// the ID of the persisted job the task executes. Execute returns the
// redirect URL that polling clients are sent to once the job is ready.
type Task interface {
	// ID returns the executed job's unique identifier
	ID() uuid.UUID

	// Type returns the task type identifier
	Type() string

	// Execute runs the task logic and returns the redirect URL for the
	// completed job
	Execute(ctx context.Context) (string, error)
}

// Builder constructs an executable Task from a persisted job. Each job
// type registers one builder; recovery after a restart uses the same
// builders to turn stored rows back into runnable work.
type Builder func(job *domain.Job) (Task, error)

// Registry maps job types to task builders.
type Registry struct {
	mu       sync.RWMutex
	builders map[string]Builder
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		builders: make(map[string]Builder),
	}
}

// Register adds a builder for the given job type, replacing any
// existing registration.
func (r *Registry) Register(jobType string, builder Builder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builders[jobType] = builder
}

// Build constructs the executable task for the given job. Returns
// ErrUnknownTaskType if no builder is registered for the job's type.
func (r *Registry) Build(job *domain.Job) (Task, error) {
	if job == nil {
		return nil, ErrNilJob
	}

	r.mu.RLock()
	builder, ok := r.builders[job.Type]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTaskType, job.Type)
	}

	return builder(job)
}

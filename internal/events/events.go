package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JobRequestEvent announces that a job has been persisted in pending
// state and is waiting to be executed. It carries only identifiers;
// the handler loads the job payload from the store.
type JobRequestEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// JobID identifies the persisted job to execute
	JobID uuid.UUID `json:"job_id"`

	// JobType indicates which executor should handle the job
	JobType string `json:"job_type"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// NewJobRequestEvent creates a JobRequestEvent for the given job.
func NewJobRequestEvent(jobID uuid.UUID, jobType string) *JobRequestEvent {
	return &JobRequestEvent{
		ID:        uuid.New(),
		JobID:     jobID,
		JobType:   jobType,
		CreatedAt: time.Now().UTC(),
	}
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *JobRequestEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows the API layer to publish events without direct knowledge
// of the task runner.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *JobRequestEvent) error
}

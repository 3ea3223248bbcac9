package domain

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the processing state of a background job.
type JobStatus string

// Possible job status values
const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Common validation errors for Job
var (
	ErrEmptyJobID       = errors.New("job ID cannot be empty")
	ErrEmptyJobType     = errors.New("job type cannot be empty")
	ErrInvalidJobStatus = errors.New("invalid job status")
	ErrEmptyRedirectURL = errors.New("completed job requires a redirect URL")
)

// Job represents one unit of background work submitted through the shop
// API. It tracks the submitted payload, the processing state, and the
// terminal outcome: a redirect URL on success or an error message on
// failure. The redirect URL is what the status endpoint hands back to
// polling clients once the job is ready.
type Job struct {
	ID           uuid.UUID       `json:"id"`
	Type         string          `json:"type"`
	Payload      json.RawMessage `json:"payload"`
	Status       JobStatus       `json:"status"`
	RedirectURL  string          `json:"redirect_url,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// NewJob creates a pending Job of the given type. The payload is
// serialized to JSON and stored with the job so it survives restarts.
func NewJob(jobType string, payload interface{}) (*Job, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	job := &Job{
		ID:        uuid.New(),
		Type:      jobType,
		Payload:   data,
		Status:    JobStatusPending,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := job.Validate(); err != nil {
		return nil, err
	}

	return job, nil
}

// Validate checks if the Job has valid data.
func (j *Job) Validate() error {
	if j.ID == uuid.Nil {
		return ErrEmptyJobID
	}

	if j.Type == "" {
		return ErrEmptyJobType
	}

	if !isValidJobStatus(j.Status) {
		return ErrInvalidJobStatus
	}

	if j.Status == JobStatusCompleted && j.RedirectURL == "" {
		return ErrEmptyRedirectURL
	}

	return nil
}

// MarkProcessing transitions the job into the processing state.
func (j *Job) MarkProcessing() {
	j.Status = JobStatusProcessing
	j.UpdatedAt = time.Now().UTC()
}

// Complete transitions the job into the completed state with the
// redirect URL that polling clients should be sent to.
func (j *Job) Complete(redirectURL string) error {
	if redirectURL == "" {
		return ErrEmptyRedirectURL
	}

	j.Status = JobStatusCompleted
	j.RedirectURL = redirectURL
	j.ErrorMessage = ""
	j.UpdatedAt = time.Now().UTC()
	return nil
}

// Fail transitions the job into the failed state with a user-facing
// error message.
func (j *Job) Fail(message string) {
	j.Status = JobStatusFailed
	j.ErrorMessage = message
	j.UpdatedAt = time.Now().UTC()
}

// Ready reports whether the job has finished successfully and carries
// a redirect target.
func (j *Job) Ready() bool {
	return j.Status == JobStatusCompleted && j.RedirectURL != ""
}

// UnmarshalPayload decodes the stored payload into the provided structure.
func (j *Job) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(j.Payload, v)
}

// isValidJobStatus checks if the given status is a valid JobStatus.
func isValidJobStatus(status JobStatus) bool {
	switch status {
	case JobStatusPending, JobStatusProcessing, JobStatusCompleted, JobStatusFailed:
		return true
	default:
		return false
	}
}

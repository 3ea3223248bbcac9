package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/boxofficehq/boxoffice-api/internal/domain"
)

// MemoryJobStore is an in-memory JobStore implementation used in
// development deployments and tests. All operations copy the job so
// callers never share mutable state with the store.
type MemoryJobStore struct {
	mu   sync.RWMutex
	jobs map[uuid.UUID]domain.Job
}

// Ensure MemoryJobStore implements JobStore
var _ JobStore = (*MemoryJobStore)(nil)

// NewMemoryJobStore creates an empty MemoryJobStore.
func NewMemoryJobStore() *MemoryJobStore {
	return &MemoryJobStore{
		jobs: make(map[uuid.UUID]domain.Job),
	}
}

// SaveJob persists a new job.
func (s *MemoryJobStore) SaveJob(ctx context.Context, job *domain.Job) error {
	if err := job.Validate(); err != nil {
		return ErrInvalidEntity
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = *job
	return nil
}

// GetJob retrieves a job by its ID.
func (s *MemoryJobStore) GetJob(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}

	copied := job
	return &copied, nil
}

// UpdateJob persists the job's current state.
func (s *MemoryJobStore) UpdateJob(ctx context.Context, job *domain.Job) error {
	if err := job.Validate(); err != nil {
		return ErrInvalidEntity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[job.ID]; !ok {
		return ErrJobNotFound
	}

	s.jobs[job.ID] = *job
	return nil
}

// GetPendingJobs retrieves all jobs with "pending" status.
func (s *MemoryJobStore) GetPendingJobs(ctx context.Context) ([]*domain.Job, error) {
	return s.jobsByStatus(domain.JobStatusPending, 0), nil
}

// GetProcessingJobs retrieves jobs with "processing" status, optionally
// filtered to those untouched for longer than olderThan.
func (s *MemoryJobStore) GetProcessingJobs(
	ctx context.Context,
	olderThan time.Duration,
) ([]*domain.Job, error) {
	return s.jobsByStatus(domain.JobStatusProcessing, olderThan), nil
}

func (s *MemoryJobStore) jobsByStatus(status domain.JobStatus, olderThan time.Duration) []*domain.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff := time.Now().UTC().Add(-olderThan)

	var result []*domain.Job
	for _, job := range s.jobs {
		if job.Status != status {
			continue
		}
		if olderThan > 0 && !job.UpdatedAt.Before(cutoff) {
			continue
		}
		copied := job
		result = append(result, &copied)
	}
	return result
}

// MemoryDeviceStore is an in-memory DeviceStore implementation.
// Devices are provisioned at startup, so the store only grows.
type MemoryDeviceStore struct {
	mu      sync.RWMutex
	devices map[uuid.UUID]domain.Device
}

// Ensure MemoryDeviceStore implements DeviceStore
var _ DeviceStore = (*MemoryDeviceStore)(nil)

// NewMemoryDeviceStore creates an empty MemoryDeviceStore.
func NewMemoryDeviceStore() *MemoryDeviceStore {
	return &MemoryDeviceStore{
		devices: make(map[uuid.UUID]domain.Device),
	}
}

// SaveDevice persists a new device.
func (s *MemoryDeviceStore) SaveDevice(ctx context.Context, device *domain.Device) error {
	if err := device.Validate(); err != nil {
		return ErrInvalidEntity
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.devices[device.ID] = *device
	return nil
}

// GetDevice retrieves a device by its ID.
func (s *MemoryDeviceStore) GetDevice(ctx context.Context, id uuid.UUID) (*domain.Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	device, ok := s.devices[id]
	if !ok {
		return nil, ErrDeviceNotFound
	}

	copied := device
	return &copied, nil
}

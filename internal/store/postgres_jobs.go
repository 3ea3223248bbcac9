package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/boxofficehq/boxoffice-api/internal/domain"
	"github.com/boxofficehq/boxoffice-api/internal/platform/logger"
)

// PostgresJobStore implements the JobStore interface using PostgreSQL.
type PostgresJobStore struct {
	db DBTX
}

// Ensure PostgresJobStore implements JobStore
var _ JobStore = (*PostgresJobStore)(nil)

// NewPostgresJobStore creates a new PostgresJobStore.
func NewPostgresJobStore(db DBTX) *PostgresJobStore {
	return &PostgresJobStore{
		db: db,
	}
}

// SaveJob persists a new job to the database.
func (s *PostgresJobStore) SaveJob(ctx context.Context, job *domain.Job) error {
	log := logger.FromContext(ctx)

	if err := job.Validate(); err != nil {
		return ErrInvalidEntity
	}

	query := `
		INSERT INTO jobs (id, type, payload, status, redirect_url, error_message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.db.ExecContext(ctx, query,
		job.ID,
		job.Type,
		[]byte(job.Payload),
		job.Status,
		job.RedirectURL,
		job.ErrorMessage,
		job.CreatedAt,
		job.UpdatedAt,
	)

	if err != nil {
		log.Error("failed to save job",
			"job_id", job.ID,
			"job_type", job.Type,
			"error", err)
		return fmt.Errorf("failed to save job to database: %w", err)
	}

	return nil
}

// GetJob retrieves a job by its ID.
func (s *PostgresJobStore) GetJob(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	query := `
		SELECT id, type, payload, status, redirect_url, error_message, created_at, updated_at
		FROM jobs
		WHERE id = $1
	`

	row := s.db.QueryRowContext(ctx, query, id)
	job, err := scanJob(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	return job, nil
}

// UpdateJob persists the job's current status, redirect URL and error message.
func (s *PostgresJobStore) UpdateJob(ctx context.Context, job *domain.Job) error {
	log := logger.FromContext(ctx)

	if err := job.Validate(); err != nil {
		return ErrInvalidEntity
	}

	query := `
		UPDATE jobs
		SET status = $1, redirect_url = $2, error_message = $3, updated_at = $4
		WHERE id = $5
	`

	result, err := s.db.ExecContext(ctx, query,
		job.Status,
		job.RedirectURL,
		job.ErrorMessage,
		job.UpdatedAt,
		job.ID,
	)

	if err != nil {
		log.Error("failed to update job",
			"job_id", job.ID,
			"status", job.Status,
			"error", err)
		return fmt.Errorf("failed to update job: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrJobNotFound
	}

	return nil
}

// GetPendingJobs retrieves all jobs with "pending" status.
func (s *PostgresJobStore) GetPendingJobs(ctx context.Context) ([]*domain.Job, error) {
	return s.getJobsByStatus(ctx, domain.JobStatusPending, 0)
}

// GetProcessingJobs retrieves jobs with "processing" status.
func (s *PostgresJobStore) GetProcessingJobs(
	ctx context.Context,
	olderThan time.Duration,
) ([]*domain.Job, error) {
	return s.getJobsByStatus(ctx, domain.JobStatusProcessing, olderThan)
}

// getJobsByStatus returns jobs in the given status, optionally filtered
// to those whose last update is older than the given duration.
func (s *PostgresJobStore) getJobsByStatus(
	ctx context.Context,
	status domain.JobStatus,
	olderThan time.Duration,
) ([]*domain.Job, error) {
	log := logger.FromContext(ctx)

	var query string
	var args []interface{}

	if olderThan > 0 {
		query = `
			SELECT id, type, payload, status, redirect_url, error_message, created_at, updated_at
			FROM jobs
			WHERE status = $1 AND updated_at < $2
			ORDER BY created_at ASC
		`
		args = []interface{}{status, time.Now().UTC().Add(-olderThan)}
	} else {
		query = `
			SELECT id, type, payload, status, redirect_url, error_message, created_at, updated_at
			FROM jobs
			WHERE status = $1
			ORDER BY created_at ASC
		`
		args = []interface{}{status}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query jobs by status",
			"status", status,
			"error", err)
		return nil, fmt.Errorf("failed to query jobs by status: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var jobs []*domain.Job
	for rows.Next() {
		job, err := scanJob(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job row: %w", err)
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating job rows: %w", err)
	}

	return jobs, nil
}

// scanJob maps one jobs row into a domain.Job.
func scanJob(scan func(dest ...any) error) (*domain.Job, error) {
	var job domain.Job
	var payload []byte
	var redirectURL sql.NullString
	var errorMessage sql.NullString

	err := scan(
		&job.ID,
		&job.Type,
		&payload,
		&job.Status,
		&redirectURL,
		&errorMessage,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	job.Payload = payload
	job.RedirectURL = redirectURL.String
	job.ErrorMessage = errorMessage.String
	return &job, nil
}

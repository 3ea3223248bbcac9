package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boxofficehq/boxoffice-api/internal/domain"
	"github.com/boxofficehq/boxoffice-api/internal/store"
)

// saveJob persists a pending job and returns it.
func saveJob(t *testing.T, jobs store.JobStore, jobType string) *domain.Job {
	t.Helper()
	job, err := domain.NewJob(jobType, nil)
	require.NoError(t, err)
	require.NoError(t, jobs.SaveJob(context.Background(), job))
	return job
}

// mockRegistry returns a registry whose "mock" builder produces tasks
// running execFn.
func mockRegistry(execFn func(ctx context.Context) (string, error)) *Registry {
	registry := NewRegistry()
	registry.Register("mock", func(job *domain.Job) (Task, error) {
		return &mockTask{id: job.ID, taskType: "mock", execFn: execFn}, nil
	})
	return registry
}

func testRunnerConfig() RunnerConfig {
	return RunnerConfig{
		WorkerCount:            1,
		QueueSize:              10,
		StuckTaskAge:           time.Hour,
		StuckTaskCheckInterval: time.Hour,
	}
}

func TestRunnerCompletesJob(t *testing.T) {
	jobs := store.NewMemoryJobStore()
	registry := mockRegistry(nil)
	runner := NewRunner(jobs, registry, testRunnerConfig(), setupTestLogger())

	job := saveJob(t, jobs, "mock")
	task, err := registry.Build(job)
	require.NoError(t, err)

	require.NoError(t, runner.Start())
	defer runner.Stop()

	require.NoError(t, runner.Submit(context.Background(), task))

	require.Eventually(t, func() bool {
		got, err := jobs.GetJob(context.Background(), job.ID)
		return err == nil && got.Ready()
	}, 2*time.Second, 10*time.Millisecond)

	got, err := jobs.GetJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusCompleted, got.Status)
	assert.Equal(t, "/done", got.RedirectURL)
}

func TestRunnerFailsJob(t *testing.T) {
	jobs := store.NewMemoryJobStore()
	registry := mockRegistry(func(ctx context.Context) (string, error) {
		return "", errors.New("quota exceeded")
	})
	runner := NewRunner(jobs, registry, testRunnerConfig(), setupTestLogger())

	job := saveJob(t, jobs, "mock")
	task, err := registry.Build(job)
	require.NoError(t, err)

	require.NoError(t, runner.Start())
	defer runner.Stop()

	require.NoError(t, runner.Submit(context.Background(), task))

	require.Eventually(t, func() bool {
		got, err := jobs.GetJob(context.Background(), job.ID)
		return err == nil && got.Status == domain.JobStatusFailed
	}, 2*time.Second, 10*time.Millisecond)

	got, err := jobs.GetJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Contains(t, got.ErrorMessage, "quota exceeded")
}

func TestRunnerEmptyRedirectFailsJob(t *testing.T) {
	jobs := store.NewMemoryJobStore()
	registry := mockRegistry(func(ctx context.Context) (string, error) {
		return "", nil
	})
	runner := NewRunner(jobs, registry, testRunnerConfig(), setupTestLogger())

	job := saveJob(t, jobs, "mock")
	task, err := registry.Build(job)
	require.NoError(t, err)

	require.NoError(t, runner.Start())
	defer runner.Stop()

	require.NoError(t, runner.Submit(context.Background(), task))

	require.Eventually(t, func() bool {
		got, err := jobs.GetJob(context.Background(), job.ID)
		return err == nil && got.Status == domain.JobStatusFailed
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRunnerRecover(t *testing.T) {
	jobs := store.NewMemoryJobStore()
	registry := mockRegistry(nil)

	// One job left pending, one interrupted mid-processing.
	pending := saveJob(t, jobs, "mock")
	interrupted := saveJob(t, jobs, "mock")
	interrupted.MarkProcessing()
	require.NoError(t, jobs.UpdateJob(context.Background(), interrupted))

	runner := NewRunner(jobs, registry, testRunnerConfig(), setupTestLogger())
	require.NoError(t, runner.Start())
	defer runner.Stop()

	for _, job := range []*domain.Job{pending, interrupted} {
		jobID := job.ID
		require.Eventually(t, func() bool {
			got, err := jobs.GetJob(context.Background(), jobID)
			return err == nil && got.Ready()
		}, 2*time.Second, 10*time.Millisecond, "job %s not recovered", jobID)
	}
}

func TestRegistryUnknownType(t *testing.T) {
	registry := NewRegistry()

	job, err := domain.NewJob("unregistered", nil)
	require.NoError(t, err)

	_, err = registry.Build(job)
	assert.ErrorIs(t, err, ErrUnknownTaskType)
}

func TestRegistryNilJob(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Build(nil)
	assert.ErrorIs(t, err, ErrNilJob)
}

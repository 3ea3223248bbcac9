package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/boxofficehq/boxoffice-api/internal/domain"
	"github.com/boxofficehq/boxoffice-api/internal/store"
)

// RunnerConfig holds configuration for the task runner.
type RunnerConfig struct {
	// WorkerCount determines how many concurrent workers process tasks
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory task queue
	QueueSize int

	// StuckTaskAge defines how long a job can be in processing state
	// before it's considered stuck and reset
	StuckTaskAge time.Duration

	// StuckTaskCheckInterval defines how often to check for stuck jobs.
	// If zero, defaults to 5 minutes.
	StuckTaskCheckInterval time.Duration
}

// DefaultRunnerConfig returns a RunnerConfig with reasonable defaults.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		WorkerCount:            2,
		QueueSize:              100,
		StuckTaskAge:           30 * time.Minute,
		StuckTaskCheckInterval: 5 * time.Minute,
	}
}

// Runner manages background job processing. It drains the task queue
// with a pool of workers, keeps job rows in the store up to date, and
// recovers unfinished jobs after a restart.
type Runner struct {
	jobs       store.JobStore
	registry   *Registry
	queue      *TaskQueue
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	config     RunnerConfig
	logger     *slog.Logger
}

// NewRunner creates a new Runner.
func NewRunner(jobs store.JobStore, registry *Registry, config RunnerConfig, logger *slog.Logger) *Runner {
	if config.StuckTaskCheckInterval == 0 {
		config.StuckTaskCheckInterval = 5 * time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Runner{
		jobs:       jobs,
		registry:   registry,
		queue:      NewTaskQueue(config.QueueSize, logger),
		ctx:        ctx,
		cancelFunc: cancel,
		config:     config,
		logger:     logger.With("component", "task_runner"),
	}
}

// Submit adds a task for an already persisted job to the queue.
func (r *Runner) Submit(ctx context.Context, task Task) error {
	if err := r.queue.Enqueue(task); err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}
	return nil
}

// Start recovers unfinished jobs and launches the worker pool.
func (r *Runner) Start() error {
	if err := r.Recover(); err != nil {
		return fmt.Errorf("failed to recover jobs: %w", err)
	}

	for i := 0; i < r.config.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}

	r.wg.Add(1)
	go r.stuckJobMonitor()

	return nil
}

// Stop gracefully shuts down the task runner.
func (r *Runner) Stop() {
	r.cancelFunc()
	r.queue.Close()
	r.wg.Wait()
}

// Recover loads unfinished jobs from the store and requeues them.
// Jobs interrupted mid-processing are reset to pending first.
func (r *Runner) Recover() error {
	ctx := context.Background()

	pendingJobs, err := r.jobs.GetPendingJobs(ctx)
	if err != nil {
		return fmt.Errorf("failed to get pending jobs: %w", err)
	}

	processingJobs, err := r.jobs.GetProcessingJobs(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to get processing jobs: %w", err)
	}

	r.logger.Info("recovering unfinished jobs",
		"pending_count", len(pendingJobs),
		"processing_count", len(processingJobs))

	for _, job := range pendingJobs {
		r.requeue(job)
	}

	for _, job := range processingJobs {
		job.Status = domain.JobStatusPending
		job.UpdatedAt = time.Now().UTC()
		if err := r.jobs.UpdateJob(ctx, job); err != nil {
			r.logger.Error("failed to reset processing job",
				"job_id", job.ID,
				"job_type", job.Type,
				"error", err)
			continue
		}
		r.requeue(job)
	}

	return nil
}

// requeue rebuilds the executable task for a recovered job and puts it
// back on the queue.
func (r *Runner) requeue(job *domain.Job) {
	task, err := r.registry.Build(job)
	if err != nil {
		r.logger.Error("failed to rebuild task for recovered job",
			"job_id", job.ID,
			"job_type", job.Type,
			"error", err)
		return
	}

	if err := r.queue.Enqueue(task); err != nil {
		r.logger.Error("failed to requeue job",
			"job_id", job.ID,
			"job_type", job.Type,
			"error", err)
	}
}

// worker processes tasks from the queue until shutdown.
func (r *Runner) worker(id int) {
	defer r.wg.Done()

	r.logger.Debug("starting worker", "worker_id", id)

	for {
		select {
		case <-r.ctx.Done():
			r.logger.Debug("stopping worker", "worker_id", id)
			return

		case task, ok := <-r.queue.Chan():
			if !ok {
				r.logger.Debug("task queue closed, stopping worker", "worker_id", id)
				return
			}
			r.processTask(task, id)
		}
	}
}

// processTask handles execution of a single task, keeping the job row
// in sync with every transition.
func (r *Runner) processTask(task Task, workerID int) {
	ctx := context.Background()
	logger := r.logger.With(
		"job_id", task.ID(),
		"task_type", task.Type(),
		"worker_id", workerID,
	)

	job, err := r.jobs.GetJob(ctx, task.ID())
	if err != nil {
		logger.Error("failed to load job for task", "error", err)
		return
	}

	job.MarkProcessing()
	if err := r.jobs.UpdateJob(ctx, job); err != nil {
		logger.Error("failed to update job status to processing", "error", err)
		return
	}

	logger.Info("processing job")

	redirectURL, err := task.Execute(ctx)

	if err != nil {
		logger.Error("job execution failed", "error", err)
		job.Fail(err.Error())
		if updateErr := r.jobs.UpdateJob(ctx, job); updateErr != nil {
			logger.Error("failed to update job status to failed", "error", updateErr)
		}
		return
	}

	if completeErr := job.Complete(redirectURL); completeErr != nil {
		logger.Error("task produced invalid completion", "error", completeErr)
		job.Fail("internal error")
		if updateErr := r.jobs.UpdateJob(ctx, job); updateErr != nil {
			logger.Error("failed to update job status to failed", "error", updateErr)
		}
		return
	}

	if err := r.jobs.UpdateJob(ctx, job); err != nil {
		logger.Error("failed to update job status to completed", "error", err)
		return
	}

	logger.Info("job completed successfully", "redirect_url", redirectURL)
}

// stuckJobMonitor periodically checks for jobs that have been in
// "processing" state for too long and resets them.
func (r *Runner) stuckJobMonitor() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.StuckTaskCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return

		case <-ticker.C:
			ctx := context.Background()

			stuckJobs, err := r.jobs.GetProcessingJobs(ctx, r.config.StuckTaskAge)
			if err != nil {
				r.logger.Error("failed to check for stuck jobs", "error", err)
				continue
			}

			if len(stuckJobs) == 0 {
				continue
			}

			r.logger.Info("found stuck jobs", "count", len(stuckJobs))

			for _, job := range stuckJobs {
				job.Status = domain.JobStatusPending
				job.UpdatedAt = time.Now().UTC()
				if err := r.jobs.UpdateJob(ctx, job); err != nil {
					r.logger.Error("failed to reset stuck job",
						"job_id", job.ID,
						"job_type", job.Type,
						"error", err)
					continue
				}
				r.requeue(job)
			}
		}
	}
}

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

// Common errors
var (
	ErrNilOrderService  = errors.New("order service cannot be nil")
	ErrNilExportService = errors.New("export service cannot be nil")
	ErrNilLogger        = errors.New("logger cannot be nil")
)

// OrderPlacementTask confirms a pending ticket order in the background.
// The job payload is the order itself; on success the redirect target
// is the order's shop URL.
type OrderPlacementTask struct {
	jobID  uuid.UUID
	order  domain.Order
	orders service.OrderService
	logger *slog.Logger
}

// Ensure OrderPlacementTask implements Task
var _ Task = (*OrderPlacementTask)(nil)

// NewOrderPlacementTask builds the executable task for a persisted
// order placement job.
func NewOrderPlacementTask(
	job *domain.Job,
	orders service.OrderService,
	logger *slog.Logger,
) (*OrderPlacementTask, error) {
	if job == nil {
		return nil, ErrNilJob
	}
	if orders == nil {
		return nil, ErrNilOrderService
	}
	if logger == nil {
		return nil, ErrNilLogger
	}

	var order domain.Order
	if err := job.UnmarshalPayload(&order); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order payload: %w", err)
	}

	if err := order.Validate(); err != nil {
		return nil, fmt.Errorf("invalid order payload: %w", err)
	}

	return &OrderPlacementTask{
		jobID:  job.ID,
		order:  order,
		orders: orders,
		logger: logger.With("task_type", TaskTypeOrderPlacement, "order_code", order.Code),
	}, nil
}

// ID returns the executed job's unique identifier.
func (t *OrderPlacementTask) ID() uuid.UUID {
	return t.jobID
}

// Type returns the task type identifier.
func (t *OrderPlacementTask) Type() string {
	return TaskTypeOrderPlacement
}

// Execute confirms the order and returns its shop URL.
func (t *OrderPlacementTask) Execute(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("task cancelled by context: %w", err)
	}

	t.logger.Info("confirming order", "event", t.order.Event)

	if err := t.orders.ConfirmOrder(ctx, &t.order); err != nil {
		return "", fmt.Errorf("failed to confirm order: %w", err)
	}

	return t.order.URL(), nil
}

package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/boxofficehq/boxoffice-api/internal/domain"
	"github.com/boxofficehq/boxoffice-api/internal/store"
)

// OrderService confirms ticket orders against event capacity.
type OrderService interface {
	// ConfirmOrder checks the event's remaining capacity and persists
	// the order. Returns ErrUnknownEvent or ErrQuotaExceeded on refusal.
	ConfirmOrder(ctx context.Context, order *domain.Order) error
}

// orderService is the default OrderService implementation. Event
// capacities are fixed at construction; a capacity of zero means the
// event is not on sale through this installation.
type orderService struct {
	orders     store.OrderStore
	capacities map[string]int
	logger     *slog.Logger
}

// Ensure orderService implements OrderService
var _ OrderService = (*orderService)(nil)

// NewOrderService creates an OrderService with the given per-event
// order capacities.
func NewOrderService(
	orders store.OrderStore,
	capacities map[string]int,
	logger *slog.Logger,
) OrderService {
	return &orderService{
		orders:     orders,
		capacities: capacities,
		logger:     logger.With("component", "order_service"),
	}
}

// ConfirmOrder checks capacity and persists the order.
func (s *orderService) ConfirmOrder(ctx context.Context, order *domain.Order) error {
	capacity, ok := s.capacities[order.Event]
	if !ok || capacity <= 0 {
		return fmt.Errorf("%w: %s", ErrUnknownEvent, order.Event)
	}

	confirmed, err := s.orders.CountByEvent(ctx, order.Event)
	if err != nil {
		return fmt.Errorf("failed to count confirmed orders: %w", err)
	}

	if confirmed >= capacity {
		s.logger.Warn("order refused, quota exceeded",
			"event", order.Event,
			"capacity", capacity,
			"confirmed", confirmed)
		return ErrQuotaExceeded
	}

	if err := s.orders.SaveOrder(ctx, order); err != nil {
		return fmt.Errorf("failed to save order: %w", err)
	}

	s.logger.Info("order confirmed",
		"event", order.Event,
		"order_code", order.Code,
		"total", order.Total())
	return nil
}

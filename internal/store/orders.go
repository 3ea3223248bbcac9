package store

import (
	"context"
	"errors"
	"sync"

	"github.com/boxofficehq/boxoffice-api/internal/domain"
)

// Common order store errors
var (
	ErrOrderNotFound = errors.New("order not found")
	ErrDuplicateCode = errors.New("order code already exists")
)

// OrderStore defines the interface for persisting confirmed orders.
type OrderStore interface {
	// SaveOrder persists a confirmed order.
	SaveOrder(ctx context.Context, order *domain.Order) error

	// GetOrderByCode retrieves an order by its code within an event.
	// Returns ErrOrderNotFound if no such order exists.
	GetOrderByCode(ctx context.Context, event, code string) (*domain.Order, error)

	// CountByEvent returns the number of confirmed orders for an event.
	CountByEvent(ctx context.Context, event string) (int, error)

	// ListByEvent returns all confirmed orders for an event.
	ListByEvent(ctx context.Context, event string) ([]*domain.Order, error)
}

// orderKey identifies an order within an event.
type orderKey struct {
	event string
	code  string
}

// MemoryOrderStore is an in-memory OrderStore implementation.
type MemoryOrderStore struct {
	mu     sync.RWMutex
	orders map[orderKey]domain.Order
}

// Ensure MemoryOrderStore implements OrderStore
var _ OrderStore = (*MemoryOrderStore)(nil)

// NewMemoryOrderStore creates an empty MemoryOrderStore.
func NewMemoryOrderStore() *MemoryOrderStore {
	return &MemoryOrderStore{
		orders: make(map[orderKey]domain.Order),
	}
}

// SaveOrder persists a confirmed order.
func (s *MemoryOrderStore) SaveOrder(ctx context.Context, order *domain.Order) error {
	if err := order.Validate(); err != nil {
		return ErrInvalidEntity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := orderKey{event: order.Event, code: order.Code}
	if _, ok := s.orders[key]; ok {
		return ErrDuplicateCode
	}

	s.orders[key] = *order
	return nil
}

// GetOrderByCode retrieves an order by its code within an event.
func (s *MemoryOrderStore) GetOrderByCode(
	ctx context.Context,
	event, code string,
) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[orderKey{event: event, code: code}]
	if !ok {
		return nil, ErrOrderNotFound
	}

	copied := order
	return &copied, nil
}

// CountByEvent returns the number of confirmed orders for an event.
func (s *MemoryOrderStore) CountByEvent(ctx context.Context, event string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for key := range s.orders {
		if key.event == event {
			count++
		}
	}
	return count, nil
}

// ListByEvent returns all confirmed orders for an event.
func (s *MemoryOrderStore) ListByEvent(ctx context.Context, event string) ([]*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var orders []*domain.Order
	for key, order := range s.orders {
		if key.event == event {
			copied := order
			orders = append(orders, &copied)
		}
	}
	return orders, nil
}

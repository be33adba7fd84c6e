package memory

import (
	"context"
	"sync"

	"dispatch/internal/domain"
	"dispatch/internal/repository"
)

// OrderRepository is an in-memory implementation of repository.OrderRepository.
// It is the reference entity store: a map guarded by a RWMutex, returning
// copies so callers never share mutable state with the store.
type OrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order
}

// NewOrderRepository creates a new in-memory order repository.
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{
		orders: make(map[string]*domain.Order),
	}
}

// Create persists a new order.
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[order.ID]; ok {
		return repository.ErrAlreadyExists
	}
	stored := *order
	r.orders[order.ID] = &stored
	return nil
}

// GetByID retrieves an order by ID.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *order
	return &copy, nil
}

// GetByStatus retrieves all orders with the given status.
func (r *OrderRepository) GetByStatus(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []*domain.Order
	for _, o := range r.orders {
		if o.Status == status {
			copy := *o
			result = append(result, &copy)
		}
	}
	return result, nil
}

// GetAll retrieves all orders.
func (r *OrderRepository) GetAll(ctx context.Context) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]*domain.Order, 0, len(r.orders))
	for _, o := range r.orders {
		copy := *o
		result = append(result, &copy)
	}
	return result, nil
}

// Update updates an existing order.
func (r *OrderRepository) Update(ctx context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[order.ID]; !ok {
		return repository.ErrNotFound
	}
	stored := *order
	r.orders[order.ID] = &stored
	return nil
}

var _ repository.OrderRepository = (*OrderRepository)(nil)

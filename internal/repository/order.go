package repository

import (
	"context"

	"dispatch/internal/domain"
)

// OrderRepository defines the persistence operations for orders.
type OrderRepository interface {
	// Create persists a new order.
	Create(ctx context.Context, order *domain.Order) error

	// GetByID retrieves an order by ID.
	GetByID(ctx context.Context, id string) (*domain.Order, error)

	// GetByStatus retrieves all orders with the given status.
	GetByStatus(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error)

	// GetAll retrieves all orders.
	GetAll(ctx context.Context) ([]*domain.Order, error)

	// Update updates an existing order.
	Update(ctx context.Context, order *domain.Order) error
}

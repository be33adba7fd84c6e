package postgres

import (
	"context"
	"database/sql"
	"errors"

	"dispatch/internal/domain"
	"dispatch/internal/repository"
)

// OrderRepository is a PostgreSQL implementation of repository.OrderRepository.
type OrderRepository struct {
	q Querier
}

// NewOrderRepository creates a new PostgreSQL order repository.
func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{q: db}
}

// NewOrderRepositoryWithTx creates an order repository using a transaction.
func NewOrderRepositoryWithTx(tx *sql.Tx) *OrderRepository {
	return &OrderRepository{q: tx}
}

const orderColumns = `id, passenger_id, driver_id, status, vehicle_type,
	pickup_x, pickup_y, dropoff_x, dropoff_y,
	estimated_fare, actual_fare, distance, duration, cancel_fee, cancelled_by,
	created_at, accepted_at, started_at, completed_at, cancelled_at`

// Create persists a new order.
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`

	_, err := r.q.ExecContext(ctx, query,
		order.ID,
		order.PassengerID,
		nullString(order.DriverID),
		order.Status,
		order.VehicleType,
		order.Pickup.X,
		order.Pickup.Y,
		order.Dropoff.X,
		order.Dropoff.Y,
		order.EstimatedFare,
		order.ActualFare,
		order.Distance,
		order.Duration,
		order.CancelFee,
		nullString(order.CancelledBy),
		order.CreatedAt,
		nullTime(order.AcceptedAt),
		nullTime(order.StartedAt),
		nullTime(order.CompletedAt),
		nullTime(order.CancelledAt),
	)

	return err
}

// GetByID retrieves an order by ID.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return order, nil
}

// GetByStatus retrieves all orders with the given status.
func (r *OrderRepository) GetByStatus(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE status = $1 ORDER BY created_at`

	rows, err := r.q.QueryContext(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

// GetAll retrieves all orders.
func (r *OrderRepository) GetAll(ctx context.Context) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

// Update updates an existing order.
func (r *OrderRepository) Update(ctx context.Context, order *domain.Order) error {
	query := `
		UPDATE orders
		SET driver_id = $1, status = $2, estimated_fare = $3, actual_fare = $4,
		    duration = $5, cancel_fee = $6, cancelled_by = $7,
		    accepted_at = $8, started_at = $9, completed_at = $10, cancelled_at = $11
		WHERE id = $12
	`

	result, err := r.q.ExecContext(ctx, query,
		nullString(order.DriverID),
		order.Status,
		order.EstimatedFare,
		order.ActualFare,
		order.Duration,
		order.CancelFee,
		nullString(order.CancelledBy),
		nullTime(order.AcceptedAt),
		nullTime(order.StartedAt),
		nullTime(order.CompletedAt),
		nullTime(order.CancelledAt),
		order.ID,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	var driverID, cancelledBy sql.NullString
	var acceptedAt, startedAt, completedAt, cancelledAt sql.NullTime

	err := row.Scan(
		&order.ID,
		&order.PassengerID,
		&driverID,
		&order.Status,
		&order.VehicleType,
		&order.Pickup.X,
		&order.Pickup.Y,
		&order.Dropoff.X,
		&order.Dropoff.Y,
		&order.EstimatedFare,
		&order.ActualFare,
		&order.Distance,
		&order.Duration,
		&order.CancelFee,
		&cancelledBy,
		&order.CreatedAt,
		&acceptedAt,
		&startedAt,
		&completedAt,
		&cancelledAt,
	)
	if err != nil {
		return nil, err
	}

	order.DriverID = driverID.String
	order.CancelledBy = cancelledBy.String
	order.AcceptedAt = acceptedAt.Time
	order.StartedAt = startedAt.Time
	order.CompletedAt = completedAt.Time
	order.CancelledAt = cancelledAt.Time

	return &order, nil
}

func collectOrders(rows *sql.Rows) ([]*domain.Order, error) {
	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

var _ repository.OrderRepository = (*OrderRepository)(nil)

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"dispatch/internal/domain"
	"dispatch/internal/repository"
)

// DriverRepository is a PostgreSQL implementation of repository.DriverRepository.
type DriverRepository struct {
	q Querier
}

// NewDriverRepository creates a new PostgreSQL driver repository.
func NewDriverRepository(db *sql.DB) *DriverRepository {
	return &DriverRepository{q: db}
}

// NewDriverRepositoryWithTx creates a driver repository using a transaction.
func NewDriverRepositoryWithTx(tx *sql.Tx) *DriverRepository {
	return &DriverRepository{q: tx}
}

// Save inserts or overwrites a driver record.
func (r *DriverRepository) Save(ctx context.Context, driver *domain.Driver) error {
	query := `
		INSERT INTO drivers (id, name, phone, vehicle_plate, vehicle_type, status, location_x, location_y, busy, current_order_id, last_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			phone = EXCLUDED.phone,
			vehicle_plate = EXCLUDED.vehicle_plate,
			vehicle_type = EXCLUDED.vehicle_type,
			status = EXCLUDED.status,
			location_x = EXCLUDED.location_x,
			location_y = EXCLUDED.location_y,
			busy = EXCLUDED.busy,
			current_order_id = EXCLUDED.current_order_id,
			last_updated_at = EXCLUDED.last_updated_at
	`

	var locX, locY sql.NullFloat64
	if driver.Location != nil {
		locX = sql.NullFloat64{Float64: driver.Location.X, Valid: true}
		locY = sql.NullFloat64{Float64: driver.Location.Y, Valid: true}
	}

	_, err := r.q.ExecContext(ctx, query,
		driver.ID,
		driver.Name,
		driver.Phone,
		driver.VehiclePlate,
		driver.VehicleType,
		driver.Status,
		locX,
		locY,
		driver.Busy,
		nullString(driver.CurrentOrderID),
		driver.LastUpdatedAt,
	)

	return err
}

// GetByID retrieves a driver by ID.
func (r *DriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	query := `
		SELECT id, name, phone, vehicle_plate, vehicle_type, status, location_x, location_y, busy, current_order_id, last_updated_at
		FROM drivers WHERE id = $1
	`

	driver, err := scanDriver(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return driver, nil
}

// GetAll retrieves all drivers.
func (r *DriverRepository) GetAll(ctx context.Context) ([]*domain.Driver, error) {
	query := `
		SELECT id, name, phone, vehicle_plate, vehicle_type, status, location_x, location_y, busy, current_order_id, last_updated_at
		FROM drivers ORDER BY id
	`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drivers []*domain.Driver
	for rows.Next() {
		driver, err := scanDriver(rows)
		if err != nil {
			return nil, err
		}
		drivers = append(drivers, driver)
	}
	return drivers, rows.Err()
}

func scanDriver(row rowScanner) (*domain.Driver, error) {
	var driver domain.Driver
	var locX, locY sql.NullFloat64
	var currentOrderID sql.NullString
	var lastUpdated sql.NullTime

	err := row.Scan(
		&driver.ID,
		&driver.Name,
		&driver.Phone,
		&driver.VehiclePlate,
		&driver.VehicleType,
		&driver.Status,
		&locX,
		&locY,
		&driver.Busy,
		&currentOrderID,
		&lastUpdated,
	)
	if err != nil {
		return nil, err
	}

	if locX.Valid && locY.Valid {
		driver.Location = &domain.Location{X: locX.Float64, Y: locY.Float64}
	}
	driver.CurrentOrderID = currentOrderID.String
	driver.LastUpdatedAt = lastUpdated.Time

	return &driver, nil
}

// nullString converts "" to SQL NULL.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullTime converts the zero time to SQL NULL.
func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

var _ repository.DriverRepository = (*DriverRepository)(nil)

package memory

import (
	"context"
	"sync"

	"dispatch/internal/domain"
	"dispatch/internal/repository"
)

// DriverRepository is an in-memory implementation of repository.DriverRepository.
type DriverRepository struct {
	mu      sync.RWMutex
	drivers map[string]*domain.Driver
}

// NewDriverRepository creates a new in-memory driver repository.
func NewDriverRepository() *DriverRepository {
	return &DriverRepository{
		drivers: make(map[string]*domain.Driver),
	}
}

// Save inserts or overwrites a driver record.
func (r *DriverRepository) Save(ctx context.Context, driver *domain.Driver) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drivers[driver.ID] = copyDriver(driver)
	return nil
}

// GetByID retrieves a driver by ID.
func (r *DriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	driver, ok := r.drivers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyDriver(driver), nil
}

// GetAll retrieves all drivers.
func (r *DriverRepository) GetAll(ctx context.Context) ([]*domain.Driver, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]*domain.Driver, 0, len(r.drivers))
	for _, d := range r.drivers {
		result = append(result, copyDriver(d))
	}
	return result, nil
}

// copyDriver clones a driver, including the location the struct points to.
func copyDriver(d *domain.Driver) *domain.Driver {
	copy := *d
	if d.Location != nil {
		loc := *d.Location
		copy.Location = &loc
	}
	return &copy
}

var _ repository.DriverRepository = (*DriverRepository)(nil)

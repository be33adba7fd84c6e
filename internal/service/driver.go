package service

import (
	"context"
	"errors"
	"log"
	"time"

	"dispatch/internal/domain"
	"dispatch/internal/repository"
)

// DriverService manages driver registration, availability and location.
// Every write to a driver record runs inside a critical section keyed by the
// driver id, so availability checks and busy-flag writes cannot interleave
// across concurrent requests or concurrent order accepts.
type DriverService struct {
	driverRepo repository.DriverRepository
	locks      *keyedMutex
}

func NewDriverService(driverRepo repository.DriverRepository) *DriverService {
	return &DriverService{
		driverRepo: driverRepo,
		locks:      newKeyedMutex(),
	}
}

// RegisterDriverRequest contains the parameters for registering a driver.
type RegisterDriverRequest struct {
	ID           string
	Name         string
	Phone        string
	VehiclePlate string
	VehicleType  domain.VehicleType
}

// Register creates a driver record. New drivers start OFFLINE and must go
// online explicitly before they can receive offers.
func (s *DriverService) Register(ctx context.Context, req RegisterDriverRequest) (*domain.Driver, error) {
	if req.ID == "" || req.Name == "" {
		return nil, ErrInvalidRequest
	}
	if !domain.ValidVehicleType(req.VehicleType) {
		return nil, ErrInvalidRequest
	}

	unlock := s.locks.Lock(req.ID)
	defer unlock()

	if _, err := s.driverRepo.GetByID(ctx, req.ID); err == nil {
		return nil, ErrInvalidRequest
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	driver := &domain.Driver{
		ID:            req.ID,
		Name:          req.Name,
		Phone:         req.Phone,
		VehiclePlate:  req.VehiclePlate,
		VehicleType:   req.VehicleType,
		Status:        domain.DriverStatusOffline,
		LastUpdatedAt: time.Now(),
	}

	if err := s.driverRepo.Save(ctx, driver); err != nil {
		return nil, err
	}

	log.Printf("driver registered: %s", driver.ID)
	return driver, nil
}

// GoOnline marks a driver as available at the given location. Unknown
// driver ids are registered on the fly with a STANDARD vehicle, which keeps
// lightweight clients from needing a separate registration step.
func (s *DriverService) GoOnline(ctx context.Context, driverID string, loc domain.Location) (*domain.Driver, error) {
	if driverID == "" {
		return nil, ErrInvalidRequest
	}

	unlock := s.locks.Lock(driverID)
	defer unlock()

	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		driver = &domain.Driver{
			ID:          driverID,
			VehicleType: domain.VehicleTypeStandard,
		}
	}

	driver.Status = domain.DriverStatusOnline
	driver.Location = &loc
	driver.LastUpdatedAt = time.Now()

	if err := s.driverRepo.Save(ctx, driver); err != nil {
		return nil, err
	}

	log.Printf("driver %s online at (%.2f, %.2f)", driverID, loc.X, loc.Y)
	return driver, nil
}

// GoOffline takes a driver out of matching. A driver in an active trip
// cannot go offline. The busy check and the status write share the driver's
// critical section, so an accept racing this call either reserves the driver
// first (and GoOffline fails with ErrDriverBusy) or observes OFFLINE.
func (s *DriverService) GoOffline(ctx context.Context, driverID string) (*domain.Driver, error) {
	unlock := s.locks.Lock(driverID)
	defer unlock()

	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDriverNotFound
		}
		return nil, err
	}

	if driver.Busy {
		return nil, ErrDriverBusy
	}

	driver.Status = domain.DriverStatusOffline
	driver.LastUpdatedAt = time.Now()

	if err := s.driverRepo.Save(ctx, driver); err != nil {
		return nil, err
	}

	log.Printf("driver %s offline", driverID)
	return driver, nil
}

// UpdateLocation records a driver's latest position. Works in any driver
// state so trips in progress keep reporting movement.
func (s *DriverService) UpdateLocation(ctx context.Context, driverID string, loc domain.Location) (*domain.Driver, error) {
	unlock := s.locks.Lock(driverID)
	defer unlock()

	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDriverNotFound
		}
		return nil, err
	}

	driver.Location = &loc
	driver.LastUpdatedAt = time.Now()

	if err := s.driverRepo.Save(ctx, driver); err != nil {
		return nil, err
	}

	return driver, nil
}

// GetDriver retrieves a driver by ID.
func (s *DriverService) GetDriver(ctx context.Context, driverID string) (*domain.Driver, error) {
	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDriverNotFound
		}
		return nil, err
	}
	return driver, nil
}

// AllDrivers retrieves every registered driver.
func (s *DriverService) AllDrivers(ctx context.Context) ([]*domain.Driver, error) {
	return s.driverRepo.GetAll(ctx)
}

// reserve binds a driver to an order, atomically with respect to every
// other driver mutation. The ONLINE and not-busy checks and the busy write
// happen under the driver's lock, so one driver racing accepts on several
// orders wins at most one. Callers hold the order lock; the driver lock
// nests strictly inside it.
func (s *DriverService) reserve(ctx context.Context, driverID, orderID string) error {
	unlock := s.locks.Lock(driverID)
	defer unlock()

	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrDriverNotFound
		}
		return err
	}

	if driver.Status != domain.DriverStatusOnline {
		return ErrDriverOffline
	}
	if driver.Busy {
		return ErrDriverBusy
	}

	driver.Busy = true
	driver.CurrentOrderID = orderID
	driver.LastUpdatedAt = time.Now()
	return s.driverRepo.Save(ctx, driver)
}

// release clears the driver's busy flag after a trip ends or an accepted
// order is cancelled. The write is a no-op unless the driver is still bound
// to the given order, so a release racing a later reserve never clobbers the
// new binding. A missing driver record is ignored: the order side of the
// transition has already been committed.
func (s *DriverService) release(ctx context.Context, driverID, orderID string) {
	unlock := s.locks.Lock(driverID)
	defer unlock()

	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Printf("release driver %s: %v", driverID, err)
		}
		return
	}

	if driver.CurrentOrderID != orderID {
		return
	}

	driver.Busy = false
	driver.CurrentOrderID = ""
	driver.LastUpdatedAt = time.Now()
	if err := s.driverRepo.Save(ctx, driver); err != nil {
		log.Printf("release driver %s: %v", driverID, err)
	}
}

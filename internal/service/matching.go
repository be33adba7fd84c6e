package service

import (
	"context"
	"errors"
	"log"
	"sort"
	"sync"

	"dispatch/internal/domain"
	"dispatch/internal/repository"
)

// defaultSearchRadius bounds how far, in plane units, matching will look.
const defaultSearchRadius = 10.0

// MatchingService ranks drivers and orders against each other by Euclidean
// distance. Matching is purely advisory: it proposes candidates, and the
// accept flow in OrderService decides who actually wins.
type MatchingService struct {
	orderRepo  repository.OrderRepository
	driverRepo repository.DriverRepository

	mu     sync.RWMutex
	radius float64
}

// NewMatchingService creates a new MatchingService. radius <= 0 selects the
// default of 10.0.
func NewMatchingService(orderRepo repository.OrderRepository, driverRepo repository.DriverRepository, radius float64) *MatchingService {
	if radius <= 0 {
		radius = defaultSearchRadius
	}
	return &MatchingService{
		orderRepo:  orderRepo,
		driverRepo: driverRepo,
		radius:     radius,
	}
}

// SearchRadius returns the current search radius.
func (s *MatchingService) SearchRadius() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.radius
}

// SetSearchRadius updates the search radius for all subsequent matching.
func (s *MatchingService) SetSearchRadius(radius float64) error {
	if radius <= 0 {
		return ErrInvalidRequest
	}
	s.mu.Lock()
	s.radius = radius
	s.mu.Unlock()
	log.Printf("search radius set to %.2f", radius)
	return nil
}

// OffersFor returns the pending orders a driver could accept, nearest
// pickup first. A busy driver gets an empty list rather than an error so
// polling clients do not have to special-case the in-trip state.
func (s *MatchingService) OffersFor(ctx context.Context, driverID string) ([]*domain.Order, error) {
	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDriverNotFound
		}
		return nil, err
	}

	if driver.Status != domain.DriverStatusOnline {
		return nil, ErrDriverOffline
	}
	if driver.Busy || driver.Location == nil {
		return []*domain.Order{}, nil
	}

	pending, err := s.orderRepo.GetByStatus(ctx, domain.OrderStatusPending)
	if err != nil {
		return nil, err
	}

	radius := s.SearchRadius()
	offers := make([]*domain.Order, 0, len(pending))
	for _, order := range pending {
		if order.VehicleType != driver.VehicleType {
			continue
		}
		if driver.Location.DistanceTo(order.Pickup) <= radius {
			offers = append(offers, order)
		}
	}

	loc := *driver.Location
	sort.Slice(offers, func(i, j int) bool {
		di := loc.DistanceTo(offers[i].Pickup)
		dj := loc.DistanceTo(offers[j].Pickup)
		if di != dj {
			return di < dj
		}
		return offers[i].ID < offers[j].ID
	})

	return offers, nil
}

// BestDriverFor returns the nearest eligible driver for an order: online,
// not busy, with a known location and a matching vehicle type, within the
// search radius of the pickup. Ties on distance break on ascending driver
// id so repeated calls over the same fleet are deterministic.
func (s *MatchingService) BestDriverFor(ctx context.Context, order *domain.Order) (*domain.Driver, error) {
	candidates, err := s.candidatesNear(ctx, order.Pickup, order.VehicleType)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, ErrNoDriverAvailable
	}
	return candidates[0], nil
}

// DriversNear returns all eligible drivers for an order, nearest first.
func (s *MatchingService) DriversNear(ctx context.Context, order *domain.Order) ([]*domain.Driver, error) {
	return s.candidatesNear(ctx, order.Pickup, order.VehicleType)
}

func (s *MatchingService) candidatesNear(ctx context.Context, pickup domain.Location, vehicleType domain.VehicleType) ([]*domain.Driver, error) {
	drivers, err := s.driverRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	radius := s.SearchRadius()
	candidates := make([]*domain.Driver, 0, len(drivers))
	for _, driver := range drivers {
		if driver.Status != domain.DriverStatusOnline || driver.Busy || driver.Location == nil {
			continue
		}
		if driver.VehicleType != vehicleType {
			continue
		}
		if driver.Location.DistanceTo(pickup) <= radius {
			candidates = append(candidates, driver)
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		di := candidates[i].Location.DistanceTo(pickup)
		dj := candidates[j].Location.DistanceTo(pickup)
		if di != dj {
			return di < dj
		}
		return candidates[i].ID < candidates[j].ID
	})

	return candidates, nil
}

// AvailableDrivers returns all drivers that are online and not in a trip.
func (s *MatchingService) AvailableDrivers(ctx context.Context) ([]*domain.Driver, error) {
	drivers, err := s.driverRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	available := make([]*domain.Driver, 0, len(drivers))
	for _, driver := range drivers {
		if driver.Status == domain.DriverStatusOnline && !driver.Busy {
			available = append(available, driver)
		}
	}
	return available, nil
}

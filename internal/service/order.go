package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"dispatch/internal/domain"
	"dispatch/internal/repository"
)

// defaultOrderTTL is how long a PENDING order stays acceptable. Expiry is
// checked lazily at accept time, never by a background timer.
const defaultOrderTTL = 30 * time.Minute

// OrderService owns the order lifecycle state machine. Every state-changing
// operation runs inside a critical section keyed by the order id, which is
// what guarantees exactly one winner among concurrent accept calls. Driver
// records are only touched through DriverService, whose driver-keyed lock
// nests inside the order lock.
type OrderService struct {
	orderRepo repository.OrderRepository
	drivers   *DriverService
	fare      FareCalculator
	audit     *AuditService
	locks     *keyedMutex
	orderTTL  time.Duration
}

// NewOrderService creates a new OrderService. orderTTL <= 0 selects the
// default of 30 minutes.
func NewOrderService(
	orderRepo repository.OrderRepository,
	drivers *DriverService,
	fare FareCalculator,
	audit *AuditService,
	orderTTL time.Duration,
) *OrderService {
	if orderTTL <= 0 {
		orderTTL = defaultOrderTTL
	}
	return &OrderService{
		orderRepo: orderRepo,
		drivers:   drivers,
		fare:      fare,
		audit:     audit,
		locks:     newKeyedMutex(),
		orderTTL:  orderTTL,
	}
}

// CreateOrderRequest contains the parameters for creating an order.
type CreateOrderRequest struct {
	PassengerID string
	Pickup      domain.Location
	Dropoff     domain.Location
	VehicleType domain.VehicleType
}

// CreateOrder creates a new PENDING order with a computed distance and an
// estimated fare.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*domain.Order, error) {
	if req.PassengerID == "" {
		return nil, ErrInvalidRequest
	}
	if !domain.ValidVehicleType(req.VehicleType) {
		return nil, ErrInvalidRequest
	}
	if req.Pickup.Equals(req.Dropoff) {
		return nil, ErrInvalidRequest
	}

	distance := req.Pickup.DistanceTo(req.Dropoff)

	order := &domain.Order{
		ID:            uuid.New().String(),
		PassengerID:   req.PassengerID,
		Status:        domain.OrderStatusPending,
		VehicleType:   req.VehicleType,
		Pickup:        req.Pickup,
		Dropoff:       req.Dropoff,
		EstimatedFare: s.fare.Estimate(req.VehicleType, distance),
		Distance:      distance,
		CreatedAt:     time.Now(),
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}

	s.audit.LogSuccess(ctx, order.ID, domain.AuditActionCreate,
		domain.ActorTypePassenger, req.PassengerID, "", string(order.Status))

	log.Printf("order created: %s", order.ID)
	return order, nil
}

// AcceptOrder transitions a PENDING order to ACCEPTED on behalf of a driver.
//
// The whole check-then-set sequence runs inside the order's critical
// section: verify PENDING, reserve the driver (ONLINE, not busy) under the
// driver's own lock, then write ACCEPTED plus driver id. Exactly one of any
// number of concurrent callers succeeds; the rest observe
// ErrOrderAlreadyAccepted, and one driver racing several orders wins at
// most one of them.
func (s *OrderService) AcceptOrder(ctx context.Context, orderID, driverID string) (*domain.Order, error) {
	unlock := s.locks.Lock(orderID)
	defer unlock()

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.audit.LogFailure(ctx, orderID, domain.AuditActionAccept,
				domain.ActorTypeDriver, driverID, "", ErrorCode(ErrOrderNotFound))
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	// Idempotent retry: the same driver accepting an order it already won
	// returns the current order with no further writes.
	if order.Status == domain.OrderStatusAccepted && order.DriverID == driverID {
		log.Printf("idempotent accept of order %s by driver %s", orderID, driverID)
		return order, nil
	}

	if !domain.CanTransition(order.Status, domain.OrderStatusAccepted) {
		failErr := ErrInvalidState
		if order.Status == domain.OrderStatusAccepted {
			failErr = ErrOrderAlreadyAccepted
		}
		s.audit.LogFailure(ctx, orderID, domain.AuditActionAccept,
			domain.ActorTypeDriver, driverID, string(order.Status), ErrorCode(failErr))
		return nil, failErr
	}

	// Lazy expiry of stale PENDING orders.
	if time.Since(order.CreatedAt) > s.orderTTL {
		s.audit.LogFailure(ctx, orderID, domain.AuditActionAccept,
			domain.ActorTypeDriver, driverID, string(order.Status), ErrorCode(ErrOrderExpired))
		return nil, ErrOrderExpired
	}

	if err := s.drivers.reserve(ctx, driverID, orderID); err != nil {
		if errors.Is(err, ErrDriverNotFound) || errors.Is(err, ErrDriverOffline) || errors.Is(err, ErrDriverBusy) {
			s.audit.LogFailure(ctx, orderID, domain.AuditActionAccept,
				domain.ActorTypeDriver, driverID, string(order.Status), ErrorCode(err))
		}
		return nil, err
	}

	order.Status = domain.OrderStatusAccepted
	order.DriverID = driverID
	order.AcceptedAt = time.Now()

	if err := s.orderRepo.Update(ctx, order); err != nil {
		s.drivers.release(ctx, driverID, orderID)
		return nil, err
	}

	s.audit.LogSuccess(ctx, orderID, domain.AuditActionAccept,
		domain.ActorTypeDriver, driverID, string(domain.OrderStatusPending), string(order.Status))

	log.Printf("order %s accepted by driver %s", orderID, driverID)
	return order, nil
}

// StartTrip transitions an ACCEPTED order to ONGOING. Only the assigned
// driver may start the trip; a repeat call by the same driver after the
// trip started is an idempotent no-op.
func (s *OrderService) StartTrip(ctx context.Context, orderID, driverID string) (*domain.Order, error) {
	unlock := s.locks.Lock(orderID)
	defer unlock()

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.audit.LogFailure(ctx, orderID, domain.AuditActionStart,
				domain.ActorTypeDriver, driverID, "", ErrorCode(ErrOrderNotFound))
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if order.Status == domain.OrderStatusOngoing {
		if order.DriverID == driverID {
			return order, nil
		}
		s.audit.LogFailure(ctx, orderID, domain.AuditActionStart,
			domain.ActorTypeDriver, driverID, string(order.Status), ErrorCode(ErrNotAssignedDriver))
		return nil, ErrNotAssignedDriver
	}

	if !domain.CanTransition(order.Status, domain.OrderStatusOngoing) {
		s.audit.LogFailure(ctx, orderID, domain.AuditActionStart,
			domain.ActorTypeDriver, driverID, string(order.Status), ErrorCode(ErrInvalidState))
		return nil, ErrInvalidState
	}

	if order.DriverID != driverID {
		s.audit.LogFailure(ctx, orderID, domain.AuditActionStart,
			domain.ActorTypeDriver, driverID, string(order.Status), ErrorCode(ErrNotAssignedDriver))
		return nil, ErrNotAssignedDriver
	}

	previous := order.Status
	order.Status = domain.OrderStatusOngoing
	order.StartedAt = time.Now()

	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}

	s.audit.LogSuccess(ctx, orderID, domain.AuditActionStart,
		domain.ActorTypeDriver, driverID, string(previous), string(order.Status))

	log.Printf("trip started for order %s", orderID)
	return order, nil
}

// CompleteTrip transitions an ONGOING order to COMPLETED, computes the
// actual fare from elapsed duration, and releases the driver. A repeat call
// by the same driver after completion is an idempotent no-op.
func (s *OrderService) CompleteTrip(ctx context.Context, orderID, driverID string) (*domain.Order, error) {
	unlock := s.locks.Lock(orderID)
	defer unlock()

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.audit.LogFailure(ctx, orderID, domain.AuditActionComplete,
				domain.ActorTypeDriver, driverID, "", ErrorCode(ErrOrderNotFound))
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if order.Status == domain.OrderStatusCompleted && order.DriverID == driverID {
		return order, nil
	}

	if !domain.CanTransition(order.Status, domain.OrderStatusCompleted) {
		s.audit.LogFailure(ctx, orderID, domain.AuditActionComplete,
			domain.ActorTypeDriver, driverID, string(order.Status), ErrorCode(ErrInvalidState))
		return nil, ErrInvalidState
	}

	if order.DriverID != driverID {
		s.audit.LogFailure(ctx, orderID, domain.AuditActionComplete,
			domain.ActorTypeDriver, driverID, string(order.Status), ErrorCode(ErrNotAssignedDriver))
		return nil, ErrNotAssignedDriver
	}

	now := time.Now()
	duration := int(now.Sub(order.StartedAt).Minutes())

	previous := order.Status
	order.Status = domain.OrderStatusCompleted
	order.CompletedAt = now
	order.Duration = duration
	order.ActualFare = s.fare.FinalFare(order.VehicleType, order.Distance, duration)

	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}

	s.drivers.release(ctx, driverID, orderID)

	s.audit.LogSuccess(ctx, orderID, domain.AuditActionComplete,
		domain.ActorTypeDriver, driverID, string(previous), string(order.Status))

	log.Printf("trip completed for order %s, fare: %.2f", orderID, order.ActualFare)
	return order, nil
}

// CancelOrder transitions a PENDING or ACCEPTED order to CANCELLED. Only
// the requesting passenger may cancel. Cancelling an accepted order charges
// the vehicle type's cancellation fee and releases the driver; cancelling a
// pending order is free. Cancelling twice is an idempotent no-op.
func (s *OrderService) CancelOrder(ctx context.Context, orderID, cancelledBy string) (*domain.Order, error) {
	unlock := s.locks.Lock(orderID)
	defer unlock()

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.audit.LogFailure(ctx, orderID, domain.AuditActionCancel,
				domain.ActorTypePassenger, cancelledBy, "", ErrorCode(ErrOrderNotFound))
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if order.Status == domain.OrderStatusCancelled {
		return order, nil
	}

	if cancelledBy != order.PassengerID {
		s.audit.LogFailure(ctx, orderID, domain.AuditActionCancel,
			domain.ActorTypePassenger, cancelledBy, string(order.Status), ErrorCode(ErrForbidden))
		return nil, ErrForbidden
	}

	if !domain.CanTransition(order.Status, domain.OrderStatusCancelled) {
		s.audit.LogFailure(ctx, orderID, domain.AuditActionCancel,
			domain.ActorTypePassenger, cancelledBy, string(order.Status), ErrorCode(ErrInvalidState))
		return nil, ErrInvalidState
	}

	previous := order.Status
	cancelFee := 0.0
	if order.Status == domain.OrderStatusAccepted {
		cancelFee = s.fare.CancellationFee(order.VehicleType)
		if order.DriverID != "" {
			// The driver's busy flag is cleared; the order keeps its
			// driverId for audit traceability.
			s.drivers.release(ctx, order.DriverID, orderID)
		}
	}

	order.Status = domain.OrderStatusCancelled
	order.CancelledAt = time.Now()
	order.CancelledBy = cancelledBy
	order.CancelFee = cancelFee

	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}

	s.audit.LogSuccess(ctx, orderID, domain.AuditActionCancel,
		domain.ActorTypePassenger, cancelledBy, string(previous), string(order.Status))

	log.Printf("order %s cancelled", orderID)
	return order, nil
}

// GetOrder retrieves an order by ID.
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	if orderID == "" {
		return nil, ErrInvalidRequest
	}
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

// PendingOrders retrieves all orders awaiting a driver.
func (s *OrderService) PendingOrders(ctx context.Context) ([]*domain.Order, error) {
	return s.orderRepo.GetByStatus(ctx, domain.OrderStatusPending)
}

// AllOrders retrieves all orders.
func (s *OrderService) AllOrders(ctx context.Context) ([]*domain.Order, error) {
	return s.orderRepo.GetAll(ctx)
}

package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"dispatch/internal/domain"
	"dispatch/internal/repository/memory"
	"dispatch/internal/service"
)

// fixture wires an order service over in-memory stores for tests.
type fixture struct {
	orders    *memory.OrderRepository
	drivers   *memory.DriverRepository
	audits    *memory.AuditLogRepository
	fare      *service.FareService
	audit     *service.AuditService
	driverSvc *service.DriverService
	orderSvc  *service.OrderService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		orders:  memory.NewOrderRepository(),
		drivers: memory.NewDriverRepository(),
		audits:  memory.NewAuditLogRepository(),
		fare:    service.NewFareService(),
	}
	f.audit = service.NewAuditService(f.audits, nil)
	f.driverSvc = service.NewDriverService(f.drivers)
	f.orderSvc = service.NewOrderService(f.orders, f.driverSvc, f.fare, f.audit, 0)
	return f
}

// seedOrder stores an order directly, bypassing the service, so tests can
// control status and timestamps.
func (f *fixture) seedOrder(t *testing.T, order *domain.Order) *domain.Order {
	t.Helper()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if order.PassengerID == "" {
		order.PassengerID = "passenger-1"
	}
	if order.VehicleType == "" {
		order.VehicleType = domain.VehicleTypeStandard
	}
	if order.Status == "" {
		order.Status = domain.OrderStatusPending
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	if order.Dropoff.Equals(order.Pickup) {
		order.Dropoff = domain.Location{X: order.Pickup.X + 3, Y: order.Pickup.Y + 4}
	}
	order.Distance = order.Pickup.DistanceTo(order.Dropoff)

	if err := f.orders.Create(context.Background(), order); err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return order
}

// seedDriver stores a driver record with sensible defaults.
func (f *fixture) seedDriver(t *testing.T, driver *domain.Driver) *domain.Driver {
	t.Helper()

	if driver.VehicleType == "" {
		driver.VehicleType = domain.VehicleTypeStandard
	}
	if driver.Status == "" {
		driver.Status = domain.DriverStatusOnline
	}
	if driver.Location == nil {
		driver.Location = &domain.Location{X: 0, Y: 0}
	}
	if err := f.drivers.Save(context.Background(), driver); err != nil {
		t.Fatalf("seed driver: %v", err)
	}
	return driver
}

func (f *fixture) driver(t *testing.T, id string) *domain.Driver {
	t.Helper()

	driver, err := f.drivers.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("get driver %s: %v", id, err)
	}
	return driver
}

func (f *fixture) auditEntries(t *testing.T, orderID string) []*domain.AuditLog {
	t.Helper()

	entries, err := f.audits.GetByOrderID(context.Background(), orderID)
	if err != nil {
		t.Fatalf("get audit entries: %v", err)
	}
	return entries
}

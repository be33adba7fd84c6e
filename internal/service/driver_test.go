package service_test

import (
	"context"
	"errors"
	"testing"

	"dispatch/internal/domain"
	"dispatch/internal/service"
)

func TestRegisterDriver(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	svc := f.driverSvc

	driver, err := svc.Register(context.Background(), service.RegisterDriverRequest{
		ID:           "driver-1",
		Name:         "Alex",
		Phone:        "+100200300",
		VehiclePlate: "AB-123",
		VehicleType:  domain.VehicleTypePremium,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if driver.Status != domain.DriverStatusOffline {
		t.Errorf("expected new drivers to start OFFLINE, got %s", driver.Status)
	}
	if driver.VehicleType != domain.VehicleTypePremium {
		t.Errorf("expected PREMIUM, got %s", driver.VehicleType)
	}

	// Duplicate registration is rejected.
	_, err = svc.Register(context.Background(), service.RegisterDriverRequest{
		ID:          "driver-1",
		Name:        "Alex again",
		VehicleType: domain.VehicleTypeStandard,
	})
	if !errors.Is(err, service.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for duplicate, got: %v", err)
	}
}

func TestRegisterDriver_Validation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	svc := f.driverSvc

	testCases := []struct {
		name string
		req  service.RegisterDriverRequest
	}{
		{"missing id", service.RegisterDriverRequest{Name: "Alex", VehicleType: domain.VehicleTypeStandard}},
		{"missing name", service.RegisterDriverRequest{ID: "driver-1", VehicleType: domain.VehicleTypeStandard}},
		{"bad vehicle type", service.RegisterDriverRequest{ID: "driver-1", Name: "Alex", VehicleType: "SCOOTER"}},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := svc.Register(context.Background(), tc.req); !errors.Is(err, service.ErrInvalidRequest) {
				t.Errorf("expected ErrInvalidRequest, got: %v", err)
			}
		})
	}
}

func TestGoOnline_AutoRegistersUnknownDriver(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	svc := f.driverSvc

	driver, err := svc.GoOnline(context.Background(), "walk-in", domain.Location{X: 2, Y: 3})
	if err != nil {
		t.Fatalf("go online: %v", err)
	}

	if driver.Status != domain.DriverStatusOnline {
		t.Errorf("expected ONLINE, got %s", driver.Status)
	}
	if driver.VehicleType != domain.VehicleTypeStandard {
		t.Errorf("expected default STANDARD vehicle, got %s", driver.VehicleType)
	}
	if driver.Location == nil || driver.Location.X != 2 || driver.Location.Y != 3 {
		t.Errorf("expected location (2, 3), got %+v", driver.Location)
	}
}

func TestGoOffline(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	svc := f.driverSvc
	f.seedDriver(t, &domain.Driver{ID: "free"})
	f.seedDriver(t, &domain.Driver{ID: "in-trip", Busy: true, CurrentOrderID: "order-1"})

	driver, err := svc.GoOffline(context.Background(), "free")
	if err != nil {
		t.Fatalf("go offline: %v", err)
	}
	if driver.Status != domain.DriverStatusOffline {
		t.Errorf("expected OFFLINE, got %s", driver.Status)
	}

	// A driver in an active trip cannot disappear.
	if _, err := svc.GoOffline(context.Background(), "in-trip"); !errors.Is(err, service.ErrDriverBusy) {
		t.Fatalf("expected ErrDriverBusy, got: %v", err)
	}

	if _, err := svc.GoOffline(context.Background(), "unknown"); !errors.Is(err, service.ErrDriverNotFound) {
		t.Fatalf("expected ErrDriverNotFound, got: %v", err)
	}
}

func TestUpdateLocation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	svc := f.driverSvc
	f.seedDriver(t, &domain.Driver{ID: "driver-1", Location: &domain.Location{X: 0, Y: 0}})

	driver, err := svc.UpdateLocation(context.Background(), "driver-1", domain.Location{X: 7, Y: 8})
	if err != nil {
		t.Fatalf("update location: %v", err)
	}
	if driver.Location.X != 7 || driver.Location.Y != 8 {
		t.Errorf("expected location (7, 8), got %+v", driver.Location)
	}

	if _, err := svc.UpdateLocation(context.Background(), "unknown", domain.Location{}); !errors.Is(err, service.ErrDriverNotFound) {
		t.Fatalf("expected ErrDriverNotFound, got: %v", err)
	}
}

package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"dispatch/internal/domain"
	"dispatch/internal/service"
)

func TestCreateOrder_ValidInput_Succeeds(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	order, err := f.orderSvc.CreateOrder(context.Background(), service.CreateOrderRequest{
		PassengerID: "passenger-1",
		Pickup:      domain.Location{X: 0, Y: 0},
		Dropoff:     domain.Location{X: 3, Y: 4},
		VehicleType: domain.VehicleTypeStandard,
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if order.ID == "" {
		t.Error("expected order ID to be set")
	}
	if order.Status != domain.OrderStatusPending {
		t.Errorf("expected status PENDING, got %s", order.Status)
	}
	if order.Distance != 5.0 {
		t.Errorf("expected distance 5.0, got %v", order.Distance)
	}
	// 50 base + 5km * 15/km = 125, above the 70 minimum.
	if order.EstimatedFare != 125.0 {
		t.Errorf("expected estimated fare 125.0, got %v", order.EstimatedFare)
	}

	entries := f.auditEntries(t, order.ID)
	if len(entries) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(entries))
	}
	if entries[0].Action != domain.AuditActionCreate || !entries[0].Success {
		t.Errorf("expected successful CREATE entry, got %+v", entries[0])
	}
}

func TestCreateOrder_InvalidInput_Fails(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		req  service.CreateOrderRequest
	}{
		{
			name: "missing passenger id",
			req: service.CreateOrderRequest{
				Pickup:      domain.Location{X: 0, Y: 0},
				Dropoff:     domain.Location{X: 3, Y: 4},
				VehicleType: domain.VehicleTypeStandard,
			},
		},
		{
			name: "identical pickup and dropoff",
			req: service.CreateOrderRequest{
				PassengerID: "passenger-1",
				Pickup:      domain.Location{X: 2, Y: 2},
				Dropoff:     domain.Location{X: 2, Y: 2},
				VehicleType: domain.VehicleTypeStandard,
			},
		},
		{
			name: "unknown vehicle type",
			req: service.CreateOrderRequest{
				PassengerID: "passenger-1",
				Pickup:      domain.Location{X: 0, Y: 0},
				Dropoff:     domain.Location{X: 3, Y: 4},
				VehicleType: "SCOOTER",
			},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			_, err := f.orderSvc.CreateOrder(context.Background(), tc.req)
			if !errors.Is(err, service.ErrInvalidRequest) {
				t.Errorf("expected ErrInvalidRequest, got: %v", err)
			}
		})
	}
}

func TestAcceptOrder_HappyPath(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	order := f.seedOrder(t, &domain.Order{})
	f.seedDriver(t, &domain.Driver{ID: "driver-1"})

	accepted, err := f.orderSvc.AcceptOrder(context.Background(), order.ID, "driver-1")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if accepted.Status != domain.OrderStatusAccepted {
		t.Errorf("expected status ACCEPTED, got %s", accepted.Status)
	}
	if accepted.DriverID != "driver-1" {
		t.Errorf("expected driver-1 assigned, got %q", accepted.DriverID)
	}
	if accepted.AcceptedAt.IsZero() {
		t.Error("expected AcceptedAt to be set")
	}

	driver := f.driver(t, "driver-1")
	if !driver.Busy {
		t.Error("expected driver to be busy after accept")
	}
	if driver.CurrentOrderID != order.ID {
		t.Errorf("expected driver current order %s, got %q", order.ID, driver.CurrentOrderID)
	}

	entries := f.auditEntries(t, order.ID)
	if len(entries) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(entries))
	}
	if entries[0].Action != domain.AuditActionAccept || !entries[0].Success {
		t.Errorf("expected successful ACCEPT entry, got %+v", entries[0])
	}
	if entries[0].PreviousState != string(domain.OrderStatusPending) || entries[0].NewState != string(domain.OrderStatusAccepted) {
		t.Errorf("expected PENDING -> ACCEPTED, got %s -> %s", entries[0].PreviousState, entries[0].NewState)
	}
}

func TestAcceptOrder_SameDriverRetry_IsIdempotent(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	order := f.seedOrder(t, &domain.Order{})
	f.seedDriver(t, &domain.Driver{ID: "driver-1"})

	first, err := f.orderSvc.AcceptOrder(context.Background(), order.ID, "driver-1")
	if err != nil {
		t.Fatalf("first accept: %v", err)
	}
	second, err := f.orderSvc.AcceptOrder(context.Background(), order.ID, "driver-1")
	if err != nil {
		t.Fatalf("retry accept: %v", err)
	}

	if second.Status != domain.OrderStatusAccepted || second.DriverID != first.DriverID {
		t.Errorf("expected retry to return the accepted order, got %+v", second)
	}

	// The retry is a no-op and must not add audit entries.
	entries := f.auditEntries(t, order.ID)
	if len(entries) != 1 {
		t.Errorf("expected 1 audit entry after retry, got %d", len(entries))
	}
}

func TestAcceptOrder_SecondDriver_Conflicts(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	order := f.seedOrder(t, &domain.Order{})
	f.seedDriver(t, &domain.Driver{ID: "driver-1"})
	f.seedDriver(t, &domain.Driver{ID: "driver-2"})

	if _, err := f.orderSvc.AcceptOrder(context.Background(), order.ID, "driver-1"); err != nil {
		t.Fatalf("first accept: %v", err)
	}

	_, err := f.orderSvc.AcceptOrder(context.Background(), order.ID, "driver-2")
	if !errors.Is(err, service.ErrOrderAlreadyAccepted) {
		t.Fatalf("expected ErrOrderAlreadyAccepted, got: %v", err)
	}

	// The loser must not become busy.
	if f.driver(t, "driver-2").Busy {
		t.Error("expected losing driver to stay free")
	}

	entries := f.auditEntries(t, order.ID)
	if len(entries) != 2 {
		t.Fatalf("expected 2 audit entries, got %d", len(entries))
	}
	failure := entries[1]
	if failure.Success {
		t.Error("expected second entry to be a failure")
	}
	if failure.FailureReason != "ORDER_ALREADY_ACCEPTED" {
		t.Errorf("expected reason ORDER_ALREADY_ACCEPTED, got %q", failure.FailureReason)
	}
	if failure.PreviousState != failure.NewState {
		t.Errorf("failure must not record a state change: %s -> %s", failure.PreviousState, failure.NewState)
	}
}

func TestAcceptOrder_DriverChecks(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		driver  *domain.Driver
		wantErr error
	}{
		{
			name:    "unknown driver",
			driver:  nil,
			wantErr: service.ErrDriverNotFound,
		},
		{
			name:    "offline driver",
			driver:  &domain.Driver{ID: "driver-1", Status: domain.DriverStatusOffline},
			wantErr: service.ErrDriverOffline,
		},
		{
			name:    "busy driver",
			driver:  &domain.Driver{ID: "driver-1", Busy: true, CurrentOrderID: "other-order"},
			wantErr: service.ErrDriverBusy,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			order := f.seedOrder(t, &domain.Order{})
			if tc.driver != nil {
				f.seedDriver(t, tc.driver)
			}

			_, err := f.orderSvc.AcceptOrder(context.Background(), order.ID, "driver-1")
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got: %v", tc.wantErr, err)
			}

			// Failed accepts leave the order untouched.
			current, getErr := f.orders.GetByID(context.Background(), order.ID)
			if getErr != nil {
				t.Fatalf("get order: %v", getErr)
			}
			if current.Status != domain.OrderStatusPending || current.DriverID != "" {
				t.Errorf("expected order to stay PENDING and unassigned, got %+v", current)
			}

			entries := f.auditEntries(t, order.ID)
			if len(entries) != 1 || entries[0].Success {
				t.Errorf("expected exactly one failure audit entry, got %d", len(entries))
			}
		})
	}
}

func TestAcceptOrder_UnknownOrder(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seedDriver(t, &domain.Driver{ID: "driver-1"})

	_, err := f.orderSvc.AcceptOrder(context.Background(), "no-such-order", "driver-1")
	if !errors.Is(err, service.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got: %v", err)
	}
}

// Every lifecycle operation records an attempt against an unknown order id,
// not just accept.
func TestLifecycleOps_UnknownOrder_AreAudited(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	const orderID = "no-such-order"

	attempts := []struct {
		action string
		call   func() error
	}{
		{domain.AuditActionAccept, func() error {
			_, err := f.orderSvc.AcceptOrder(ctx, orderID, "driver-1")
			return err
		}},
		{domain.AuditActionStart, func() error {
			_, err := f.orderSvc.StartTrip(ctx, orderID, "driver-1")
			return err
		}},
		{domain.AuditActionComplete, func() error {
			_, err := f.orderSvc.CompleteTrip(ctx, orderID, "driver-1")
			return err
		}},
		{domain.AuditActionCancel, func() error {
			_, err := f.orderSvc.CancelOrder(ctx, orderID, "passenger-1")
			return err
		}},
	}

	for _, attempt := range attempts {
		if err := attempt.call(); !errors.Is(err, service.ErrOrderNotFound) {
			t.Fatalf("%s: expected ErrOrderNotFound, got: %v", attempt.action, err)
		}
	}

	entries := f.auditEntries(t, orderID)
	if len(entries) != len(attempts) {
		t.Fatalf("expected %d audit entries, got %d", len(attempts), len(entries))
	}
	for i, entry := range entries {
		if entry.Action != attempts[i].action {
			t.Errorf("entry %d: expected action %s, got %s", i, attempts[i].action, entry.Action)
		}
		if entry.Success {
			t.Errorf("entry %d: expected a failure record", i)
		}
		if entry.FailureReason != "ORDER_NOT_FOUND" {
			t.Errorf("entry %d: expected reason ORDER_NOT_FOUND, got %s", i, entry.FailureReason)
		}
		if entry.PreviousState != entry.NewState {
			t.Errorf("entry %d: failure must not record a state change, got %s -> %s",
				i, entry.PreviousState, entry.NewState)
		}
	}
}

func TestAcceptOrder_ExpiredOrder_Fails(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	order := f.seedOrder(t, &domain.Order{
		CreatedAt: time.Now().Add(-31 * time.Minute),
	})
	f.seedDriver(t, &domain.Driver{ID: "driver-1"})

	_, err := f.orderSvc.AcceptOrder(context.Background(), order.ID, "driver-1")
	if !errors.Is(err, service.ErrOrderExpired) {
		t.Fatalf("expected ErrOrderExpired, got: %v", err)
	}

	// The order stays PENDING: expiry rejects the accept, nothing more.
	current, err := f.orders.GetByID(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if current.Status != domain.OrderStatusPending {
		t.Errorf("expected status PENDING, got %s", current.Status)
	}

	entries := f.auditEntries(t, order.ID)
	if len(entries) != 1 || entries[0].FailureReason != "ORDER_EXPIRED" {
		t.Errorf("expected one ORDER_EXPIRED audit entry, got %+v", entries)
	}
}

func TestStartTrip(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	order := f.seedOrder(t, &domain.Order{})
	f.seedDriver(t, &domain.Driver{ID: "driver-1"})
	f.seedDriver(t, &domain.Driver{ID: "driver-2"})

	if _, err := f.orderSvc.AcceptOrder(context.Background(), order.ID, "driver-1"); err != nil {
		t.Fatalf("accept: %v", err)
	}

	// A driver who is not assigned cannot start the trip.
	if _, err := f.orderSvc.StartTrip(context.Background(), order.ID, "driver-2"); !errors.Is(err, service.ErrNotAssignedDriver) {
		t.Fatalf("expected ErrNotAssignedDriver, got: %v", err)
	}

	started, err := f.orderSvc.StartTrip(context.Background(), order.ID, "driver-1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if started.Status != domain.OrderStatusOngoing {
		t.Errorf("expected status ONGOING, got %s", started.Status)
	}
	if started.StartedAt.IsZero() {
		t.Error("expected StartedAt to be set")
	}

	// Idempotent retry by the assigned driver.
	again, err := f.orderSvc.StartTrip(context.Background(), order.ID, "driver-1")
	if err != nil {
		t.Fatalf("retry start: %v", err)
	}
	if again.Status != domain.OrderStatusOngoing {
		t.Errorf("expected retry to return ONGOING order, got %s", again.Status)
	}

	// Someone else retrying against an ongoing trip is rejected.
	if _, err := f.orderSvc.StartTrip(context.Background(), order.ID, "driver-2"); !errors.Is(err, service.ErrNotAssignedDriver) {
		t.Fatalf("expected ErrNotAssignedDriver, got: %v", err)
	}
}

func TestStartTrip_PendingOrder_Fails(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	order := f.seedOrder(t, &domain.Order{})
	f.seedDriver(t, &domain.Driver{ID: "driver-1"})

	_, err := f.orderSvc.StartTrip(context.Background(), order.ID, "driver-1")
	if !errors.Is(err, service.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got: %v", err)
	}
}

func TestCompleteTrip(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	order := f.seedOrder(t, &domain.Order{
		Pickup:  domain.Location{X: 0, Y: 0},
		Dropoff: domain.Location{X: 3, Y: 4},
	})
	f.seedDriver(t, &domain.Driver{ID: "driver-1"})

	ctx := context.Background()
	if _, err := f.orderSvc.AcceptOrder(ctx, order.ID, "driver-1"); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if _, err := f.orderSvc.StartTrip(ctx, order.ID, "driver-1"); err != nil {
		t.Fatalf("start: %v", err)
	}

	completed, err := f.orderSvc.CompleteTrip(ctx, order.ID, "driver-1")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}

	if completed.Status != domain.OrderStatusCompleted {
		t.Errorf("expected status COMPLETED, got %s", completed.Status)
	}
	// 50 base + 5km * 15/km + 0 minutes * 3/min = 125.
	if completed.ActualFare != 125.0 {
		t.Errorf("expected actual fare 125.0, got %v", completed.ActualFare)
	}
	if completed.CompletedAt.IsZero() {
		t.Error("expected CompletedAt to be set")
	}

	driver := f.driver(t, "driver-1")
	if driver.Busy || driver.CurrentOrderID != "" {
		t.Errorf("expected driver to be released, got %+v", driver)
	}

	// Idempotent retry by the same driver.
	again, err := f.orderSvc.CompleteTrip(ctx, order.ID, "driver-1")
	if err != nil {
		t.Fatalf("retry complete: %v", err)
	}
	if again.ActualFare != completed.ActualFare {
		t.Errorf("expected retry to return the same fare, got %v", again.ActualFare)
	}

	// Further lifecycle calls against the terminal order fail.
	if _, err := f.orderSvc.StartTrip(ctx, order.ID, "driver-1"); !errors.Is(err, service.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState after completion, got: %v", err)
	}
	if _, err := f.orderSvc.CancelOrder(ctx, order.ID, order.PassengerID); !errors.Is(err, service.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState after completion, got: %v", err)
	}
}

func TestCompleteTrip_AcceptedOrder_Fails(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	order := f.seedOrder(t, &domain.Order{})
	f.seedDriver(t, &domain.Driver{ID: "driver-1"})

	ctx := context.Background()
	if _, err := f.orderSvc.AcceptOrder(ctx, order.ID, "driver-1"); err != nil {
		t.Fatalf("accept: %v", err)
	}

	_, err := f.orderSvc.CompleteTrip(ctx, order.ID, "driver-1")
	if !errors.Is(err, service.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got: %v", err)
	}
}

func TestCancelOrder_Pending_NoFee(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	order := f.seedOrder(t, &domain.Order{PassengerID: "passenger-1"})

	cancelled, err := f.orderSvc.CancelOrder(context.Background(), order.ID, "passenger-1")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if cancelled.Status != domain.OrderStatusCancelled {
		t.Errorf("expected status CANCELLED, got %s", cancelled.Status)
	}
	if cancelled.CancelFee != 0 {
		t.Errorf("expected no cancel fee for pending order, got %v", cancelled.CancelFee)
	}
	if cancelled.CancelledBy != "passenger-1" {
		t.Errorf("expected cancelled_by passenger-1, got %q", cancelled.CancelledBy)
	}
}

func TestCancelOrder_Accepted_ChargesFeeAndReleasesDriver(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	order := f.seedOrder(t, &domain.Order{PassengerID: "passenger-1", VehicleType: domain.VehicleTypePremium})
	f.seedDriver(t, &domain.Driver{ID: "driver-1", VehicleType: domain.VehicleTypePremium})

	ctx := context.Background()
	if _, err := f.orderSvc.AcceptOrder(ctx, order.ID, "driver-1"); err != nil {
		t.Fatalf("accept: %v", err)
	}

	cancelled, err := f.orderSvc.CancelOrder(ctx, order.ID, "passenger-1")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if cancelled.CancelFee != 50.0 {
		t.Errorf("expected PREMIUM cancel fee 50.0, got %v", cancelled.CancelFee)
	}
	// The driver keeps its assignment record on the order but is freed.
	if cancelled.DriverID != "driver-1" {
		t.Errorf("expected driver id retained for audit, got %q", cancelled.DriverID)
	}
	driver := f.driver(t, "driver-1")
	if driver.Busy || driver.CurrentOrderID != "" {
		t.Errorf("expected driver released after cancel, got %+v", driver)
	}
}

func TestCancelOrder_ByNonPassenger_Forbidden(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	order := f.seedOrder(t, &domain.Order{PassengerID: "passenger-1"})

	_, err := f.orderSvc.CancelOrder(context.Background(), order.ID, "someone-else")
	if !errors.Is(err, service.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got: %v", err)
	}

	entries := f.auditEntries(t, order.ID)
	if len(entries) != 1 || entries[0].FailureReason != "FORBIDDEN" {
		t.Errorf("expected one FORBIDDEN audit entry, got %+v", entries)
	}
}

func TestCancelOrder_Ongoing_Fails(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	order := f.seedOrder(t, &domain.Order{PassengerID: "passenger-1"})
	f.seedDriver(t, &domain.Driver{ID: "driver-1"})

	ctx := context.Background()
	if _, err := f.orderSvc.AcceptOrder(ctx, order.ID, "driver-1"); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if _, err := f.orderSvc.StartTrip(ctx, order.ID, "driver-1"); err != nil {
		t.Fatalf("start: %v", err)
	}

	_, err := f.orderSvc.CancelOrder(ctx, order.ID, "passenger-1")
	if !errors.Is(err, service.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got: %v", err)
	}
}

func TestCancelOrder_Twice_IsIdempotent(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	order := f.seedOrder(t, &domain.Order{PassengerID: "passenger-1"})

	ctx := context.Background()
	if _, err := f.orderSvc.CancelOrder(ctx, order.ID, "passenger-1"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	again, err := f.orderSvc.CancelOrder(ctx, order.ID, "passenger-1")
	if err != nil {
		t.Fatalf("retry cancel: %v", err)
	}
	if again.Status != domain.OrderStatusCancelled {
		t.Errorf("expected CANCELLED, got %s", again.Status)
	}

	entries := f.auditEntries(t, order.ID)
	if len(entries) != 1 {
		t.Errorf("expected 1 audit entry after idempotent retry, got %d", len(entries))
	}
}

func TestGetOrder(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	order := f.seedOrder(t, &domain.Order{})

	got, err := f.orderSvc.GetOrder(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != order.ID {
		t.Errorf("expected order %s, got %s", order.ID, got.ID)
	}

	if _, err := f.orderSvc.GetOrder(context.Background(), "missing"); !errors.Is(err, service.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got: %v", err)
	}
}

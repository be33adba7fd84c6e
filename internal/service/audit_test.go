package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"dispatch/internal/domain"
	"dispatch/internal/repository/memory"
	"dispatch/internal/service"
)

// capturingPublisher records published audit events.
type capturingPublisher struct {
	mu   sync.Mutex
	keys []string
	fail bool
}

func (p *capturingPublisher) PublishJSON(ctx context.Context, routingKey string, msg any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("broker down")
	}
	p.keys = append(p.keys, routingKey)
	return nil
}

func TestAuditService_PublishesEvents(t *testing.T) {
	t.Parallel()

	repo := memory.NewAuditLogRepository()
	publisher := &capturingPublisher{}
	audit := service.NewAuditService(repo, publisher)

	ctx := context.Background()
	audit.LogSuccess(ctx, "order-1", domain.AuditActionAccept, domain.ActorTypeDriver, "driver-1", "PENDING", "ACCEPTED")
	audit.LogFailure(ctx, "order-1", domain.AuditActionAccept, domain.ActorTypeDriver, "driver-2", "ACCEPTED", "ORDER_ALREADY_ACCEPTED")

	publisher.mu.Lock()
	defer publisher.mu.Unlock()
	if len(publisher.keys) != 2 {
		t.Fatalf("expected 2 published events, got %d", len(publisher.keys))
	}
	for _, key := range publisher.keys {
		if key != "audit.ACCEPT" {
			t.Errorf("expected routing key audit.ACCEPT, got %s", key)
		}
	}
}

func TestAuditService_BrokerFailureDoesNotLoseRecords(t *testing.T) {
	t.Parallel()

	repo := memory.NewAuditLogRepository()
	audit := service.NewAuditService(repo, &capturingPublisher{fail: true})

	audit.LogSuccess(context.Background(), "order-1", domain.AuditActionCreate, domain.ActorTypePassenger, "passenger-1", "", "PENDING")

	entries, err := repo.GetByOrderID(context.Background(), "order-1")
	if err != nil {
		t.Fatalf("get entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected the record to be stored despite broker failure, got %d", len(entries))
	}
}

func TestAuditService_WorksWithoutPublisher(t *testing.T) {
	t.Parallel()

	repo := memory.NewAuditLogRepository()
	audit := service.NewAuditService(repo, nil)

	audit.LogSuccess(context.Background(), "order-1", domain.AuditActionCreate, domain.ActorTypePassenger, "passenger-1", "", "PENDING")

	entries, err := audit.GetByOrderID(context.Background(), "order-1")
	if err != nil {
		t.Fatalf("get entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
}

func TestAcceptStats(t *testing.T) {
	t.Parallel()

	repo := memory.NewAuditLogRepository()
	audit := service.NewAuditService(repo, nil)

	ctx := context.Background()
	audit.LogSuccess(ctx, "order-1", domain.AuditActionAccept, domain.ActorTypeDriver, "driver-1", "PENDING", "ACCEPTED")
	audit.LogFailure(ctx, "order-1", domain.AuditActionAccept, domain.ActorTypeDriver, "driver-2", "ACCEPTED", "ORDER_ALREADY_ACCEPTED")
	audit.LogFailure(ctx, "order-1", domain.AuditActionAccept, domain.ActorTypeDriver, "driver-3", "ACCEPTED", "ORDER_ALREADY_ACCEPTED")
	// Entries for other actions and other orders must not count.
	audit.LogSuccess(ctx, "order-1", domain.AuditActionStart, domain.ActorTypeDriver, "driver-1", "ACCEPTED", "ONGOING")
	audit.LogFailure(ctx, "order-2", domain.AuditActionAccept, domain.ActorTypeDriver, "driver-4", "PENDING", "DRIVER_BUSY")

	success, failure, err := audit.AcceptStats(ctx, "order-1")
	if err != nil {
		t.Fatalf("accept stats: %v", err)
	}
	if success != 1 {
		t.Errorf("expected 1 success, got %d", success)
	}
	if failure != 2 {
		t.Errorf("expected 2 failures, got %d", failure)
	}
}

func TestErrorCode(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		err  error
		want string
	}{
		{service.ErrOrderNotFound, "ORDER_NOT_FOUND"},
		{service.ErrOrderAlreadyAccepted, "ORDER_ALREADY_ACCEPTED"},
		{service.ErrInvalidState, "INVALID_STATE"},
		{service.ErrNotAssignedDriver, "NOT_ASSIGNED_DRIVER"},
		{service.ErrForbidden, "FORBIDDEN"},
		{service.ErrDriverOffline, "DRIVER_OFFLINE"},
		{service.ErrDriverBusy, "DRIVER_BUSY"},
		{service.ErrOrderExpired, "ORDER_EXPIRED"},
		{service.ErrNoDriverAvailable, "NO_DRIVER_AVAILABLE"},
		{errors.New("disk on fire"), "INTERNAL_ERROR"},
	}

	for _, tc := range testCases {
		if got := service.ErrorCode(tc.err); got != tc.want {
			t.Errorf("ErrorCode(%v) = %s, want %s", tc.err, got, tc.want)
		}
	}
}

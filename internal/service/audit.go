package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"dispatch/internal/domain"
	"dispatch/internal/repository"
)

// EventPublisher publishes audit events to an external broker.
// Publishing is fire-and-forget: failures must never affect the transition
// that produced the event.
type EventPublisher interface {
	PublishJSON(ctx context.Context, routingKey string, msg any) error
}

// AuditService records every lifecycle transition attempt.
type AuditService struct {
	repo      repository.AuditLogRepository
	publisher EventPublisher // optional
}

// NewAuditService creates a new AuditService. publisher may be nil.
func NewAuditService(repo repository.AuditLogRepository, publisher EventPublisher) *AuditService {
	return &AuditService{
		repo:      repo,
		publisher: publisher,
	}
}

// LogSuccess records a successful transition.
func (s *AuditService) LogSuccess(ctx context.Context, orderID, action, actorType, actorID, previousState, newState string) {
	s.record(ctx, &domain.AuditLog{
		ID:            uuid.New().String(),
		OrderID:       orderID,
		Action:        action,
		ActorType:     actorType,
		ActorID:       actorID,
		PreviousState: previousState,
		NewState:      newState,
		Success:       true,
		Timestamp:     time.Now(),
	})
}

// LogFailure records a failed transition attempt. The new state equals the
// previous state since nothing changed.
func (s *AuditService) LogFailure(ctx context.Context, orderID, action, actorType, actorID, previousState, failureReason string) {
	s.record(ctx, &domain.AuditLog{
		ID:            uuid.New().String(),
		OrderID:       orderID,
		Action:        action,
		ActorType:     actorType,
		ActorID:       actorID,
		PreviousState: previousState,
		NewState:      previousState,
		Success:       false,
		FailureReason: failureReason,
		Timestamp:     time.Now(),
	})
}

func (s *AuditService) record(ctx context.Context, entry *domain.AuditLog) {
	if err := s.repo.Append(ctx, entry); err != nil {
		log.Printf("audit append failed for order %s: %v", entry.OrderID, err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishJSON(ctx, "audit."+entry.Action, entry); err != nil {
			log.Printf("audit publish failed for order %s: %v", entry.OrderID, err)
		}
	}
}

// GetByOrderID returns all audit entries for an order, oldest first.
func (s *AuditService) GetByOrderID(ctx context.Context, orderID string) ([]*domain.AuditLog, error) {
	return s.repo.GetByOrderID(ctx, orderID)
}

// GetAll returns all audit entries, oldest first.
func (s *AuditService) GetAll(ctx context.Context) ([]*domain.AuditLog, error) {
	return s.repo.GetAll(ctx)
}

// AcceptStats returns the success and failure counts of accept attempts on
// an order. For a contested order the counts reconstruct the arbitration:
// one success, N-1 conflicts.
func (s *AuditService) AcceptStats(ctx context.Context, orderID string) (success, failure int, err error) {
	success, err = s.repo.CountByOrderAndAction(ctx, orderID, domain.AuditActionAccept, true)
	if err != nil {
		return 0, 0, err
	}
	failure, err = s.repo.CountByOrderAndAction(ctx, orderID, domain.AuditActionAccept, false)
	if err != nil {
		return 0, 0, err
	}
	return success, failure, nil
}

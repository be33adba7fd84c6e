package memory

import (
	"context"
	"sync"

	"dispatch/internal/domain"
	"dispatch/internal/repository"
)

// AuditLogRepository is an in-memory, append-only audit log store.
type AuditLogRepository struct {
	mu      sync.RWMutex
	entries []*domain.AuditLog
}

// NewAuditLogRepository creates a new in-memory audit log repository.
func NewAuditLogRepository() *AuditLogRepository {
	return &AuditLogRepository{}
}

// Append persists a new audit log entry.
func (r *AuditLogRepository) Append(ctx context.Context, entry *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *entry
	r.entries = append(r.entries, &stored)
	return nil
}

// GetByOrderID retrieves all entries for an order, oldest first.
func (r *AuditLogRepository) GetByOrderID(ctx context.Context, orderID string) ([]*domain.AuditLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []*domain.AuditLog
	for _, e := range r.entries {
		if e.OrderID == orderID {
			copy := *e
			result = append(result, &copy)
		}
	}
	return result, nil
}

// GetAll retrieves all entries, oldest first.
func (r *AuditLogRepository) GetAll(ctx context.Context) ([]*domain.AuditLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]*domain.AuditLog, 0, len(r.entries))
	for _, e := range r.entries {
		copy := *e
		result = append(result, &copy)
	}
	return result, nil
}

// CountByOrderAndAction counts entries for an order and action by outcome.
func (r *AuditLogRepository) CountByOrderAndAction(ctx context.Context, orderID, action string, success bool) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, e := range r.entries {
		if e.OrderID == orderID && e.Action == action && e.Success == success {
			count++
		}
	}
	return count, nil
}

var _ repository.AuditLogRepository = (*AuditLogRepository)(nil)

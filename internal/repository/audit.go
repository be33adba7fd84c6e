package repository

import (
	"context"

	"dispatch/internal/domain"
)

// AuditLogRepository defines the persistence operations for audit logs.
// Logs are append-only.
type AuditLogRepository interface {
	// Append persists a new audit log entry.
	Append(ctx context.Context, entry *domain.AuditLog) error

	// GetByOrderID retrieves all entries for an order, oldest first.
	GetByOrderID(ctx context.Context, orderID string) ([]*domain.AuditLog, error)

	// GetAll retrieves all entries, oldest first.
	GetAll(ctx context.Context) ([]*domain.AuditLog, error)

	// CountByOrderAndAction counts entries for an order and action,
	// split by outcome.
	CountByOrderAndAction(ctx context.Context, orderID, action string, success bool) (int, error)
}

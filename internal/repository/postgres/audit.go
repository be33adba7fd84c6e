package postgres

import (
	"context"
	"database/sql"

	"dispatch/internal/domain"
	"dispatch/internal/repository"
)

// AuditLogRepository is a PostgreSQL implementation of repository.AuditLogRepository.
type AuditLogRepository struct {
	q Querier
}

// NewAuditLogRepository creates a new PostgreSQL audit log repository.
func NewAuditLogRepository(db *sql.DB) *AuditLogRepository {
	return &AuditLogRepository{q: db}
}

// Append persists a new audit log entry.
func (r *AuditLogRepository) Append(ctx context.Context, entry *domain.AuditLog) error {
	query := `
		INSERT INTO audit_logs (id, order_id, action, actor_type, actor_id, previous_state, new_state, success, failure_reason, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.q.ExecContext(ctx, query,
		entry.ID,
		entry.OrderID,
		entry.Action,
		entry.ActorType,
		entry.ActorID,
		entry.PreviousState,
		entry.NewState,
		entry.Success,
		nullString(entry.FailureReason),
		entry.Timestamp,
	)

	return err
}

// GetByOrderID retrieves all entries for an order, oldest first.
func (r *AuditLogRepository) GetByOrderID(ctx context.Context, orderID string) ([]*domain.AuditLog, error) {
	query := auditSelect + ` WHERE order_id = $1 ORDER BY timestamp`

	rows, err := r.q.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAuditLogs(rows)
}

// GetAll retrieves all entries, oldest first.
func (r *AuditLogRepository) GetAll(ctx context.Context) ([]*domain.AuditLog, error) {
	rows, err := r.q.QueryContext(ctx, auditSelect+` ORDER BY timestamp`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAuditLogs(rows)
}

// CountByOrderAndAction counts entries for an order and action by outcome.
func (r *AuditLogRepository) CountByOrderAndAction(ctx context.Context, orderID, action string, success bool) (int, error) {
	query := `SELECT COUNT(*) FROM audit_logs WHERE order_id = $1 AND action = $2 AND success = $3`

	var count int
	if err := r.q.QueryRowContext(ctx, query, orderID, action, success).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

const auditSelect = `
	SELECT id, order_id, action, actor_type, actor_id, previous_state, new_state, success, failure_reason, timestamp
	FROM audit_logs`

func collectAuditLogs(rows *sql.Rows) ([]*domain.AuditLog, error) {
	var entries []*domain.AuditLog
	for rows.Next() {
		var entry domain.AuditLog
		var failureReason sql.NullString
		if err := rows.Scan(
			&entry.ID,
			&entry.OrderID,
			&entry.Action,
			&entry.ActorType,
			&entry.ActorID,
			&entry.PreviousState,
			&entry.NewState,
			&entry.Success,
			&failureReason,
			&entry.Timestamp,
		); err != nil {
			return nil, err
		}
		entry.FailureReason = failureReason.String
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}

var _ repository.AuditLogRepository = (*AuditLogRepository)(nil)

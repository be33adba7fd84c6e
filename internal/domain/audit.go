package domain

import "time"

// Actor types recorded in audit logs.
const (
	ActorTypePassenger = "PASSENGER"
	ActorTypeDriver    = "DRIVER"
)

// Audit actions, one per lifecycle transition.
const (
	AuditActionCreate   = "CREATE"
	AuditActionAccept   = "ACCEPT"
	AuditActionStart    = "START"
	AuditActionComplete = "COMPLETE"
	AuditActionCancel   = "CANCEL"
)

// AuditLog records one lifecycle transition attempt, success or failure.
// On failure NewState equals PreviousState and FailureReason carries the
// reason code.
type AuditLog struct {
	ID            string
	OrderID       string
	Action        string
	ActorType     string
	ActorID       string
	PreviousState string
	NewState      string
	Success       bool
	FailureReason string
	Timestamp     time.Time
}

package domain

import "time"

// OrderStatus represents the current status of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusAccepted  OrderStatus = "ACCEPTED"
	OrderStatusOngoing   OrderStatus = "ONGOING"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// validTransitions is the full set of allowed state machine edges.
// COMPLETED and CANCELLED are terminal and appear only as targets.
var validTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:  {OrderStatusAccepted, OrderStatusCancelled},
	OrderStatusAccepted: {OrderStatusOngoing, OrderStatusCancelled},
	OrderStatusOngoing:  {OrderStatusCompleted},
}

// CanTransition reports whether the state machine permits moving from one
// status to another.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a status accepts no further transitions.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// VehicleType represents the vehicle class requested for an order.
type VehicleType string

const (
	VehicleTypeStandard VehicleType = "STANDARD"
	VehicleTypePremium  VehicleType = "PREMIUM"
	VehicleTypeXL       VehicleType = "XL"
)

// ValidVehicleType reports whether the value is a known vehicle type.
func ValidVehicleType(vt VehicleType) bool {
	switch vt {
	case VehicleTypeStandard, VehicleTypePremium, VehicleTypeXL:
		return true
	}
	return false
}

// Order represents a ride request in the system. Orders are never deleted;
// terminal orders are retained for audit and query.
type Order struct {
	ID            string
	PassengerID   string
	DriverID      string // set on accept, never cleared afterwards
	Status        OrderStatus
	VehicleType   VehicleType
	Pickup        Location
	Dropoff       Location
	EstimatedFare float64
	ActualFare    float64 // set on completion
	Distance      float64 // Euclidean, computed at creation
	Duration      int     // minutes, set on completion
	CancelFee     float64 // set on cancellation
	CancelledBy   string
	CreatedAt     time.Time
	AcceptedAt    time.Time
	StartedAt     time.Time
	CompletedAt   time.Time
	CancelledAt   time.Time
}

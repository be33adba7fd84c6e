package domain

import "time"

// DriverStatus represents the current status of a driver.
type DriverStatus string

const (
	DriverStatusOnline  DriverStatus = "ONLINE"
	DriverStatusOffline DriverStatus = "OFFLINE"
)

// Driver represents a driver in the system.
// Invariant: Busy == true iff CurrentOrderID != "" iff the driver is the
// assigned driver of exactly one ACCEPTED or ONGOING order.
type Driver struct {
	ID             string
	Name           string
	Phone          string
	VehiclePlate   string
	VehicleType    VehicleType
	Status         DriverStatus
	Location       *Location // nil until the driver first reports one
	Busy           bool
	CurrentOrderID string
	LastUpdatedAt  time.Time
}

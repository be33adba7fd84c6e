package service

import "errors"

var (
	// ErrOrderNotFound is returned when the order id is unknown.
	ErrOrderNotFound = errors.New("order not found")

	// ErrDriverNotFound is returned when the driver id is unknown.
	ErrDriverNotFound = errors.New("driver not found")

	// ErrOrderAlreadyAccepted is returned when another driver has already
	// won the order. The only error surfaced as HTTP 409.
	ErrOrderAlreadyAccepted = errors.New("order already accepted by another driver")

	// ErrInvalidState is returned when the transition is not permitted
	// from the order's current status.
	ErrInvalidState = errors.New("transition not permitted from current order state")

	// ErrNotAssignedDriver is returned when the caller is not the order's
	// assigned driver.
	ErrNotAssignedDriver = errors.New("caller is not the assigned driver")

	// ErrForbidden is returned when the caller is not authorized for the order.
	ErrForbidden = errors.New("caller is not authorized for this order")

	// ErrDriverOffline is returned when the driver is not ONLINE.
	ErrDriverOffline = errors.New("driver is offline")

	// ErrDriverBusy is returned when the driver already has an active order.
	ErrDriverBusy = errors.New("driver is busy")

	// ErrOrderExpired is returned when accepting a PENDING order older
	// than the configured TTL.
	ErrOrderExpired = errors.New("order has expired")

	// ErrInvalidRequest is returned for malformed input, e.g. identical
	// pickup and dropoff coordinates.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrNoDriverAvailable is returned when no driver qualifies for an order.
	ErrNoDriverAvailable = errors.New("no driver available")
)

// reasonCodes maps service errors to the stable reason codes used in audit
// records and API responses.
var reasonCodes = []struct {
	err  error
	code string
}{
	{ErrOrderNotFound, "ORDER_NOT_FOUND"},
	{ErrDriverNotFound, "DRIVER_NOT_FOUND"},
	{ErrOrderAlreadyAccepted, "ORDER_ALREADY_ACCEPTED"},
	{ErrInvalidState, "INVALID_STATE"},
	{ErrNotAssignedDriver, "NOT_ASSIGNED_DRIVER"},
	{ErrForbidden, "FORBIDDEN"},
	{ErrDriverOffline, "DRIVER_OFFLINE"},
	{ErrDriverBusy, "DRIVER_BUSY"},
	{ErrOrderExpired, "ORDER_EXPIRED"},
	{ErrInvalidRequest, "INVALID_REQUEST"},
	{ErrNoDriverAvailable, "NO_DRIVER_AVAILABLE"},
}

// ErrorCode returns the stable reason code for a service error, or
// "INTERNAL_ERROR" for anything outside the taxonomy.
func ErrorCode(err error) string {
	for _, rc := range reasonCodes {
		if errors.Is(err, rc.err) {
			return rc.code
		}
	}
	return "INTERNAL_ERROR"
}

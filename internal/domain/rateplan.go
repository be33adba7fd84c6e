package domain

// RatePlan holds the per-vehicle-type fare parameters.
type RatePlan struct {
	VehicleType VehicleType
	BaseFare    float64
	PerKmRate   float64
	PerMinRate  float64
	MinFare     float64
	CancelFee   float64 // charged when cancelling an already-accepted order
}

package service

import (
	"math"
	"sync"

	"dispatch/internal/domain"
)

// FareCalculator is the fare collaborator consumed by the order lifecycle.
// Implementations must be pure with respect to order state.
type FareCalculator interface {
	// Estimate returns the estimated fare from distance alone.
	Estimate(vehicleType domain.VehicleType, distance float64) float64

	// FinalFare returns the actual fare from distance and trip duration.
	FinalFare(vehicleType domain.VehicleType, distance float64, durationMinutes int) float64

	// CancellationFee returns the fee for cancelling an accepted order.
	CancellationFee(vehicleType domain.VehicleType) float64
}

// FareService is the default FareCalculator, backed by per-vehicle-type
// rate plans that admins can update at runtime.
type FareService struct {
	mu    sync.RWMutex
	plans map[domain.VehicleType]domain.RatePlan
}

// NewFareService creates a FareService with the default rate plans.
func NewFareService() *FareService {
	return &FareService{
		plans: map[domain.VehicleType]domain.RatePlan{
			domain.VehicleTypeStandard: {
				VehicleType: domain.VehicleTypeStandard,
				BaseFare:    50.0,
				PerKmRate:   15.0,
				PerMinRate:  3.0,
				MinFare:     70.0,
				CancelFee:   30.0,
			},
			domain.VehicleTypePremium: {
				VehicleType: domain.VehicleTypePremium,
				BaseFare:    80.0,
				PerKmRate:   25.0,
				PerMinRate:  5.0,
				MinFare:     120.0,
				CancelFee:   50.0,
			},
			domain.VehicleTypeXL: {
				VehicleType: domain.VehicleTypeXL,
				BaseFare:    100.0,
				PerKmRate:   30.0,
				PerMinRate:  6.0,
				MinFare:     150.0,
				CancelFee:   60.0,
			},
		},
	}
}

// Estimate returns base + distance·perKm, floored at the minimum fare.
func (s *FareService) Estimate(vehicleType domain.VehicleType, distance float64) float64 {
	plan := s.RatePlan(vehicleType)
	fare := plan.BaseFare + distance*plan.PerKmRate
	return math.Max(fare, plan.MinFare)
}

// FinalFare returns base + distance·perKm + duration·perMin, floored at the
// minimum fare and rounded to cents.
func (s *FareService) FinalFare(vehicleType domain.VehicleType, distance float64, durationMinutes int) float64 {
	plan := s.RatePlan(vehicleType)
	fare := plan.BaseFare + distance*plan.PerKmRate + float64(durationMinutes)*plan.PerMinRate
	return math.Round(math.Max(fare, plan.MinFare)*100) / 100
}

// FareBreakdown itemizes a final fare.
type FareBreakdown struct {
	Base           float64
	DistanceCharge float64
	TimeCharge     float64
	MinFareApplied bool
	Total          float64
}

// Breakdown itemizes the final fare of a trip. Total matches FinalFare for
// the same inputs.
func (s *FareService) Breakdown(vehicleType domain.VehicleType, distance float64, durationMinutes int) FareBreakdown {
	plan := s.RatePlan(vehicleType)
	breakdown := FareBreakdown{
		Base:           plan.BaseFare,
		DistanceCharge: math.Round(distance*plan.PerKmRate*100) / 100,
		TimeCharge:     float64(durationMinutes) * plan.PerMinRate,
	}
	total := plan.BaseFare + distance*plan.PerKmRate + float64(durationMinutes)*plan.PerMinRate
	if total < plan.MinFare {
		breakdown.MinFareApplied = true
		total = plan.MinFare
	}
	breakdown.Total = math.Round(total*100) / 100
	return breakdown
}

// CancellationFee returns the vehicle type's cancellation fee.
func (s *FareService) CancellationFee(vehicleType domain.VehicleType) float64 {
	return s.RatePlan(vehicleType).CancelFee
}

// RatePlan returns the current rate plan for a vehicle type.
func (s *FareService) RatePlan(vehicleType domain.VehicleType) domain.RatePlan {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.plans[vehicleType]
}

// AllRatePlans returns the current rate plans for all vehicle types.
func (s *FareService) AllRatePlans() []domain.RatePlan {
	s.mu.RLock()
	defer s.mu.RUnlock()
	plans := make([]domain.RatePlan, 0, len(s.plans))
	for _, vt := range []domain.VehicleType{domain.VehicleTypeStandard, domain.VehicleTypePremium, domain.VehicleTypeXL} {
		plans = append(plans, s.plans[vt])
	}
	return plans
}

// UpdateRatePlan replaces the rate plan for a vehicle type.
func (s *FareService) UpdateRatePlan(vehicleType domain.VehicleType, plan domain.RatePlan) (domain.RatePlan, error) {
	if !domain.ValidVehicleType(vehicleType) {
		return domain.RatePlan{}, ErrInvalidRequest
	}
	plan.VehicleType = vehicleType

	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans[vehicleType] = plan
	return plan, nil
}

var _ FareCalculator = (*FareService)(nil)

package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"dispatch/internal/domain"
	"dispatch/internal/service"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	orderService *service.OrderService
	fareService  *service.FareService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderService *service.OrderService, fareService *service.FareService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		fareService:  fareService,
	}
}

// CreateOrderRequest is the HTTP request body for creating an order.
type CreateOrderRequest struct {
	PassengerID string  `json:"passenger_id"`
	PickupX     float64 `json:"pickup_x"`
	PickupY     float64 `json:"pickup_y"`
	DropoffX    float64 `json:"dropoff_x"`
	DropoffY    float64 `json:"dropoff_y"`
	VehicleType string  `json:"vehicle_type,omitempty"` // STANDARD, PREMIUM, XL
}

// AcceptOrderRequest is the HTTP request body for accepting an order.
type AcceptOrderRequest struct {
	DriverID string `json:"driver_id"`
}

// StartTripRequest is the HTTP request body for starting a trip.
type StartTripRequest struct {
	DriverID string `json:"driver_id"`
}

// CompleteTripRequest is the HTTP request body for completing a trip.
type CompleteTripRequest struct {
	DriverID string `json:"driver_id"`
}

// CancelOrderRequest is the HTTP request body for cancelling an order.
type CancelOrderRequest struct {
	CancelledBy string `json:"cancelled_by"`
}

// OrderResponse is the HTTP representation of an order.
type OrderResponse struct {
	ID            string  `json:"id"`
	PassengerID   string  `json:"passenger_id"`
	DriverID      string  `json:"driver_id,omitempty"`
	Status        string  `json:"status"`
	VehicleType   string  `json:"vehicle_type"`
	PickupX       float64 `json:"pickup_x"`
	PickupY       float64 `json:"pickup_y"`
	DropoffX      float64 `json:"dropoff_x"`
	DropoffY      float64 `json:"dropoff_y"`
	Distance      float64 `json:"distance"`
	EstimatedFare float64 `json:"estimated_fare"`
	ActualFare    float64 `json:"actual_fare,omitempty"`
	Duration      int     `json:"duration_minutes,omitempty"`
	CancelFee     float64 `json:"cancel_fee,omitempty"`
	CancelledBy   string  `json:"cancelled_by,omitempty"`
	CreatedAt     string  `json:"created_at"`
	AcceptedAt    string  `json:"accepted_at,omitempty"`
	StartedAt     string  `json:"started_at,omitempty"`
	CompletedAt   string  `json:"completed_at,omitempty"`
	CancelledAt   string  `json:"cancelled_at,omitempty"`
}

func toOrderResponse(order *domain.Order) OrderResponse {
	return OrderResponse{
		ID:            order.ID,
		PassengerID:   order.PassengerID,
		DriverID:      order.DriverID,
		Status:        string(order.Status),
		VehicleType:   string(order.VehicleType),
		PickupX:       order.Pickup.X,
		PickupY:       order.Pickup.Y,
		DropoffX:      order.Dropoff.X,
		DropoffY:      order.Dropoff.Y,
		Distance:      order.Distance,
		EstimatedFare: order.EstimatedFare,
		ActualFare:    order.ActualFare,
		Duration:      order.Duration,
		CancelFee:     order.CancelFee,
		CancelledBy:   order.CancelledBy,
		CreatedAt:     formatTime(order.CreatedAt),
		AcceptedAt:    formatTime(order.AcceptedAt),
		StartedAt:     formatTime(order.StartedAt),
		CompletedAt:   formatTime(order.CompletedAt),
		CancelledAt:   formatTime(order.CancelledAt),
	}
}

func toOrderResponses(orders []*domain.Order) []OrderResponse {
	responses := make([]OrderResponse, 0, len(orders))
	for _, order := range orders {
		responses = append(responses, toOrderResponse(order))
	}
	return responses
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

// CreateOrder handles POST /v1/orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, service.ErrInvalidRequest)
		return
	}

	vehicleType := domain.VehicleType(req.VehicleType)
	if req.VehicleType == "" {
		vehicleType = domain.VehicleTypeStandard
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), service.CreateOrderRequest{
		PassengerID: req.PassengerID,
		Pickup:      domain.Location{X: req.PickupX, Y: req.PickupY},
		Dropoff:     domain.Location{X: req.DropoffX, Y: req.DropoffY},
		VehicleType: vehicleType,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toOrderResponse(order))
}

// GetOrder handles GET /v1/orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.orderService.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toOrderResponse(order))
}

// GetAll handles GET /v1/orders. ?status=PENDING narrows to pending orders.
func (h *OrderHandler) GetAll(c *gin.Context) {
	var (
		orders []*domain.Order
		err    error
	)
	if c.Query("status") == string(domain.OrderStatusPending) {
		orders, err = h.orderService.PendingOrders(c.Request.Context())
	} else {
		orders, err = h.orderService.AllOrders(c.Request.Context())
	}
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toOrderResponses(orders))
}

// AcceptOrder handles POST /v1/orders/:id/accept
func (h *OrderHandler) AcceptOrder(c *gin.Context) {
	var req AcceptOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.DriverID == "" {
		respondError(c, service.ErrInvalidRequest)
		return
	}

	order, err := h.orderService.AcceptOrder(c.Request.Context(), c.Param("id"), req.DriverID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toOrderResponse(order))
}

// StartTrip handles POST /v1/orders/:id/start
func (h *OrderHandler) StartTrip(c *gin.Context) {
	var req StartTripRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.DriverID == "" {
		respondError(c, service.ErrInvalidRequest)
		return
	}

	order, err := h.orderService.StartTrip(c.Request.Context(), c.Param("id"), req.DriverID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toOrderResponse(order))
}

// FareBreakdownResponse itemizes the final fare of a completed trip.
type FareBreakdownResponse struct {
	Base           float64 `json:"base"`
	DistanceCharge float64 `json:"distance_charge"`
	TimeCharge     float64 `json:"time_charge"`
	MinFareApplied bool    `json:"min_fare_applied"`
	Total          float64 `json:"total"`
}

// CompleteTripResponse is the HTTP response for completing a trip.
type CompleteTripResponse struct {
	OrderResponse
	Fare FareBreakdownResponse `json:"fare"`
}

// CompleteTrip handles POST /v1/orders/:id/complete
func (h *OrderHandler) CompleteTrip(c *gin.Context) {
	var req CompleteTripRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.DriverID == "" {
		respondError(c, service.ErrInvalidRequest)
		return
	}

	order, err := h.orderService.CompleteTrip(c.Request.Context(), c.Param("id"), req.DriverID)
	if err != nil {
		respondError(c, err)
		return
	}

	breakdown := h.fareService.Breakdown(order.VehicleType, order.Distance, order.Duration)
	respondJSON(c, http.StatusOK, CompleteTripResponse{
		OrderResponse: toOrderResponse(order),
		Fare: FareBreakdownResponse{
			Base:           breakdown.Base,
			DistanceCharge: breakdown.DistanceCharge,
			TimeCharge:     breakdown.TimeCharge,
			MinFareApplied: breakdown.MinFareApplied,
			Total:          breakdown.Total,
		},
	})
}

// CancelOrder handles POST /v1/orders/:id/cancel
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	var req CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.CancelledBy == "" {
		respondError(c, service.ErrInvalidRequest)
		return
	}

	order, err := h.orderService.CancelOrder(c.Request.Context(), c.Param("id"), req.CancelledBy)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toOrderResponse(order))
}

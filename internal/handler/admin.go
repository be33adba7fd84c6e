package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dispatch/internal/domain"
	"dispatch/internal/service"
)

// AdminHandler exposes the operational surface: audit inspection, fare
// plan management, matching tunables and system counters.
type AdminHandler struct {
	auditService    *service.AuditService
	fareService     *service.FareService
	matchingService *service.MatchingService
	orderService    *service.OrderService
	driverService   *service.DriverService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(
	auditService *service.AuditService,
	fareService *service.FareService,
	matchingService *service.MatchingService,
	orderService *service.OrderService,
	driverService *service.DriverService,
) *AdminHandler {
	return &AdminHandler{
		auditService:    auditService,
		fareService:     fareService,
		matchingService: matchingService,
		orderService:    orderService,
		driverService:   driverService,
	}
}

// AuditLogResponse is the HTTP representation of an audit entry.
type AuditLogResponse struct {
	ID            string `json:"id"`
	OrderID       string `json:"order_id"`
	Action        string `json:"action"`
	ActorType     string `json:"actor_type"`
	ActorID       string `json:"actor_id"`
	PreviousState string `json:"previous_state,omitempty"`
	NewState      string `json:"new_state"`
	Success       bool   `json:"success"`
	FailureReason string `json:"failure_reason,omitempty"`
	Timestamp     string `json:"timestamp"`
}

func toAuditLogResponses(entries []*domain.AuditLog) []AuditLogResponse {
	responses := make([]AuditLogResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, AuditLogResponse{
			ID:            entry.ID,
			OrderID:       entry.OrderID,
			Action:        entry.Action,
			ActorType:     entry.ActorType,
			ActorID:       entry.ActorID,
			PreviousState: entry.PreviousState,
			NewState:      entry.NewState,
			Success:       entry.Success,
			FailureReason: entry.FailureReason,
			Timestamp:     formatTime(entry.Timestamp),
		})
	}
	return responses
}

// AcceptStatsResponse summarizes the accept attempts on one order.
type AcceptStatsResponse struct {
	OrderID  string `json:"order_id"`
	Accepted int    `json:"accepted"`
	Rejected int    `json:"rejected"`
}

// RatePlanResponse is the HTTP representation of a rate plan.
type RatePlanResponse struct {
	VehicleType string  `json:"vehicle_type"`
	BaseFare    float64 `json:"base_fare"`
	PerKmRate   float64 `json:"per_km_rate"`
	PerMinRate  float64 `json:"per_min_rate"`
	MinFare     float64 `json:"min_fare"`
	CancelFee   float64 `json:"cancel_fee"`
}

// UpdateRatePlanRequest is the HTTP request body for replacing a rate plan.
type UpdateRatePlanRequest struct {
	BaseFare   float64 `json:"base_fare"`
	PerKmRate  float64 `json:"per_km_rate"`
	PerMinRate float64 `json:"per_min_rate"`
	MinFare    float64 `json:"min_fare"`
	CancelFee  float64 `json:"cancel_fee"`
}

// SearchRadiusRequest is the HTTP request body for setting the radius.
type SearchRadiusRequest struct {
	Radius float64 `json:"radius"`
}

// StatsResponse holds system-wide counters.
type StatsResponse struct {
	OrdersByStatus map[string]int `json:"orders_by_status"`
	TotalOrders    int            `json:"total_orders"`
	TotalDrivers   int            `json:"total_drivers"`
	OnlineDrivers  int            `json:"online_drivers"`
	BusyDrivers    int            `json:"busy_drivers"`
	SearchRadius   float64        `json:"search_radius"`
}

func toRatePlanResponse(plan domain.RatePlan) RatePlanResponse {
	return RatePlanResponse{
		VehicleType: string(plan.VehicleType),
		BaseFare:    plan.BaseFare,
		PerKmRate:   plan.PerKmRate,
		PerMinRate:  plan.PerMinRate,
		MinFare:     plan.MinFare,
		CancelFee:   plan.CancelFee,
	}
}

// GetAuditLogs handles GET /v1/admin/audit-logs. ?order_id= narrows to one
// order's history.
func (h *AdminHandler) GetAuditLogs(c *gin.Context) {
	var (
		entries []*domain.AuditLog
		err     error
	)
	if orderID := c.Query("order_id"); orderID != "" {
		entries, err = h.auditService.GetByOrderID(c.Request.Context(), orderID)
	} else {
		entries, err = h.auditService.GetAll(c.Request.Context())
	}
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toAuditLogResponses(entries))
}

// GetAcceptStats handles GET /v1/admin/orders/:id/accept-stats
func (h *AdminHandler) GetAcceptStats(c *gin.Context) {
	orderID := c.Param("id")

	if _, err := h.orderService.GetOrder(c.Request.Context(), orderID); err != nil {
		respondError(c, err)
		return
	}

	accepted, rejected, err := h.auditService.AcceptStats(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, AcceptStatsResponse{
		OrderID:  orderID,
		Accepted: accepted,
		Rejected: rejected,
	})
}

// GetRatePlans handles GET /v1/admin/rate-plans
func (h *AdminHandler) GetRatePlans(c *gin.Context) {
	plans := h.fareService.AllRatePlans()
	responses := make([]RatePlanResponse, 0, len(plans))
	for _, plan := range plans {
		responses = append(responses, toRatePlanResponse(plan))
	}
	respondJSON(c, http.StatusOK, responses)
}

// UpdateRatePlan handles PUT /v1/admin/rate-plans/:type
func (h *AdminHandler) UpdateRatePlan(c *gin.Context) {
	var req UpdateRatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, service.ErrInvalidRequest)
		return
	}

	plan, err := h.fareService.UpdateRatePlan(domain.VehicleType(c.Param("type")), domain.RatePlan{
		BaseFare:   req.BaseFare,
		PerKmRate:  req.PerKmRate,
		PerMinRate: req.PerMinRate,
		MinFare:    req.MinFare,
		CancelFee:  req.CancelFee,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toRatePlanResponse(plan))
}

// GetSearchRadius handles GET /v1/admin/search-radius
func (h *AdminHandler) GetSearchRadius(c *gin.Context) {
	respondJSON(c, http.StatusOK, gin.H{"radius": h.matchingService.SearchRadius()})
}

// SetSearchRadius handles PUT /v1/admin/search-radius
func (h *AdminHandler) SetSearchRadius(c *gin.Context) {
	var req SearchRadiusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, service.ErrInvalidRequest)
		return
	}
	if err := h.matchingService.SetSearchRadius(req.Radius); err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"radius": h.matchingService.SearchRadius()})
}

// GetStats handles GET /v1/admin/stats
func (h *AdminHandler) GetStats(c *gin.Context) {
	orders, err := h.orderService.AllOrders(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	drivers, err := h.driverService.AllDrivers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	stats := StatsResponse{
		OrdersByStatus: make(map[string]int),
		TotalOrders:    len(orders),
		TotalDrivers:   len(drivers),
		SearchRadius:   h.matchingService.SearchRadius(),
	}
	for _, order := range orders {
		stats.OrdersByStatus[string(order.Status)]++
	}
	for _, driver := range drivers {
		if driver.Status == domain.DriverStatusOnline {
			stats.OnlineDrivers++
		}
		if driver.Busy {
			stats.BusyDrivers++
		}
	}

	respondJSON(c, http.StatusOK, stats)
}

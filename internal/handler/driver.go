package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dispatch/internal/domain"
	"dispatch/internal/service"
)

// DriverHandler handles HTTP requests for drivers.
type DriverHandler struct {
	driverService   *service.DriverService
	matchingService *service.MatchingService
}

// NewDriverHandler creates a new DriverHandler.
func NewDriverHandler(driverService *service.DriverService, matchingService *service.MatchingService) *DriverHandler {
	return &DriverHandler{
		driverService:   driverService,
		matchingService: matchingService,
	}
}

// RegisterDriverRequest is the HTTP request body for registering a driver.
type RegisterDriverRequest struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Phone        string `json:"phone,omitempty"`
	VehiclePlate string `json:"vehicle_plate,omitempty"`
	VehicleType  string `json:"vehicle_type,omitempty"` // STANDARD, PREMIUM, XL
}

// LocationRequest is the HTTP request body carrying a plane position.
type LocationRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DriverResponse is the HTTP representation of a driver.
type DriverResponse struct {
	ID             string   `json:"id"`
	Name           string   `json:"name,omitempty"`
	Phone          string   `json:"phone,omitempty"`
	VehiclePlate   string   `json:"vehicle_plate,omitempty"`
	VehicleType    string   `json:"vehicle_type"`
	Status         string   `json:"status"`
	Busy           bool     `json:"busy"`
	CurrentOrderID string   `json:"current_order_id,omitempty"`
	X              *float64 `json:"x,omitempty"`
	Y              *float64 `json:"y,omitempty"`
}

func toDriverResponse(driver *domain.Driver) DriverResponse {
	resp := DriverResponse{
		ID:             driver.ID,
		Name:           driver.Name,
		Phone:          driver.Phone,
		VehiclePlate:   driver.VehiclePlate,
		VehicleType:    string(driver.VehicleType),
		Status:         string(driver.Status),
		Busy:           driver.Busy,
		CurrentOrderID: driver.CurrentOrderID,
	}
	if driver.Location != nil {
		x, y := driver.Location.X, driver.Location.Y
		resp.X, resp.Y = &x, &y
	}
	return resp
}

func toDriverResponses(drivers []*domain.Driver) []DriverResponse {
	responses := make([]DriverResponse, 0, len(drivers))
	for _, driver := range drivers {
		responses = append(responses, toDriverResponse(driver))
	}
	return responses
}

// Register handles POST /v1/drivers/register
func (h *DriverHandler) Register(c *gin.Context) {
	var req RegisterDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, service.ErrInvalidRequest)
		return
	}

	vehicleType := domain.VehicleType(req.VehicleType)
	if req.VehicleType == "" {
		vehicleType = domain.VehicleTypeStandard
	}

	driver, err := h.driverService.Register(c.Request.Context(), service.RegisterDriverRequest{
		ID:           req.ID,
		Name:         req.Name,
		Phone:        req.Phone,
		VehiclePlate: req.VehiclePlate,
		VehicleType:  vehicleType,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toDriverResponse(driver))
}

// GetDriver handles GET /v1/drivers/:id
func (h *DriverHandler) GetDriver(c *gin.Context) {
	driver, err := h.driverService.GetDriver(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toDriverResponse(driver))
}

// GetAll handles GET /v1/drivers. ?available=true narrows to drivers that
// are online and free.
func (h *DriverHandler) GetAll(c *gin.Context) {
	var (
		drivers []*domain.Driver
		err     error
	)
	if c.Query("available") == "true" {
		drivers, err = h.matchingService.AvailableDrivers(c.Request.Context())
	} else {
		drivers, err = h.driverService.AllDrivers(c.Request.Context())
	}
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toDriverResponses(drivers))
}

// GoOnline handles POST /v1/drivers/:id/online
func (h *DriverHandler) GoOnline(c *gin.Context) {
	var req LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, service.ErrInvalidRequest)
		return
	}

	driver, err := h.driverService.GoOnline(c.Request.Context(), c.Param("id"), domain.Location{X: req.X, Y: req.Y})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toDriverResponse(driver))
}

// GoOffline handles POST /v1/drivers/:id/offline
func (h *DriverHandler) GoOffline(c *gin.Context) {
	driver, err := h.driverService.GoOffline(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toDriverResponse(driver))
}

// UpdateLocation handles POST /v1/drivers/:id/location
func (h *DriverHandler) UpdateLocation(c *gin.Context) {
	var req LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, service.ErrInvalidRequest)
		return
	}

	driver, err := h.driverService.UpdateLocation(c.Request.Context(), c.Param("id"), domain.Location{X: req.X, Y: req.Y})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toDriverResponse(driver))
}

// GetOffers handles GET /v1/drivers/:id/offers
func (h *DriverHandler) GetOffers(c *gin.Context) {
	offers, err := h.matchingService.OffersFor(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toOrderResponses(offers))
}

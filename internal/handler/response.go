package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"dispatch/internal/repository"
	"dispatch/internal/service"
)

// ErrorResponse represents an error response. Code carries the stable
// machine-readable reason; Error is the human-readable message.
type ErrorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	status := mapErrorToHTTPStatus(err)
	c.JSON(status, ErrorResponse{Code: service.ErrorCode(err), Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrDriverNotFound),
		errors.Is(err, service.ErrNoDriverAvailable),
		errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Lost the race for an order
	case errors.Is(err, service.ErrOrderAlreadyAccepted):
		return http.StatusConflict

	// Acting on an order that is not yours
	case errors.Is(err, service.ErrNotAssignedDriver),
		errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden

	// Validation and state errors
	case errors.Is(err, service.ErrInvalidState),
		errors.Is(err, service.ErrDriverOffline),
		errors.Is(err, service.ErrDriverBusy),
		errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, service.ErrOrderExpired):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

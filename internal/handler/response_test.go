package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"dispatch/internal/repository"
	"dispatch/internal/service"
)

func TestMapErrorToHTTPStatus(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		err  error
		want int
	}{
		{service.ErrOrderNotFound, http.StatusNotFound},
		{service.ErrDriverNotFound, http.StatusNotFound},
		{service.ErrNoDriverAvailable, http.StatusNotFound},
		{repository.ErrNotFound, http.StatusNotFound},
		{service.ErrOrderAlreadyAccepted, http.StatusConflict},
		{service.ErrNotAssignedDriver, http.StatusForbidden},
		{service.ErrForbidden, http.StatusForbidden},
		{service.ErrInvalidState, http.StatusBadRequest},
		{service.ErrDriverOffline, http.StatusBadRequest},
		{service.ErrDriverBusy, http.StatusBadRequest},
		{service.ErrInvalidRequest, http.StatusBadRequest},
		{service.ErrOrderExpired, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		if got := mapErrorToHTTPStatus(tc.err); got != tc.want {
			t.Errorf("mapErrorToHTTPStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}

	// Wrapped errors map the same as their sentinels.
	wrapped := fmt.Errorf("accept order: %w", service.ErrOrderAlreadyAccepted)
	if got := mapErrorToHTTPStatus(wrapped); got != http.StatusConflict {
		t.Errorf("expected wrapped conflict to map to 409, got %d", got)
	}
}

package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bookings-system/internal/apperror"
)

func TestWriteServiceError_StatusCodes(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", apperror.NotFound("service not found", nil), http.StatusNotFound},
		{"validation", apperror.Validation("quantity must be at least 1", nil), http.StatusBadRequest},
		{"empty order", apperror.EmptyOrder("order must contain at least one item", nil), http.StatusBadRequest},
		{"not serviceable", apperror.NotServiceable("we currently do not serve this area", nil), http.StatusBadRequest},
		{"conflict", apperror.Conflict("invalid order status transition", nil), http.StatusConflict},
		{"configuration", apperror.Configuration("tier overlaps the previous bound", nil), http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			writeServiceError(rr, newHandlerTestLogger(), tc.err, "internal failure")
			if rr.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rr.Code)
			}
		})
	}
}

func TestWriteServiceError_ConfigurationHidesDetails(t *testing.T) {
	rr := httptest.NewRecorder()
	err := apperror.Configuration("service \"Bike Shifting\": tier 1 overlaps the previous bound", nil)
	writeServiceError(rr, newHandlerTestLogger(), err, "internal failure")

	if strings.Contains(rr.Body.String(), "Bike Shifting") {
		t.Fatalf("catalog details must not leak to the client: %s", rr.Body.String())
	}
}

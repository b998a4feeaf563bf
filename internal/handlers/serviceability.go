package handlers

import (
	"net/http"

	"bookings-system/internal/logger"
)

// ServiceabilityHandler проверяет зону обслуживания по пинкоду
type ServiceabilityHandler struct {
	areas ServiceabilityChecker
	log   *logger.Logger
}

// NewServiceabilityHandler создает обработчик проверки зоны обслуживания
func NewServiceabilityHandler(areas ServiceabilityChecker, log *logger.Logger) *ServiceabilityHandler {
	return &ServiceabilityHandler{
		areas: areas,
		log:   log,
	}
}

// ServiceabilityResponse представляет ответ проверки зоны обслуживания
type ServiceabilityResponse struct {
	Pincode     string `json:"pincode"`
	Serviceable bool   `json:"serviceable"`
	Message     string `json:"message,omitempty"`
}

// Check возвращает признак обслуживаемости пинкода
func (h *ServiceabilityHandler) Check(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	pincode := r.URL.Query().Get("pincode")
	if pincode == "" {
		writeErrorResponse(w, http.StatusBadRequest, "pincode query parameter is required")
		return
	}

	serviceable, err := h.areas.IsServiceable(r.Context(), pincode)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to check serviceability")
		return
	}

	resp := ServiceabilityResponse{
		Pincode:     pincode,
		Serviceable: serviceable,
	}
	if !serviceable {
		resp.Message = "we currently do not serve this area"
	}

	writeJSONResponse(w, http.StatusOK, resp)
}

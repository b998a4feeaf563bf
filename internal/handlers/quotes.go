package handlers

import (
	"encoding/json"
	"net/http"

	"bookings-system/internal/logger"
	"bookings-system/internal/models"
)

// QuoteHandler рассчитывает корзину без создания заказа. Витрина клиента
// показывает только серверный расчет, локальный пересчет цен не используется.
type QuoteHandler struct {
	orderService OrderService
	log          *logger.Logger
}

// NewQuoteHandler создает обработчик расчета корзины
func NewQuoteHandler(orderService OrderService, log *logger.Logger) *QuoteHandler {
	return &QuoteHandler{
		orderService: orderService,
		log:          log,
	}
}

// QuoteCart рассчитывает корзину и возвращает PricedOrder
func (h *QuoteHandler) QuoteCart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req models.QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Pincode == "" {
		writeErrorResponse(w, http.StatusBadRequest, "pincode is required")
		return
	}

	priced, err := h.orderService.QuoteCart(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to quote cart")
		return
	}

	h.log.WithFields(map[string]interface{}{
		"pincode":     req.Pincode,
		"line_count":  len(priced.Lines),
		"order_total": priced.OrderTotal,
	}).Debug("Cart quoted")

	writeJSONResponse(w, http.StatusOK, priced)
}

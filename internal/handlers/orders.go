package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"bookings-system/internal/logger"
	"bookings-system/internal/models"
	"bookings-system/internal/redis"

	"github.com/google/uuid"
)

// OrderHandler представляет обработчик заказов
type OrderHandler struct {
	orderService OrderService
	producer     EventProducer
	redisClient  RedisClient
	log          *logger.Logger
}

// NewOrderHandler создает новый обработчик заказов
func NewOrderHandler(orderService OrderService, producer EventProducer, redisClient RedisClient, log *logger.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		producer:     producer,
		redisClient:  redisClient,
		log:          log,
	}
}

// CreateOrder создает новый заказ по рассчитанной корзине
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req models.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Валидация запроса
	if err := validateCreateOrderRequest(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	order, err := h.orderService.CreateOrder(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to create order")
		return
	}

	// Публикация события в Kafka
	if err := h.producer.PublishOrderPriced(order); err != nil {
		h.log.WithError(err).Error("Failed to publish order priced event")
		// Не возвращаем ошибку клиенту, так как заказ уже создан
	}

	// Кеширование заказа в Redis
	cacheKey := redis.GenerateKey(redis.KeyPrefixOrder, order.ID.String())
	if err := h.redisClient.Set(r.Context(), cacheKey, order, defaultCacheTTL); err != nil {
		h.log.WithError(err).Error("Failed to cache order")
		// Не возвращаем ошибку клиенту
	}

	h.log.WithField("order_id", order.ID).Info("Order created successfully")
	writeJSONResponse(w, http.StatusCreated, order)
}

// GetOrder получает заказ по ID
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	orderID, err := extractUUIDFromPath(r.URL.Path, "/api/orders/")
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	// Попытка получить из кеша
	cacheKey := redis.GenerateKey(redis.KeyPrefixOrder, orderID.String())
	var cached models.Order
	if err := h.redisClient.Get(r.Context(), cacheKey, &cached); err == nil {
		h.log.WithField("order_id", orderID).Debug("Order retrieved from cache")
		writeJSONResponse(w, http.StatusOK, &cached)
		return
	}

	order, err := h.orderService.GetOrder(r.Context(), orderID)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to get order")
		return
	}

	// Кеширование заказа
	if err := h.redisClient.Set(r.Context(), cacheKey, order, defaultCacheTTL); err != nil {
		h.log.WithError(err).Error("Failed to cache order")
	}

	writeJSONResponse(w, http.StatusOK, order)
}

// GetOrders получает список заказов с фильтрацией
func (h *OrderHandler) GetOrders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	query := r.URL.Query()

	var status *models.OrderStatus
	if statusStr := query.Get("status"); statusStr != "" {
		s := models.OrderStatus(statusStr)
		status = &s
	}

	var pincode *string
	if pincodeStr := query.Get("pincode"); pincodeStr != "" {
		pincode = &pincodeStr
	}

	limit := 50 // По умолчанию
	if limitStr := query.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	offset := 0
	if offsetStr := query.Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	orders, err := h.orderService.GetOrders(r.Context(), status, pincode, limit, offset)
	if err != nil {
		h.log.WithError(err).Error("Failed to get orders")
		writeErrorResponse(w, http.StatusInternalServerError, "Failed to get orders")
		return
	}

	writeJSONResponse(w, http.StatusOK, orders)
}

// UpdateOrderStatus обновляет статус заказа
func (h *OrderHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	orderID, err := extractUUIDFromPath(r.URL.Path, "/api/orders/")
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	var req models.UpdateOrderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Получение текущего заказа для определения старого статуса
	currentOrder, err := h.orderService.GetOrder(r.Context(), orderID)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to get order")
		return
	}

	oldStatus := currentOrder.Status

	if err := h.orderService.UpdateOrderStatus(r.Context(), orderID, &req); err != nil {
		writeServiceError(w, h.log, err, "Failed to update order status")
		return
	}

	// Публикация события изменения статуса
	if err := h.producer.PublishOrderStatusChanged(orderID, oldStatus, req.Status); err != nil {
		h.log.WithError(err).Error("Failed to publish order status changed event")
	}

	// Инвалидация кеша
	cacheKey := redis.GenerateKey(redis.KeyPrefixOrder, orderID.String())
	if err := h.redisClient.Delete(r.Context(), cacheKey); err != nil {
		h.log.WithError(err).Error("Failed to invalidate order cache")
	}

	h.log.WithField("order_id", orderID).WithField("new_status", req.Status).Info("Order status updated")
	writeJSONResponse(w, http.StatusOK, map[string]string{"message": "Order status updated successfully"})
}

// validateCreateOrderRequest валидирует запрос на создание заказа.
// Содержимое корзины дальше проверяет движок расчета, здесь только данные
// клиента и сам факт наличия позиций.
func validateCreateOrderRequest(req *models.CreateOrderRequest) error {
	if req.CustomerName == "" {
		return fmt.Errorf("customer name is required")
	}
	if req.CustomerPhone == "" {
		return fmt.Errorf("customer phone is required")
	}
	if req.Address == "" {
		return fmt.Errorf("address is required")
	}
	if req.Pincode == "" {
		return fmt.Errorf("pincode is required")
	}

	for i, item := range req.Items {
		if item.ServiceID == uuid.Nil {
			return fmt.Errorf("item %d: service_id is required", i+1)
		}
	}

	return nil
}

package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"bookings-system/internal/logger"
	"bookings-system/internal/models"
)

// CatalogHandler представляет обработчик каталога услуг
type CatalogHandler struct {
	catalogService CatalogService
	producer       EventProducer
	log            *logger.Logger
}

// NewCatalogHandler создает новый обработчик каталога
func NewCatalogHandler(catalogService CatalogService, producer EventProducer, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		producer:       producer,
		log:            log,
	}
}

// CreateService создает услугу в каталоге
func (h *CatalogHandler) CreateService(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req models.CreateServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	entry, err := h.catalogService.CreateService(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to create service")
		return
	}

	if err := h.producer.PublishServiceUpdated(entry.ID, entry.Name); err != nil {
		h.log.WithError(err).Error("Failed to publish service updated event")
	}

	writeJSONResponse(w, http.StatusCreated, entry)
}

// UpdateService обновляет услугу в каталоге
func (h *CatalogHandler) UpdateService(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	serviceID, err := extractUUIDFromPath(r.URL.Path, "/api/catalog/")
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid service ID")
		return
	}

	var req models.UpdateServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	entry, err := h.catalogService.UpdateService(r.Context(), serviceID, &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to update service")
		return
	}

	if err := h.producer.PublishServiceUpdated(entry.ID, entry.Name); err != nil {
		h.log.WithError(err).Error("Failed to publish service updated event")
	}

	writeJSONResponse(w, http.StatusOK, entry)
}

// GetService возвращает услугу по ID
func (h *CatalogHandler) GetService(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	serviceID, err := extractUUIDFromPath(r.URL.Path, "/api/catalog/")
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid service ID")
		return
	}

	entry, err := h.catalogService.GetService(r.Context(), serviceID)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to get service")
		return
	}

	writeJSONResponse(w, http.StatusOK, entry)
}

// ListServices возвращает услуги каталога с фильтрацией
func (h *CatalogHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	query := r.URL.Query()

	var category *models.ServiceCategory
	if categoryStr := query.Get("category"); categoryStr != "" {
		c := models.ServiceCategory(categoryStr)
		category = &c
	}

	activeOnly := query.Get("active") == "true"

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

	entries, err := h.catalogService.ListServices(r.Context(), category, activeOnly, limit, offset)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to list services")
		return
	}

	writeJSONResponse(w, http.StatusOK, entries)
}

package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// defaultCacheTTL ограничивает время жизни кэшированных заказов.
const defaultCacheTTL = 15 * time.Minute

// ErrorResponse представляет структуру ответа с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeJSONResponse отправляет JSON ответ
func writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// writeErrorResponse отправляет ответ с ошибкой
func writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	writeJSONResponse(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}

// extractUUIDFromPath извлекает UUID из пути вида prefix/<id>[/suffix].
func extractUUIDFromPath(path, prefix string) (uuid.UUID, error) {
	rest, ok := strings.CutPrefix(path, prefix)
	if !ok {
		return uuid.Nil, fmt.Errorf("invalid path format")
	}

	if i := strings.IndexByte(rest, '/'); i >= 0 {
		rest = rest[:i]
	}

	id, err := uuid.Parse(rest)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid UUID format: %w", err)
	}

	return id, nil
}

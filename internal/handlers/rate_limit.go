package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"bookings-system/internal/config"
	"bookings-system/internal/logger"
	"bookings-system/internal/services"
)

// MiddlewareLimiter описывает контракт для rate limiter.
type MiddlewareLimiter interface {
	Allow(ctx context.Context, key string) (bool, int64, time.Time, error)
	Enabled() bool
	Limit() int64
}

// RateLimitStatusProvider расширяет интерфейс для эндпоинта статуса.
type RateLimitStatusProvider interface {
	MiddlewareLimiter
	Usage(ctx context.Context, key string) (int64, int64, *time.Time, error)
}

// RateLimitStatus описывает ответ эндпоинта статуса.
type RateLimitStatus struct {
	Enabled       bool   `json:"enabled"`
	Limit         int64  `json:"limit,omitempty"`
	WindowSeconds int    `json:"window_seconds,omitempty"`
	Used          int64  `json:"used"`
	Remaining     int64  `json:"remaining"`
	Key           string `json:"key,omitempty"`
	ResetAt       string `json:"reset_at,omitempty"`
}

// RateLimitHandler отвечает за статус лимита.
type RateLimitHandler struct {
	limiter RateLimitStatusProvider
	log     *logger.Logger
	cfg     *config.RateLimitConfig
}

// NewRateLimitHandler создает новый RateLimitHandler.
func NewRateLimitHandler(limiter RateLimitStatusProvider, log *logger.Logger, cfg *config.RateLimitConfig) *RateLimitHandler {
	return &RateLimitHandler{
		limiter: limiter,
		log:     log,
		cfg:     cfg,
	}
}

// Status возвращает текущие значения лимита для клиента.
func (h *RateLimitHandler) Status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if h.limiter == nil || h.cfg == nil || !h.cfg.Enabled {
		writeJSONResponse(w, http.StatusOK, RateLimitStatus{Enabled: false})
		return
	}

	key := services.ExtractClientIP(r)
	used, remaining, resetAt, err := h.limiter.Usage(r.Context(), key)
	if err != nil {
		h.log.WithError(err).Error("Failed to fetch rate limit usage")
		writeErrorResponse(w, http.StatusInternalServerError, "Failed to fetch rate limit usage")
		return
	}

	status := RateLimitStatus{
		Enabled:       true,
		Limit:         int64(h.cfg.Requests),
		WindowSeconds: h.cfg.WindowSeconds,
		Used:          used,
		Remaining:     remaining,
		Key:           key,
	}
	if resetAt != nil {
		status.ResetAt = resetAt.Format(time.RFC3339)
	}

	writeJSONResponse(w, http.StatusOK, status)
}

// RateLimitMiddleware применяет rate limiting к хендлеру.
func RateLimitMiddleware(limiter MiddlewareLimiter, log *logger.Logger, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if limiter == nil || !limiter.Enabled() {
			next(w, r)
			return
		}

		allowed, remaining, resetAt, err := limiter.Allow(r.Context(), services.ExtractClientIP(r))
		if err != nil {
			log.WithError(err).Error("Rate limiter failed")
			writeErrorResponse(w, http.StatusInternalServerError, "Rate limiter error")
			return
		}

		setRateLimitHeaders(w, limiter.Limit(), remaining, resetAt)

		if !allowed {
			writeErrorResponse(w, http.StatusTooManyRequests, "Rate limit exceeded")
			return
		}

		next(w, r)
	}
}

func setRateLimitHeaders(w http.ResponseWriter, limit, remaining int64, resetAt time.Time) {
	w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(limit, 10))
	w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
	if !resetAt.IsZero() {
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))
	}
}

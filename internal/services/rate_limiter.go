package services

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"bookings-system/internal/config"
	"bookings-system/internal/logger"
	"bookings-system/internal/redis"
)

// rateRedis — операции Redis, нужные ограничителю.
type rateRedis interface {
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	TTL(ctx context.Context, key string) (time.Duration, error)
	GetInt(ctx context.Context, key string) (int64, error)
}

// RateLimiter ограничивает количество запросов на ключ (IP клиента) в
// фиксированном окне. Выключенный лимитер пропускает все запросы.
type RateLimiter struct {
	redis   rateRedis
	log     *logger.Logger
	enabled bool
	limit   int64
	window  time.Duration
	prefix  string
}

// NewRateLimiter создает rate limiter по конфигурации.
func NewRateLimiter(redisClient *redis.Client, log *logger.Logger, cfg *config.RateLimitConfig) *RateLimiter {
	if redisClient == nil || cfg == nil || !cfg.Enabled || cfg.Requests <= 0 || cfg.WindowSeconds <= 0 {
		return &RateLimiter{enabled: false}
	}

	return &RateLimiter{
		redis:   redisClient,
		log:     log,
		enabled: true,
		limit:   int64(cfg.Requests),
		window:  time.Duration(cfg.WindowSeconds) * time.Second,
		prefix:  cfg.KeyPrefix,
	}
}

// Allow инкрементирует счетчик окна и сообщает, разрешен ли запрос.
func (r *RateLimiter) Allow(ctx context.Context, key string) (allowed bool, remaining int64, resetAt time.Time, err error) {
	if !r.enabled {
		return true, r.limit, time.Now().Add(r.window), nil
	}

	windowKey := r.windowKey(key)

	count, err := r.redis.Incr(ctx, windowKey)
	if err != nil {
		return false, 0, time.Time{}, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}

	// Первый запрос в окне задает TTL; для остальных TTL уже установлен
	if count == 1 {
		if err := r.redis.Expire(ctx, windowKey, r.window); err != nil {
			r.log.WithError(err).WithField("window_key", windowKey).Warn("Failed to set rate limit window ttl")
		}
	}

	remaining = r.limit - count
	if remaining < 0 {
		remaining = 0
	}

	return count <= r.limit, remaining, time.Now().Add(r.windowTTL(ctx, windowKey)), nil
}

// Usage возвращает использование текущего окна без инкремента.
func (r *RateLimiter) Usage(ctx context.Context, key string) (used int64, remaining int64, resetAt *time.Time, err error) {
	if !r.enabled {
		return 0, r.limit, nil, nil
	}

	windowKey := r.windowKey(key)

	count, err := r.redis.GetInt(ctx, windowKey)
	if err != nil {
		// Ключа нет — окно еще не открыто
		return 0, r.limit, nil, nil
	}

	reset := time.Now().Add(r.windowTTL(ctx, windowKey))
	resetAt = &reset

	remaining = r.limit - count
	if remaining < 0 {
		remaining = 0
	}

	return count, remaining, resetAt, nil
}

// Limit возвращает лимит окна.
func (r *RateLimiter) Limit() int64 {
	return r.limit
}

// Enabled сообщает, включен ли rate limiting.
func (r *RateLimiter) Enabled() bool {
	return r.enabled
}

// windowTTL возвращает оставшееся время окна, при ошибке — полное окно.
func (r *RateLimiter) windowTTL(ctx context.Context, windowKey string) time.Duration {
	ttl, err := r.redis.TTL(ctx, windowKey)
	if err != nil || ttl < 0 {
		return r.window
	}
	return ttl
}

func (r *RateLimiter) windowKey(key string) string {
	safe := strings.ReplaceAll(strings.TrimSpace(key), ":", "_")
	return redis.GenerateKey(r.prefix, safe)
}

// ExtractClientIP получает IP клиента из заголовков прокси или RemoteAddr.
func ExtractClientIP(r *http.Request) string {
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if forwarded := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

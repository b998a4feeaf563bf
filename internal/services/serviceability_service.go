package services

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"time"

	"bookings-system/internal/apperror"
	"bookings-system/internal/config"
	"bookings-system/internal/database"
	"bookings-system/internal/logger"
	"bookings-system/internal/redis"
)

var pincodePattern = regexp.MustCompile(`^[1-9][0-9]{5}$`)

// areaCache — минимальный контракт кеша для проверки зоны обслуживания.
type areaCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// ServiceabilityService проверяет, обслуживается ли пинкод адреса.
// Движок расчета географию не знает: наружу уходит только булев флаг.
type ServiceabilityService struct {
	db       *database.DB
	cache    areaCache
	log      *logger.Logger
	cacheTTL time.Duration
}

// NewServiceabilityService создает сервис проверки зоны обслуживания.
func NewServiceabilityService(db *database.DB, cache areaCache, log *logger.Logger, cfg *config.ServiceabilityConfig) *ServiceabilityService {
	ttl := time.Hour
	if cfg != nil && cfg.CacheTTLMinutes > 0 {
		ttl = time.Duration(cfg.CacheTTLMinutes) * time.Minute
	}
	return &ServiceabilityService{
		db:       db,
		cache:    cache,
		log:      log,
		cacheTTL: ttl,
	}
}

// IsServiceable возвращает признак обслуживаемости пинкода, используя кеш.
func (s *ServiceabilityService) IsServiceable(ctx context.Context, pincode string) (bool, error) {
	if !pincodePattern.MatchString(pincode) {
		return false, apperror.Validation("pincode must be a 6-digit code", nil)
	}

	cacheKey := redis.GenerateKey(redis.KeyPrefixArea, pincode)

	if s.cache != nil {
		var cached bool
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM served_areas WHERE pincode = $1)`
	if err := s.db.QueryRowContext(ctx, query, pincode).Scan(&exists); err != nil {
		if err == sql.ErrNoRows {
			exists = false
		} else {
			return false, fmt.Errorf("failed to check serviceability: %w", err)
		}
	}

	// Пишем в кеш (best effort)
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, exists, s.cacheTTL); err != nil {
			s.log.WithError(err).WithField("pincode", pincode).Warn("Failed to cache serviceability result")
		}
	}

	return exists, nil
}

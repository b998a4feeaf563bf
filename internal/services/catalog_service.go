package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"bookings-system/internal/apperror"
	"bookings-system/internal/config"
	"bookings-system/internal/database"
	"bookings-system/internal/logger"
	"bookings-system/internal/models"
	"bookings-system/internal/redis"

	"github.com/google/uuid"
)

// catalogCache — минимальный контракт кеша для каталога.
type catalogCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// CatalogService отвечает за хранение и выдачу записей каталога услуг.
// Инварианты tier-таблиц проверяются при создании, обновлении и каждой
// загрузке из базы: испорченная запись недоступна для расчета, пока ее не
// починят.
type CatalogService struct {
	db       *database.DB
	cache    catalogCache
	log      *logger.Logger
	cacheTTL time.Duration
}

// NewCatalogService создает сервис каталога.
func NewCatalogService(db *database.DB, cache catalogCache, log *logger.Logger, cfg *config.CatalogConfig) *CatalogService {
	ttl := 15 * time.Minute
	if cfg != nil && cfg.CacheTTLMinutes > 0 {
		ttl = time.Duration(cfg.CacheTTLMinutes) * time.Minute
	}
	return &CatalogService{
		db:       db,
		cache:    cache,
		log:      log,
		cacheTTL: ttl,
	}
}

// CreateService создает запись каталога вместе с tier-таблицей.
func (s *CatalogService) CreateService(ctx context.Context, req *models.CreateServiceRequest) (*models.ServiceCatalogEntry, error) {
	entry := &models.ServiceCatalogEntry{
		ID:                uuid.New(),
		Name:              req.Name,
		Category:          req.Category,
		BasePrice:         req.BasePrice,
		BaseDistanceKm:    req.BaseDistanceKm,
		OverflowRatePerKm: req.OverflowRatePerKm,
		Tiers:             req.Tiers,
		Active:            req.Active,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}

	if err := entry.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		INSERT INTO services (id, name, category, base_price, base_distance_km, overflow_rate_per_km, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = tx.ExecContext(ctx, query, entry.ID, entry.Name, entry.Category, entry.BasePrice,
		entry.BaseDistanceKm, entry.OverflowRatePerKm, entry.Active, entry.CreatedAt, entry.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}

	if err := insertTiers(ctx, tx, entry.ID, entry.Tiers); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.log.WithFields(map[string]interface{}{
		"service_id": entry.ID,
		"name":       entry.Name,
		"category":   entry.Category,
	}).Info("Catalog service created")

	return entry, nil
}

// UpdateService обновляет запись каталога и перезаписывает ее tier-таблицу.
func (s *CatalogService) UpdateService(ctx context.Context, serviceID uuid.UUID, req *models.UpdateServiceRequest) (*models.ServiceCatalogEntry, error) {
	entry := &models.ServiceCatalogEntry{
		ID:                serviceID,
		Name:              req.Name,
		Category:          req.Category,
		BasePrice:         req.BasePrice,
		BaseDistanceKm:    req.BaseDistanceKm,
		OverflowRatePerKm: req.OverflowRatePerKm,
		Tiers:             req.Tiers,
		Active:            req.Active,
		UpdatedAt:         time.Now(),
	}

	if err := entry.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		UPDATE services
		SET name = $1, category = $2, base_price = $3, base_distance_km = $4, overflow_rate_per_km = $5, active = $6, updated_at = $7
		WHERE id = $8
	`
	result, err := tx.ExecContext(ctx, query, entry.Name, entry.Category, entry.BasePrice,
		entry.BaseDistanceKm, entry.OverflowRatePerKm, entry.Active, entry.UpdatedAt, serviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to update service: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, apperror.NotFound("service not found", nil)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM service_distance_tiers WHERE service_id = $1`, serviceID); err != nil {
		return nil, fmt.Errorf("failed to clear service tiers: %w", err)
	}

	if err := insertTiers(ctx, tx, serviceID, entry.Tiers); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	// Инвалидация кеша
	if s.cache != nil {
		cacheKey := redis.GenerateKey(redis.KeyPrefixService, serviceID.String())
		if err := s.cache.Delete(ctx, cacheKey); err != nil {
			s.log.WithError(err).WithField("service_id", serviceID).Warn("Failed to invalidate service cache")
		}
	}

	s.log.WithField("service_id", serviceID).Info("Catalog service updated")

	return entry, nil
}

// GetService возвращает запись каталога по ID, используя кеш Redis.
func (s *CatalogService) GetService(ctx context.Context, serviceID uuid.UUID) (*models.ServiceCatalogEntry, error) {
	cacheKey := redis.GenerateKey(redis.KeyPrefixService, serviceID.String())

	if s.cache != nil {
		var cached models.ServiceCatalogEntry
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	entry := &models.ServiceCatalogEntry{}
	query := `
		SELECT id, name, category, base_price, base_distance_km, overflow_rate_per_km, active, created_at, updated_at
		FROM services
		WHERE id = $1
	`
	err := s.db.QueryRowContext(ctx, query, serviceID).Scan(
		&entry.ID, &entry.Name, &entry.Category, &entry.BasePrice,
		&entry.BaseDistanceKm, &entry.OverflowRatePerKm, &entry.Active,
		&entry.CreatedAt, &entry.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("service not found", err)
		}
		return nil, fmt.Errorf("failed to get service: %w", err)
	}

	if err := s.loadTiers(ctx, entry); err != nil {
		return nil, err
	}

	// Испорченные данные каталога — ошибка оператора, а не клиента:
	// логируем громко и не отдаем запись в расчет.
	if err := entry.Validate(); err != nil {
		s.log.WithError(err).WithField("service_id", serviceID).Error("Catalog entry failed validation on load")
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, entry, s.cacheTTL); err != nil {
			s.log.WithError(err).WithField("service_id", serviceID).Warn("Failed to cache service")
		}
	}

	return entry, nil
}

// GetEntries загружает снапшот записей каталога для одного расчета корзины.
// Движок получает готовую мапу и больше не обращается к хранилищу.
func (s *CatalogService) GetEntries(ctx context.Context, serviceIDs []uuid.UUID) (map[uuid.UUID]*models.ServiceCatalogEntry, error) {
	entries := make(map[uuid.UUID]*models.ServiceCatalogEntry, len(serviceIDs))
	for _, id := range serviceIDs {
		if _, ok := entries[id]; ok {
			continue
		}
		entry, err := s.GetService(ctx, id)
		if err != nil {
			return nil, err
		}
		entries[id] = entry
	}
	return entries, nil
}

// ListServices возвращает записи каталога с фильтрацией по категории.
func (s *CatalogService) ListServices(ctx context.Context, category *models.ServiceCategory, activeOnly bool, limit, offset int) ([]*models.ServiceCatalogEntry, error) {
	query := `
		SELECT id, name, category, base_price, base_distance_km, overflow_rate_per_km, active, created_at, updated_at
		FROM services
		WHERE 1=1
	`
	args := []interface{}{}
	argIndex := 1

	if category != nil {
		query += fmt.Sprintf(" AND category = $%d", argIndex)
		args = append(args, *category)
		argIndex++
	}

	if activeOnly {
		query += " AND active = true"
	}

	query += " ORDER BY name"

	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, limit)
		argIndex++
	}

	if offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIndex)
		args = append(args, offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	defer rows.Close()

	var entries []*models.ServiceCatalogEntry
	for rows.Next() {
		entry := &models.ServiceCatalogEntry{}
		if err := rows.Scan(&entry.ID, &entry.Name, &entry.Category, &entry.BasePrice,
			&entry.BaseDistanceKm, &entry.OverflowRatePerKm, &entry.Active,
			&entry.CreatedAt, &entry.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan service: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate services: %w", err)
	}

	for _, entry := range entries {
		if err := s.loadTiers(ctx, entry); err != nil {
			return nil, err
		}
	}

	return entries, nil
}

// loadTiers загружает tier-таблицу услуги в порядке возрастания.
func (s *CatalogService) loadTiers(ctx context.Context, entry *models.ServiceCatalogEntry) error {
	query := `
		SELECT range_start_km, range_end_km, charge
		FROM service_distance_tiers
		WHERE service_id = $1
		ORDER BY range_start_km
	`
	rows, err := s.db.QueryContext(ctx, query, entry.ID)
	if err != nil {
		return fmt.Errorf("failed to get service tiers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tier models.DistanceTier
		if err := rows.Scan(&tier.RangeStartKm, &tier.RangeEndKm, &tier.Charge); err != nil {
			return fmt.Errorf("failed to scan service tier: %w", err)
		}
		entry.Tiers = append(entry.Tiers, tier)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate service tiers: %w", err)
	}

	return nil
}

func insertTiers(ctx context.Context, tx *sql.Tx, serviceID uuid.UUID, tiers []models.DistanceTier) error {
	for _, tier := range tiers {
		query := `
			INSERT INTO service_distance_tiers (service_id, range_start_km, range_end_km, charge)
			VALUES ($1, $2, $3, $4)
		`
		if _, err := tx.ExecContext(ctx, query, serviceID, tier.RangeStartKm, tier.RangeEndKm, tier.Charge); err != nil {
			return fmt.Errorf("failed to insert service tier: %w", err)
		}
	}
	return nil
}

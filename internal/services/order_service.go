package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"bookings-system/internal/apperror"
	"bookings-system/internal/database"
	"bookings-system/internal/logger"
	"bookings-system/internal/models"

	"github.com/google/uuid"
)

// Контракты коллабораторов заказа. Конкретные реализации живут в этом же
// пакете, интерфейсы нужны для подмены в тестах.
type catalogProvider interface {
	GetEntries(ctx context.Context, serviceIDs []uuid.UUID) (map[uuid.UUID]*models.ServiceCatalogEntry, error)
}

type serviceabilityChecker interface {
	IsServiceable(ctx context.Context, pincode string) (bool, error)
}

// OrderService представляет сервис для работы с заказами. Единственная
// точка расчета цены: и квота для корзины клиента, и создание заказа
// проходят через один и тот же ComposeOrder.
type OrderService struct {
	db      *database.DB
	log     *logger.Logger
	catalog catalogProvider
	areas   serviceabilityChecker
}

// NewOrderService создает новый экземпляр сервиса заказов
func NewOrderService(db *database.DB, log *logger.Logger, catalog *CatalogService, areas *ServiceabilityService) *OrderService {
	return &OrderService{
		db:      db,
		log:     log,
		catalog: catalog,
		areas:   areas,
	}
}

// QuoteCart рассчитывает корзину без создания заказа. Используется витриной
// клиента как авторитетный источник цены вместо локального пересчета.
func (s *OrderService) QuoteCart(ctx context.Context, req *models.QuoteRequest) (*models.PricedOrder, error) {
	serviceable, err := s.areas.IsServiceable(ctx, req.Pincode)
	if err != nil {
		return nil, err
	}
	if !serviceable {
		// Каталог даже не читаем: композер отклонит заказ до расчетов.
		return ComposeOrder(nil, false)
	}

	lines, err := s.buildPricingLines(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	return ComposeOrder(lines, true)
}

// CreateOrder рассчитывает корзину и сохраняет заказ одной транзакцией.
// Если клиент прислал свой итог, он сверяется с серверным пересчетом;
// расхождение логируется, авторитетным всегда остается серверный итог.
func (s *OrderService) CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (*models.Order, error) {
	priced, err := s.QuoteCart(ctx, &models.QuoteRequest{Pincode: req.Pincode, Items: req.Items})
	if err != nil {
		return nil, err
	}

	if req.ClientTotal != nil && *req.ClientTotal != priced.OrderTotal {
		s.log.WithFields(map[string]interface{}{
			"client_total": *req.ClientTotal,
			"server_total": priced.OrderTotal,
			"pincode":      req.Pincode,
		}).Warn("Client-submitted total does not match server recomputation")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	orderID := uuid.New()
	now := time.Now()
	order := &models.Order{
		ID:            orderID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Address:       req.Address,
		Pincode:       req.Pincode,
		Lines:         priced.Lines,
		OrderTotal:    priced.OrderTotal,
		Status:        models.OrderStatusCreated,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	query := `
		INSERT INTO orders (id, customer_name, customer_phone, address, pincode, order_total, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = tx.ExecContext(ctx, query, order.ID, order.CustomerName, order.CustomerPhone,
		order.Address, order.Pincode, order.OrderTotal, order.Status, order.CreatedAt, order.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	for i, line := range order.Lines {
		addOnsJSON, err := json.Marshal(line.AddOns)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal line add-ons: %w", err)
		}

		lineQuery := `
			INSERT INTO order_lines (id, order_id, position, service_id, service_name, base_price, distance_surcharge, add_ons_total, line_total, quantity, distance_km, add_ons)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`
		_, err = tx.ExecContext(ctx, lineQuery, uuid.New(), orderID, i, line.ServiceID, line.ServiceName,
			line.BasePrice, line.DistanceSurcharge, line.AddOnsTotal, line.LineTotal,
			line.Quantity, line.DistanceKm, addOnsJSON)
		if err != nil {
			return nil, fmt.Errorf("failed to create order line: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.log.WithFields(map[string]interface{}{
		"order_id":      order.ID,
		"customer_name": order.CustomerName,
		"order_total":   order.OrderTotal,
		"line_count":    len(order.Lines),
	}).Info("Order created successfully")

	return order, nil
}

// GetOrder получает заказ по ID вместе со строками
func (s *OrderService) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order := &models.Order{}

	query := `
		SELECT id, customer_name, customer_phone, address, pincode, order_total, status, created_at, updated_at, completed_at
		FROM orders
		WHERE id = $1
	`
	err := s.db.QueryRowContext(ctx, query, orderID).Scan(
		&order.ID, &order.CustomerName, &order.CustomerPhone, &order.Address, &order.Pincode,
		&order.OrderTotal, &order.Status, &order.CreatedAt, &order.UpdatedAt, &order.CompletedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("order not found", err)
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	lines, err := s.getOrderLines(ctx, orderID)
	if err != nil {
		return nil, err
	}
	order.Lines = lines

	return order, nil
}

// getOrderLines загружает строки заказа в исходном порядке корзины
func (s *OrderService) getOrderLines(ctx context.Context, orderID uuid.UUID) ([]models.PricedLine, error) {
	query := `
		SELECT service_id, service_name, base_price, distance_surcharge, add_ons_total, line_total, quantity, distance_km, add_ons
		FROM order_lines
		WHERE order_id = $1
		ORDER BY position
	`
	rows, err := s.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order lines: %w", err)
	}
	defer rows.Close()

	var lines []models.PricedLine
	for rows.Next() {
		var line models.PricedLine
		var addOnsJSON []byte
		if err := rows.Scan(&line.ServiceID, &line.ServiceName, &line.BasePrice,
			&line.DistanceSurcharge, &line.AddOnsTotal, &line.LineTotal,
			&line.Quantity, &line.DistanceKm, &addOnsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan order line: %w", err)
		}
		if len(addOnsJSON) > 0 {
			if err := json.Unmarshal(addOnsJSON, &line.AddOns); err != nil {
				return nil, fmt.Errorf("failed to unmarshal line add-ons: %w", err)
			}
		}
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate order lines: %w", err)
	}

	return lines, nil
}

// GetOrders получает список заказов с фильтрацией
func (s *OrderService) GetOrders(ctx context.Context, status *models.OrderStatus, pincode *string, limit, offset int) ([]*models.Order, error) {
	query := `
		SELECT id, customer_name, customer_phone, address, pincode, order_total, status, created_at, updated_at, completed_at
		FROM orders
		WHERE 1=1
	`
	args := []interface{}{}
	argIndex := 1

	if status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, *status)
		argIndex++
	}

	if pincode != nil {
		query += fmt.Sprintf(" AND pincode = $%d", argIndex)
		args = append(args, *pincode)
		argIndex++
	}

	query += " ORDER BY created_at DESC"

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
		return nil, fmt.Errorf("failed to get orders: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order := &models.Order{}
		if err := rows.Scan(&order.ID, &order.CustomerName, &order.CustomerPhone,
			&order.Address, &order.Pincode, &order.OrderTotal, &order.Status,
			&order.CreatedAt, &order.UpdatedAt, &order.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate orders: %w", err)
	}

	return orders, nil
}

// UpdateOrderStatus обновляет статус заказа с проверкой допустимости перехода
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, req *models.UpdateOrderStatusRequest) error {
	if req == nil || req.Status == "" {
		return apperror.Validation("status is required", nil)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var (
		currentStatus      models.OrderStatus
		currentCompletedAt sql.NullTime
	)

	selectQuery := `
		SELECT status, completed_at
		FROM orders
		WHERE id = $1
		FOR UPDATE
	`
	if err := tx.QueryRowContext(ctx, selectQuery, orderID).Scan(&currentStatus, &currentCompletedAt); err != nil {
		if err == sql.ErrNoRows {
			return apperror.NotFound("order not found", err)
		}
		return fmt.Errorf("failed to fetch order status: %w", err)
	}

	if !models.IsValidOrderStatusTransition(currentStatus, req.Status) {
		return apperror.Conflict("invalid order status transition", nil)
	}

	now := time.Now()
	var completedAt sql.NullTime
	if req.Status == models.OrderStatusCompleted {
		if currentStatus == models.OrderStatusCompleted && currentCompletedAt.Valid {
			completedAt = currentCompletedAt
		} else {
			completedAt = sql.NullTime{Time: now, Valid: true}
		}
	}

	updateQuery := `
		UPDATE orders
		SET status = $1, updated_at = $2, completed_at = $3
		WHERE id = $4
	`
	if _, err := tx.ExecContext(ctx, updateQuery, req.Status, now, completedAt, orderID); err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order status update: %w", err)
	}

	s.log.WithFields(map[string]interface{}{
		"order_id":   orderID,
		"new_status": req.Status,
	}).Info("Order status updated")

	return nil
}

// buildPricingLines превращает позиции запроса в канонические строки
// корзины, привязанные к снапшоту каталога.
func (s *OrderService) buildPricingLines(ctx context.Context, items []models.CartItemRequest) ([]PricingLine, error) {
	if len(items) == 0 {
		return nil, nil
	}

	serviceIDs := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		serviceIDs = append(serviceIDs, item.ServiceID)
	}

	entries, err := s.catalog.GetEntries(ctx, serviceIDs)
	if err != nil {
		return nil, err
	}

	lines := make([]PricingLine, 0, len(items))
	for i := range items {
		entry := entries[items[i].ServiceID]
		line, err := models.NormalizeCartLine(&items[i], entry)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}
		lines = append(lines, PricingLine{Entry: entry, Line: line})
	}

	return lines, nil
}

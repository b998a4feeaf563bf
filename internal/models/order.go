package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus представляет статус заказа
type OrderStatus string

const (
	OrderStatusCreated    OrderStatus = "created"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusInProgress OrderStatus = "in_progress"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// PricedLine — результат расчета одной строки корзины. После создания не
// изменяется; LineTotal всегда выводится из остальных полей по формуле
// (BasePrice + DistanceSurcharge + AddOnsTotal) * Quantity.
type PricedLine struct {
	ServiceID         uuid.UUID        `json:"service_id"`
	ServiceName       string           `json:"service_name"`
	BasePrice         int64            `json:"base_price"`
	DistanceSurcharge int64            `json:"distance_surcharge"`
	AddOnsTotal       int64            `json:"add_ons_total"`
	LineTotal         int64            `json:"line_total"`
	Quantity          int              `json:"quantity"`
	AddOns            []AddOnSelection `json:"add_ons,omitempty"`
	DistanceKm        *float64         `json:"distance_km,omitempty"`
}

// PricedOrder — итог расчета всей корзины. Строки идут в порядке исходной
// корзины; OrderTotal = сумма LineTotal. Изменившаяся корзина дает новый
// PricedOrder, существующий никогда не мутируется.
type PricedOrder struct {
	Lines      []PricedLine `json:"lines"`
	OrderTotal int64        `json:"order_total"`
}

// Order представляет сохраненный заказ в системе
type Order struct {
	ID            uuid.UUID    `json:"id" db:"id"`
	CustomerName  string       `json:"customer_name" db:"customer_name"`
	CustomerPhone string       `json:"customer_phone" db:"customer_phone"`
	Address       string       `json:"address" db:"address"`
	Pincode       string       `json:"pincode" db:"pincode"`
	Lines         []PricedLine `json:"lines"`
	OrderTotal    int64        `json:"order_total" db:"order_total"`
	Status        OrderStatus  `json:"status" db:"status"`
	CreatedAt     time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at" db:"updated_at"`
	CompletedAt   *time.Time   `json:"completed_at,omitempty" db:"completed_at"`
}

// QuoteRequest представляет запрос на расчет корзины без создания заказа
type QuoteRequest struct {
	Pincode string            `json:"pincode"`
	Items   []CartItemRequest `json:"items"`
}

// CreateOrderRequest представляет запрос на создание заказа.
// ClientTotal — итог, посчитанный клиентом; используется только для сверки
// с серверным расчетом, авторитетным всегда остается серверный итог.
type CreateOrderRequest struct {
	CustomerName  string            `json:"customer_name"`
	CustomerPhone string            `json:"customer_phone"`
	Address       string            `json:"address"`
	Pincode       string            `json:"pincode"`
	Items         []CartItemRequest `json:"items"`
	ClientTotal   *int64            `json:"client_total,omitempty"`
}

// UpdateOrderStatusRequest представляет запрос на обновление статуса заказа
type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status"`
}

// IsValidOrderStatusTransition проверяет допустимость перехода статуса.
func IsValidOrderStatusTransition(from, to OrderStatus) bool {
	if from == to {
		return true
	}
	switch from {
	case OrderStatusCreated:
		return to == OrderStatusConfirmed || to == OrderStatusCancelled
	case OrderStatusConfirmed:
		return to == OrderStatusInProgress || to == OrderStatusCancelled
	case OrderStatusInProgress:
		return to == OrderStatusCompleted || to == OrderStatusCancelled
	case OrderStatusCompleted, OrderStatusCancelled:
		return false
	default:
		return false
	}
}

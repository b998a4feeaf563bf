package handlers

import (
	"context"
	"time"

	"bookings-system/internal/models"

	"github.com/google/uuid"
)

// ----- Orders -----

type OrderService interface {
	QuoteCart(ctx context.Context, req *models.QuoteRequest) (*models.PricedOrder, error)
	CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (*models.Order, error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	GetOrders(ctx context.Context, status *models.OrderStatus, pincode *string, limit, offset int) ([]*models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, req *models.UpdateOrderStatusRequest) error
}

// ----- Catalog -----

type CatalogService interface {
	CreateService(ctx context.Context, req *models.CreateServiceRequest) (*models.ServiceCatalogEntry, error)
	UpdateService(ctx context.Context, serviceID uuid.UUID, req *models.UpdateServiceRequest) (*models.ServiceCatalogEntry, error)
	GetService(ctx context.Context, serviceID uuid.UUID) (*models.ServiceCatalogEntry, error)
	ListServices(ctx context.Context, category *models.ServiceCategory, activeOnly bool, limit, offset int) ([]*models.ServiceCatalogEntry, error)
}

// ----- Serviceability -----

type ServiceabilityChecker interface {
	IsServiceable(ctx context.Context, pincode string) (bool, error)
}

// ----- Events -----

type EventProducer interface {
	PublishOrderPriced(order *models.Order) error
	PublishOrderStatusChanged(orderID uuid.UUID, oldStatus, newStatus models.OrderStatus) error
	PublishServiceUpdated(serviceID uuid.UUID, name string) error
}

// ----- Cache -----

type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, key string) error
}

// ----- Health -----

type DBHealth interface {
	Health() error
}

type RedisHealth interface {
	Health(ctx context.Context) error
}

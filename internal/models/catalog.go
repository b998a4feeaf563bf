package models

import (
	"fmt"
	"time"

	"bookings-system/internal/apperror"

	"github.com/google/uuid"
)

// ServiceCategory описывает категорию бронируемой услуги
type ServiceCategory string

const (
	ServiceCategoryCarWash      ServiceCategory = "car_wash"
	ServiceCategoryBikeWash     ServiceCategory = "bike_wash"
	ServiceCategoryLaundry      ServiceCategory = "laundry"
	ServiceCategoryMovers       ServiceCategory = "movers_packers"
	ServiceCategoryKeyService   ServiceCategory = "key_service"
	ServiceCategoryMobileRepair ServiceCategory = "mobile_repair"
	ServiceCategoryInsurance    ServiceCategory = "insurance"
	ServiceCategoryPUC          ServiceCategory = "puc"
	ServiceCategoryVehicleCheck ServiceCategory = "vehicle_checkup"
)

// DistanceTier описывает правило "(range_start, range_end] -> надбавка".
// Нижняя граница не включается, верхняя включается.
type DistanceTier struct {
	RangeStartKm float64 `json:"range_start_km" db:"range_start_km"`
	RangeEndKm   float64 `json:"range_end_km" db:"range_end_km"`
	Charge       int64   `json:"charge" db:"charge"`
}

// ServiceCatalogEntry представляет тарифицированное определение услуги.
// BasePrice и Charge хранятся в минимальных единицах валюты (пайсы).
type ServiceCatalogEntry struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	Name              string          `json:"name" db:"name"`
	Category          ServiceCategory `json:"category" db:"category"`
	BasePrice         int64           `json:"base_price" db:"base_price"`
	BaseDistanceKm    float64         `json:"base_distance_km" db:"base_distance_km"`
	OverflowRatePerKm float64         `json:"overflow_rate_per_km" db:"overflow_rate_per_km"`
	Tiers             []DistanceTier  `json:"tiers,omitempty"`
	Active            bool            `json:"active" db:"active"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`
}

// DistancePriced сообщает, тарифицируется ли услуга по расстоянию.
func (e *ServiceCatalogEntry) DistancePriced() bool {
	return len(e.Tiers) > 0 || e.OverflowRatePerKm > 0
}

// Validate проверяет инварианты записи каталога. Вызывается один раз при
// создании/загрузке записи, а не на каждый расчет цены.
func (e *ServiceCatalogEntry) Validate() error {
	if e.Name == "" {
		return apperror.Validation("service name is required", nil)
	}
	if e.BasePrice < 0 {
		return apperror.Configuration(fmt.Sprintf("service %q: base price is negative", e.Name), nil)
	}
	if e.BaseDistanceKm < 0 {
		return apperror.Configuration(fmt.Sprintf("service %q: base distance is negative", e.Name), nil)
	}
	if e.OverflowRatePerKm < 0 {
		return apperror.Configuration(fmt.Sprintf("service %q: overflow rate is negative", e.Name), nil)
	}
	return ValidateTiers(e.Name, e.BaseDistanceKm, e.Tiers)
}

// ValidateTiers проверяет, что tier-ы отсортированы по возрастанию, не
// перекрываются между собой и не залезают в бесплатную базовую зону.
func ValidateTiers(serviceName string, baseDistanceKm float64, tiers []DistanceTier) error {
	prevEnd := baseDistanceKm
	for i, tier := range tiers {
		if tier.RangeStartKm >= tier.RangeEndKm {
			return apperror.Configuration(
				fmt.Sprintf("service %q: tier %d has range_start >= range_end", serviceName, i), nil)
		}
		if tier.Charge < 0 {
			return apperror.Configuration(
				fmt.Sprintf("service %q: tier %d has negative charge", serviceName, i), nil)
		}
		if tier.RangeStartKm < prevEnd {
			return apperror.Configuration(
				fmt.Sprintf("service %q: tier %d overlaps the previous bound", serviceName, i), nil)
		}
		prevEnd = tier.RangeEndKm
	}
	return nil
}

// CreateServiceRequest описывает запрос на создание услуги в каталоге.
type CreateServiceRequest struct {
	Name              string          `json:"name"`
	Category          ServiceCategory `json:"category"`
	BasePrice         int64           `json:"base_price"`
	BaseDistanceKm    float64         `json:"base_distance_km,omitempty"`
	OverflowRatePerKm float64         `json:"overflow_rate_per_km,omitempty"`
	Tiers             []DistanceTier  `json:"tiers,omitempty"`
	Active            bool            `json:"active"`
}

// UpdateServiceRequest описывает запрос на обновление услуги.
type UpdateServiceRequest struct {
	Name              string          `json:"name"`
	Category          ServiceCategory `json:"category"`
	BasePrice         int64           `json:"base_price"`
	BaseDistanceKm    float64         `json:"base_distance_km,omitempty"`
	OverflowRatePerKm float64         `json:"overflow_rate_per_km,omitempty"`
	Tiers             []DistanceTier  `json:"tiers,omitempty"`
	Active            bool            `json:"active"`
}

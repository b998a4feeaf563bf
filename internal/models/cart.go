package models

import (
	"fmt"

	"bookings-system/internal/apperror"

	"github.com/google/uuid"
)

// AddOnSelection представляет выбранную опцию в строке корзины.
// Опция принадлежит только своей строке, общей идентичности между строками нет.
type AddOnSelection struct {
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

// CartLine — каноническая строка корзины, единственная форма, которую видит
// движок расчета. BasePrice всегда берется из каталога при нормализации,
// никогда из клиентских полей: именно подмена total на base и давала
// двойной учет опций в старом калькуляторе.
type CartLine struct {
	ServiceID   uuid.UUID        `json:"service_id"`
	ServiceName string           `json:"service_name"`
	BasePrice   int64            `json:"base_price"`
	Quantity    int              `json:"quantity"`
	AddOns      []AddOnSelection `json:"add_ons,omitempty"`
	DistanceKm  *float64         `json:"distance_km,omitempty"`
}

// CartItemRequest описывает одну позицию корзины в запросе клиента.
// TotalPrice принимается только для сверки и никогда не участвует в расчете.
type CartItemRequest struct {
	ServiceID  uuid.UUID      `json:"service_id"`
	Quantity   int            `json:"quantity"`
	AddOns     []AddOnRequest `json:"add_ons,omitempty"`
	DistanceKm *float64       `json:"distance_km,omitempty"`
	TotalPrice *int64         `json:"total_price,omitempty"`
}

// AddOnRequest описывает выбранную опцию в запросе клиента.
type AddOnRequest struct {
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity,omitempty"` // 0 = опция-переключатель, считается как 1
}

// NormalizeCartLine строит каноническую строку корзины из позиции запроса и
// записи каталога. Единственная точка, где клиентский ввод превращается во
// вход движка.
func NormalizeCartLine(item *CartItemRequest, entry *ServiceCatalogEntry) (CartLine, error) {
	if entry == nil {
		return CartLine{}, apperror.NotFound("service not found in catalog", nil)
	}
	if item.ServiceID != entry.ID {
		return CartLine{}, apperror.Validation(
			fmt.Sprintf("catalog entry %s does not match requested service %s", entry.ID, item.ServiceID), nil)
	}
	if !entry.Active {
		return CartLine{}, apperror.Validation(fmt.Sprintf("service %q is not available", entry.Name), nil)
	}
	if item.Quantity < 1 {
		return CartLine{}, apperror.Validation(fmt.Sprintf("service %q: quantity must be at least 1", entry.Name), nil)
	}
	if item.DistanceKm != nil && *item.DistanceKm < 0 {
		return CartLine{}, apperror.Validation(fmt.Sprintf("service %q: distance cannot be negative", entry.Name), nil)
	}
	if entry.DistancePriced() && item.DistanceKm == nil {
		return CartLine{}, apperror.Validation(
			fmt.Sprintf("service %q is distance priced, distance_km is required", entry.Name), nil)
	}

	line := CartLine{
		ServiceID:   entry.ID,
		ServiceName: entry.Name,
		BasePrice:   entry.BasePrice,
		Quantity:    item.Quantity,
		DistanceKm:  item.DistanceKm,
	}

	for _, addOn := range item.AddOns {
		if addOn.Name == "" {
			return CartLine{}, apperror.Validation(fmt.Sprintf("service %q: add-on name is required", entry.Name), nil)
		}
		if addOn.UnitPrice < 0 {
			return CartLine{}, apperror.Validation(
				fmt.Sprintf("service %q: add-on %q has negative unit price", entry.Name, addOn.Name), nil)
		}
		if addOn.Quantity < 0 {
			return CartLine{}, apperror.Validation(
				fmt.Sprintf("service %q: add-on %q has negative quantity", entry.Name, addOn.Name), nil)
		}
		quantity := addOn.Quantity
		if quantity == 0 {
			quantity = 1
		}
		line.AddOns = append(line.AddOns, AddOnSelection{
			Name:      addOn.Name,
			UnitPrice: addOn.UnitPrice,
			Quantity:  quantity,
		})
	}

	return line, nil
}

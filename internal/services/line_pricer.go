package services

import (
	"fmt"

	"bookings-system/internal/apperror"
	"bookings-system/internal/models"
)

// PriceLine рассчитывает одну строку корзины по записи каталога.
// Результат всегда согласован: LineTotal = (BasePrice + DistanceSurcharge +
// AddOnsTotal) * Quantity. При любой ошибке строка не рассчитывается вовсе,
// частичных результатов нет.
func PriceLine(entry *models.ServiceCatalogEntry, line *models.CartLine) (models.PricedLine, error) {
	if entry == nil {
		return models.PricedLine{}, apperror.Validation("catalog entry is required for pricing", nil)
	}
	if line.BasePrice < 0 {
		return models.PricedLine{}, apperror.Validation(
			fmt.Sprintf("service %q: base price cannot be negative", line.ServiceName), nil)
	}
	if line.Quantity < 1 {
		return models.PricedLine{}, apperror.Validation(
			fmt.Sprintf("service %q: quantity must be at least 1", line.ServiceName), nil)
	}

	var distanceSurcharge int64
	if entry.DistancePriced() && line.DistanceKm != nil {
		if *line.DistanceKm < 0 {
			return models.PricedLine{}, apperror.Validation(
				fmt.Sprintf("service %q: distance cannot be negative", line.ServiceName), nil)
		}
		distanceSurcharge = ResolveDistanceSurcharge(
			*line.DistanceKm, entry.BaseDistanceKm, entry.Tiers, entry.OverflowRatePerKm)
	}

	var addOnsTotal int64
	for _, addOn := range line.AddOns {
		if addOn.UnitPrice < 0 {
			return models.PricedLine{}, apperror.Validation(
				fmt.Sprintf("service %q: add-on %q has negative unit price", line.ServiceName, addOn.Name), nil)
		}
		if addOn.Quantity < 1 {
			return models.PricedLine{}, apperror.Validation(
				fmt.Sprintf("service %q: add-on %q has invalid quantity", line.ServiceName, addOn.Name), nil)
		}
		addOnsTotal += addOn.UnitPrice * int64(addOn.Quantity)
	}

	perUnit := line.BasePrice + distanceSurcharge + addOnsTotal

	priced := models.PricedLine{
		ServiceID:         line.ServiceID,
		ServiceName:       line.ServiceName,
		BasePrice:         line.BasePrice,
		DistanceSurcharge: distanceSurcharge,
		AddOnsTotal:       addOnsTotal,
		LineTotal:         perUnit * int64(line.Quantity),
		Quantity:          line.Quantity,
		DistanceKm:        line.DistanceKm,
	}
	if len(line.AddOns) > 0 {
		priced.AddOns = make([]models.AddOnSelection, len(line.AddOns))
		copy(priced.AddOns, line.AddOns)
	}

	return priced, nil
}

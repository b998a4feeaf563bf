package services

import (
	"math"

	"bookings-system/internal/models"
)

// ResolveDistanceSurcharge возвращает надбавку за расстояние по таблице
// tier-ов услуги. Дистанция в пределах базовой зоны бесплатна (граница
// включительно), далее берется charge первого tier-а с
// rangeStart < distance <= rangeEnd. За пределами последнего tier-а
// действует ставка overflowRatePerKm поверх его потолка.
//
// Таблица tier-ов валидируется один раз при загрузке каталога
// (models.ValidateTiers), поэтому здесь нет ни проверок, ни аллокаций.
func ResolveDistanceSurcharge(distanceKm, baseDistanceKm float64, tiers []models.DistanceTier, overflowRatePerKm float64) int64 {
	if distanceKm <= baseDistanceKm {
		return 0
	}

	prevCharge := int64(0)
	ceilingCharge := int64(0)
	ceilingKm := baseDistanceKm

	for _, tier := range tiers {
		if distanceKm <= tier.RangeEndKm {
			if distanceKm > tier.RangeStartKm {
				return tier.Charge
			}
			// Дистанция попала в зазор между tier-ами: остаемся на
			// предыдущей ступени, чтобы не терять монотонность.
			return prevCharge
		}
		prevCharge = tier.Charge
		ceilingCharge = tier.Charge
		ceilingKm = tier.RangeEndKm
	}

	extra := (distanceKm - ceilingKm) * overflowRatePerKm
	return ceilingCharge + int64(math.Round(extra))
}

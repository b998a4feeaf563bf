package services

import (
	"testing"

	"bookings-system/internal/apperror"
	"bookings-system/internal/models"

	"github.com/google/uuid"
)

func bikeShiftingEntry() *models.ServiceCatalogEntry {
	return &models.ServiceCatalogEntry{
		ID:                uuid.New(),
		Name:              "Bike Shifting",
		Category:          models.ServiceCategoryMovers,
		BasePrice:         1299,
		BaseDistanceKm:    5,
		OverflowRatePerKm: 10,
		Tiers:             shiftingTiers(),
		Active:            true,
	}
}

func carWashEntry() *models.ServiceCatalogEntry {
	return &models.ServiceCatalogEntry{
		ID:        uuid.New(),
		Name:      "Premium Car Wash",
		Category:  models.ServiceCategoryCarWash,
		BasePrice: 499,
		Active:    true,
	}
}

func TestPriceLine_FlatWithAddOns(t *testing.T) {
	entry := carWashEntry()
	line := &models.CartLine{
		ServiceID:   entry.ID,
		ServiceName: entry.Name,
		BasePrice:   entry.BasePrice,
		Quantity:    2,
		AddOns: []models.AddOnSelection{
			{Name: "Interior Cleaning", UnitPrice: 199, Quantity: 1},
			{Name: "Wax Polish", UnitPrice: 99, Quantity: 2},
		},
	}

	priced, err := PriceLine(entry, line)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if priced.AddOnsTotal != 199+99*2 {
		t.Fatalf("unexpected add-ons total: %d", priced.AddOnsTotal)
	}
	if priced.DistanceSurcharge != 0 {
		t.Fatalf("flat service must have zero surcharge, got %d", priced.DistanceSurcharge)
	}
	want := (499 + 397) * int64(2)
	if priced.LineTotal != want {
		t.Fatalf("expected line total %d, got %d", want, priced.LineTotal)
	}
}

func TestPriceLine_DistancePriced(t *testing.T) {
	entry := bikeShiftingEntry()
	distance := 12.0
	line := &models.CartLine{
		ServiceID:   entry.ID,
		ServiceName: entry.Name,
		BasePrice:   entry.BasePrice,
		Quantity:    1,
		DistanceKm:  &distance,
	}

	priced, err := PriceLine(entry, line)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if priced.DistanceSurcharge != 250 {
		t.Fatalf("expected surcharge 250 at 12 km, got %d", priced.DistanceSurcharge)
	}
	if priced.LineTotal != 1299+250 {
		t.Fatalf("expected line total 1549, got %d", priced.LineTotal)
	}
}

func TestPriceLine_Additivity(t *testing.T) {
	entry := bikeShiftingEntry()
	distance := 27.0
	line := &models.CartLine{
		ServiceID:   entry.ID,
		ServiceName: entry.Name,
		BasePrice:   entry.BasePrice,
		Quantity:    3,
		AddOns: []models.AddOnSelection{
			{Name: "Packing Material", UnitPrice: 350, Quantity: 1},
		},
		DistanceKm: &distance,
	}

	priced, err := PriceLine(entry, line)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	derived := (priced.BasePrice + priced.DistanceSurcharge + priced.AddOnsTotal) * int64(priced.Quantity)
	if priced.LineTotal != derived {
		t.Fatalf("line total %d is not derivable from fields (%d)", priced.LineTotal, derived)
	}
}

func TestPriceLine_InvalidInput(t *testing.T) {
	entry := carWashEntry()

	cases := []struct {
		name string
		line models.CartLine
	}{
		{"negative base price", models.CartLine{ServiceName: "x", BasePrice: -1, Quantity: 1}},
		{"zero quantity", models.CartLine{ServiceName: "x", BasePrice: 100, Quantity: 0}},
		{"negative add-on price", models.CartLine{
			ServiceName: "x", BasePrice: 100, Quantity: 1,
			AddOns: []models.AddOnSelection{{Name: "a", UnitPrice: -5, Quantity: 1}},
		}},
		{"zero add-on quantity", models.CartLine{
			ServiceName: "x", BasePrice: 100, Quantity: 1,
			AddOns: []models.AddOnSelection{{Name: "a", UnitPrice: 5, Quantity: 0}},
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := PriceLine(entry, &tc.line); !apperror.Is(err, apperror.KindValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestPriceLine_NilEntry(t *testing.T) {
	line := &models.CartLine{ServiceName: "x", BasePrice: 100, Quantity: 1}
	if _, err := PriceLine(nil, line); !apperror.Is(err, apperror.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPriceLine_DistanceIgnoredForFlatService(t *testing.T) {
	entry := carWashEntry()
	distance := 40.0
	line := &models.CartLine{
		ServiceID:   entry.ID,
		ServiceName: entry.Name,
		BasePrice:   entry.BasePrice,
		Quantity:    1,
		DistanceKm:  &distance,
	}

	priced, err := PriceLine(entry, line)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if priced.DistanceSurcharge != 0 {
		t.Fatalf("flat service must ignore distance, got surcharge %d", priced.DistanceSurcharge)
	}
}

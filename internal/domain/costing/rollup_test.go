package costing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"birrificio/internal/core/types"
	"birrificio/internal/domain/batch"
	"birrificio/internal/domain/costing"
	"birrificio/internal/domain/movement"
	"birrificio/internal/domain/pricing"
)

func coefficients() costing.Coefficients {
	return costing.Coefficients{
		GasUnitCost:     types.MustMoney("2"),
		WaterUnitCost:   types.MustMoney("0.5"),
		CO2Cost:         types.MustMoney("10"),
		NitrogenCost:    types.MustMoney("8"),
		ExcisePerLiter:  types.MustMoney("0.03"),
		StoragePerLiter: types.MustMoney("0.02"),
		PalletFee:       types.MustMoney("15"),
		ManagementPerHl: types.MustMoney("4"),
	}
}

func draw(category movement.Category, product, lot string, qty float64) movement.Movement {
	return movement.Movement{
		Date:          time.Date(2024, 4, 10, 0, 0, 0, 0, time.Local),
		Category:      category,
		Product:       product,
		Brand:         "B",
		Supplier:      "S",
		Quantity:      types.NewQuantityFromFloat64(-qty),
		ProductionLot: lot,
	}
}

func TestBatchCostJoinsMovementsAndCoefficients(t *testing.T) {
	b := batch.Batch{
		Lot:          "LOT001",
		Beer:         "IPA",
		FinalVolume:  100,
		BrewGas:      batch.CounterPair{Before: 100, After: 105},
		PackagingGas: batch.CounterPair{Before: 40, After: 43},
		WashWater:    batch.CounterPair{Before: 0, After: 10},
		UsesCO2:      true,
	}
	movements := []movement.Movement{
		draw(movement.CategoryMalti, "MALTO PILS", "LOT001", 50),
		draw(movement.CategoryBottiglie, "BOTTIGLIA 33", "LOT001", 240),
		draw(movement.CategoryMalti, "MALTO PILS", "LOT999", 7), // other lot
		{ // inbound, never costed
			Category: movement.CategoryMalti,
			Product:  "MALTO PILS", Brand: "B", Supplier: "S",
			Quantity:      types.NewQuantityFromFloat64(100),
			ProductionLot: "LOT001",
		},
	}
	catalog := []pricing.Entry{
		{Product: "MALTO PILS", Brand: "B", Supplier: "S", UnitPrice: types.MustMoney("1.20")},
	}

	out := costing.BatchCost(b, movements, catalog, coefficients())

	require.Len(t, out.Ingredients, 1)
	assert.True(t, out.Ingredients[0].PriceFound)
	assert.True(t, out.Ingredients[0].Cost.Equal(types.MustMoney("60")), "50 kg at 1.20")

	require.Len(t, out.Packaging, 1)
	assert.False(t, out.Packaging[0].PriceFound)
	assert.True(t, out.Packaging[0].Cost.IsZero(), "missing price never costs as free silently")
	assert.Equal(t, []string{"BOTTIGLIA 33"}, out.MissingPrices)

	assert.True(t, out.GasCost.Equal(types.MustMoney("16")), "2 x (5 + 3) counter units")
	assert.True(t, out.WaterCost.Equal(types.MustMoney("5")))
	assert.True(t, out.CO2Cost.Equal(types.MustMoney("10")))
	assert.True(t, out.NitrogenCost.IsZero(), "nitrogen flag not set")
	assert.True(t, out.ExciseCost.Equal(types.MustMoney("3")))
	assert.True(t, out.StorageCost.Equal(types.MustMoney("2")))
	assert.True(t, out.PalletCost.Equal(types.MustMoney("15")))
	assert.True(t, out.ManagementFee.Equal(types.MustMoney("4")), "4 per hl on 100 liters")

	// 60 + 16 + 5 + 10 + 3 + 2 + 15 + 4
	assert.True(t, out.Total.Equal(types.MustMoney("115")), "got %s", out.Total)

	assert.True(t, out.CostPerLiter(100).Equal(types.MustMoney("1.15")))
	assert.True(t, out.CostPerLiter(0).IsZero())
}

func TestQuoteCostPricesItemLines(t *testing.T) {
	q := costing.Quote{
		ID:     "Q1",
		Liters: 200,
		Format: "B033",
		Items: []costing.QuoteItem{
			{Product: "malto pils", Brand: "b", Supplier: "s", Quantity: types.NewQuantityFromInt(40)},
			{Product: "LUPPOLO CITRA", Brand: "B", Supplier: "S", Quantity: types.NewQuantityFromInt(2)},
		},
	}
	catalog := []pricing.Entry{
		{Product: "MALTO PILS", Brand: "B", Supplier: "S", UnitPrice: types.MustMoney("1.20")},
	}

	out := costing.QuoteCost(q, catalog, coefficients())

	require.Len(t, out.Ingredients, 2)
	assert.True(t, out.Ingredients[0].Cost.Equal(types.MustMoney("48")), "lookup is case-insensitive")
	assert.Equal(t, []string{"LUPPOLO CITRA"}, out.MissingPrices)

	assert.True(t, out.ExciseCost.Equal(types.MustMoney("6")))
	assert.True(t, out.ManagementFee.Equal(types.MustMoney("8")))
	assert.True(t, out.PalletCost.Equal(types.MustMoney("15")), "known format gets the pallet fee")

	// 48 + 6 + 8 + 15
	assert.True(t, out.Total.Equal(types.MustMoney("77")), "got %s", out.Total)
}

func TestQuoteCostSkipsPalletForUnknownFormat(t *testing.T) {
	q := costing.Quote{ID: "Q2", Liters: 50, Format: "B999"}

	out := costing.QuoteCost(q, nil, coefficients())
	assert.True(t, out.PalletCost.IsZero())
}

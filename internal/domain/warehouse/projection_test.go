package warehouse_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"birrificio/internal/core/types"
	"birrificio/internal/domain/movement"
	"birrificio/internal/domain/warehouse"
)

func TestProjectDropsConsumedAggregates(t *testing.T) {
	p := warehouse.Project([]movement.Movement{
		inbound(1, "Pils", "L1", 25),
		outbound(5, "Pils", "L1", 24.995, "LOT001"),
		inbound(2, "Vienna", "L2", 10),
	})

	entries := p.Entries()
	require.Len(t, entries, 1, "a 0.005 residue counts as fully consumed")
	assert.Equal(t, "VIENNA", entries[0].Product)
}

func TestProjectCatalogKeepsFirstSeenDescriptor(t *testing.T) {
	first := inbound(1, "Pils", "L1", 10)
	later := inbound(3, "Pils", "L2", 10)
	later.Supplier = "OTHER"

	p := warehouse.Project([]movement.Movement{first, later})

	entry, ok := p.Catalog[warehouse.ProductIdentity{Product: "PILS", Brand: "B"}]
	require.True(t, ok)
	assert.Equal(t, "S", entry.Supplier, "first inbound wins the catalog slot")
}

func TestProjectNormalizesIdentityFields(t *testing.T) {
	a := inbound(1, "  pils ", "L1", 10)
	b := inbound(2, "PILS", "L1", 5)

	entries := warehouse.Project([]movement.Movement{a, b}).Entries()
	require.Len(t, entries, 1)
	assert.InDelta(t, 15.0, entries[0].Quantity.Float64(), 1e-9)
}

func TestLotBalancesFallBackToUnknownOrigin(t *testing.T) {
	// A lot whose only positive line is an adjustment without brand/supplier
	// has no inbound to name its origin.
	balances := warehouse.LotBalances([]movement.Movement{
		{
			Date:        day(4),
			Category:    movement.CategoryMalti,
			Product:     "PILS",
			Quantity:    types.NewQuantityFromInt(2),
			SupplierLot: "LX",
		},
	})
	require.Len(t, balances, 1)
	assert.Equal(t, warehouse.UnknownOrigin, balances[0].Brand)
	assert.Equal(t, warehouse.UnknownOrigin, balances[0].Supplier)
}

func TestLotBalancesSkipMovementsWithoutLot(t *testing.T) {
	m := inbound(1, "Pils", "", 10)
	assert.Empty(t, warehouse.LotBalances([]movement.Movement{m}))
}

func TestOutOfStockListsDepletedProducts(t *testing.T) {
	out := warehouse.OutOfStock([]movement.Movement{
		inbound(1, "Pils", "L1", 10),
		outbound(2, "Pils", "L1", 10, "LOT001"),
		inbound(1, "Vienna", "L2", 5),
	})
	require.Len(t, out, 1)
	assert.Equal(t, "PILS", out[0].Product)
}

func TestCheckConsumptionsAggregatesPerLot(t *testing.T) {
	log := []movement.Movement{inbound(1, "Pils", "L1", 10)}

	err := warehouse.CheckConsumptions(log, []warehouse.Consumption{
		{Product: "pils", SupplierLot: "L1", Quantity: types.NewQuantityFromInt(6)},
		{Product: "Pils", SupplierLot: "L1", Quantity: types.NewQuantityFromInt(6)},
	})
	require.Error(t, err, "two draws of 6 against 10 must fail together")

	err = warehouse.CheckConsumptions(log, []warehouse.Consumption{
		{Product: "Pils", SupplierLot: "L1", Quantity: types.NewQuantityFromInt(6)},
		{Product: "Pils", SupplierLot: "L1", Quantity: types.NewQuantityFromInt(4)},
	})
	assert.NoError(t, err)
}

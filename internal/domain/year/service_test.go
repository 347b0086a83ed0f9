package year_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"birrificio/internal/core/types"
	"birrificio/internal/domain"
	"birrificio/internal/domain/beerstock"
	"birrificio/internal/domain/costing"
	"birrificio/internal/domain/domaintest"
	"birrificio/internal/domain/masterdata"
	"birrificio/internal/domain/movement"
	"birrificio/internal/domain/warehouse"
	"birrificio/internal/domain/year"
)

func closingDataset() *domain.Dataset {
	d := domain.NewDataset()
	d.Movements = append(d.Movements,
		movement.Movement{
			Date:        time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local),
			Category:    movement.CategoryMalti,
			Product:     "MALTO PILS",
			Brand:       "X",
			Supplier:    "Y",
			Quantity:    types.NewQuantityFromFloat64(20),
			Reference:   "FT-1",
			SupplierLot: "L1",
		},
		movement.Movement{
			Date:     time.Date(2024, 4, 1, 0, 0, 0, 0, time.Local),
			Category: movement.CategoryMalti,
			Product:  "MALTO PILS",
			Brand:    "X",
			Supplier: "Y",
			Quantity: types.NewQuantityFromFloat64(-7.5),
		},
	)
	d.InitialBeer = []beerstock.InitialStock{
		{
			StockKey: beerstock.StockKey{Client: beerstock.OwnClient, Beer: "IPA", Lot: "LOT001", Format: "B033"},
			Quantity: types.NewQuantityFromInt(12),
		},
	}
	d.Clients = []masterdata.Client{{Name: "BAR ROMA"}}
	d.Beers = []masterdata.Beer{{Name: "IPA"}}
	d.Fermenters = []masterdata.Fermenter{{Name: "F1", Capacity: 500}}
	d.Quotes = []costing.Quote{{ID: "Q1", Name: "PREVENTIVO"}}
	return d
}

func TestCreateYearCarriesForwardClosingStock(t *testing.T) {
	store := domaintest.NewMemStore()
	store.Seed("2024", closingDataset())
	svc := year.NewService(store)
	ctx := context.Background()

	created, err := svc.Create(ctx, "2025", "2024")
	require.NoError(t, err)
	assert.True(t, created)

	d, err := store.Get(ctx, "2025")
	require.NoError(t, err)

	// Exactly one opening movement of +12.5, dated Jan 1.
	require.Len(t, d.Movements, 1)
	opening := d.Movements[0]
	assert.Equal(t, movement.RefCarryForward, opening.Reference)
	assert.Equal(t, "MALTO PILS", opening.Product)
	assert.InDelta(t, 12.5, opening.Quantity.Float64(), 1e-9)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local), opening.Date)

	stock := warehouse.Project(d.Movements).Entries()
	require.Len(t, stock, 1)
	assert.InDelta(t, 12.5, stock[0].Quantity.Float64(), 1e-9)

	// Finished beer becomes the new opening snapshot.
	require.Len(t, d.InitialBeer, 1)
	assert.InDelta(t, 12.0, d.InitialBeer[0].Quantity.Float64(), 1e-9)
	assert.Empty(t, d.BeerMovements)

	// Master data verbatim; quotes stay behind.
	assert.Equal(t, []masterdata.Client{{Name: "BAR ROMA"}}, d.Clients)
	assert.Len(t, d.Beers, 1)
	assert.Len(t, d.Fermenters, 1)
	assert.Empty(t, d.Quotes)
}

func TestCreateYearRefusesOverwrite(t *testing.T) {
	store := domaintest.NewMemStore()
	store.Seed("2024", closingDataset())
	svc := year.NewService(store)
	ctx := context.Background()

	created, err := svc.Create(ctx, "2024", "")
	require.NoError(t, err)
	assert.False(t, created)

	// The existing dataset is untouched.
	d, err := store.Get(ctx, "2024")
	require.NoError(t, err)
	assert.Len(t, d.Movements, 2)
}

func TestCreateYearWithoutImportStartsEmpty(t *testing.T) {
	store := domaintest.NewMemStore()
	svc := year.NewService(store)
	ctx := context.Background()

	created, err := svc.Create(ctx, "2026", "")
	require.NoError(t, err)
	assert.True(t, created)

	d, err := store.Get(ctx, "2026")
	require.NoError(t, err)
	assert.Empty(t, d.Movements)
	assert.Empty(t, d.InitialBeer)
}

func TestCreateYearValidatesKeys(t *testing.T) {
	svc := year.NewService(domaintest.NewMemStore())

	_, err := svc.Create(context.Background(), "24", "")
	assert.Error(t, err)

	_, err = svc.Create(context.Background(), "2025", "not-a-year")
	assert.Error(t, err)
}

func TestResetClearsEverything(t *testing.T) {
	store := domaintest.NewMemStore()
	store.Seed("2023", domain.NewDataset())
	store.Seed("2024", closingDataset())
	svc := year.NewService(store)
	ctx := context.Background()

	require.NoError(t, svc.Reset(ctx))

	years, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, years)
}

package sales_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"birrificio/internal/core/apperror"
	"birrificio/internal/core/types"
	"birrificio/internal/domain"
	"birrificio/internal/domain/beerstock"
	"birrificio/internal/domain/domaintest"
	"birrificio/internal/domain/sales"
)

var checkDay = time.Date(2024, 5, 20, 10, 0, 0, 0, time.Local)

func ownKey(beer, lot, format string) beerstock.StockKey {
	return beerstock.StockKey{Client: beerstock.OwnClient, Beer: beer, Lot: lot, Format: format}
}

func seededService() (*sales.Service, *domaintest.MemStore) {
	store := domaintest.NewMemStore()
	d := domain.NewDataset()
	d.InitialBeer = []beerstock.InitialStock{
		{StockKey: ownKey("IPA", "LOT001", "B033"), Quantity: types.NewQuantityFromInt(48)},
		{StockKey: ownKey("IPA", "LOT001", "F20"), Quantity: types.NewQuantityFromInt(4)},
	}
	store.Seed("2024", d)

	svc := sales.NewService(store).WithClock(func() time.Time { return checkDay })
	return svc, store
}

func TestSaveOrderMovesStockBetweenClients(t *testing.T) {
	svc, store := seededService()
	ctx := context.Background()

	id, err := svc.SaveOrder(ctx, "2024", beerstock.SalesOrder{
		Client: "Bar Roma",
		Items: []beerstock.OrderItem{
			{Beer: "IPA", Lot: "LOT001", Format: "B033", Quantity: types.NewQuantityFromInt(24)},
		},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	d, err := store.Get(ctx, "2024")
	require.NoError(t, err)
	require.Len(t, d.BeerMovements, 2)

	sale, purchase := d.BeerMovements[0], d.BeerMovements[1]
	assert.Equal(t, beerstock.TypeSale, sale.Type)
	assert.Equal(t, beerstock.OwnClient, sale.Client)
	assert.InDelta(t, -24.0, sale.Quantity.Float64(), 1e-9)
	assert.Equal(t, beerstock.TypePurchase, purchase.Type)
	assert.Equal(t, "BAR ROMA", purchase.Client)
	assert.InDelta(t, 24.0, purchase.Quantity.Float64(), 1e-9)
	assert.Equal(t, id, sale.RelatedDoc)

	own, err := svc.GetStock(ctx, "2024", beerstock.OwnClient)
	require.NoError(t, err)
	require.Len(t, own, 2)
}

func TestSaveOrderRejectedOnInsufficientStock(t *testing.T) {
	svc, store := seededService()
	ctx := context.Background()

	_, err := svc.SaveOrder(ctx, "2024", beerstock.SalesOrder{
		Client: "Bar Roma",
		Items: []beerstock.OrderItem{
			{Beer: "IPA", Lot: "LOT001", Format: "B033", Quantity: types.NewQuantityFromInt(30)},
			{Beer: "IPA", Lot: "LOT001", Format: "B033", Quantity: types.NewQuantityFromInt(30)},
		},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	d, err := store.Get(ctx, "2024")
	require.NoError(t, err)
	assert.Empty(t, d.BeerMovements)
	assert.Empty(t, d.SalesOrders)
}

func TestSaveOrderNeverTargetsOwnStock(t *testing.T) {
	svc, _ := seededService()

	_, err := svc.SaveOrder(context.Background(), "2024", beerstock.SalesOrder{
		Client: "alverese",
		Items: []beerstock.OrderItem{
			{Beer: "IPA", Lot: "LOT001", Format: "B033", Quantity: types.NewQuantityFromInt(1)},
		},
	})
	assert.Error(t, err)
}

func TestMonthlyCheckIsIdempotent(t *testing.T) {
	svc, store := seededService()
	ctx := context.Background()

	// 48 bottles calculated, 1 carton of 24 counted: discrepancy -24.
	counts := []sales.PhysicalCount{
		{StockKey: ownKey("IPA", "LOT001", "B033"), Count: 1},
		{StockKey: ownKey("IPA", "LOT001", "F20"), Count: 4},
	}

	first, err := svc.ReconcileCount(ctx, "2024", counts)
	require.NoError(t, err)
	assert.Equal(t, "2024-05", first.ID)
	require.Len(t, first.Items, 2)
	assert.InDelta(t, -24.0, first.Items[0].Discrepancy.Float64(), 1e-9)
	assert.InDelta(t, 0.0, first.Items[1].Discrepancy.Float64(), 1e-9)

	second, err := svc.ReconcileCount(ctx, "2024", counts)
	require.NoError(t, err)
	assert.Equal(t, first.Items, second.Items)

	d, err := store.Get(ctx, "2024")
	require.NoError(t, err)
	assert.Len(t, d.InventoryChecks, 1, "re-run replaces the prior check")

	adjustments := 0
	for _, m := range d.BeerMovements {
		if m.Type == beerstock.TypeAdjustment {
			adjustments++
			assert.Equal(t, "2024-05", m.RelatedDoc)
		}
	}
	assert.Equal(t, 1, adjustments, "only the line with a discrepancy adjusts, once")

	// After the adjustment the ledger matches the physical count.
	items, err := svc.GetStock(ctx, "2024", beerstock.OwnClient)
	require.NoError(t, err)
	for _, item := range items {
		if item.Format == "B033" {
			assert.InDelta(t, 24.0, item.Quantity.Float64(), 1e-9)
		}
	}
}

func TestKegCountsAreInPieces(t *testing.T) {
	svc, _ := seededService()

	check, err := svc.ReconcileCount(context.Background(), "2024", []sales.PhysicalCount{
		{StockKey: ownKey("IPA", "LOT001", "F20"), Count: 3},
	})
	require.NoError(t, err)
	require.Len(t, check.Items, 1)
	assert.InDelta(t, 3.0, check.Items[0].Physical.Float64(), 1e-9)
	assert.InDelta(t, -1.0, check.Items[0].Discrepancy.Float64(), 1e-9)
}

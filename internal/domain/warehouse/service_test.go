package warehouse_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"birrificio/internal/core/apperror"
	"birrificio/internal/core/types"
	"birrificio/internal/domain"
	"birrificio/internal/domain/domaintest"
	"birrificio/internal/domain/movement"
	"birrificio/internal/domain/warehouse"
)

func newService(t *testing.T) (*warehouse.Service, *domaintest.MemStore) {
	t.Helper()
	store := domaintest.NewMemStore()
	store.Seed("2024", domain.NewDataset())
	return warehouse.NewService(store), store
}

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.Local)
}

func inbound(d int, product, lot string, qty float64) movement.Movement {
	return movement.Movement{
		Date:        day(d),
		Category:    movement.CategoryMalti,
		Product:     product,
		Brand:       "B",
		Supplier:    "S",
		Quantity:    types.NewQuantityFromFloat64(qty),
		Reference:   "FT-1",
		SupplierLot: lot,
	}
}

func outbound(d int, product, lot string, qty float64, productionLot string) movement.Movement {
	m := inbound(d, product, lot, -qty)
	m.Reference = ""
	m.ProductionLot = productionLot
	return m
}

func TestMovementLogScenario(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	require.NoError(t, svc.AddMovements(ctx, "2024", []movement.Movement{
		inbound(1, "Pils", "L1", 100),
	}))
	require.NoError(t, svc.AddMovements(ctx, "2024", []movement.Movement{
		outbound(10, "Pils", "L1", 30, "LOT001"),
	}))

	stock, err := svc.GetStock(ctx, "2024")
	require.NoError(t, err)
	require.Len(t, stock, 1)
	assert.Equal(t, movement.CategoryMalti, stock[0].Category)
	assert.Equal(t, "PILS", stock[0].Product)
	assert.InDelta(t, 70.0, stock[0].Quantity.Float64(), 1e-9)

	lots, err := svc.GetLots(ctx, "2024")
	require.NoError(t, err)
	require.Len(t, lots, 1)
	assert.Equal(t, "L1", lots[0].SupplierLot)
	assert.InDelta(t, 70.0, lots[0].Quantity.Float64(), 1e-9)

	// Consuming 80 more from L1 must be rejected and leave the log intact.
	err = svc.AddMovements(ctx, "2024", []movement.Movement{
		outbound(11, "Pils", "L1", 80, "LOT002"),
	})
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	movements, err := svc.GetMovements(ctx, "2024")
	require.NoError(t, err)
	assert.Len(t, movements, 2)
}

func TestStockNeverNegativeAfterAcceptedSequence(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	require.NoError(t, svc.AddMovements(ctx, "2024", []movement.Movement{
		inbound(1, "Cascade", "H1", 10),
		inbound(2, "Cascade", "H2", 5),
	}))

	// Issue more draws than the lot can absorb; rejected ones must leave
	// no trace and the accepted prefix must never take a lot negative.
	draws := []float64{3, 4, 2, 5, 1}
	for i, qty := range draws {
		_ = svc.AddMovements(ctx, "2024", []movement.Movement{
			outbound(3+i, "Cascade", "H1", qty, ""),
		})
		for _, lot := range allLots(t, svc) {
			assert.False(t, lot.Quantity.IsNegative(), "lot %s went negative", lot.SupplierLot)
		}
	}
}

func allLots(t *testing.T, svc *warehouse.Service) []warehouse.LotBalance {
	t.Helper()
	lots, err := svc.GetLots(context.Background(), "2024")
	require.NoError(t, err)
	return lots
}

func TestMultipleDrawsFromSameLotCheckedTogether(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	require.NoError(t, svc.AddMovements(ctx, "2024", []movement.Movement{
		inbound(1, "Pils", "L1", 10),
	}))

	// Each draw alone fits, together they overshoot.
	err := svc.AddMovements(ctx, "2024", []movement.Movement{
		outbound(2, "Pils", "L1", 6, ""),
		outbound(2, "Pils", "L1", 6, ""),
	})
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	movements, err := svc.GetMovements(ctx, "2024")
	require.NoError(t, err)
	assert.Len(t, movements, 1, "rejected batch must not be partially written")
}

func TestDeleteProductRefusedWhileStockRemains(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	require.NoError(t, svc.AddMovements(ctx, "2024", []movement.Movement{
		inbound(1, "Pils", "L1", 5),
	}))

	key := warehouse.ProductKey{
		Category: movement.CategoryMalti,
		Product:  "PILS",
		Brand:    "B",
		Supplier: "S",
	}
	err := svc.DeleteProduct(ctx, "2024", key)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeStockNotEmpty, appErr.Code)

	// Consume it all, then removal succeeds.
	require.NoError(t, svc.AddMovements(ctx, "2024", []movement.Movement{
		outbound(2, "Pils", "L1", 5, ""),
	}))
	require.NoError(t, svc.DeleteProduct(ctx, "2024", key))

	movements, err := svc.GetMovements(ctx, "2024")
	require.NoError(t, err)
	assert.Empty(t, movements)
}

func TestUpdateMovementRejectsNegativeBalance(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	require.NoError(t, svc.AddMovements(ctx, "2024", []movement.Movement{
		inbound(1, "Pils", "L1", 100),
	}))
	require.NoError(t, svc.AddMovements(ctx, "2024", []movement.Movement{
		outbound(2, "Pils", "L1", 40, ""),
	}))

	// Shrinking the inbound below what was already consumed must fail.
	smaller := inbound(1, "Pils", "L1", 30)
	err := svc.UpdateMovement(ctx, "2024", 0, smaller)
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	// The original log is untouched.
	movements, err := svc.GetMovements(ctx, "2024")
	require.NoError(t, err)
	assert.InDelta(t, 100.0, movements[0].Quantity.Float64(), 1e-9)
}

func TestDeleteByOperationRemovesAllTaggedMovements(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	a := inbound(1, "Pils", "L1", 10)
	b := inbound(1, "Vienna", "L2", 10)
	b.Reference = "OP-7"
	c := inbound(2, "Vienna", "L3", 4)
	c.Reference = "OP-7"
	require.NoError(t, svc.AddMovements(ctx, "2024", []movement.Movement{a, b, c}))

	require.NoError(t, svc.DeleteByOperation(ctx, "2024", "OP-7"))

	movements, err := svc.GetMovements(ctx, "2024")
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, "PILS", movements[0].Product)

	err = svc.DeleteByOperation(ctx, "2024", "OP-7")
	assert.True(t, apperror.IsNotFound(err))
}

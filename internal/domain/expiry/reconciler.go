// Package expiry scans supplier lots and finished beer for passed or
// approaching expiry dates. Expired raw-material lots are written off with
// a synthetic discharge movement; beer is only flagged, never auto-consumed,
// because beer corrections require a physical count.
package expiry

import (
	"context"
	"time"

	"birrificio/internal/core/types"
	"birrificio/internal/domain"
	"birrificio/internal/domain/beerstock"
	"birrificio/internal/domain/movement"
	"birrificio/internal/domain/warehouse"
	"birrificio/pkg/logger"
)

// Warning horizons, whole days.
const (
	RawHorizonDays  = 30
	BeerHorizonDays = 90
)

// LotWarning flags one raw-material lot approaching expiry.
type LotWarning struct {
	Product     string         `json:"product"`
	SupplierLot string         `json:"supplierLot"`
	Brand       string         `json:"brand"`
	Supplier    string         `json:"supplier"`
	Quantity    types.Quantity `json:"quantity"`
	Expiry      time.Time      `json:"expiry"`
	DaysLeft    int            `json:"daysLeft"`
}

// BeerWarning flags one finished-beer ledger line approaching expiry.
type BeerWarning struct {
	beerstock.StockKey
	Quantity types.Quantity `json:"quantity"`
	Expiry   time.Time      `json:"expiry"`
	DaysLeft int            `json:"daysLeft"`
}

// Result is what one reconciliation pass found.
type Result struct {
	AutoDischarged []movement.Movement         `json:"autoDischarged"`
	ExpiringSoon   []LotWarning                `json:"expiringSoon"`
	OutOfStock     []warehouse.OutOfStockEntry `json:"outOfStock"`
	ExpiringBeer   []BeerWarning               `json:"expiringBeer"`
}

// Reconciler runs the expiry scan for a year.
type Reconciler struct {
	store domain.Store
	now   func() time.Time
}

// NewReconciler creates a reconciler. now is overridable for tests.
func NewReconciler(store domain.Store) *Reconciler {
	return &Reconciler{store: store, now: time.Now}
}

// WithClock replaces the reconciler's time source.
func (r *Reconciler) WithClock(now func() time.Time) *Reconciler {
	r.now = now
	return r
}

// Reconcile scans the year's lots. It is invoked on year load and year
// switch. Note the side effect: expired lots are discharged by appending
// movements to the persisted log before the function returns, so stock
// reads later in the same session already see the write-off. Re-running
// finds no remaining stock for those lots and performs no further writes.
func (r *Reconciler) Reconcile(ctx context.Context, year string) (*Result, error) {
	result := &Result{}
	today := r.now()

	err := r.store.Mutate(ctx, year, func(d *domain.Dataset) error {
		*result = Result{}

		expiries := lotExpiries(d.Movements)

		for _, lot := range warehouse.LotBalances(d.Movements) {
			exp, ok := expiries[warehouse.LotKey{Product: lot.Product, SupplierLot: lot.SupplierLot}]
			if !ok {
				continue
			}

			days := movement.DayNumber(today, exp)
			switch {
			case days < 0:
				discharge := movement.Movement{
					Date:          today,
					Category:      categoryFor(d.Movements, lot),
					Product:       lot.Product,
					Brand:         originField(lot.Brand),
					Supplier:      originField(lot.Supplier),
					Quantity:      lot.Quantity.Neg(),
					Reference:     movement.RefAutoDischarge,
					SupplierLot:   lot.SupplierLot,
					ProductionLot: movement.NoteExpired,
				}
				d.Movements = append(d.Movements, discharge)
				result.AutoDischarged = append(result.AutoDischarged, discharge)

			case days <= RawHorizonDays:
				result.ExpiringSoon = append(result.ExpiringSoon, LotWarning{
					Product:     lot.Product,
					SupplierLot: lot.SupplierLot,
					Brand:       lot.Brand,
					Supplier:    lot.Supplier,
					Quantity:    lot.Quantity,
					Expiry:      exp,
					DaysLeft:    days,
				})
			}
		}

		result.OutOfStock = warehouse.OutOfStock(d.Movements)

		for _, item := range d.BeerLedger("").Items() {
			if item.Expiry.IsZero() {
				continue
			}
			days := movement.DayNumber(today, item.Expiry)
			if days <= BeerHorizonDays {
				result.ExpiringBeer = append(result.ExpiringBeer, BeerWarning{
					StockKey: item.StockKey,
					Quantity: item.Quantity,
					Expiry:   item.Expiry,
					DaysLeft: days,
				})
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(result.AutoDischarged) > 0 {
		logger.Info(ctx, "expired lots discharged", "count", len(result.AutoDischarged))
	}
	return result, nil
}

// lotExpiries maps each lot to its expiry date, taken from the most recent
// inbound movement declaring one (by movement date; later log entries win
// ties).
func lotExpiries(movements []movement.Movement) map[warehouse.LotKey]time.Time {
	expiries := make(map[warehouse.LotKey]time.Time)
	dates := make(map[warehouse.LotKey]time.Time)

	for _, m := range movements {
		m.Normalize()
		if !m.IsInbound() || m.Expiry == nil || m.SupplierLot == "" {
			continue
		}
		key := warehouse.LotKey{Product: m.Product, SupplierLot: m.SupplierLot}
		if prev, ok := dates[key]; ok && m.Date.Before(prev) {
			continue
		}
		dates[key] = m.Date
		expiries[key] = *m.Expiry
	}
	return expiries
}

// originField maps the lot table's N/D display fallback back to the empty
// string, so a discharge aggregates under the same product-level key as
// the brand-less inbound it offsets.
func originField(v string) string {
	if v == warehouse.UnknownOrigin {
		return ""
	}
	return v
}

// categoryFor finds the category of a lot's product from its movements, so
// the synthetic discharge aggregates into the same stock line.
func categoryFor(movements []movement.Movement, lot warehouse.LotBalance) movement.Category {
	for _, m := range movements {
		m.Normalize()
		if m.Product == lot.Product && m.SupplierLot == lot.SupplierLot {
			return m.Category
		}
	}
	return movement.CategoryAdditivi
}

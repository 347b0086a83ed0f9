// Package sales handles finished-beer operations: sales orders against the
// derived beer ledger and the monthly physical inventory check.
package sales

import (
	"context"
	"time"

	"birrificio/internal/core/apperror"
	"birrificio/internal/core/id"
	"birrificio/internal/core/types"
	"birrificio/internal/domain"
	"birrificio/internal/domain/beerstock"
	"birrificio/internal/domain/formats"
	"birrificio/internal/domain/movement"
	"birrificio/pkg/logger"
)

// Service provides finished-beer operations.
type Service struct {
	store domain.Store
	now   func() time.Time
}

// NewService creates a new sales service.
func NewService(store domain.Store) *Service {
	return &Service{store: store, now: time.Now}
}

// WithClock replaces the service's time source (tests).
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// GetStock recomputes the finished-beer ledger, optionally for one client.
func (s *Service) GetStock(ctx context.Context, year, client string) ([]beerstock.StockItem, error) {
	d, err := s.store.Get(ctx, year)
	if err != nil {
		return nil, err
	}
	return d.BeerLedger(client).Items(), nil
}

// SaveOrder validates and records a sales order. Each line draws down the
// brewery's own (ALVERESE) stock with a SALE movement and credits the
// destination client's virtual stock with a matching PURCHASE movement,
// modeling consignment without a second physical warehouse. All lines are
// checked against current availability before any write. Returns the
// order id, generated when the request carries none.
func (s *Service) SaveOrder(ctx context.Context, year string, order beerstock.SalesOrder) (string, error) {
	order.Client = movement.NormalizeKey(order.Client)
	if order.Client == "" {
		return "", apperror.NewValidation("order client is required").WithDetail("field", "client")
	}
	if order.Client == beerstock.OwnClient {
		return "", apperror.NewValidation("orders cannot target the brewery's own stock").WithDetail("client", order.Client)
	}
	if len(order.Items) == 0 {
		return "", apperror.NewValidation("at least one order line is required").WithDetail("field", "items")
	}
	for _, item := range order.Items {
		if !item.Quantity.IsPositive() {
			return "", apperror.NewValidation("order quantity must be positive").WithDetail("beer", item.Beer)
		}
	}
	if order.ID == "" {
		order.ID = id.NewString()
	}
	if order.Date.IsZero() {
		order.Date = s.now()
	}

	err := s.store.Mutate(ctx, year, func(d *domain.Dataset) error {
		ledger := d.BeerLedger(beerstock.OwnClient)

		// Aggregate requested draws per key first: two lines against the
		// same lot must not overshoot it together.
		requested := make(map[beerstock.StockKey]types.Quantity)
		for _, item := range order.Items {
			key := beerstock.StockKey{
				Client: beerstock.OwnClient,
				Beer:   movement.NormalizeKey(item.Beer),
				Lot:    movement.NormalizeKey(item.Lot),
				Format: movement.NormalizeKey(item.Format),
			}
			requested[key] += item.Quantity
		}
		for key, qty := range requested {
			if available := ledger.Available(key); qty > available {
				return apperror.NewInsufficientStock(key.Beer, key.Lot, qty.Float64(), available.Float64())
			}
		}

		for _, item := range order.Items {
			beer := movement.NormalizeKey(item.Beer)
			lot := movement.NormalizeKey(item.Lot)
			format := movement.NormalizeKey(item.Format)

			d.BeerMovements = append(d.BeerMovements,
				beerstock.BeerMovement{
					StockKey:   beerstock.StockKey{Client: beerstock.OwnClient, Beer: beer, Lot: lot, Format: format},
					Date:       order.Date,
					Type:       beerstock.TypeSale,
					Quantity:   item.Quantity.Neg(),
					RelatedDoc: order.ID,
				},
				beerstock.BeerMovement{
					StockKey:   beerstock.StockKey{Client: order.Client, Beer: beer, Lot: lot, Format: format},
					Date:       order.Date,
					Type:       beerstock.TypePurchase,
					Quantity:   item.Quantity,
					RelatedDoc: order.ID,
				},
			)
		}

		d.SalesOrders = append(d.SalesOrders, order)
		return nil
	})
	if err != nil {
		return "", err
	}

	logger.Info(ctx, "sales order saved", "order", order.ID, "client", order.Client, "lines", len(order.Items))
	return order.ID, nil
}

// PhysicalCount is one counted line of a monthly inventory check. For
// bottle formats the count is expressed in cartons and converted through
// the format table; for every other format it is pieces.
type PhysicalCount struct {
	beerstock.StockKey
	Count float64 `json:"count"`
}

// ReconcileCount runs the monthly beer inventory check. The check id is
// derived from year and month, and re-running a month first purges the
// prior check record and its ADJUSTMENT movements, making the check
// idempotent rather than additive. A check item is recorded for every
// counted line; an adjustment movement is emitted only where the physical
// count differs from the calculated stock.
func (s *Service) ReconcileCount(ctx context.Context, year string, counts []PhysicalCount) (*beerstock.InventoryCheck, error) {
	if len(counts) == 0 {
		return nil, apperror.NewValidation("at least one counted line is required")
	}

	now := s.now()
	checkID := beerstock.CheckID(year, now.Month())
	check := &beerstock.InventoryCheck{ID: checkID, Date: now}

	err := s.store.Mutate(ctx, year, func(d *domain.Dataset) error {
		check.Items = nil

		// Purge the prior run of this month's check.
		movements := d.BeerMovements[:0]
		for _, m := range d.BeerMovements {
			if m.Type == beerstock.TypeAdjustment && m.RelatedDoc == checkID {
				continue
			}
			movements = append(movements, m)
		}
		d.BeerMovements = movements

		checks := d.InventoryChecks[:0]
		for _, c := range d.InventoryChecks {
			if c.ID == checkID {
				continue
			}
			checks = append(checks, c)
		}
		d.InventoryChecks = checks

		ledger := d.BeerLedger("")

		for _, count := range counts {
			key := beerstock.StockKey{
				Client: movement.NormalizeKey(count.Client),
				Beer:   movement.NormalizeKey(count.Beer),
				Lot:    movement.NormalizeKey(count.Lot),
				Format: movement.NormalizeKey(count.Format),
			}

			physical := types.NewQuantityFromFloat64(count.Count)
			if f, err := formats.Get(key.Format); err == nil && f.IsBottle() && f.UnitsPerCarton > 0 {
				physical = types.NewQuantityFromFloat64(count.Count * float64(f.UnitsPerCarton))
			}

			calculated := ledger.Available(key)
			item := beerstock.CheckItem{
				StockKey:    key,
				Calculated:  calculated,
				Physical:    physical,
				Discrepancy: physical - calculated,
			}
			check.Items = append(check.Items, item)

			if !item.Discrepancy.IsZero() {
				d.BeerMovements = append(d.BeerMovements, beerstock.BeerMovement{
					StockKey:   key,
					Date:       now,
					Type:       beerstock.TypeAdjustment,
					Quantity:   item.Discrepancy,
					RelatedDoc: checkID,
				})
			}
		}

		d.InventoryChecks = append(d.InventoryChecks, *check)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "inventory check recorded", "check", checkID, "lines", len(check.Items))
	return check, nil
}

// SetInitialStock replaces the year's opening finished-beer snapshot.
// Normally written once, by hand or by the year carry-forward.
func (s *Service) SetInitialStock(ctx context.Context, year string, items []beerstock.InitialStock) error {
	for _, item := range items {
		if item.Quantity.IsNegative() {
			return apperror.NewValidation("initial stock cannot be negative").WithDetail("beer", item.Beer)
		}
	}
	return s.store.Mutate(ctx, year, func(d *domain.Dataset) error {
		d.InitialBeer = items
		return nil
	})
}

// GetOrders returns the year's sales orders.
func (s *Service) GetOrders(ctx context.Context, year string) ([]beerstock.SalesOrder, error) {
	d, err := s.store.Get(ctx, year)
	if err != nil {
		return nil, err
	}
	return d.SalesOrders, nil
}

// GetChecks returns the year's inventory check records.
func (s *Service) GetChecks(ctx context.Context, year string) ([]beerstock.InventoryCheck, error) {
	d, err := s.store.Get(ctx, year)
	if err != nil {
		return nil, err
	}
	return d.InventoryChecks, nil
}

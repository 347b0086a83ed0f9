package warehouse

import (
	"context"

	"birrificio/internal/core/apperror"
	"birrificio/internal/domain"
	"birrificio/internal/domain/movement"
	"birrificio/internal/domain/pricing"
	"birrificio/pkg/logger"
)

// Service exposes the raw-material ledger commands. Every mutation is one
// full read-modify-write of the year's dataset; validation happens before
// any write, so a rejected command leaves the stored document untouched.
type Service struct {
	store domain.Store
}

// NewService creates a new warehouse service.
func NewService(store domain.Store) *Service {
	return &Service{store: store}
}

// AddMovements appends one or more movements to the year's log. All
// outbound entries are stock-checked together against current lot balances
// before anything is written; inbound entries update the price catalog.
func (s *Service) AddMovements(ctx context.Context, year string, movements []movement.Movement) error {
	if len(movements) == 0 {
		return apperror.NewValidation("at least one movement is required")
	}

	for i := range movements {
		movements[i].Normalize()
		if err := movements[i].Validate(); err != nil {
			return err
		}
	}

	err := s.store.Mutate(ctx, year, func(d *domain.Dataset) error {
		var requests []Consumption
		for _, m := range movements {
			if m.IsOutbound() && m.SupplierLot != "" {
				requests = append(requests, Consumption{
					Product:     m.Product,
					SupplierLot: m.SupplierLot,
					Quantity:    m.Quantity.Abs(),
				})
			}
		}
		if err := CheckConsumptions(d.Movements, requests); err != nil {
			return err
		}

		d.Movements = append(d.Movements, movements...)
		d.PriceCatalog = pricing.ApplyAll(d.PriceCatalog, movements)
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "movements recorded", "count", len(movements))
	return nil
}

// UpdateMovement replaces the movement at the given log position. The
// edited log must keep the affected lot balances non-negative.
func (s *Service) UpdateMovement(ctx context.Context, year string, index int, m movement.Movement) error {
	m.Normalize()
	if err := m.Validate(); err != nil {
		return err
	}

	return s.store.Mutate(ctx, year, func(d *domain.Dataset) error {
		if index < 0 || index >= len(d.Movements) {
			return apperror.NewNotFound("movement", index)
		}

		prior := d.Movements[index]
		d.Movements[index] = m

		for _, key := range []LotKey{
			{Product: prior.Product, SupplierLot: prior.SupplierLot},
			{Product: m.Product, SupplierLot: m.SupplierLot},
		} {
			if key.SupplierLot == "" {
				continue
			}
			if balance := LotBalanceFor(d.Movements, key.Product, key.SupplierLot); balance.IsNegative() {
				return apperror.NewInsufficientStock(key.Product, key.SupplierLot, 0, balance.Float64())
			}
		}

		d.PriceCatalog = pricing.Apply(d.PriceCatalog, m)
		return nil
	})
}

// DeleteMovement removes the movement at the given log position.
func (s *Service) DeleteMovement(ctx context.Context, year string, index int) error {
	return s.store.Mutate(ctx, year, func(d *domain.Dataset) error {
		if index < 0 || index >= len(d.Movements) {
			return apperror.NewNotFound("movement", index)
		}
		d.Movements = append(d.Movements[:index], d.Movements[index+1:]...)
		return nil
	})
}

// DeleteByOperation removes every movement sharing an operation reference.
// Used to undo multi-movement operations (packaging saves, batch saves).
func (s *Service) DeleteByOperation(ctx context.Context, year, reference string) error {
	if reference == "" {
		return apperror.NewValidation("operation reference is required")
	}

	return s.store.Mutate(ctx, year, func(d *domain.Dataset) error {
		kept := d.Movements[:0]
		removed := 0
		for _, m := range d.Movements {
			if m.Reference == reference {
				removed++
				continue
			}
			kept = append(kept, m)
		}
		if removed == 0 {
			return apperror.NewNotFound("operation", reference)
		}
		d.Movements = kept
		logger.Info(ctx, "operation movements deleted", "reference", reference, "count", removed)
		return nil
	})
}

// DeleteProduct removes every movement of one product line. Refused when
// the line still holds stock, to prevent silently losing quantity.
func (s *Service) DeleteProduct(ctx context.Context, year string, key ProductKey) error {
	key.Product = movement.NormalizeKey(key.Product)
	key.Brand = movement.NormalizeKey(key.Brand)
	key.Supplier = movement.NormalizeKey(key.Supplier)
	key.Category = movement.Category(movement.NormalizeKey(string(key.Category)))

	return s.store.Mutate(ctx, year, func(d *domain.Dataset) error {
		proj := Project(d.Movements)
		if qty, ok := proj.Stock[key]; ok {
			return apperror.NewStockNotEmpty(key.Product, qty.Float64())
		}

		kept := d.Movements[:0]
		removed := 0
		for _, m := range d.Movements {
			m.Normalize()
			if m.Category == key.Category && m.Product == key.Product && m.Brand == key.Brand && m.Supplier == key.Supplier {
				removed++
				continue
			}
			kept = append(kept, m)
		}
		if removed == 0 {
			return apperror.NewNotFound("product", key.Product)
		}
		d.Movements = kept
		return nil
	})
}

// SetPrice records a manual price-catalog edit.
func (s *Service) SetPrice(ctx context.Context, year string, entry pricing.Entry) error {
	return s.store.Mutate(ctx, year, func(d *domain.Dataset) error {
		catalog, err := pricing.Upsert(d.PriceCatalog, entry)
		if err != nil {
			return err
		}
		d.PriceCatalog = catalog
		return nil
	})
}

// GetStock recomputes and returns the product-level stock table.
func (s *Service) GetStock(ctx context.Context, year string) ([]StockEntry, error) {
	d, err := s.store.Get(ctx, year)
	if err != nil {
		return nil, err
	}
	return Project(d.Movements).Entries(), nil
}

// GetLots recomputes and returns the available supplier lots.
func (s *Service) GetLots(ctx context.Context, year string) ([]LotBalance, error) {
	d, err := s.store.Get(ctx, year)
	if err != nil {
		return nil, err
	}
	return LotBalances(d.Movements), nil
}

// GetMovements returns the raw movement log.
func (s *Service) GetMovements(ctx context.Context, year string) ([]movement.Movement, error) {
	d, err := s.store.Get(ctx, year)
	if err != nil {
		return nil, err
	}
	return d.Movements, nil
}

// GetPriceCatalog returns the current price catalog.
func (s *Service) GetPriceCatalog(ctx context.Context, year string) ([]pricing.Entry, error) {
	d, err := s.store.Get(ctx, year)
	if err != nil {
		return nil, err
	}
	return d.PriceCatalog, nil
}

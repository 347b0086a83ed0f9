// Package year manages the dataset lifecycle: creating a fiscal year with
// optional carry-forward from its predecessor, listing stored years, and
// the factory reset.
package year

import (
	"context"
	"time"

	"birrificio/internal/core/apperror"
	"birrificio/internal/domain"
	"birrificio/internal/domain/beerstock"
	"birrificio/internal/domain/movement"
	"birrificio/internal/domain/warehouse"
	"birrificio/pkg/logger"
)

// Service provides year lifecycle operations.
type Service struct {
	store domain.Store
}

// NewService creates a new year service.
func NewService(store domain.Store) *Service {
	return &Service{store: store}
}

// Create makes a new year dataset. Returns false without error when the
// year already exists; an existing year is never overwritten. When
// importFrom names a source year, unconsumed warehouse stock is re-emitted
// as Jan-1 opening movements, positive finished-beer stock becomes the new
// year's initial snapshot, and master data carries over verbatim. Quotes
// stay with their year.
func (s *Service) Create(ctx context.Context, newYear, importFrom string) (bool, error) {
	if err := domain.ValidateYearKey(newYear); err != nil {
		return false, err
	}

	exists, err := s.store.Exists(ctx, newYear)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	d := domain.NewDataset()

	if importFrom != "" {
		if err := domain.ValidateYearKey(importFrom); err != nil {
			return false, err
		}
		source, err := s.store.Get(ctx, importFrom)
		if err != nil {
			return false, err
		}
		seedFrom(d, source, newYear)
	}

	if err := s.store.Put(ctx, newYear, d); err != nil {
		return false, err
	}

	logger.Info(ctx, "year created", "year", newYear, "importedFrom", importFrom)
	return true, nil
}

// seedFrom fills a fresh dataset with the source year's closing balances
// and master data.
func seedFrom(d, source *domain.Dataset, newYear string) {
	opening := openingDate(newYear)

	// Remaining warehouse stock becomes opening inbound movements. This is
	// the only way a year starts with non-zero raw-material stock.
	for _, entry := range warehouse.Project(source.Movements).Entries() {
		if !entry.Quantity.IsPositive() {
			continue
		}
		d.Movements = append(d.Movements, movement.Movement{
			Date:      opening,
			Category:  entry.Category,
			Product:   entry.Product,
			Brand:     entry.Brand,
			Supplier:  entry.Supplier,
			Quantity:  entry.Quantity,
			Reference: movement.RefCarryForward,
		})
	}

	// Remaining finished beer becomes the new year's initial snapshot, not
	// movements: the beer ledger seeds keys from initial stock.
	for _, item := range source.BeerLedger("").Items() {
		if !item.Quantity.IsPositive() {
			continue
		}
		d.InitialBeer = append(d.InitialBeer, beerstock.InitialStock{
			StockKey: item.StockKey,
			Quantity: item.Quantity,
			Expiry:   item.Expiry,
		})
	}

	d.Clients = append(d.Clients, source.Clients...)
	d.Beers = append(d.Beers, source.Beers...)
	d.Fermenters = append(d.Fermenters, source.Fermenters...)
	d.PriceCatalog = append(d.PriceCatalog, source.PriceCatalog...)
	d.Coefficients = source.Coefficients
}

// openingDate is Jan 1 of the given 4-digit year.
func openingDate(year string) time.Time {
	t, err := time.ParseInLocation("2006", year, time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}

// List returns the stored year keys, ascending.
func (s *Service) List(ctx context.Context) ([]string, error) {
	return s.store.ListYears(ctx)
}

// Get loads one year's full dataset.
func (s *Service) Get(ctx context.Context, year string) (*domain.Dataset, error) {
	if err := domain.ValidateYearKey(year); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, year)
}

// Reset wipes the entire store. Confirmation belongs to the caller; here
// the only guard is that the operation is all-or-nothing.
func (s *Service) Reset(ctx context.Context) error {
	if err := s.store.ClearAll(ctx); err != nil {
		return apperror.NewInternal(err)
	}
	logger.Warn(ctx, "factory reset performed")
	return nil
}

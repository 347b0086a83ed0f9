// Package domain defines the year-scoped dataset: the unit of persistence
// every component reads and writes, plus the store contract around it.
package domain

import (
	"context"
	"regexp"

	"birrificio/internal/core/apperror"
	"birrificio/internal/domain/batch"
	"birrificio/internal/domain/beerstock"
	"birrificio/internal/domain/costing"
	"birrificio/internal/domain/masterdata"
	"birrificio/internal/domain/movement"
	"birrificio/internal/domain/pricing"
)

// YearPattern validates a store key: a 4-digit year string.
var YearPattern = regexp.MustCompile(`^\d{4}$`)

// Dataset is the aggregate root for one fiscal year. Every mutation reads
// the whole document, changes one or more collections and writes the whole
// document back; there is no finer-grained transaction.
type Dataset struct {
	Movements       []movement.Movement         `json:"movements"`
	Batches         []batch.Batch               `json:"batches"`
	Packagings      []batch.PackagingEvent      `json:"packagings"`
	Fermentations   []batch.FermentationReading `json:"fermentations"`
	InitialBeer     []beerstock.InitialStock    `json:"initialBeerStock"`
	BeerMovements   []beerstock.BeerMovement    `json:"beerMovements"`
	InventoryChecks []beerstock.InventoryCheck  `json:"inventoryChecks"`
	SalesOrders     []beerstock.SalesOrder      `json:"salesOrders"`
	Clients         []masterdata.Client         `json:"clients"`
	Beers           []masterdata.Beer           `json:"beers"`
	Fermenters      []masterdata.Fermenter      `json:"fermenters"`
	PriceCatalog    []pricing.Entry             `json:"priceCatalog"`
	Coefficients    costing.Coefficients        `json:"coefficients"`
	Quotes          []costing.Quote             `json:"quotes"`
}

// NewDataset returns an empty dataset with all collections allocated.
func NewDataset() *Dataset {
	d := &Dataset{}
	d.FillDefaults()
	return d
}

// FillDefaults replaces nil collections with empty ones. This is the only
// schema migration the store performs on read.
func (d *Dataset) FillDefaults() {
	if d.Movements == nil {
		d.Movements = []movement.Movement{}
	}
	if d.Batches == nil {
		d.Batches = []batch.Batch{}
	}
	if d.Packagings == nil {
		d.Packagings = []batch.PackagingEvent{}
	}
	if d.Fermentations == nil {
		d.Fermentations = []batch.FermentationReading{}
	}
	if d.InitialBeer == nil {
		d.InitialBeer = []beerstock.InitialStock{}
	}
	if d.BeerMovements == nil {
		d.BeerMovements = []beerstock.BeerMovement{}
	}
	if d.InventoryChecks == nil {
		d.InventoryChecks = []beerstock.InventoryCheck{}
	}
	if d.SalesOrders == nil {
		d.SalesOrders = []beerstock.SalesOrder{}
	}
	if d.Clients == nil {
		d.Clients = []masterdata.Client{}
	}
	if d.Beers == nil {
		d.Beers = []masterdata.Beer{}
	}
	if d.Fermenters == nil {
		d.Fermenters = []masterdata.Fermenter{}
	}
	if d.PriceCatalog == nil {
		d.PriceCatalog = []pricing.Entry{}
	}
	if d.Quotes == nil {
		d.Quotes = []costing.Quote{}
	}
}

// BeerLedger folds the dataset's finished-beer sources into the current
// stock table, optionally restricted to one client.
func (d *Dataset) BeerLedger(filterClient string) beerstock.Ledger {
	return beerstock.ProjectStock(d.InitialBeer, d.Packagings, d.Batches, d.BeerMovements, filterClient)
}

// ValidateYearKey checks a store key against the 4-digit year pattern.
func ValidateYearKey(year string) error {
	if !YearPattern.MatchString(year) {
		return apperror.NewValidation("year must be a 4-digit string").WithDetail("year", year)
	}
	return nil
}

// Store is the persistence boundary. Keys are 4-digit year strings, values
// are whole Dataset documents. Writes are atomic by replacement at the
// granularity of one year.
type Store interface {
	// Get loads a year's dataset, filling missing collections with empty
	// defaults. Returns a NOT_FOUND AppError when the year is absent.
	Get(ctx context.Context, year string) (*Dataset, error)

	// Put replaces a year's dataset in one atomic write.
	Put(ctx context.Context, year string, d *Dataset) error

	// Exists reports whether a year is present.
	Exists(ctx context.Context, year string) (bool, error)

	// ListYears returns all stored year keys, sorted ascending.
	ListYears(ctx context.Context) ([]string, error)

	// ClearAll wipes the entire store in one atomic operation.
	ClearAll(ctx context.Context) error

	// Mutate runs a read-modify-write cycle for one year under the store's
	// per-year lock. If fn returns an error nothing is written.
	Mutate(ctx context.Context, year string, fn func(*Dataset) error) error
}

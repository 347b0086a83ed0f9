// Package pricing maintains the last-known unit price per product.
package pricing

import (
	"time"

	"birrificio/internal/core/apperror"
	"birrificio/internal/core/types"
	"birrificio/internal/domain/movement"
)

// Entry is the catalog record for one (product, brand, supplier) key.
// At most one entry exists per key; last-write-wins by load date.
type Entry struct {
	Product   string      `json:"product"`
	Brand     string      `json:"brand"`
	Supplier  string      `json:"supplier"`
	UnitPrice types.Money `json:"unitPrice"`
	LastLoad  time.Time   `json:"lastLoad"`
}

func (e *Entry) normalize() {
	e.Product = movement.NormalizeKey(e.Product)
	e.Brand = movement.NormalizeKey(e.Brand)
	e.Supplier = movement.NormalizeKey(e.Supplier)
}

// Apply folds one movement into the catalog. Only inbound movements that
// carry a unit price touch it; the winner per key is the movement with the
// latest date, regardless of log position. Ties go to the later write.
func Apply(catalog []Entry, m movement.Movement) []Entry {
	if !m.IsInbound() || m.UnitPrice == nil {
		return catalog
	}
	m.Normalize()

	for i := range catalog {
		if catalog[i].Product == m.Product && catalog[i].Brand == m.Brand && catalog[i].Supplier == m.Supplier {
			if m.Date.Before(catalog[i].LastLoad) {
				return catalog
			}
			catalog[i].UnitPrice = *m.UnitPrice
			catalog[i].LastLoad = m.Date
			return catalog
		}
	}

	return append(catalog, Entry{
		Product:   m.Product,
		Brand:     m.Brand,
		Supplier:  m.Supplier,
		UnitPrice: *m.UnitPrice,
		LastLoad:  m.Date,
	})
}

// ApplyAll folds a batch of movements into the catalog.
func ApplyAll(catalog []Entry, movements []movement.Movement) []Entry {
	for _, m := range movements {
		catalog = Apply(catalog, m)
	}
	return catalog
}

// Upsert records a manual price edit, replacing any prior entry for the key.
func Upsert(catalog []Entry, entry Entry) ([]Entry, error) {
	entry.normalize()
	if entry.Product == "" {
		return catalog, apperror.NewValidation("product name is required").WithDetail("field", "product")
	}
	if entry.UnitPrice.IsNegative() {
		return catalog, apperror.NewValidation("unit price must not be negative").WithDetail("field", "unitPrice")
	}
	if entry.LastLoad.IsZero() {
		entry.LastLoad = time.Now()
	}

	for i := range catalog {
		if catalog[i].Product == entry.Product && catalog[i].Brand == entry.Brand && catalog[i].Supplier == entry.Supplier {
			catalog[i] = entry
			return catalog, nil
		}
	}
	return append(catalog, entry), nil
}

// Lookup returns the catalog entry for a key, if present.
func Lookup(catalog []Entry, product, brand, supplier string) (Entry, bool) {
	product = movement.NormalizeKey(product)
	brand = movement.NormalizeKey(brand)
	supplier = movement.NormalizeKey(supplier)

	for _, e := range catalog {
		if e.Product == product && e.Brand == brand && e.Supplier == supplier {
			return e, true
		}
	}
	return Entry{}, false
}

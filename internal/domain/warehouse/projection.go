// Package warehouse derives stock-on-hand from the raw-material movement
// log. Projections are pure folds: deterministic for a given log, no side
// effects, recomputed on every read.
package warehouse

import (
	"sort"

	"birrificio/internal/core/apperror"
	"birrificio/internal/core/types"
	"birrificio/internal/domain/movement"
)

// UnknownOrigin is reported for lots whose brand/supplier was never seen on
// a positive movement (e.g. a lot that only ever had synthetic discharges).
const UnknownOrigin = "N/D"

// ProductKey identifies a product-level stock aggregate.
type ProductKey struct {
	Category movement.Category `json:"category"`
	Product  string            `json:"product"`
	Brand    string            `json:"brand"`
	Supplier string            `json:"supplier"`
}

// ProductIdentity is the catalog identity of a product: name plus brand.
type ProductIdentity struct {
	Product string `json:"product"`
	Brand   string `json:"brand"`
}

// CatalogEntry is the canonical descriptor of a known product, taken from
// its first-seen inbound movement. It feeds the "select existing product"
// pickers.
type CatalogEntry struct {
	Category movement.Category `json:"category"`
	Supplier string            `json:"supplier"`
}

// StockEntry is one line of the product-level stock table.
type StockEntry struct {
	ProductKey
	Quantity types.Quantity `json:"quantity"`
}

// LotKey identifies a supplier-lot aggregate.
type LotKey struct {
	Product     string `json:"product"`
	SupplierLot string `json:"supplierLot"`
}

// LotBalance is the remaining stock of one supplier lot, together with the
// brand/supplier captured from the lot's first positive movement.
type LotBalance struct {
	LotKey
	Brand    string         `json:"brand"`
	Supplier string         `json:"supplier"`
	Quantity types.Quantity `json:"quantity"`
}

// Projection is the result of folding the movement log.
type Projection struct {
	// Stock holds the summed signed quantity per product key.
	// Entries with |sum| <= 0.01 are dropped (fully consumed / noise).
	Stock map[ProductKey]types.Quantity

	// Catalog records the first-seen inbound descriptor per product identity.
	Catalog map[ProductIdentity]CatalogEntry
}

// Project folds the movement log into the product-level stock table and the
// known-product catalog.
func Project(movements []movement.Movement) Projection {
	stock := make(map[ProductKey]types.Quantity)
	catalog := make(map[ProductIdentity]CatalogEntry)

	for _, m := range movements {
		m.Normalize()

		key := ProductKey{
			Category: m.Category,
			Product:  m.Product,
			Brand:    m.Brand,
			Supplier: m.Supplier,
		}
		stock[key] += m.Quantity

		if m.IsInbound() {
			identity := ProductIdentity{Product: m.Product, Brand: m.Brand}
			if _, seen := catalog[identity]; !seen {
				catalog[identity] = CatalogEntry{Category: m.Category, Supplier: m.Supplier}
			}
		}
	}

	for key, qty := range stock {
		if qty.Abs() <= types.StockEpsilon {
			delete(stock, key)
		}
	}

	return Projection{Stock: stock, Catalog: catalog}
}

// Entries returns the stock table as a sorted slice, suitable for rendering
// and spreadsheet export.
func (p Projection) Entries() []StockEntry {
	entries := make([]StockEntry, 0, len(p.Stock))
	for key, qty := range p.Stock {
		entries = append(entries, StockEntry{ProductKey: key, Quantity: qty})
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		if a.Product != b.Product {
			return a.Product < b.Product
		}
		if a.Brand != b.Brand {
			return a.Brand < b.Brand
		}
		return a.Supplier < b.Supplier
	})
	return entries
}

// LotBalances groups the log by (product, supplier lot) and returns lots
// with remaining stock >= 0.01 as the available-lot table.
func LotBalances(movements []movement.Movement) []LotBalance {
	sums := make(map[LotKey]types.Quantity)
	origins := make(map[LotKey][2]string)
	order := make([]LotKey, 0)

	for _, m := range movements {
		m.Normalize()
		if m.SupplierLot == "" {
			continue
		}

		key := LotKey{Product: m.Product, SupplierLot: m.SupplierLot}
		if _, seen := sums[key]; !seen {
			order = append(order, key)
		}
		sums[key] += m.Quantity

		if m.IsInbound() {
			if _, seen := origins[key]; !seen {
				origins[key] = [2]string{m.Brand, m.Supplier}
			}
		}
	}

	balances := make([]LotBalance, 0, len(order))
	for _, key := range order {
		qty := sums[key]
		if qty < types.StockEpsilon {
			continue
		}
		brand, supplier := UnknownOrigin, UnknownOrigin
		if origin, ok := origins[key]; ok {
			if origin[0] != "" {
				brand = origin[0]
			}
			if origin[1] != "" {
				supplier = origin[1]
			}
		}
		balances = append(balances, LotBalance{
			LotKey:   key,
			Brand:    brand,
			Supplier: supplier,
			Quantity: qty,
		})
	}
	return balances
}

// LotBalanceFor returns the remaining stock of a single supplier lot.
func LotBalanceFor(movements []movement.Movement, product, supplierLot string) types.Quantity {
	product = movement.NormalizeKey(product)
	var sum types.Quantity
	for _, m := range movements {
		m.Normalize()
		if m.Product == product && m.SupplierLot == supplierLot {
			sum += m.Quantity
		}
	}
	return sum
}

// OutOfStockEntry describes a product whose aggregate dropped to zero but
// which still has historical movements. These are candidates for manual
// removal, never deleted silently.
type OutOfStockEntry struct {
	ProductKey
}

// OutOfStock lists product keys with at least one historical movement whose
// aggregate is at or below the consumed threshold.
func OutOfStock(movements []movement.Movement) []OutOfStockEntry {
	sums := make(map[ProductKey]types.Quantity)
	order := make([]ProductKey, 0)

	for _, m := range movements {
		m.Normalize()
		key := ProductKey{Category: m.Category, Product: m.Product, Brand: m.Brand, Supplier: m.Supplier}
		if _, seen := sums[key]; !seen {
			order = append(order, key)
		}
		sums[key] += m.Quantity
	}

	out := make([]OutOfStockEntry, 0)
	for _, key := range order {
		if sums[key].Abs() <= types.StockEpsilon {
			out = append(out, OutOfStockEntry{ProductKey: key})
		}
	}
	return out
}

// Consumption is one stock-sufficiency request: consume Quantity (positive)
// of Product from SupplierLot.
type Consumption struct {
	Product     string
	SupplierLot string
	Quantity    types.Quantity
}

// CheckConsumptions validates a set of requested consumptions against the
// current lot balances. All requests are checked together so that several
// draws from the same lot within one operation cannot overshoot it.
// Returns the first shortage found; no mutation happens here.
func CheckConsumptions(movements []movement.Movement, requests []Consumption) error {
	pending := make(map[LotKey]types.Quantity)
	for _, r := range requests {
		key := LotKey{Product: movement.NormalizeKey(r.Product), SupplierLot: r.SupplierLot}
		pending[key] += r.Quantity
	}

	for _, r := range requests {
		key := LotKey{Product: movement.NormalizeKey(r.Product), SupplierLot: r.SupplierLot}
		requested, ok := pending[key]
		if !ok {
			continue // already reported or checked
		}
		delete(pending, key)

		available := LotBalanceFor(movements, key.Product, key.SupplierLot)
		if requested > available {
			return apperror.NewInsufficientStock(key.Product, key.SupplierLot, requested.Float64(), available.Float64())
		}
	}
	return nil
}

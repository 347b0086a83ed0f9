package beerstock

import (
	"sort"

	"birrificio/internal/core/types"
	"birrificio/internal/domain/batch"
	"birrificio/internal/domain/movement"
)

// Ledger is the derived finished-beer stock map.
type Ledger map[StockKey]StockItem

// ProjectStock folds the three finished-beer sources into the current
// stock table, in this order:
//
//  1. initial snapshots seed the map;
//  2. packaging completions add to or create entries, resolving client and
//     beer through the production-lot -> batch header lookup and adopting
//     the packaging event's expiry;
//  3. beer movements add their signed quantity to EXISTING entries only.
//     A movement referencing a key never seeded by the first two sources is
//     dropped. This mirrors the behavior of the system of record and is a
//     documented open question, not an accident.
//
// filterClient restricts the output to one client's stock when non-empty.
func ProjectStock(
	initial []InitialStock,
	packagings []batch.PackagingEvent,
	batches []batch.Batch,
	movements []BeerMovement,
	filterClient string,
) Ledger {
	ledger := make(Ledger)

	for _, s := range initial {
		key := s.StockKey.normalize()
		item := ledger[key]
		item.StockKey = key
		item.Quantity += s.Quantity
		if item.Expiry.IsZero() {
			item.Expiry = s.Expiry
		}
		ledger[key] = item
	}

	for _, p := range packagings {
		header, ok := batch.FindBatch(batches, p.ProductionLot)
		if !ok {
			continue // packaging for an unknown lot cannot be attributed
		}
		key := StockKey{
			Client: OwnClient,
			Beer:   header.Beer,
			Lot:    movement.NormalizeKey(p.ProductionLot),
			Format: movement.NormalizeKey(p.Format),
		}
		if header.Client != "" {
			key.Client = header.Client
		}
		item := ledger[key]
		item.StockKey = key
		item.Quantity += types.NewQuantityFromInt(p.Units)
		item.Expiry = p.Expiry
		ledger[key] = item
	}

	for _, m := range movements {
		key := m.StockKey.normalize()
		item, exists := ledger[key]
		if !exists {
			continue // see function comment: unseeded keys are skipped
		}
		item.Quantity += m.Quantity
		ledger[key] = item
	}

	if filterClient != "" {
		want := movement.NormalizeKey(filterClient)
		for key := range ledger {
			if key.Client != want {
				delete(ledger, key)
			}
		}
	}

	for key, item := range ledger {
		if item.Quantity <= types.BeerEpsilon {
			delete(ledger, key)
		}
	}

	return ledger
}

// Items returns the ledger as a sorted slice for rendering and export.
func (l Ledger) Items() []StockItem {
	items := make([]StockItem, 0, len(l))
	for _, item := range l {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Client != b.Client {
			return a.Client < b.Client
		}
		if a.Beer != b.Beer {
			return a.Beer < b.Beer
		}
		if a.Lot != b.Lot {
			return a.Lot < b.Lot
		}
		return a.Format < b.Format
	})
	return items
}

// Available returns the current quantity for one key, zero if absent.
func (l Ledger) Available(key StockKey) types.Quantity {
	if item, ok := l[key.normalize()]; ok {
		return item.Quantity
	}
	return 0
}

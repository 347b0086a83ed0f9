// Package catalog provides upsert/delete of named records in the year's
// master-data collections, each addressed by its declared unique key.
package catalog

import (
	"context"
	"encoding/json"

	"birrificio/internal/core/apperror"
	"birrificio/internal/domain"
	"birrificio/internal/domain/costing"
	"birrificio/internal/domain/masterdata"
	"birrificio/internal/domain/movement"
)

// Collection names accepted by the generic commands.
const (
	CollectionClients    = "clients"
	CollectionBeers      = "beers"
	CollectionFermenters = "fermenters"
	CollectionQuotes     = "quotes"
)

// Service mutates master-data collections.
type Service struct {
	store domain.Store
}

// NewService creates a new catalog service.
func NewService(store domain.Store) *Service {
	return &Service{store: store}
}

// upsertByKey replaces the item whose key matches, or appends.
func upsertByKey[T any](items []T, item T, key func(T) string) []T {
	k := key(item)
	for i := range items {
		if key(items[i]) == k {
			items[i] = item
			return items
		}
	}
	return append(items, item)
}

// deleteByKey removes the item whose key matches.
func deleteByKey[T any](items []T, key func(T) string, k string) ([]T, bool) {
	for i := range items {
		if key(items[i]) == k {
			return append(items[:i], items[i+1:]...), true
		}
	}
	return items, false
}

// Upsert decodes payload as a record of the named collection and inserts
// or replaces it by its unique key.
func (s *Service) Upsert(ctx context.Context, year, collection string, payload json.RawMessage) error {
	return s.store.Mutate(ctx, year, func(d *domain.Dataset) error {
		switch collection {
		case CollectionClients:
			var c masterdata.Client
			if err := json.Unmarshal(payload, &c); err != nil {
				return apperror.NewValidation("malformed client record").WithCause(err)
			}
			c.Normalize()
			if err := c.Validate(); err != nil {
				return err
			}
			d.Clients = upsertByKey(d.Clients, c, func(x masterdata.Client) string { return x.Name })

		case CollectionBeers:
			var b masterdata.Beer
			if err := json.Unmarshal(payload, &b); err != nil {
				return apperror.NewValidation("malformed beer record").WithCause(err)
			}
			b.Normalize()
			if err := b.Validate(); err != nil {
				return err
			}
			d.Beers = upsertByKey(d.Beers, b, func(x masterdata.Beer) string { return x.Name })

		case CollectionFermenters:
			var f masterdata.Fermenter
			if err := json.Unmarshal(payload, &f); err != nil {
				return apperror.NewValidation("malformed fermenter record").WithCause(err)
			}
			f.Normalize()
			if err := f.Validate(); err != nil {
				return err
			}
			d.Fermenters = upsertByKey(d.Fermenters, f, func(x masterdata.Fermenter) string { return x.Name })

		case CollectionQuotes:
			var q costing.Quote
			if err := json.Unmarshal(payload, &q); err != nil {
				return apperror.NewValidation("malformed quote record").WithCause(err)
			}
			if q.ID == "" {
				return apperror.NewValidation("quote id is required").WithDetail("field", "id")
			}
			d.Quotes = upsertByKey(d.Quotes, q, func(x costing.Quote) string { return x.ID })

		default:
			return apperror.NewValidation("unknown collection").WithDetail("collection", collection)
		}
		return nil
	})
}

// Delete removes the record with the given key from the named collection.
func (s *Service) Delete(ctx context.Context, year, collection, key string) error {
	normalized := movement.NormalizeKey(key)

	return s.store.Mutate(ctx, year, func(d *domain.Dataset) error {
		var found bool
		switch collection {
		case CollectionClients:
			d.Clients, found = deleteByKey(d.Clients, func(x masterdata.Client) string { return x.Name }, normalized)
		case CollectionBeers:
			d.Beers, found = deleteByKey(d.Beers, func(x masterdata.Beer) string { return x.Name }, normalized)
		case CollectionFermenters:
			d.Fermenters, found = deleteByKey(d.Fermenters, func(x masterdata.Fermenter) string { return x.Name }, normalized)
		case CollectionQuotes:
			d.Quotes, found = deleteByKey(d.Quotes, func(x costing.Quote) string { return x.ID }, key)
		default:
			return apperror.NewValidation("unknown collection").WithDetail("collection", collection)
		}
		if !found {
			return apperror.NewNotFound(collection, key)
		}
		return nil
	})
}

// SetCoefficients replaces the year's cost coefficients.
func (s *Service) SetCoefficients(ctx context.Context, year string, coeff costing.Coefficients) error {
	return s.store.Mutate(ctx, year, func(d *domain.Dataset) error {
		d.Coefficients = coeff
		return nil
	})
}

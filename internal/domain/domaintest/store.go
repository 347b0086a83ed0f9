// Package domaintest provides an in-memory Store for service tests.
package domaintest

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"birrificio/internal/core/apperror"
	"birrificio/internal/domain"
)

// MemStore is a map-backed domain.Store. Documents are deep-copied through
// JSON on every read and write, matching the real store's isolation.
type MemStore struct {
	mu    sync.Mutex
	years map[string][]byte
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{years: make(map[string][]byte)}
}

// Seed puts a dataset without going through validation, for test setup.
func (s *MemStore) Seed(year string, d *domain.Dataset) {
	doc, _ := json.Marshal(d)
	s.mu.Lock()
	s.years[year] = doc
	s.mu.Unlock()
}

func (s *MemStore) Get(ctx context.Context, year string) (*domain.Dataset, error) {
	if err := domain.ValidateYearKey(year); err != nil {
		return nil, err
	}
	s.mu.Lock()
	doc, ok := s.years[year]
	s.mu.Unlock()
	if !ok {
		return nil, apperror.NewNotFound("year", year)
	}
	d := &domain.Dataset{}
	if err := json.Unmarshal(doc, d); err != nil {
		return nil, apperror.NewInternal(err)
	}
	d.FillDefaults()
	return d, nil
}

func (s *MemStore) Put(ctx context.Context, year string, d *domain.Dataset) error {
	if err := domain.ValidateYearKey(year); err != nil {
		return err
	}
	doc, err := json.Marshal(d)
	if err != nil {
		return apperror.NewInternal(err)
	}
	s.mu.Lock()
	s.years[year] = doc
	s.mu.Unlock()
	return nil
}

func (s *MemStore) Exists(ctx context.Context, year string) (bool, error) {
	s.mu.Lock()
	_, ok := s.years[year]
	s.mu.Unlock()
	return ok, nil
}

func (s *MemStore) ListYears(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	years := make([]string, 0, len(s.years))
	for y := range s.years {
		years = append(years, y)
	}
	s.mu.Unlock()
	sort.Strings(years)
	return years, nil
}

func (s *MemStore) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	s.years = make(map[string][]byte)
	s.mu.Unlock()
	return nil
}

// ReplaceAll implements the bulk-import contract of the SQLite store.
func (s *MemStore) ReplaceAll(ctx context.Context, datasets map[string]*domain.Dataset) error {
	fresh := make(map[string][]byte, len(datasets))
	for year, d := range datasets {
		doc, err := json.Marshal(d)
		if err != nil {
			return apperror.NewInternal(err)
		}
		fresh[year] = doc
	}
	s.mu.Lock()
	s.years = fresh
	s.mu.Unlock()
	return nil
}

func (s *MemStore) Mutate(ctx context.Context, year string, fn func(*domain.Dataset) error) error {
	d, err := s.Get(ctx, year)
	if err != nil {
		return err
	}
	if err := fn(d); err != nil {
		return err
	}
	return s.Put(ctx, year, d)
}

// Package backup bundles the whole store into one portable document: a
// JSON object keyed by 4-digit year strings, optionally zstd-compressed.
// Import validates the complete payload before touching the store.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"io"

	"github.com/klauspost/compress/zstd"

	"birrificio/internal/core/apperror"
	"birrificio/internal/domain"
	"birrificio/pkg/logger"
)

// BulkStore is the slice of the persistence layer backup needs: the
// standard store contract plus the all-or-nothing bulk replace.
type BulkStore interface {
	domain.Store
	ReplaceAll(ctx context.Context, datasets map[string]*domain.Dataset) error
}

// Service exports and imports full-store bundles.
type Service struct {
	store BulkStore
}

// NewService creates a new backup service.
func NewService(store BulkStore) *Service {
	return &Service{store: store}
}

// Export serializes every stored year into one JSON object.
func (s *Service) Export(ctx context.Context) ([]byte, error) {
	years, err := s.store.ListYears(ctx)
	if err != nil {
		return nil, err
	}

	bundle := make(map[string]*domain.Dataset, len(years))
	for _, year := range years {
		d, err := s.store.Get(ctx, year)
		if err != nil {
			return nil, err
		}
		bundle[year] = d
	}

	payload, err := json.Marshal(bundle)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	return payload, nil
}

// ExportCompressed is Export wrapped in a zstd frame, for bundles that
// leave the machine.
func (s *Service) ExportCompressed(ctx context.Context) ([]byte, error) {
	payload, err := s.Export(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	if _, err := enc.Write(payload); err != nil {
		enc.Close()
		return nil, apperror.NewInternal(err)
	}
	if err := enc.Close(); err != nil {
		return nil, apperror.NewInternal(err)
	}
	return buf.Bytes(), nil
}

// Import replaces the entire store with the bundle's contents. The whole
// payload is decoded and every key validated against the year pattern
// before any store mutation; a malformed bundle leaves the store as it was.
func (s *Service) Import(ctx context.Context, payload []byte) error {
	payload = maybeDecompress(payload)

	var bundle map[string]json.RawMessage
	if err := json.Unmarshal(payload, &bundle); err != nil {
		return apperror.NewImportFormat("backup payload is not a JSON object").WithCause(err)
	}

	datasets := make(map[string]*domain.Dataset, len(bundle))
	for year, raw := range bundle {
		if !domain.YearPattern.MatchString(year) {
			return apperror.NewImportFormat("backup key is not a 4-digit year").WithDetail("key", year)
		}
		d := &domain.Dataset{}
		if err := json.Unmarshal(raw, d); err != nil {
			return apperror.NewImportFormat("year document is malformed").WithDetail("year", year).WithCause(err)
		}
		d.FillDefaults()
		datasets[year] = d
	}

	if err := s.store.ReplaceAll(ctx, datasets); err != nil {
		return err
	}

	logger.Info(ctx, "backup imported", "years", len(datasets))
	return nil
}

// zstd frame magic number.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// maybeDecompress transparently unwraps a zstd frame so both plain and
// compressed bundles import through the same path.
func maybeDecompress(payload []byte) []byte {
	if !bytes.HasPrefix(payload, zstdMagic) {
		return payload
	}
	dec, err := zstd.NewReader(bytes.NewReader(payload))
	if err != nil {
		return payload
	}
	defer dec.Close()
	plain, err := io.ReadAll(dec)
	if err != nil {
		return payload
	}
	return plain
}

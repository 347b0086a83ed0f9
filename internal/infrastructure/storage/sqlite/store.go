// Package sqlite persists year datasets as whole JSON documents in an
// embedded SQLite database, one row per fiscal year.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"birrificio/internal/core/apperror"
	"birrificio/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS years (
	year       TEXT PRIMARY KEY,
	doc        TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
`

// Store implements domain.Store over a single SQLite file. Writes replace
// the whole year document; a per-year mutex serializes read-modify-write
// cycles so two concurrent mutations of the same year cannot interleave.
type Store struct {
	db *sqlx.DB
	sb sq.StatementBuilderType

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Open opens (or creates) the database file and ensures the schema.
// WAL keeps readers unblocked during the single writer's commit.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000", path)
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return &Store{
		db:    db,
		sb:    sq.StatementBuilder.PlaceholderFormat(sq.Question),
		locks: make(map[string]*sync.Mutex),
	}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) yearLock(year string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[year]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[year] = lock
	}
	return lock
}

type yearRow struct {
	Year      string    `db:"year"`
	Doc       string    `db:"doc"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Get loads a year's dataset, filling missing collections with empty
// defaults.
func (s *Store) Get(ctx context.Context, year string) (*domain.Dataset, error) {
	if err := domain.ValidateYearKey(year); err != nil {
		return nil, err
	}

	query, args, err := s.sb.Select("year", "doc", "updated_at").
		From("years").
		Where(sq.Eq{"year": year}).
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	var row yearRow
	if err := sqlscan.Get(ctx, s.db, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NewNotFound("year", year)
		}
		return nil, storageError("load year", err)
	}

	d := &domain.Dataset{}
	if err := json.Unmarshal([]byte(row.Doc), d); err != nil {
		return nil, storageError("decode year document", err)
	}
	d.FillDefaults()
	return d, nil
}

// Put replaces a year's dataset in one atomic write.
func (s *Store) Put(ctx context.Context, year string, d *domain.Dataset) error {
	if err := domain.ValidateYearKey(year); err != nil {
		return err
	}

	doc, err := json.Marshal(d)
	if err != nil {
		return storageError("encode year document", err)
	}

	query, args, err := s.sb.Insert("years").
		Columns("year", "doc", "updated_at").
		Values(year, string(doc), time.Now().UTC()).
		Suffix("ON CONFLICT(year) DO UPDATE SET doc = excluded.doc, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return apperror.NewInternal(err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return storageError("store year", err)
	}
	return nil
}

// Exists reports whether a year is present.
func (s *Store) Exists(ctx context.Context, year string) (bool, error) {
	if err := domain.ValidateYearKey(year); err != nil {
		return false, err
	}

	query, args, err := s.sb.Select("COUNT(*)").
		From("years").
		Where(sq.Eq{"year": year}).
		ToSql()
	if err != nil {
		return false, apperror.NewInternal(err)
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, storageError("check year", err)
	}
	return count > 0, nil
}

// ListYears returns all stored year keys, ascending.
func (s *Store) ListYears(ctx context.Context) ([]string, error) {
	query, args, err := s.sb.Select("year").
		From("years").
		OrderBy("year ASC").
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	years := make([]string, 0)
	if err := sqlscan.Select(ctx, s.db, &years, query, args...); err != nil {
		return nil, storageError("list years", err)
	}
	return years, nil
}

// ClearAll wipes the store in one transaction.
func (s *Store) ClearAll(ctx context.Context) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return storageError("begin clear", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM years"); err != nil {
		tx.Rollback()
		return storageError("clear store", err)
	}
	if err := tx.Commit(); err != nil {
		return storageError("commit clear", err)
	}
	return nil
}

// ReplaceAll swaps the entire store contents in one transaction. Used by
// bulk import after the full payload has been validated: either every year
// lands or none does.
func (s *Store) ReplaceAll(ctx context.Context, datasets map[string]*domain.Dataset) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return storageError("begin import", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM years"); err != nil {
		return storageError("clear store", err)
	}

	now := time.Now().UTC()
	for year, d := range datasets {
		doc, err := json.Marshal(d)
		if err != nil {
			return storageError("encode year document", err)
		}
		query, args, err := s.sb.Insert("years").
			Columns("year", "doc", "updated_at").
			Values(year, string(doc), now).
			ToSql()
		if err != nil {
			return apperror.NewInternal(err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return storageError("store year", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return storageError("commit import", err)
	}
	return nil
}

// Mutate runs one read-modify-write cycle for a year under its lock. If fn
// returns an error nothing is written and the error passes through.
func (s *Store) Mutate(ctx context.Context, year string, fn func(*domain.Dataset) error) error {
	if err := domain.ValidateYearKey(year); err != nil {
		return err
	}

	lock := s.yearLock(year)
	lock.Lock()
	defer lock.Unlock()

	d, err := s.Get(ctx, year)
	if err != nil {
		return err
	}
	if err := fn(d); err != nil {
		return err
	}
	return s.Put(ctx, year, d)
}

func storageError(op string, err error) error {
	return apperror.NewStorage(op, err)
}

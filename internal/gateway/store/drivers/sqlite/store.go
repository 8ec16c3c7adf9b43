package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/aussiebroadwan/chatbridge/internal/gateway/store"
	_ "modernc.org/sqlite"
)

// Store is the SQLite implementation of store.Store.
type Store struct {
	db  *sql.DB
	dsn string
}

// NewStore opens the database at dsn. Run ApplyMigrations before first use.
func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// Single writer; serialize access instead of surfacing SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{
		db:  db,
		dsn: dsn,
	}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping reports whether the database is still reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Instances() store.Instances { return &instancesRepo{db: s.db} }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func mapNullStringPtr(ns sql.NullString) *string {
	if ns.Valid {
		val := ns.String
		return &val
	}
	return nil
}

// Timestamps are stored as unix seconds; 0/NULL round-trips through these.

func mapNullUnixPtr(ni sql.NullInt64) *time.Time {
	if ni.Valid {
		val := time.Unix(ni.Int64, 0).UTC()
		return &val
	}
	return nil
}

package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"codemarket/internal/database"
)

// Placeholder styles for the supported SQL drivers
const (
	PlaceholderDollar   = "dollar"   // postgres: $1, $2
	PlaceholderQuestion = "question" // sqlite: ?, ?
)

// SQLStore keeps entries in the kv_entries table created by the database migrations
type SQLStore struct {
	db        *sql.DB
	getQuery  string
	setQuery  string
	ownsDB    bool
	timestamp func() time.Time
}

// NewSQLStore creates a store over db. When ownsDB is set, Close closes the pool.
func NewSQLStore(db *sql.DB, placeholder string, ownsDB bool) *SQLStore {
	s := &SQLStore{db: db, ownsDB: ownsDB, timestamp: time.Now}

	switch placeholder {
	case PlaceholderQuestion:
		s.getQuery = `SELECT entry_value FROM kv_entries WHERE entry_key = ?`
		s.setQuery = `
			INSERT INTO kv_entries (entry_key, entry_value, updated_at)
			VALUES (?, ?, ?)
			ON CONFLICT (entry_key) DO UPDATE
			SET entry_value = excluded.entry_value, updated_at = excluded.updated_at
		`
	default:
		s.getQuery = `SELECT entry_value FROM kv_entries WHERE entry_key = $1`
		s.setQuery = `
			INSERT INTO kv_entries (entry_key, entry_value, updated_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (entry_key) DO UPDATE
			SET entry_value = EXCLUDED.entry_value, updated_at = EXCLUDED.updated_at
		`
	}

	return s
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}

	var value string
	err := s.db.QueryRowContext(ctx, s.getQuery, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return []byte(value), nil
}

func (s *SQLStore) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return ErrEmptyKey
	}

	_, err := s.db.ExecContext(ctx, s.setQuery, key, string(value), s.timestamp().UTC())
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Health reports the connection pool of the underlying database
func (s *SQLStore) Health(ctx context.Context) map[string]string {
	return database.Health(ctx, s.db)
}

func (s *SQLStore) Close() error {
	if !s.ownsDB {
		return nil
	}
	return s.db.Close()
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// SQLite-backed implementation of the ProfileStore port.
type SqliteProfileStore struct{ DB *sql.DB }

func NewSqliteProfileStore(db *sql.DB) *SqliteProfileStore {
	return &SqliteProfileStore{DB: db}
}

func (s *SqliteProfileStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if s.DB == nil {
		return nil, false, errors.New("sqlite profile store: DB is nil")
	}
	if strings.TrimSpace(key) == "" {
		return nil, false, errors.New("get profile: key must not be empty")
	}

	var value string
	err := s.DB.QueryRowContext(ctx, `SELECT value FROM profile_store WHERE key = ?;`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get profile key=%q: %w", key, err)
	}

	return []byte(value), true, nil
}

func (s *SqliteProfileStore) Put(ctx context.Context, key string, value []byte) error {
	if s.DB == nil {
		return errors.New("sqlite profile store: DB is nil")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("put profile: key must not be empty")
	}

	query := `
	INSERT OR REPLACE INTO profile_store (
		key,
		value,
		updated_at
	)
	VALUES (?, ?, CURRENT_TIMESTAMP);
	`
	if _, err := s.DB.ExecContext(ctx, query, key, string(value)); err != nil {
		return fmt.Errorf("put profile key=%q: %w", key, err)
	}

	return nil
}

func (s *SqliteProfileStore) Delete(ctx context.Context, key string) error {
	if s.DB == nil {
		return errors.New("sqlite profile store: DB is nil")
	}

	if _, err := s.DB.ExecContext(ctx, `DELETE FROM profile_store WHERE key = ?;`, key); err != nil {
		return fmt.Errorf("delete profile key=%q: %w", key, err)
	}

	return nil
}

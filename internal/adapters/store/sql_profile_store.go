package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"travel-ticket-service/internal/platform/obs"
)

// SQLProfileStore is a Postgres-backed ProfileStore.
type SQLProfileStore struct {
	DB *sql.DB
}

func NewSQLProfileStore(db *sql.DB) *SQLProfileStore {
	return &SQLProfileStore{DB: db}
}

func (s *SQLProfileStore) Get(ctx context.Context, key string) (_ []byte, _ bool, err error) {
	defer obs.Time(ctx, "profile.store.Get")(&err)

	if s.DB == nil {
		return nil, false, errors.New("profile store: db is nil")
	}
	if strings.TrimSpace(key) == "" {
		return nil, false, errors.New("get profile: key must not be empty")
	}

	var value string
	err = s.DB.QueryRowContext(ctx, `SELECT value FROM profile_store WHERE key = $1;`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get profile key=%q: %w", key, err)
	}

	return []byte(value), true, nil
}

func (s *SQLProfileStore) Put(ctx context.Context, key string, value []byte) error {
	if s.DB == nil {
		return errors.New("profile store: db is nil")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("put profile: key must not be empty")
	}

	_, err := s.DB.ExecContext(ctx, `
	INSERT INTO profile_store (key, value, updated_at)
    VALUES ($1, $2, now())
	ON CONFLICT (key) DO UPDATE
	SET value = EXCLUDED.value,
		updated_at = EXCLUDED.updated_at;
	`, key, string(value))
	if err != nil {
		return fmt.Errorf("put profile key=%q: %w", key, err)
	}

	return nil
}

func (s *SQLProfileStore) Delete(ctx context.Context, key string) error {
	if s.DB == nil {
		return errors.New("profile store: db is nil")
	}

	if _, err := s.DB.ExecContext(ctx, `DELETE FROM profile_store WHERE key = $1;`, key); err != nil {
		return fmt.Errorf("delete profile key=%q: %w", key, err)
	}

	return nil
}

// Package settings is the local persistent store for user preferences and
// the backend session token. The browser original kept these in ambient
// localStorage; here they live in a small SQLite database injected into
// whoever needs them, with an explicit open/close lifecycle.
package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"finjar/internal/core"

	_ "modernc.org/sqlite"
)

const (
	keyDefaultPeriod = "default_period"
	keyDefaultJar    = "default_jar"
	keyAPIToken      = "api_token"
)

// Store persists key/value settings in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens (creating if needed) the settings database at dbPath and
// runs pending migrations.
func NewStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) get(ctx context.Context, key, fallback string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return fallback, nil
	}
	if err != nil {
		return "", fmt.Errorf("read setting %s: %w", key, err)
	}
	return value, nil
}

func (s *Store) set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value)
	if err != nil {
		return fmt.Errorf("write setting %s: %w", key, err)
	}
	return nil
}

// DefaultPeriod returns the saved report period, defaulting to "all".
func (s *Store) DefaultPeriod(ctx context.Context) (core.Period, error) {
	value, err := s.get(ctx, keyDefaultPeriod, string(core.PeriodAll))
	if err != nil {
		return "", err
	}
	period, err := core.ParsePeriod(value)
	if err != nil {
		// A stale or hand-edited value falls back rather than breaking boot.
		return core.PeriodAll, nil
	}
	return period, nil
}

func (s *Store) SetDefaultPeriod(ctx context.Context, period core.Period) error {
	return s.set(ctx, keyDefaultPeriod, string(period))
}

// DefaultJar returns the saved jar selector, defaulting to "all".
func (s *Store) DefaultJar(ctx context.Context) (string, error) {
	return s.get(ctx, keyDefaultJar, core.AllJarsFilter)
}

func (s *Store) SetDefaultJar(ctx context.Context, jarID string) error {
	if strings.TrimSpace(jarID) == "" {
		jarID = core.AllJarsFilter
	}
	return s.set(ctx, keyDefaultJar, jarID)
}

// Token implements backend.TokenSource. An empty string means no session.
func (s *Store) Token(ctx context.Context) (string, error) {
	return s.get(ctx, keyAPIToken, "")
}

func (s *Store) SetToken(ctx context.Context, token string) error {
	return s.set(ctx, keyAPIToken, token)
}

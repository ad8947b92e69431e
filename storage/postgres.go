package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
)

// DefaultPostgresTable holds preferences when no table is configured.
const DefaultPostgresTable = "currency_preferences"

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Postgres keeps preferences in a two column table keyed by preference key.
type Postgres struct {
	db    *sql.DB
	table string
}

// NewPostgres creates a store using the provided database handle.
func NewPostgres(db *sql.DB, table string) (*Postgres, error) {
	if db == nil {
		return nil, errors.New("postgres store: nil database handle")
	}
	if table == "" {
		table = DefaultPostgresTable
	}
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("postgres store: invalid table name %q", table)
	}
	return &Postgres{db: db, table: table}, nil
}

// EnsureSchema creates the table when missing.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS `+p.table+` (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("create %s: %w", p.table, err)
	}
	return nil
}

func (p *Postgres) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := p.db.QueryRowContext(ctx, `SELECT value FROM `+p.table+` WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("select preference %s: %w", key, err)
	}
	return value, true, nil
}

func (p *Postgres) Set(ctx context.Context, key, value string) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO `+p.table+` (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`, key, value)
	if err != nil {
		return fmt.Errorf("upsert preference %s: %w", key, err)
	}
	return nil
}

func (p *Postgres) Delete(ctx context.Context, key string) error {
	if _, err := p.db.ExecContext(ctx, `DELETE FROM `+p.table+` WHERE key = $1`, key); err != nil {
		return fmt.Errorf("delete preference %s: %w", key, err)
	}
	return nil
}

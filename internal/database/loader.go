// Package database loads finalized catalog snapshots into Postgres.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okorolenko/bookcat/internal/catalog"
)

// Config controls the Postgres connection pool used by the loader.
type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// Loader inserts snapshot tables into Postgres. All inserts use
// ON CONFLICT DO NOTHING so re-loading a batch is idempotent, matching
// the set semantics of the aggregate.
type Loader struct {
	pool txBeginner
}

// New creates a Loader backed by a pgx pool for the given config.
func New(ctx context.Context, cfg Config) (*Loader, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Loader{pool: pool}, nil
}

// NewWithPool constructs a Loader from an existing pool (primarily for
// testing).
func NewWithPool(pool txBeginner) (*Loader, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &Loader{pool: pool}, nil
}

// Close releases the underlying pool resources.
func (l *Loader) Close() {
	if l == nil || l.pool == nil {
		return
	}
	l.pool.Close()
}

// Load inserts the whole snapshot inside one transaction: books,
// authors, editors, years, roles, then author-book-role links. The
// referentially dependent link rows go last.
func (l *Loader) Load(ctx context.Context, snap catalog.Snapshot) error {
	if l == nil || l.pool == nil {
		return fmt.Errorf("loader is not configured")
	}
	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, b := range snap.Books {
		if _, err := tx.Exec(ctx,
			`INSERT INTO books (product_id, name, price, edition_year, editor)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT DO NOTHING`,
			b.ID, b.Name, b.Price, b.Year, b.Editor,
		); err != nil {
			return fmt.Errorf("insert book %s: %w", b.ID, err)
		}
	}
	if err := insertNames(ctx, tx, "authors", snap.Authors); err != nil {
		return err
	}
	if err := insertNames(ctx, tx, "editors", snap.Editors); err != nil {
		return err
	}
	for _, year := range snap.Years {
		if _, err := tx.Exec(ctx,
			`INSERT INTO years (edition_year) VALUES ($1) ON CONFLICT DO NOTHING`, year,
		); err != nil {
			return fmt.Errorf("insert year %d: %w", year, err)
		}
	}
	if err := insertNames(ctx, tx, "roles", snap.Roles); err != nil {
		return err
	}
	for _, c := range snap.Contributions {
		if _, err := tx.Exec(ctx,
			`INSERT INTO author_book_roles (author_name, product_id, role_name)
			 VALUES ($1, $2, $3)
			 ON CONFLICT DO NOTHING`,
			c.Author, c.BookID, c.Role,
		); err != nil {
			return fmt.Errorf("insert contribution %s/%s: %w", c.Author, c.BookID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// insertNames loads a flat name table (authors, editors, roles). The
// table name is one of a fixed set, never caller input.
func insertNames(ctx context.Context, tx pgx.Tx, table string, names []string) error {
	query := fmt.Sprintf(`INSERT INTO %s (name) VALUES ($1) ON CONFLICT DO NOTHING`, table)
	for _, name := range names {
		if _, err := tx.Exec(ctx, query, name); err != nil {
			return fmt.Errorf("insert into %s: %w", table, err)
		}
	}
	return nil
}

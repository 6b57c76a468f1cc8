// Package sqlite implements ports.MovieCatalog on a SQLite database, for
// datasets too large to keep in memory. The database is filled once from the
// CSV files with Import.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver

	"github.com/aretw0/teevee/pkg/adapters/csv"
	"github.com/aretw0/teevee/pkg/domain"
	"github.com/aretw0/teevee/pkg/ports"
)

// RecordSource is anything that can list dataset rows, typically a loaded
// *csv.Catalog.
type RecordSource interface {
	Records() []csv.Record
}

// Catalog wraps a SQLite connection holding the movies table.
type Catalog struct {
	db     *sql.DB
	logger *slog.Logger
}

// Option configures the Catalog.
type Option func(*Catalog)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Catalog) {
		c.logger = l
	}
}

// Open opens (or creates) the database at path and runs migrations.
// Use ":memory:" for an in-memory database.
func Open(path string, opts ...Option) (*Catalog, error) {
	c := &Catalog{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(c)
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	if path == ":memory:" {
		// every connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	c.db = db
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	c.logger.Debug("catalog database opened", "path", path)
	return c, nil
}

// Close closes the database connection.
func (c *Catalog) Close() error {
	return c.db.Close()
}

type migration struct {
	Version int
	Name    string
	SQL     string
}

var migrations = []migration{
	{
		Version: 1,
		Name:    "movies",
		SQL: `
			CREATE TABLE movies (
				id INTEGER PRIMARY KEY,
				title TEXT NOT NULL,
				normalized_title TEXT NOT NULL,
				genres TEXT NOT NULL DEFAULT '',
				keywords TEXT,
				cast_list TEXT
			);
			CREATE INDEX idx_movies_normalized_title ON movies(normalized_title);
		`,
	},
}

func (c *Catalog) migrate() error {
	if _, err := c.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)
	`); err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	for _, m := range migrations {
		var count int
		if err := c.db.QueryRow("SELECT COUNT(*) FROM schema_migrations WHERE version = ?", m.Version).Scan(&count); err != nil {
			return fmt.Errorf("checking migration %d: %w", m.Version, err)
		}
		if count > 0 {
			continue
		}

		c.logger.Info("applying migration", "version", m.Version, "name", m.Name)
		tx, err := c.db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}
		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", m.Version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}
	return nil
}

// Import replaces the movies table with the rows of src in one transaction.
// It returns the number of rows written.
func (c *Catalog) Import(ctx context.Context, src RecordSource) (int, error) {
	recs := src.Records()

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM movies"); err != nil {
		return 0, fmt.Errorf("clearing movies: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO movies (id, title, normalized_title, genres, keywords, cast_list)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range recs {
		if _, err := stmt.ExecContext(ctx, r.Row.ID, r.Row.Title, r.Row.NormalizedTitle, r.Row.Genres, nullable(r.Keywords), nullable(r.Cast)); err != nil {
			return 0, fmt.Errorf("inserting row %d: %w", r.Row.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	c.logger.Info("catalog imported", "rows", len(recs))
	return len(recs), nil
}

// Count returns the number of imported movies.
func (c *Catalog) Count(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM movies").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting movies: %w", err)
	}
	return n, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// FindTitles uses equality for single-token queries and a conjunction of
// instr() tests otherwise, ordered by row id. No tokens selects every row.
func (c *Catalog) FindTitles(ctx context.Context, q domain.TitleQuery) ([]domain.MovieRow, error) {
	var (
		where string
		args  []any
	)
	switch {
	case len(q.Tokens) == 0:
		where = "1=1"
	case q.Exact():
		where = "normalized_title = ?"
		args = []any{q.Tokens[0]}
	default:
		conds := make([]string, len(q.Tokens))
		for i, tok := range q.Tokens {
			conds[i] = "instr(normalized_title, ?) > 0"
			args = append(args, tok)
		}
		where = strings.Join(conds, " AND ")
	}

	rows, err := c.db.QueryContext(ctx,
		"SELECT id, title, normalized_title, genres FROM movies WHERE "+where+" ORDER BY id", args...)
	if err != nil {
		return nil, fmt.Errorf("querying titles: %w", err)
	}
	defer rows.Close()

	var out []domain.MovieRow
	for rows.Next() {
		var r domain.MovieRow
		if err := rows.Scan(&r.ID, &r.Title, &r.NormalizedTitle, &r.Genres); err != nil {
			return nil, fmt.Errorf("scanning title: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Keywords returns the raw keywords field of a row.
func (c *Catalog) Keywords(ctx context.Context, rowID int) (string, error) {
	return c.column(ctx, "keywords", rowID)
}

// Cast returns the raw cast field of a row.
func (c *Catalog) Cast(ctx context.Context, rowID int) (string, error) {
	return c.column(ctx, "cast_list", rowID)
}

func (c *Catalog) column(ctx context.Context, col string, rowID int) (string, error) {
	var v sql.NullString
	err := c.db.QueryRowContext(ctx, "SELECT "+col+" FROM movies WHERE id = ?", rowID).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !v.Valid) {
		return "", fmt.Errorf("row %d: %w", rowID, ports.ErrRowNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", col, err)
	}
	return v.String, nil
}

var _ ports.MovieCatalog = (*Catalog)(nil)

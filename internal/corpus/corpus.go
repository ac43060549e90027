// Package corpus loads the movie collection an index is built from.
package corpus

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq" // postgres driver

	"github.com/gcbaptista/movie-search/config"
	"github.com/gcbaptista/movie-search/model"
)

// Loader returns the whole corpus. Failures are fatal to the build that
// asked for it.
type Loader interface {
	Load(ctx context.Context) ([]model.Document, error)
}

// JSONFile reads a {"movies": [...]} document.
type JSONFile struct {
	Path string
}

// Load implements Loader.
func (j JSONFile) Load(ctx context.Context) ([]model.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(j.Path) // #nosec G304 -- dataset path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("reading corpus %s: %w", j.Path, err)
	}
	var c model.Corpus
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing corpus %s: %w", j.Path, err)
	}
	if c.Movies == nil {
		return nil, fmt.Errorf("parsing corpus %s: missing \"movies\" array", j.Path)
	}
	return c.Movies, nil
}

// Static serves an in-memory corpus.
type Static []model.Document

// Load implements Loader.
func (s Static) Load(ctx context.Context) ([]model.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	docs := make([]model.Document, len(s))
	copy(docs, s)
	return docs, nil
}

// Postgres reads id, title and description from a table.
type Postgres struct {
	DB    *sql.DB
	Table string
}

// OpenPostgres opens and pings the database described by cfg.
func OpenPostgres(ctx context.Context, cfg config.PostgresConfig) (*Postgres, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	return &Postgres{DB: db, Table: cfg.Table}, nil
}

// Query returns the statement Load runs. The table name is validated by
// config.Validate before it gets here.
func (p *Postgres) Query() string {
	return fmt.Sprintf("SELECT id, title, COALESCE(description, '') FROM %s ORDER BY id", p.Table)
}

// Load implements Loader.
func (p *Postgres) Load(ctx context.Context) ([]model.Document, error) {
	rows, err := p.DB.QueryContext(ctx, p.Query())
	if err != nil {
		return nil, fmt.Errorf("querying movies from %s: %w", p.Table, err)
	}
	defer func() { _ = rows.Close() }()

	var docs []model.Document
	for rows.Next() {
		var doc model.Document
		if err := rows.Scan(&doc.ID, &doc.Title, &doc.Description); err != nil {
			return nil, fmt.Errorf("scanning movie row: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating movies from %s: %w", p.Table, err)
	}
	return docs, nil
}

// Close closes the database handle.
func (p *Postgres) Close() error {
	return p.DB.Close()
}

// FromConfig builds the loader selected by cfg.Corpus.Source. The returned
// close function releases any connection the loader holds.
func FromConfig(ctx context.Context, cfg *config.Config) (Loader, func() error, error) {
	switch cfg.Corpus.Source {
	case config.SourceJSON, "":
		return JSONFile{Path: cfg.Paths.Dataset}, func() error { return nil }, nil
	case config.SourcePostgres:
		pg, err := OpenPostgres(ctx, cfg.Corpus.Postgres)
		if err != nil {
			return nil, nil, err
		}
		return pg, pg.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown corpus source '%s'", cfg.Corpus.Source)
	}
}

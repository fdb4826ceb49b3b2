// Package pg provides the PostgreSQL content store.
package pg

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/spotingest/internal/models"
	"github.com/desertthunder/spotingest/internal/shared"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schema string

// DB wraps a PostgreSQL connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// New creates a new database connection pool.
func New(ctx context.Context, databaseURL string, maxConns int) (*DB, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}
	if maxConns > 0 {
		config.MaxConns = int32(maxConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Migrate creates any missing tables and indexes.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}
	return nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	db.pool.Close()
	return nil
}

// Artists returns an ArtistRepository.
func (db *DB) Artists() models.Repository[*models.Artist] {
	return &ArtistRepository{pool: db.pool}
}

// Songs returns a SongRepository.
func (db *DB) Songs() models.Repository[*models.Song] {
	return &SongRepository{pool: db.pool}
}

// Albums returns an AlbumRepository.
func (db *DB) Albums() models.Repository[*models.Album] {
	return &AlbumRepository{pool: db.pool}
}

// Tags returns a TagRepository.
func (db *DB) Tags() models.TagRepository {
	return &TagRepository{pool: db.pool}
}

func count(ctx context.Context, pool *pgxpool.Pool, table string) (int, error) {
	var n int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: counting %s: %v", shared.ErrPersistence, table, err)
	}
	return n, nil
}

func prepare(rec models.Record, id *string, createdAt *time.Time) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("%w: invalid %s %s: %v", shared.ErrPersistence, rec.Kind(), rec.Key(), err)
	}
	if *id == "" {
		*id = shared.GenerateID()
	}
	if createdAt.IsZero() {
		*createdAt = time.Now().UTC()
	}
	return nil
}

func dateValue(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	d := t.UTC()
	return &d
}

func dateFrom(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.UTC()
}

func scanError(err error, kind models.Kind, key string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s %s", shared.ErrNotFound, kind, key)
	}
	return fmt.Errorf("%w: querying %s %s: %v", shared.ErrPersistence, kind, key, err)
}

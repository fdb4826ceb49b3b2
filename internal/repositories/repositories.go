package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/spotingest/internal/models"
	"github.com/desertthunder/spotingest/internal/shared"
)

// Store is the SQLite [models.ContentStore].
type Store struct {
	db      *sql.DB
	artists *ArtistRepository
	songs   *SongRepository
	albums  *AlbumRepository
	tags    *TagRepository
}

// NewStore wraps an open, migrated database.
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:      db,
		artists: NewArtistRepository(db),
		songs:   NewSongRepository(db),
		albums:  NewAlbumRepository(db),
		tags:    NewTagRepository(db),
	}
}

func (s *Store) Artists() models.Repository[*models.Artist] { return s.artists }
func (s *Store) Songs() models.Repository[*models.Song]     { return s.songs }
func (s *Store) Albums() models.Repository[*models.Album]   { return s.albums }
func (s *Store) Tags() models.TagRepository                 { return s.tags }

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// count returns the number of rows in table. table is never user input.
func count(ctx context.Context, db *sql.DB, table string) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, persistenceError("count "+table, "", err)
	}
	return n, nil
}

// dateValue stores a zero date as NULL.
func dateValue(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func dateFrom(d sql.NullTime) time.Time {
	if !d.Valid {
		return time.Time{}
	}
	return d.Time.UTC()
}

// prepare validates rec and fills in the generated id and creation time.
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

func notFound(kind models.Kind, key string) error {
	return fmt.Errorf("%w: %s %s", shared.ErrNotFound, kind, key)
}

func persistenceError(op, key string, err error) error {
	if key == "" {
		return fmt.Errorf("%w: %s: %v", shared.ErrPersistence, op, err)
	}
	return fmt.Errorf("%w: %s %s: %v", shared.ErrPersistence, op, key, err)
}

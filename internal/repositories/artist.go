package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/desertthunder/spotingest/internal/models"
)

// ArtistRepository persists [models.Artist] records.
type ArtistRepository struct {
	db *sql.DB
}

// NewArtistRepository creates a new ArtistRepository with the given database connection
func NewArtistRepository(db *sql.DB) *ArtistRepository {
	return &ArtistRepository{db: db}
}

// Create inserts artist unless one with the same external id exists, in which case
// artist is replaced with the stored record and created is false.
func (r *ArtistRepository) Create(ctx context.Context, artist *models.Artist) (bool, error) {
	if err := prepare(artist, &artist.ID, &artist.CreatedAt); err != nil {
		return false, err
	}

	query := `
		INSERT INTO artists (id, external_id, title, follower_count, image_ref, genre_tag_ids, external_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (external_id) DO NOTHING
	`

	result, err := r.db.ExecContext(ctx, query,
		artist.ID,
		artist.ExternalID,
		artist.Title,
		artist.FollowerCount,
		artist.ImageRef,
		models.JoinGenres(artist.GenreTagIDs),
		artist.ExternalURL,
		artist.CreatedAt,
	)
	if err != nil {
		return false, persistenceError("insert artist", artist.ExternalID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, persistenceError("insert artist", artist.ExternalID, err)
	}
	if rows == 1 {
		return true, nil
	}

	existing, err := r.GetByExternalID(ctx, artist.ExternalID)
	if err != nil {
		return false, err
	}
	*artist = *existing
	return false, nil
}

// Get retrieves an artist by record ID
func (r *ArtistRepository) Get(ctx context.Context, id string) (*models.Artist, error) {
	query := `
		SELECT id, external_id, title, follower_count, image_ref, genre_tag_ids, external_url, created_at
		FROM artists
		WHERE id = ?
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id), id)
}

// GetByExternalID retrieves an artist by its catalog id
func (r *ArtistRepository) GetByExternalID(ctx context.Context, externalID string) (*models.Artist, error) {
	query := `
		SELECT id, external_id, title, follower_count, image_ref, genre_tag_ids, external_url, created_at
		FROM artists
		WHERE external_id = ?
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, externalID), externalID)
}

// Count returns the number of stored artists
func (r *ArtistRepository) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, "artists")
}

func (r *ArtistRepository) scanOne(row *sql.Row, key string) (*models.Artist, error) {
	var (
		a      models.Artist
		genres string
	)

	err := row.Scan(&a.ID, &a.ExternalID, &a.Title, &a.FollowerCount, &a.ImageRef, &genres, &a.ExternalURL, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(models.KindArtist, key)
	}
	if err != nil {
		return nil, persistenceError("scan artist", key, err)
	}

	a.GenreTagIDs = models.SplitGenres(genres)
	return &a, nil
}

package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/desertthunder/spotingest/internal/models"
)

// AlbumRepository persists [models.Album] records.
type AlbumRepository struct {
	db *sql.DB
}

// NewAlbumRepository creates a new AlbumRepository with the given database connection
func NewAlbumRepository(db *sql.DB) *AlbumRepository {
	return &AlbumRepository{db: db}
}

// Create inserts album unless one with the same external id exists, in which case
// album is replaced with the stored record and created is false.
func (r *AlbumRepository) Create(ctx context.Context, album *models.Album) (bool, error) {
	if err := prepare(album, &album.ID, &album.CreatedAt); err != nil {
		return false, err
	}

	query := `
		INSERT INTO albums (id, external_id, title, image_ref, artist_id, release_date, external_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (external_id) DO NOTHING
	`

	result, err := r.db.ExecContext(ctx, query,
		album.ID,
		album.ExternalID,
		album.Title,
		album.ImageRef,
		album.ArtistID,
		dateValue(album.ReleaseDate),
		album.ExternalURL,
		album.CreatedAt,
	)
	if err != nil {
		return false, persistenceError("insert album", album.ExternalID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, persistenceError("insert album", album.ExternalID, err)
	}
	if rows == 1 {
		return true, nil
	}

	existing, err := r.GetByExternalID(ctx, album.ExternalID)
	if err != nil {
		return false, err
	}
	*album = *existing
	return false, nil
}

// GetByExternalID retrieves an album by its catalog id
func (r *AlbumRepository) GetByExternalID(ctx context.Context, externalID string) (*models.Album, error) {
	query := `
		SELECT id, external_id, title, image_ref, artist_id, release_date, external_url, created_at
		FROM albums
		WHERE external_id = ?
	`

	var (
		a       models.Album
		release sql.NullTime
	)

	err := r.db.QueryRowContext(ctx, query, externalID).Scan(
		&a.ID, &a.ExternalID, &a.Title, &a.ImageRef, &a.ArtistID, &release, &a.ExternalURL, &a.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(models.KindAlbum, externalID)
	}
	if err != nil {
		return nil, persistenceError("scan album", externalID, err)
	}

	a.ReleaseDate = dateFrom(release)
	return &a, nil
}

// Count returns the number of stored albums
func (r *AlbumRepository) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, "albums")
}

package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/desertthunder/spotingest/internal/models"
)

// SongRepository persists [models.Song] records.
type SongRepository struct {
	db *sql.DB
}

// NewSongRepository creates a new SongRepository with the given database connection
func NewSongRepository(db *sql.DB) *SongRepository {
	return &SongRepository{db: db}
}

// Create inserts song unless one with the same external id exists, in which case
// song is replaced with the stored record and created is false.
func (r *SongRepository) Create(ctx context.Context, song *models.Song) (bool, error) {
	if err := prepare(song, &song.ID, &song.CreatedAt); err != nil {
		return false, err
	}

	query := `
		INSERT INTO songs (id, external_id, title, album_image_ref, album_name, artist_id, genre_tag_ids, popularity, release_date, external_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (external_id) DO NOTHING
	`

	result, err := r.db.ExecContext(ctx, query,
		song.ID,
		song.ExternalID,
		song.Title,
		song.AlbumImageRef,
		song.AlbumName,
		song.ArtistID,
		models.JoinGenres(song.GenreTagIDs),
		song.Popularity,
		dateValue(song.ReleaseDate),
		song.ExternalURL,
		song.CreatedAt,
	)
	if err != nil {
		return false, persistenceError("insert song", song.ExternalID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, persistenceError("insert song", song.ExternalID, err)
	}
	if rows == 1 {
		return true, nil
	}

	existing, err := r.GetByExternalID(ctx, song.ExternalID)
	if err != nil {
		return false, err
	}
	*song = *existing
	return false, nil
}

// GetByExternalID retrieves a song by its catalog id
func (r *SongRepository) GetByExternalID(ctx context.Context, externalID string) (*models.Song, error) {
	query := `
		SELECT id, external_id, title, album_image_ref, album_name, artist_id, genre_tag_ids, popularity, release_date, external_url, created_at
		FROM songs
		WHERE external_id = ?
	`

	var (
		s       models.Song
		genres  string
		release sql.NullTime
	)

	err := r.db.QueryRowContext(ctx, query, externalID).Scan(
		&s.ID, &s.ExternalID, &s.Title, &s.AlbumImageRef, &s.AlbumName, &s.ArtistID,
		&genres, &s.Popularity, &release, &s.ExternalURL, &s.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(models.KindSong, externalID)
	}
	if err != nil {
		return nil, persistenceError("scan song", externalID, err)
	}

	s.GenreTagIDs = models.SplitGenres(genres)
	s.ReleaseDate = dateFrom(release)
	return &s, nil
}

// Count returns the number of stored songs
func (r *SongRepository) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, "songs")
}

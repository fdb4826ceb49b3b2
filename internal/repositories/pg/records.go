package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/spotingest/internal/models"
	"github.com/desertthunder/spotingest/internal/shared"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ArtistRepository handles artist database operations.
type ArtistRepository struct {
	pool *pgxpool.Pool
}

// Create inserts an artist, or loads the stored one when the external id already exists.
func (r *ArtistRepository) Create(ctx context.Context, artist *models.Artist) (bool, error) {
	if err := prepare(artist, &artist.ID, &artist.CreatedAt); err != nil {
		return false, err
	}

	query := `
		INSERT INTO artists (id, external_id, title, follower_count, image_ref, genre_tag_ids, external_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (external_id) DO NOTHING
	`
	tag, err := r.pool.Exec(ctx, query,
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
		return false, fmt.Errorf("%w: inserting artist %s: %v", shared.ErrPersistence, artist.ExternalID, err)
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}

	existing, err := r.GetByExternalID(ctx, artist.ExternalID)
	if err != nil {
		return false, err
	}
	*artist = *existing
	return false, nil
}

// GetByExternalID retrieves an artist by catalog id.
func (r *ArtistRepository) GetByExternalID(ctx context.Context, externalID string) (*models.Artist, error) {
	query := `
		SELECT id, external_id, title, follower_count, image_ref, genre_tag_ids, external_url, created_at
		FROM artists
		WHERE external_id = $1
	`
	var (
		a      models.Artist
		genres string
	)
	err := r.pool.QueryRow(ctx, query, externalID).Scan(
		&a.ID, &a.ExternalID, &a.Title, &a.FollowerCount, &a.ImageRef, &genres, &a.ExternalURL, &a.CreatedAt,
	)
	if err != nil {
		return nil, scanError(err, models.KindArtist, externalID)
	}
	a.GenreTagIDs = models.SplitGenres(genres)
	return &a, nil
}

// Count returns the number of artists.
func (r *ArtistRepository) Count(ctx context.Context) (int, error) {
	return count(ctx, r.pool, "artists")
}

// SongRepository handles song database operations.
type SongRepository struct {
	pool *pgxpool.Pool
}

// Create inserts a song, or loads the stored one when the external id already exists.
func (r *SongRepository) Create(ctx context.Context, song *models.Song) (bool, error) {
	if err := prepare(song, &song.ID, &song.CreatedAt); err != nil {
		return false, err
	}

	query := `
		INSERT INTO songs (id, external_id, title, album_image_ref, album_name, artist_id, genre_tag_ids, popularity, release_date, external_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (external_id) DO NOTHING
	`
	tag, err := r.pool.Exec(ctx, query,
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
		return false, fmt.Errorf("%w: inserting song %s: %v", shared.ErrPersistence, song.ExternalID, err)
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}

	existing, err := r.GetByExternalID(ctx, song.ExternalID)
	if err != nil {
		return false, err
	}
	*song = *existing
	return false, nil
}

// GetByExternalID retrieves a song by catalog id.
func (r *SongRepository) GetByExternalID(ctx context.Context, externalID string) (*models.Song, error) {
	query := `
		SELECT id, external_id, title, album_image_ref, album_name, artist_id, genre_tag_ids, popularity, release_date, external_url, created_at
		FROM songs
		WHERE external_id = $1
	`
	var (
		s       models.Song
		genres  string
		release *time.Time
	)
	err := r.pool.QueryRow(ctx, query, externalID).Scan(
		&s.ID, &s.ExternalID, &s.Title, &s.AlbumImageRef, &s.AlbumName, &s.ArtistID,
		&genres, &s.Popularity, &release, &s.ExternalURL, &s.CreatedAt,
	)
	if err != nil {
		return nil, scanError(err, models.KindSong, externalID)
	}
	s.GenreTagIDs = models.SplitGenres(genres)
	s.ReleaseDate = dateFrom(release)
	return &s, nil
}

// Count returns the number of songs.
func (r *SongRepository) Count(ctx context.Context) (int, error) {
	return count(ctx, r.pool, "songs")
}

// AlbumRepository handles album database operations.
type AlbumRepository struct {
	pool *pgxpool.Pool
}

// Create inserts an album, or loads the stored one when the external id already exists.
func (r *AlbumRepository) Create(ctx context.Context, album *models.Album) (bool, error) {
	if err := prepare(album, &album.ID, &album.CreatedAt); err != nil {
		return false, err
	}

	query := `
		INSERT INTO albums (id, external_id, title, image_ref, artist_id, release_date, external_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (external_id) DO NOTHING
	`
	tag, err := r.pool.Exec(ctx, query,
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
		return false, fmt.Errorf("%w: inserting album %s: %v", shared.ErrPersistence, album.ExternalID, err)
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}

	existing, err := r.GetByExternalID(ctx, album.ExternalID)
	if err != nil {
		return false, err
	}
	*album = *existing
	return false, nil
}

// GetByExternalID retrieves an album by catalog id.
func (r *AlbumRepository) GetByExternalID(ctx context.Context, externalID string) (*models.Album, error) {
	query := `
		SELECT id, external_id, title, image_ref, artist_id, release_date, external_url, created_at
		FROM albums
		WHERE external_id = $1
	`
	var (
		a       models.Album
		release *time.Time
	)
	err := r.pool.QueryRow(ctx, query, externalID).Scan(
		&a.ID, &a.ExternalID, &a.Title, &a.ImageRef, &a.ArtistID, &release, &a.ExternalURL, &a.CreatedAt,
	)
	if err != nil {
		return nil, scanError(err, models.KindAlbum, externalID)
	}
	a.ReleaseDate = dateFrom(release)
	return &a, nil
}

// Count returns the number of albums.
func (r *AlbumRepository) Count(ctx context.Context) (int, error) {
	return count(ctx, r.pool, "albums")
}

// TagRepository handles taxonomy term operations.
type TagRepository struct {
	pool *pgxpool.Pool
}

// Create inserts a tag, or loads the stored one when the name already exists in its vocabulary.
func (r *TagRepository) Create(ctx context.Context, t *models.Tag) (bool, error) {
	if err := t.Validate(); err != nil {
		return false, fmt.Errorf("%w: invalid tag %q: %v", shared.ErrPersistence, t.Name, err)
	}
	if t.ID == "" {
		t.ID = shared.GenerateID()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO tags (id, vocabulary, name, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (vocabulary, name) DO NOTHING
	`
	tag, err := r.pool.Exec(ctx, query, t.ID, t.Vocabulary, t.Name, t.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("%w: inserting tag %q: %v", shared.ErrPersistence, t.Name, err)
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}

	existing, err := r.GetByName(ctx, t.Vocabulary, t.Name)
	if err != nil {
		return false, err
	}
	*t = *existing
	return false, nil
}

// Get retrieves a tag by record id.
func (r *TagRepository) Get(ctx context.Context, id string) (*models.Tag, error) {
	var t models.Tag
	err := r.pool.QueryRow(ctx, `SELECT id, vocabulary, name, created_at FROM tags WHERE id = $1`, id).
		Scan(&t.ID, &t.Vocabulary, &t.Name, &t.CreatedAt)
	if err != nil {
		return nil, scanError(err, models.KindTag, id)
	}
	return &t, nil
}

// GetByName retrieves a tag by exact name within a vocabulary.
func (r *TagRepository) GetByName(ctx context.Context, vocabulary, name string) (*models.Tag, error) {
	var t models.Tag
	err := r.pool.QueryRow(ctx, `SELECT id, vocabulary, name, created_at FROM tags WHERE vocabulary = $1 AND name = $2`, vocabulary, name).
		Scan(&t.ID, &t.Vocabulary, &t.Name, &t.CreatedAt)
	if err != nil {
		return nil, scanError(err, models.KindTag, vocabulary+"/"+name)
	}
	return &t, nil
}

// Count returns the number of tags.
func (r *TagRepository) Count(ctx context.Context) (int, error) {
	return count(ctx, r.pool, "tags")
}

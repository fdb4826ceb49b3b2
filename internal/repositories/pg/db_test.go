package pg

import (
	"context"
	"errors"
	"os"
	"slices"
	"testing"
	"time"

	"github.com/desertthunder/spotingest/internal/models"
	"github.com/desertthunder/spotingest/internal/shared"
)

// setupTestDB connects to SPOTINGEST_TEST_DATABASE_URL and empties the content tables.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	url := os.Getenv("SPOTINGEST_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("SPOTINGEST_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := New(ctx, url, 4)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	if _, err := db.pool.Exec(ctx, "TRUNCATE songs, albums, artists, tags"); err != nil {
		t.Fatalf("failed to truncate: %v", err)
	}
	return db
}

func TestStore(t *testing.T) {
	var _ models.ContentStore = (*DB)(nil)

	db := setupTestDB(t)
	ctx := context.Background()

	artist := &models.Artist{ExternalID: "a1", Title: "Artist", ImageRef: "s3://covers/a1.jpeg", GenreTagIDs: []string{"t2", "t1"}}
	created, err := db.Artists().Create(ctx, artist)
	if err != nil || !created {
		t.Fatalf("Create() = %v, %v", created, err)
	}

	dup := &models.Artist{ExternalID: "a1", Title: "Other", ImageRef: "x"}
	created, err = db.Artists().Create(ctx, dup)
	if err != nil || created {
		t.Fatalf("duplicate Create() = %v, %v", created, err)
	}
	if dup.ID != artist.ID || !slices.Equal(dup.GenreTagIDs, []string{"t2", "t1"}) {
		t.Errorf("expected stored artist, got %+v", dup)
	}

	song := &models.Song{
		ExternalID:    "s1",
		Title:         "Song",
		AlbumImageRef: "x",
		ArtistID:      artist.ID,
		ReleaseDate:   time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if _, err := db.Songs().Create(ctx, song); err != nil {
		t.Fatalf("failed to create song: %v", err)
	}
	got, err := db.Songs().GetByExternalID(ctx, "s1")
	if err != nil {
		t.Fatalf("failed to get song: %v", err)
	}
	if !got.ReleaseDate.Equal(song.ReleaseDate) {
		t.Errorf("ReleaseDate = %v, want %v", got.ReleaseDate, song.ReleaseDate)
	}

	album := &models.Album{ExternalID: "b1", Title: "Album", ImageRef: "x", ArtistID: artist.ID}
	if _, err := db.Albums().Create(ctx, album); err != nil {
		t.Fatalf("failed to create album: %v", err)
	}
	if _, err := db.Albums().GetByExternalID(ctx, "missing"); !errors.Is(err, shared.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	tag := &models.Tag{Vocabulary: models.GenreVocabulary, Name: "pop"}
	if _, err := db.Tags().Create(ctx, tag); err != nil {
		t.Fatalf("failed to create tag: %v", err)
	}
	again := &models.Tag{Vocabulary: models.GenreVocabulary, Name: "pop"}
	if created, err := db.Tags().Create(ctx, again); err != nil || created || again.ID != tag.ID {
		t.Errorf("duplicate tag Create() = %v, %v, id %s", created, err, again.ID)
	}

	for name, repo := range map[string]interface {
		Count(context.Context) (int, error)
	}{"artists": db.Artists(), "songs": db.Songs(), "albums": db.Albums(), "tags": db.Tags()} {
		if n, err := repo.Count(ctx); err != nil || n != 1 {
			t.Errorf("%s Count() = %d, %v", name, n, err)
		}
	}
}

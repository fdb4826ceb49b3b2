package repositories

import (
	"context"
	"database/sql"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/desertthunder/spotingest/internal/models"
	"github.com/desertthunder/spotingest/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if _, err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func newArtist(externalID string) *models.Artist {
	return &models.Artist{
		ExternalID:    externalID,
		Title:         "Artist " + externalID,
		FollowerCount: 42,
		ImageRef:      "file:///files/" + externalID + ".jpeg",
		ExternalURL:   "https://open.spotify.com/artist/" + externalID,
	}
}

func TestArtistRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Create", func(t *testing.T) {
		repo := NewArtistRepository(setupTestDB(t))
		artist := newArtist("a1")
		artist.GenreTagIDs = []string{"t1", "t2"}

		created, err := repo.Create(ctx, artist)
		if err != nil {
			t.Fatalf("failed to create artist: %v", err)
		}
		if !created {
			t.Error("expected created to be true")
		}
		if artist.ID == "" {
			t.Error("artist ID should be set after creation")
		}
		if artist.CreatedAt.IsZero() {
			t.Error("artist CreatedAt should be set after creation")
		}
	})

	t.Run("GetByExternalID", func(t *testing.T) {
		repo := NewArtistRepository(setupTestDB(t))
		artist := newArtist("a1")
		artist.GenreTagIDs = []string{"t2", "t1"}

		if _, err := repo.Create(ctx, artist); err != nil {
			t.Fatalf("failed to create artist: %v", err)
		}

		retrieved, err := repo.GetByExternalID(ctx, "a1")
		if err != nil {
			t.Fatalf("failed to get artist: %v", err)
		}

		if retrieved.ID != artist.ID {
			t.Errorf("expected ID %s, got %s", artist.ID, retrieved.ID)
		}
		if retrieved.FollowerCount != 42 || retrieved.Title != "Artist a1" {
			t.Errorf("unexpected artist %+v", retrieved)
		}
		if !slices.Equal(retrieved.GenreTagIDs, []string{"t2", "t1"}) {
			t.Errorf("expected genre order preserved, got %v", retrieved.GenreTagIDs)
		}

		byID, err := repo.Get(ctx, artist.ID)
		if err != nil || byID.ExternalID != "a1" {
			t.Errorf("Get() = %+v, %v", byID, err)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		repo := NewArtistRepository(setupTestDB(t))

		_, err := repo.GetByExternalID(ctx, "missing")
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Duplicate returns existing", func(t *testing.T) {
		repo := NewArtistRepository(setupTestDB(t))
		first := newArtist("a1")
		if _, err := repo.Create(ctx, first); err != nil {
			t.Fatalf("failed to create artist: %v", err)
		}

		second := newArtist("a1")
		second.Title = "Renamed"
		second.FollowerCount = 9000

		created, err := repo.Create(ctx, second)
		if err != nil {
			t.Fatalf("duplicate create should not fail: %v", err)
		}
		if created {
			t.Error("expected created to be false for duplicate")
		}
		if second.ID != first.ID || second.Title != "Artist a1" || second.FollowerCount != 42 {
			t.Errorf("expected stored record, got %+v", second)
		}

		if n, _ := repo.Count(ctx); n != 1 {
			t.Errorf("expected 1 artist, got %d", n)
		}
	})

	t.Run("ValidationError", func(t *testing.T) {
		repo := NewArtistRepository(setupTestDB(t))
		artist := newArtist("a1")
		artist.ImageRef = ""

		if _, err := repo.Create(ctx, artist); !errors.Is(err, shared.ErrPersistence) {
			t.Errorf("expected ErrPersistence, got %v", err)
		}
	})

	t.Run("ClosedDatabase", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewArtistRepository(db)
		db.Close()

		if _, err := repo.Create(ctx, newArtist("a1")); !errors.Is(err, shared.ErrPersistence) {
			t.Errorf("expected ErrPersistence, got %v", err)
		}
		if _, err := repo.GetByExternalID(ctx, "a1"); !errors.Is(err, shared.ErrPersistence) {
			t.Errorf("expected ErrPersistence, got %v", err)
		}
	})
}

func TestSongRepository(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*SongRepository, *models.Artist) {
		db := setupTestDB(t)
		artist := newArtist("a1")
		if _, err := NewArtistRepository(db).Create(ctx, artist); err != nil {
			t.Fatalf("failed to create artist: %v", err)
		}
		return NewSongRepository(db), artist
	}

	t.Run("Create and Get", func(t *testing.T) {
		repo, artist := setup(t)
		song := &models.Song{
			ExternalID:    "s1",
			Title:         "Song",
			AlbumImageRef: "file:///files/s1.jpeg",
			AlbumName:     "Record",
			ArtistID:      artist.ID,
			GenreTagIDs:   []string{"t1"},
			Popularity:    80,
			ReleaseDate:   time.Date(1999, 5, 1, 0, 0, 0, 0, time.UTC),
			ExternalURL:   "https://open.spotify.com/track/s1",
		}

		created, err := repo.Create(ctx, song)
		if err != nil || !created {
			t.Fatalf("Create() = %v, %v", created, err)
		}

		got, err := repo.GetByExternalID(ctx, "s1")
		if err != nil {
			t.Fatalf("failed to get song: %v", err)
		}
		if got.ArtistID != artist.ID || got.AlbumName != "Record" || got.Popularity != 80 {
			t.Errorf("unexpected song %+v", got)
		}
		if !got.ReleaseDate.Equal(song.ReleaseDate) {
			t.Errorf("ReleaseDate = %v, want %v", got.ReleaseDate, song.ReleaseDate)
		}
		if !slices.Equal(got.GenreTagIDs, []string{"t1"}) {
			t.Errorf("GenreTagIDs = %v", got.GenreTagIDs)
		}
	})

	t.Run("Zero release date is stored as null", func(t *testing.T) {
		repo, artist := setup(t)
		song := &models.Song{ExternalID: "s1", Title: "Song", AlbumImageRef: "x", ArtistID: artist.ID}

		if _, err := repo.Create(ctx, song); err != nil {
			t.Fatalf("failed to create song: %v", err)
		}
		got, err := repo.GetByExternalID(ctx, "s1")
		if err != nil {
			t.Fatalf("failed to get song: %v", err)
		}
		if !got.ReleaseDate.IsZero() {
			t.Errorf("expected zero release date, got %v", got.ReleaseDate)
		}
		if got.GenreTagIDs != nil {
			t.Errorf("expected no genres, got %v", got.GenreTagIDs)
		}
	})

	t.Run("Unknown artist violates foreign key", func(t *testing.T) {
		repo, _ := setup(t)
		song := &models.Song{ExternalID: "s1", Title: "Song", AlbumImageRef: "x", ArtistID: "nope"}

		if _, err := repo.Create(ctx, song); !errors.Is(err, shared.ErrPersistence) {
			t.Errorf("expected ErrPersistence, got %v", err)
		}
	})

	t.Run("Duplicate", func(t *testing.T) {
		repo, artist := setup(t)
		for range 2 {
			song := &models.Song{ExternalID: "s1", Title: "Song", AlbumImageRef: "x", ArtistID: artist.ID}
			if _, err := repo.Create(ctx, song); err != nil {
				t.Fatalf("failed to create song: %v", err)
			}
		}
		if n, _ := repo.Count(ctx); n != 1 {
			t.Errorf("expected 1 song, got %d", n)
		}
	})
}

func TestAlbumRepository(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	artist := newArtist("a1")
	if _, err := NewArtistRepository(db).Create(ctx, artist); err != nil {
		t.Fatalf("failed to create artist: %v", err)
	}
	repo := NewAlbumRepository(db)

	album := &models.Album{
		ExternalID:  "b1",
		Title:       "Album",
		ImageRef:    "file:///files/b1.jpeg",
		ArtistID:    artist.ID,
		ReleaseDate: time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	created, err := repo.Create(ctx, album)
	if err != nil || !created {
		t.Fatalf("Create() = %v, %v", created, err)
	}

	dup := &models.Album{ExternalID: "b1", Title: "Other", ImageRef: "y", ArtistID: artist.ID}
	created, err = repo.Create(ctx, dup)
	if err != nil || created {
		t.Fatalf("duplicate Create() = %v, %v", created, err)
	}
	if dup.Title != "Album" || !dup.ReleaseDate.Equal(album.ReleaseDate) {
		t.Errorf("expected stored album, got %+v", dup)
	}

	if _, err := repo.GetByExternalID(ctx, "missing"); !errors.Is(err, shared.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTagRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewTagRepository(setupTestDB(t))

	pop := &models.Tag{Vocabulary: models.GenreVocabulary, Name: "pop"}
	created, err := repo.Create(ctx, pop)
	if err != nil || !created {
		t.Fatalf("Create() = %v, %v", created, err)
	}

	t.Run("exact match only", func(t *testing.T) {
		if _, err := repo.GetByName(ctx, models.GenreVocabulary, "Pop"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected case-sensitive miss, got %v", err)
		}
		if _, err := repo.GetByName(ctx, "moods", "pop"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected vocabulary-scoped miss, got %v", err)
		}
	})

	t.Run("duplicate name returns existing", func(t *testing.T) {
		again := &models.Tag{Vocabulary: models.GenreVocabulary, Name: "pop"}
		created, err := repo.Create(ctx, again)
		if err != nil || created {
			t.Fatalf("duplicate Create() = %v, %v", created, err)
		}
		if again.ID != pop.ID {
			t.Errorf("expected existing id %s, got %s", pop.ID, again.ID)
		}
	})

	t.Run("same name in another vocabulary", func(t *testing.T) {
		other := &models.Tag{Vocabulary: "moods", Name: "pop"}
		if created, err := repo.Create(ctx, other); err != nil || !created {
			t.Fatalf("Create() = %v, %v", created, err)
		}
	})

	t.Run("Get", func(t *testing.T) {
		got, err := repo.Get(ctx, pop.ID)
		if err != nil || got.Name != "pop" {
			t.Errorf("Get() = %+v, %v", got, err)
		}
	})

	t.Run("validation", func(t *testing.T) {
		if _, err := repo.Create(ctx, &models.Tag{Vocabulary: models.GenreVocabulary}); !errors.Is(err, shared.ErrPersistence) {
			t.Errorf("expected ErrPersistence, got %v", err)
		}
	})

	if n, _ := repo.Count(ctx); n != 2 {
		t.Errorf("expected 2 tags, got %d", n)
	}
}

func TestStore(t *testing.T) {
	var _ models.ContentStore = (*Store)(nil)

	store := NewStore(setupTestDB(t))
	ctx := context.Background()

	artist := newArtist("a1")
	if _, err := store.Artists().Create(ctx, artist); err != nil {
		t.Fatalf("failed to create artist: %v", err)
	}
	if n, err := store.Artists().Count(ctx); err != nil || n != 1 {
		t.Errorf("Count() = %d, %v", n, err)
	}
	if n, err := store.Songs().Count(ctx); err != nil || n != 0 {
		t.Errorf("Count() = %d, %v", n, err)
	}
}

package taxonomy

import (
	"context"
	"fmt"
	"slices"
	"testing"

	"github.com/desertthunder/spotingest/internal/models"
	"github.com/desertthunder/spotingest/internal/repositories"
	"github.com/desertthunder/spotingest/internal/shared"
)

// mockTags is an in-memory TagRepository that can fail for selected names.
type mockTags struct {
	byName      map[string]*models.Tag
	failLookup  map[string]bool
	failCreate  map[string]bool
	lookupCalls int
}

func newMockTags() *mockTags {
	return &mockTags{byName: map[string]*models.Tag{}, failLookup: map[string]bool{}, failCreate: map[string]bool{}}
}

func (m *mockTags) Get(_ context.Context, id string) (*models.Tag, error) {
	for _, t := range m.byName {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *mockTags) GetByName(_ context.Context, vocabulary, name string) (*models.Tag, error) {
	m.lookupCalls++
	if m.failLookup[name] {
		return nil, fmt.Errorf("%w: connection lost", shared.ErrPersistence)
	}
	if t, ok := m.byName[vocabulary+"/"+name]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("%w: tag %s", shared.ErrNotFound, name)
}

func (m *mockTags) Create(_ context.Context, tag *models.Tag) (bool, error) {
	if m.failCreate[tag.Name] {
		return false, fmt.Errorf("%w: disk full", shared.ErrPersistence)
	}
	tag.ID = "id-" + tag.Name
	m.byName[tag.Vocabulary+"/"+tag.Name] = tag
	return true, nil
}

func (m *mockTags) Count(context.Context) (int, error) { return len(m.byName), nil }

func TestResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("creates missing tags in order", func(t *testing.T) {
		tags := newMockTags()
		r := NewResolver(tags, nil)

		got := r.Resolve(ctx, []string{"rock", "pop"})
		if want := []string{"id-rock", "id-pop"}; !slices.Equal(got, want) {
			t.Errorf("Resolve() = %v, want %v", got, want)
		}
		if r.Created() != 2 {
			t.Errorf("Created() = %d, want 2", r.Created())
		}
	})

	t.Run("reuses existing tags", func(t *testing.T) {
		tags := newMockTags()
		tags.byName["genres/pop"] = &models.Tag{ID: "existing", Vocabulary: "genres", Name: "pop"}
		r := NewResolver(tags, nil)

		got := r.Resolve(ctx, []string{"pop"})
		if !slices.Equal(got, []string{"existing"}) {
			t.Errorf("Resolve() = %v, want [existing]", got)
		}
		if r.Created() != 0 {
			t.Errorf("Created() = %d, want 0", r.Created())
		}
	})

	t.Run("drops failing genres", func(t *testing.T) {
		tags := newMockTags()
		tags.failLookup["jazz"] = true
		tags.failCreate["folk"] = true
		r := NewResolver(tags, nil)

		got := r.Resolve(ctx, []string{"pop", "jazz", "folk", "rock"})
		if want := []string{"id-pop", "id-rock"}; !slices.Equal(got, want) {
			t.Errorf("Resolve() = %v, want %v", got, want)
		}
	})

	t.Run("memoizes lookups", func(t *testing.T) {
		tags := newMockTags()
		r := NewResolver(tags, nil)

		r.Resolve(ctx, []string{"pop"})
		r.Resolve(ctx, []string{"pop", "pop"})
		if tags.lookupCalls != 1 {
			t.Errorf("expected 1 lookup, got %d", tags.lookupCalls)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if got := NewResolver(newMockTags(), nil).Resolve(ctx, nil); len(got) != 0 {
			t.Errorf("Resolve(nil) = %v", got)
		}
	})
}

func TestResolveWithSQLite(t *testing.T) {
	ctx := context.Background()
	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	defer db.Close()
	if _, err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	store := repositories.NewStore(db)
	first := NewResolver(store.Tags(), nil).Resolve(ctx, []string{"pop", "rock"})
	second := NewResolver(store.Tags(), nil).Resolve(ctx, []string{"rock", "Pop"})

	if first[1] != second[0] {
		t.Errorf("expected rock to resolve to the same id, got %s and %s", first[1], second[0])
	}
	if first[0] == second[1] {
		t.Error("expected Pop and pop to be distinct tags")
	}

	names := make([]string, 0, len(first))
	for _, id := range models.SplitGenres(models.JoinGenres(first)) {
		tag, err := store.Tags().Get(ctx, id)
		if err != nil {
			t.Fatalf("failed to get tag %s: %v", id, err)
		}
		names = append(names, tag.Name)
	}
	if !slices.Equal(names, []string{"pop", "rock"}) {
		t.Errorf("round trip = %v, want [pop rock]", names)
	}

	if n, _ := store.Tags().Count(ctx); n != 3 {
		t.Errorf("expected 3 tags, got %d", n)
	}
}

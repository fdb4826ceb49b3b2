package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/spotingest/internal/models"
	"github.com/desertthunder/spotingest/internal/shared"
)

// TagRepository persists taxonomy terms, unique per (vocabulary, name).
type TagRepository struct {
	db *sql.DB
}

// NewTagRepository creates a new TagRepository with the given database connection
func NewTagRepository(db *sql.DB) *TagRepository {
	return &TagRepository{db: db}
}

// Create inserts tag unless the name already exists in its vocabulary, in which case
// tag is replaced with the stored term and created is false.
func (r *TagRepository) Create(ctx context.Context, tag *models.Tag) (bool, error) {
	if err := tag.Validate(); err != nil {
		return false, fmt.Errorf("%w: invalid tag %q: %v", shared.ErrPersistence, tag.Name, err)
	}
	if tag.ID == "" {
		tag.ID = shared.GenerateID()
	}
	if tag.CreatedAt.IsZero() {
		tag.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO tags (id, vocabulary, name, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (vocabulary, name) DO NOTHING
	`

	result, err := r.db.ExecContext(ctx, query, tag.ID, tag.Vocabulary, tag.Name, tag.CreatedAt)
	if err != nil {
		return false, persistenceError("insert tag", tag.Name, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, persistenceError("insert tag", tag.Name, err)
	}
	if rows == 1 {
		return true, nil
	}

	existing, err := r.GetByName(ctx, tag.Vocabulary, tag.Name)
	if err != nil {
		return false, err
	}
	*tag = *existing
	return false, nil
}

// Get retrieves a tag by record ID
func (r *TagRepository) Get(ctx context.Context, id string) (*models.Tag, error) {
	query := `SELECT id, vocabulary, name, created_at FROM tags WHERE id = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id), id)
}

// GetByName retrieves a tag by exact name within a vocabulary
func (r *TagRepository) GetByName(ctx context.Context, vocabulary, name string) (*models.Tag, error) {
	query := `SELECT id, vocabulary, name, created_at FROM tags WHERE vocabulary = ? AND name = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, query, vocabulary, name), vocabulary+"/"+name)
}

// Count returns the number of stored tags across vocabularies
func (r *TagRepository) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, "tags")
}

func (r *TagRepository) scanOne(row *sql.Row, key string) (*models.Tag, error) {
	var t models.Tag
	err := row.Scan(&t.ID, &t.Vocabulary, &t.Name, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(models.KindTag, key)
	}
	if err != nil {
		return nil, persistenceError("scan tag", key, err)
	}
	return &t, nil
}

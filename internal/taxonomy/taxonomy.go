// Package taxonomy maps genre names to tag ids, creating tags on first sight.
package taxonomy

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotingest/internal/models"
	"github.com/desertthunder/spotingest/internal/shared"
)

// Resolver resolves names within one vocabulary. Resolved ids are memoized for the
// resolver's lifetime; tags are never deleted, so a memoized id stays valid.
type Resolver struct {
	tags       models.TagRepository
	vocabulary string
	logger     *log.Logger

	mu      sync.Mutex
	cache   map[string]string
	created int
}

// NewResolver creates a Resolver for the genres vocabulary.
func NewResolver(tags models.TagRepository, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &Resolver{
		tags:       tags,
		vocabulary: models.GenreVocabulary,
		logger:     logger,
		cache:      make(map[string]string),
	}
}

// Resolve returns the tag id of each name, in input order.
//
// A name whose lookup or creation fails is logged and left out of the result.
func (r *Resolver) Resolve(ctx context.Context, names []string) []string {
	ids := make([]string, 0, len(names))
	for _, name := range names {
		id, err := r.resolve(ctx, name)
		if err != nil {
			r.logger.Warn("dropping genre", "genre", name, "kind", shared.ErrorKind(err), "error", err)
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// Created reports how many tags this resolver has created.
func (r *Resolver) Created() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.created
}

func (r *Resolver) resolve(ctx context.Context, name string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.cache[name]; ok {
		return id, nil
	}

	tag, err := r.tags.GetByName(ctx, r.vocabulary, name)
	switch {
	case err == nil:
	case errors.Is(err, shared.ErrNotFound):
		tag = &models.Tag{Vocabulary: r.vocabulary, Name: name}
		created, err := r.tags.Create(ctx, tag)
		if err != nil {
			return "", fmt.Errorf("creating tag %q: %w", name, err)
		}
		if created {
			r.created++
			r.logger.Debug("created genre tag", "genre", name, "id", tag.ID)
		}
	default:
		return "", fmt.Errorf("looking up tag %q: %w", name, err)
	}

	r.cache[name] = tag.ID
	return tag.ID, nil
}

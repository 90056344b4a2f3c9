package repository

import (
	"context"

	"github.com/itsTranT1706/movie-prenium-sub001/pkg/models"
)

// TitleRepository defines the cache/persistence port for canonical titles.
type TitleRepository interface {
	// FindByExternalIDWithCache returns a title by canonical metadata ID
	// only when a fresh copy exists (cache hit or a recently updated row).
	FindByExternalIDWithCache(ctx context.Context, externalID string) (*models.Title, error)

	// FindByExternalID returns the last-known-good title by canonical
	// metadata ID regardless of age.
	FindByExternalID(ctx context.Context, externalID string) (*models.Title, error)

	// FindBySlug returns the last-known-good title by slug.
	FindBySlug(ctx context.Context, slug string) (*models.Title, error)

	// Save upserts a title keyed by internal ID, adopting the identity of an
	// existing row for the same external ID or slug.
	Save(ctx context.Context, title *models.Title) error
}

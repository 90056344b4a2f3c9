package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/itsTranT1706/movie-prenium-sub001/pkg/errors"
	"github.com/itsTranT1706/movie-prenium-sub001/pkg/interfaces"
	"github.com/itsTranT1706/movie-prenium-sub001/pkg/models"
	"github.com/itsTranT1706/movie-prenium-sub001/pkg/repository"
)

// GormTitleRepository implements TitleRepository using GORM with a
// cache-aside layer for fresh reads.
type GormTitleRepository struct {
	db     *gorm.DB
	cache  interfaces.Cache
	ttl    time.Duration
	logger interfaces.Logger
}

// NewGormTitleRepository creates a new title repository. ttl bounds how long
// a stored title counts as fresh.
func NewGormTitleRepository(db *gorm.DB, cache interfaces.Cache, ttl time.Duration, logger interfaces.Logger) *GormTitleRepository {
	return &GormTitleRepository{
		db:     db,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

func externalIDKey(externalID string) string {
	return "title:ext:" + externalID
}

// FindByExternalIDWithCache returns a fresh title by canonical metadata ID.
// A NotFound error means no fresh copy exists; the row may still be served
// stale through FindByExternalID.
func (r *GormTitleRepository) FindByExternalIDWithCache(ctx context.Context, externalID string) (*models.Title, error) {
	if cached, err := r.cache.Get(ctx, externalIDKey(externalID)); err == nil && cached != nil {
		if title, ok := cached.(*models.Title); ok {
			return title, nil
		}
	}

	title, err := repository.FindOneBy[models.Title](ctx, r.db, "external_id = ?", externalID)
	if err != nil {
		return nil, err
	}
	if time.Since(title.UpdatedAt) > r.ttl {
		r.logger.Debug("Stored title is stale",
			interfaces.String("external_id", externalID),
			interfaces.Duration("age", time.Since(title.UpdatedAt)))
		return nil, pkgerrors.NotFound("no fresh title for external id " + externalID)
	}

	r.cache.Set(ctx, externalIDKey(externalID), title, r.ttl)
	return title, nil
}

// FindByExternalID returns the last-known-good title regardless of age.
func (r *GormTitleRepository) FindByExternalID(ctx context.Context, externalID string) (*models.Title, error) {
	return repository.FindOneBy[models.Title](ctx, r.db, "external_id = ?", externalID)
}

// FindBySlug returns the last-known-good title by slug.
func (r *GormTitleRepository) FindBySlug(ctx context.Context, slug string) (*models.Title, error) {
	return repository.FindOneBy[models.Title](ctx, r.db, "slug = ?", slug)
}

// Save upserts a title. Titles created by this subsystem keep their internal
// ID for life; a save without an ID adopts the identity of any existing row
// for the same external ID or slug so concurrent writers converge.
func (r *GormTitleRepository) Save(ctx context.Context, title *models.Title) error {
	now := time.Now().UTC()

	if title.ID == uuid.Nil {
		if existing := r.findExisting(ctx, title); existing != nil {
			title.ID = existing.ID
			title.CreatedAt = existing.CreatedAt
			r.logger.Debug("Adopted existing title identity",
				interfaces.String("title_id", existing.ID.String()),
				interfaces.String("external_id", title.ExternalID))
		} else {
			title.ID = uuid.New()
			title.CreatedAt = now
		}
	}
	if title.CreatedAt.IsZero() {
		title.CreatedAt = now
	}
	title.UpdatedAt = now

	if err := repository.Save(ctx, r.db, title); err != nil {
		return err
	}

	if title.ExternalID != "" {
		r.cache.Set(ctx, externalIDKey(title.ExternalID), title, r.ttl)
	}
	return nil
}

func (r *GormTitleRepository) findExisting(ctx context.Context, title *models.Title) *models.Title {
	if title.ExternalID != "" {
		if existing, err := r.FindByExternalID(ctx, title.ExternalID); err == nil {
			return existing
		}
	}
	if title.Slug != "" {
		if existing, err := r.FindBySlug(ctx, title.Slug); err == nil {
			return existing
		}
	}
	return nil
}

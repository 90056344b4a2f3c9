package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	pkgerrors "github.com/itsTranT1706/movie-prenium-sub001/pkg/errors"
)

// FindOneBy finds a single entity by a query condition.
func FindOneBy[T any](ctx context.Context, db *gorm.DB, query string, args ...interface{}) (*T, error) {
	var entity T
	if err := db.WithContext(ctx).Where(query, args...).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("entity not found")
		}
		return nil, err
	}
	return &entity, nil
}

// Save upserts an entity: inserts when the primary key is new, updates otherwise.
func Save[T any](ctx context.Context, db *gorm.DB, entity *T) error {
	return db.WithContext(ctx).Save(entity).Error
}

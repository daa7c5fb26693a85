package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// QueryOption narrows a query built by Find and FindOne.
type QueryOption func(db *gorm.DB) *gorm.DB

func Where(query any, args ...any) QueryOption {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(query, args...)
	}
}

func OrderBy(order string) QueryOption {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(order)
	}
}

// ActiveOnly filters on is_active when enabled is true.
func ActiveOnly(enabled bool) QueryOption {
	return func(db *gorm.DB) *gorm.DB {
		if !enabled {
			return db
		}
		return db.Where("is_active = ?", true)
	}
}

func Find[T any](ctx context.Context, db *gorm.DB, opts ...QueryOption) ([]T, error) {
	var result []T
	err := buildQuery[T](ctx, db, opts...).Find(&result).Error
	return result, err
}

// FindOne returns nil, nil when no row matches.
func FindOne[T any](ctx context.Context, db *gorm.DB, opts ...QueryOption) (*T, error) {
	var result T
	err := buildQuery[T](ctx, db, opts...).Take(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func Count[T any](ctx context.Context, db *gorm.DB, opts ...QueryOption) (int64, error) {
	var count int64
	err := buildQuery[T](ctx, db, opts...).Count(&count).Error
	return count, err
}

func buildQuery[T any](ctx context.Context, db *gorm.DB, opts ...QueryOption) *gorm.DB {
	stmt := db.WithContext(ctx).Model(new(T))
	for _, opt := range opts {
		stmt = opt(stmt)
	}
	return stmt
}

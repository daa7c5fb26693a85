package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/wardboard/internal/status/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, status *domain.Status) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO statuses (
			id, status_key, label, color_tag, icon_tag, sort_order,
			is_active, applies_to_room, applies_to_bed, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		status.ID,
		status.Key,
		status.Label,
		status.ColorTag,
		status.IconTag,
		status.SortOrder,
		status.IsActive,
		status.AppliesToRoom,
		status.AppliesToBed,
		status.CreatedAt,
		status.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, status *domain.Status) error {
	return db.WithContext(ctx).Exec(
		`UPDATE statuses
		SET label = ?, color_tag = ?, icon_tag = ?, sort_order = ?,
			is_active = ?, applies_to_room = ?, applies_to_bed = ?, updated_at = ?
		WHERE id = ?`,
		status.Label,
		status.ColorTag,
		status.IconTag,
		status.SortOrder,
		status.IsActive,
		status.AppliesToRoom,
		status.AppliesToBed,
		status.UpdatedAt,
		status.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Status, error) {
	var status domain.Status
	err := db.WithContext(ctx).Where("id = ?", id).First(&status).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &status, nil
}

func (r *repo) FindByKey(ctx context.Context, db *gorm.DB, key string) (*domain.Status, error) {
	var status domain.Status
	err := db.WithContext(ctx).Where("status_key = ?", strings.TrimSpace(key)).First(&status).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &status, nil
}

func (r *repo) FindByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]domain.Status, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var statuses []domain.Status
	err := db.WithContext(ctx).Where("id IN ?", ids).Find(&statuses).Error
	return statuses, err
}

func (r *repo) List(ctx context.Context, db *gorm.DB, activeOnly bool) ([]domain.Status, error) {
	var statuses []domain.Status
	stmt := db.WithContext(ctx).Model(&domain.Status{})
	if activeOnly {
		stmt = stmt.Where("is_active = ?", true)
	}
	err := stmt.Order("sort_order asc, id asc").Find(&statuses).Error
	return statuses, err
}

func (r *repo) Count(ctx context.Context, db *gorm.DB) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&domain.Status{}).Count(&count).Error
	return count, err
}

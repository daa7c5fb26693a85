package repository

import (
	"context"
	"time"

	"github.com/smallbiznis/wardboard/internal/audit/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *domain.AuditEntry) error {
	if entry == nil {
		return nil
	}
	return db.WithContext(ctx).Exec(
		`INSERT INTO audit_entries (
			id, target_type, room_id, bed_id, area_id, from_status_id, to_status_id,
			changed_by, changed_at, note, meta
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.TargetType,
		entry.RoomID,
		entry.BedID,
		entry.AreaID,
		entry.FromStatusID,
		entry.ToStatusID,
		entry.ChangedBy,
		entry.ChangedAt,
		entry.Note,
		entry.Meta,
	).Error
}

// List returns entries newest first. Snowflake ids are time ordered, so the
// id alone is a stable cursor.
func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.AuditEntry, error) {
	var entries []domain.AuditEntry
	stmt := db.WithContext(ctx).Model(&domain.AuditEntry{})

	if filter.AreaID != nil {
		stmt = stmt.Where("area_id = ?", *filter.AreaID)
	}
	if filter.TargetType != "" {
		stmt = stmt.Where("target_type = ?", filter.TargetType)
	}
	if filter.ChangedBy != nil {
		stmt = stmt.Where("changed_by = ?", *filter.ChangedBy)
	}
	if filter.RoomID != nil {
		stmt = stmt.Where("room_id = ?", *filter.RoomID)
	}
	if filter.BedID != nil {
		stmt = stmt.Where("bed_id = ?", *filter.BedID)
	}
	if filter.BeforeID != nil {
		stmt = stmt.Where("id < ?", *filter.BeforeID)
	}

	stmt = stmt.Order("id desc")
	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit + 1)
	}

	if err := stmt.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repo) DeleteBefore(ctx context.Context, db *gorm.DB, threshold time.Time) (int64, error) {
	result := db.WithContext(ctx).Exec(`DELETE FROM audit_entries WHERE changed_at < ?`, threshold)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

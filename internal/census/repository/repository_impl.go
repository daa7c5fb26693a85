package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/wardboard/internal/census/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) CountBeds(ctx context.Context, db *gorm.DB, areaID *snowflake.ID) ([]domain.BedCountRow, error) {
	query := `SELECT r.area_id AS area_id, b.is_available AS is_available, s.status_key AS status_key, COUNT(*) AS beds
		FROM beds b
		JOIN rooms r ON r.id = b.room_id
		LEFT JOIN bed_states bs ON bs.bed_id = b.id
		LEFT JOIN statuses s ON s.id = bs.status_id
		WHERE b.is_active = ? AND r.is_active = ?`
	args := []any{true, true}
	if areaID != nil {
		query += ` AND r.area_id = ?`
		args = append(args, *areaID)
	}
	query += ` GROUP BY r.area_id, b.is_available, s.status_key`

	var rows []domain.BedCountRow
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

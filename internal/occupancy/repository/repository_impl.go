package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/wardboard/internal/occupancy/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) ApplyRoomState(ctx context.Context, tx *gorm.DB, next domain.RoomState) (*snowflake.ID, error) {
	current, err := r.lockRoomState(ctx, tx, next.RoomID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		inserted, err := insertIfAbsent(ctx, tx, &next)
		if err != nil {
			return nil, err
		}
		if inserted {
			return nil, nil
		}
		// Lost the create race; the winner's row is now visible.
		current, err = r.lockRoomState(ctx, tx, next.RoomID)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, fmt.Errorf("room state %s missing after conflicting insert", next.RoomID)
		}
	}

	previous := current.StatusID
	err = tx.WithContext(ctx).Exec(
		`UPDATE room_states SET status_id = ?, updated_by = ?, updated_at = ?, note = ? WHERE room_id = ?`,
		next.StatusID, next.UpdatedBy, next.UpdatedAt, next.Note, next.RoomID,
	).Error
	if err != nil {
		return nil, err
	}
	return &previous, nil
}

func (r *repo) ApplyBedState(ctx context.Context, tx *gorm.DB, next domain.BedState) (*snowflake.ID, error) {
	current, err := r.lockBedState(ctx, tx, next.BedID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		inserted, err := insertIfAbsent(ctx, tx, &next)
		if err != nil {
			return nil, err
		}
		if inserted {
			return nil, nil
		}
		current, err = r.lockBedState(ctx, tx, next.BedID)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, fmt.Errorf("bed state %s missing after conflicting insert", next.BedID)
		}
	}

	previous := current.StatusID
	err = tx.WithContext(ctx).Exec(
		`UPDATE bed_states SET status_id = ?, updated_by = ?, updated_at = ?, note = ? WHERE bed_id = ?`,
		next.StatusID, next.UpdatedBy, next.UpdatedAt, next.Note, next.BedID,
	).Error
	if err != nil {
		return nil, err
	}
	return &previous, nil
}

func (r *repo) lockRoomState(ctx context.Context, tx *gorm.DB, roomID snowflake.ID) (*domain.RoomState, error) {
	var state domain.RoomState
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("room_id = ?", roomID).
		Take(&state).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

func (r *repo) lockBedState(ctx context.Context, tx *gorm.DB, bedID snowflake.ID) (*domain.BedState, error) {
	var state domain.BedState
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("bed_id = ?", bedID).
		Take(&state).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// insertIfAbsent reports whether the row was created. A concurrent creator
// makes it a no-op rather than a unique violation.
func insertIfAbsent(ctx context.Context, tx *gorm.DB, row any) (bool, error) {
	result := tx.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(row)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *repo) ListRoomStates(ctx context.Context, db *gorm.DB, roomIDs []snowflake.ID) ([]domain.RoomState, error) {
	if len(roomIDs) == 0 {
		return []domain.RoomState{}, nil
	}
	var states []domain.RoomState
	if err := db.WithContext(ctx).Where("room_id IN ?", roomIDs).Find(&states).Error; err != nil {
		return nil, err
	}
	return states, nil
}

func (r *repo) ListBedStates(ctx context.Context, db *gorm.DB, bedIDs []snowflake.ID) ([]domain.BedState, error) {
	if len(bedIDs) == 0 {
		return []domain.BedState{}, nil
	}
	var states []domain.BedState
	if err := db.WithContext(ctx).Where("bed_id IN ?", bedIDs).Find(&states).Error; err != nil {
		return nil, err
	}
	return states, nil
}

func (r *repo) ResetRoomStates(ctx context.Context, tx *gorm.DB, filter domain.ResetFilter) (int64, error) {
	query := `UPDATE room_states SET status_id = ?, updated_at = ? WHERE status_id = ?`
	args := []any{filter.ToStatusID, filter.At, filter.FromStatusID}
	if len(filter.AreaIDs) > 0 {
		query += ` AND room_id IN (SELECT id FROM rooms WHERE area_id IN ?)`
		args = append(args, filter.AreaIDs)
	}
	return exec(ctx, tx, query, args...)
}

func (r *repo) ResetBedStates(ctx context.Context, tx *gorm.DB, filter domain.ResetFilter) (int64, error) {
	query := `UPDATE bed_states SET status_id = ?, updated_at = ? WHERE status_id = ?`
	args := []any{filter.ToStatusID, filter.At, filter.FromStatusID}
	if len(filter.AreaIDs) > 0 {
		query += ` AND bed_id IN (SELECT b.id FROM beds b JOIN rooms r ON r.id = b.room_id WHERE r.area_id IN ?)`
		args = append(args, filter.AreaIDs)
	}
	return exec(ctx, tx, query, args...)
}

func (r *repo) ResetRoomStatesByID(ctx context.Context, tx *gorm.DB, filter domain.ResetFilter, roomIDs []snowflake.ID) (int64, error) {
	if len(roomIDs) == 0 {
		return 0, nil
	}
	return exec(ctx, tx,
		`UPDATE room_states SET status_id = ?, updated_at = ? WHERE status_id = ? AND room_id IN ?`,
		filter.ToStatusID, filter.At, filter.FromStatusID, roomIDs,
	)
}

func (r *repo) ResetBedStatesByID(ctx context.Context, tx *gorm.DB, filter domain.ResetFilter, bedIDs []snowflake.ID) (int64, error) {
	if len(bedIDs) == 0 {
		return 0, nil
	}
	return exec(ctx, tx,
		`UPDATE bed_states SET status_id = ?, updated_at = ? WHERE status_id = ? AND bed_id IN ?`,
		filter.ToStatusID, filter.At, filter.FromStatusID, bedIDs,
	)
}

func (r *repo) LockRoomResetCandidates(ctx context.Context, tx *gorm.DB, filter domain.ResetFilter) ([]domain.ResetCandidate, error) {
	stmt := tx.WithContext(ctx).
		Table("room_states AS rs").
		Select("rs.room_id AS target_id, rs.room_id AS room_id, r.area_id AS area_id").
		Joins("JOIN rooms r ON r.id = rs.room_id").
		Where("rs.status_id = ?", filter.FromStatusID)
	if len(filter.AreaIDs) > 0 {
		stmt = stmt.Where("r.area_id IN ?", filter.AreaIDs)
	}

	var out []domain.ResetCandidate
	err := stmt.Order("rs.room_id").Clauses(clause.Locking{Strength: "UPDATE"}).Scan(&out).Error
	return out, err
}

func (r *repo) LockBedResetCandidates(ctx context.Context, tx *gorm.DB, filter domain.ResetFilter) ([]domain.ResetCandidate, error) {
	stmt := tx.WithContext(ctx).
		Table("bed_states AS bs").
		Select("bs.bed_id AS target_id, b.room_id AS room_id, r.area_id AS area_id").
		Joins("JOIN beds b ON b.id = bs.bed_id").
		Joins("JOIN rooms r ON r.id = b.room_id").
		Where("bs.status_id = ?", filter.FromStatusID)
	if len(filter.AreaIDs) > 0 {
		stmt = stmt.Where("r.area_id IN ?", filter.AreaIDs)
	}

	var out []domain.ResetCandidate
	err := stmt.Order("bs.bed_id").Clauses(clause.Locking{Strength: "UPDATE"}).Scan(&out).Error
	return out, err
}

func exec(ctx context.Context, tx *gorm.DB, query string, args ...any) (int64, error) {
	result := tx.WithContext(ctx).Exec(query, args...)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

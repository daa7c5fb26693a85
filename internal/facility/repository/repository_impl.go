package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/wardboard/internal/facility/domain"
	"github.com/smallbiznis/wardboard/pkg/repository"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertArea(ctx context.Context, db *gorm.DB, area *domain.Area) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO areas (id, name, slug, sort_order, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		area.ID, area.Name, area.Slug, area.SortOrder, area.IsActive, area.CreatedAt, area.UpdatedAt,
	).Error
}

func (r *repo) UpdateArea(ctx context.Context, db *gorm.DB, area *domain.Area) error {
	return db.WithContext(ctx).Exec(
		`UPDATE areas SET name = ?, slug = ?, sort_order = ?, is_active = ?, updated_at = ? WHERE id = ?`,
		area.Name, area.Slug, area.SortOrder, area.IsActive, area.UpdatedAt, area.ID,
	).Error
}

func (r *repo) FindAreaByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Area, error) {
	return repository.FindOne[domain.Area](ctx, db, repository.Where("id = ?", id))
}

func (r *repo) ListAreas(ctx context.Context, db *gorm.DB, activeOnly bool) ([]domain.Area, error) {
	return repository.Find[domain.Area](ctx, db,
		repository.ActiveOnly(activeOnly),
		repository.OrderBy("sort_order asc, id asc"),
	)
}

func (r *repo) InsertRoom(ctx context.Context, db *gorm.DB, room *domain.Room) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO rooms (id, area_id, code, name, sort_order, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		room.ID, room.AreaID, room.Code, room.Name, room.SortOrder, room.IsActive, room.CreatedAt, room.UpdatedAt,
	).Error
}

func (r *repo) UpdateRoom(ctx context.Context, db *gorm.DB, room *domain.Room) error {
	return db.WithContext(ctx).Exec(
		`UPDATE rooms SET area_id = ?, code = ?, name = ?, sort_order = ?, is_active = ?, updated_at = ? WHERE id = ?`,
		room.AreaID, room.Code, room.Name, room.SortOrder, room.IsActive, room.UpdatedAt, room.ID,
	).Error
}

func (r *repo) FindRoomByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Room, error) {
	return repository.FindOne[domain.Room](ctx, db, repository.Where("id = ?", id))
}

func (r *repo) ListRooms(ctx context.Context, db *gorm.DB, filter domain.RoomFilter) ([]domain.Room, error) {
	opts := []repository.QueryOption{repository.ActiveOnly(filter.ActiveOnly)}
	if filter.AreaID != nil {
		opts = append(opts, repository.Where("area_id = ?", *filter.AreaID))
	}
	opts = append(opts, repository.OrderBy("sort_order asc, id asc"))
	return repository.Find[domain.Room](ctx, db, opts...)
}

func (r *repo) InsertBed(ctx context.Context, db *gorm.DB, bed *domain.Bed) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO beds (id, room_id, code, name, sort_order, is_active, is_available, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bed.ID, bed.RoomID, bed.Code, bed.Name, bed.SortOrder, bed.IsActive, bed.IsAvailable, bed.CreatedAt, bed.UpdatedAt,
	).Error
}

func (r *repo) UpdateBed(ctx context.Context, db *gorm.DB, bed *domain.Bed) error {
	return db.WithContext(ctx).Exec(
		`UPDATE beds SET room_id = ?, code = ?, name = ?, sort_order = ?, is_active = ?, is_available = ?, updated_at = ?
		WHERE id = ?`,
		bed.RoomID, bed.Code, bed.Name, bed.SortOrder, bed.IsActive, bed.IsAvailable, bed.UpdatedAt, bed.ID,
	).Error
}

func (r *repo) FindBedByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Bed, error) {
	return repository.FindOne[domain.Bed](ctx, db, repository.Where("id = ?", id))
}

func (r *repo) ListBeds(ctx context.Context, db *gorm.DB, filter domain.BedFilter) ([]domain.Bed, error) {
	var beds []domain.Bed
	stmt := db.WithContext(ctx).Model(&domain.Bed{})
	if filter.AreaID != nil {
		stmt = stmt.Where("room_id IN (?)", db.Model(&domain.Room{}).Select("id").Where("area_id = ?", *filter.AreaID))
	}
	if filter.RoomID != nil {
		stmt = stmt.Where("room_id = ?", *filter.RoomID)
	}
	if filter.ActiveOnly {
		stmt = stmt.Where("is_active = ?", true)
	}
	err := stmt.Order("room_id asc, sort_order asc, id asc").Find(&beds).Error
	return beds, err
}

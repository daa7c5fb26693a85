package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertArea(ctx context.Context, db *gorm.DB, area *Area) error
	UpdateArea(ctx context.Context, db *gorm.DB, area *Area) error
	FindAreaByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Area, error)
	ListAreas(ctx context.Context, db *gorm.DB, activeOnly bool) ([]Area, error)

	InsertRoom(ctx context.Context, db *gorm.DB, room *Room) error
	UpdateRoom(ctx context.Context, db *gorm.DB, room *Room) error
	FindRoomByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Room, error)
	ListRooms(ctx context.Context, db *gorm.DB, filter RoomFilter) ([]Room, error)

	InsertBed(ctx context.Context, db *gorm.DB, bed *Bed) error
	UpdateBed(ctx context.Context, db *gorm.DB, bed *Bed) error
	FindBedByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Bed, error)
	ListBeds(ctx context.Context, db *gorm.DB, filter BedFilter) ([]Bed, error)
}

type RoomFilter struct {
	AreaID     *snowflake.ID
	ActiveOnly bool
}

type BedFilter struct {
	RoomID     *snowflake.ID
	AreaID     *snowflake.ID
	ActiveOnly bool
}

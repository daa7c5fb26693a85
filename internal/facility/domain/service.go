package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/wardboard/internal/domainerr"
)

type AreaRequest struct {
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
}

type RoomRequest struct {
	AreaID    string `json:"area_id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
}

type BedRequest struct {
	RoomID      string `json:"room_id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	SortOrder   int    `json:"sort_order"`
	IsAvailable *bool  `json:"is_available"`
}

type Service interface {
	ListAreas(ctx context.Context, activeOnly bool) ([]Area, error)
	GetArea(ctx context.Context, id snowflake.ID) (*Area, error)
	CreateArea(ctx context.Context, req AreaRequest) (*Area, error)
	UpdateArea(ctx context.Context, id snowflake.ID, req AreaRequest) (*Area, error)
	ToggleArea(ctx context.Context, id snowflake.ID) (*Area, error)

	ListRooms(ctx context.Context, filter RoomFilter) ([]Room, error)
	CreateRoom(ctx context.Context, req RoomRequest) (*Room, error)
	UpdateRoom(ctx context.Context, id snowflake.ID, req RoomRequest) (*Room, error)
	ToggleRoom(ctx context.Context, id snowflake.ID) (*Room, error)

	ListBeds(ctx context.Context, filter BedFilter) ([]Bed, error)
	CreateBed(ctx context.Context, req BedRequest) (*Bed, error)
	UpdateBed(ctx context.Context, id snowflake.ID, req BedRequest) (*Bed, error)
	ToggleBed(ctx context.Context, id snowflake.ID) (*Bed, error)
}

var (
	ErrAreaNotFound = domainerr.NotFound("area_not_found")
	ErrRoomNotFound = domainerr.NotFound("room_not_found")
	ErrBedNotFound  = domainerr.NotFound("bed_not_found")
	ErrInvalidName  = domainerr.Validation("invalid_name")
	ErrInvalidCode  = domainerr.Validation("invalid_code")
	ErrInvalidArea  = domainerr.Validation("invalid_area_id")
	ErrInvalidRoom  = domainerr.Validation("invalid_room_id")
)

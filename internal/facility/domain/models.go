package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Area groups rooms, typically one ward.
type Area struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"size:128;not null" json:"name"`
	Slug      string       `gorm:"size:160;not null;index" json:"slug"`
	SortOrder int          `gorm:"not null" json:"sort_order"`
	IsActive  bool         `gorm:"not null" json:"is_active"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null" json:"updated_at"`
}

func (Area) TableName() string { return "areas" }

type Room struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	AreaID    snowflake.ID `gorm:"not null;index" json:"area_id"`
	Code      string       `gorm:"size:64;not null" json:"code"`
	Name      string       `gorm:"size:128;not null" json:"name"`
	SortOrder int          `gorm:"not null" json:"sort_order"`
	IsActive  bool         `gorm:"not null" json:"is_active"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null" json:"updated_at"`
}

func (Room) TableName() string { return "rooms" }

// Bed belongs to a room. IsAvailable=false keeps it on the board but out of
// occupancy denominators.
type Bed struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	RoomID      snowflake.ID `gorm:"not null;index" json:"room_id"`
	Code        string       `gorm:"size:64;not null" json:"code"`
	Name        string       `gorm:"size:128;not null" json:"name"`
	SortOrder   int          `gorm:"not null" json:"sort_order"`
	IsActive    bool         `gorm:"not null" json:"is_active"`
	IsAvailable bool         `gorm:"not null" json:"is_available"`
	CreatedAt   time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null" json:"updated_at"`
}

func (Bed) TableName() string { return "beds" }

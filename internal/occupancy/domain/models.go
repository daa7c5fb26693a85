package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// RoomState is the current room-level status. At most one row per room,
// created on the room's first transition.
type RoomState struct {
	RoomID    snowflake.ID  `gorm:"primaryKey;autoIncrement:false" json:"room_id"`
	StatusID  snowflake.ID  `gorm:"not null;index" json:"status_id"`
	UpdatedBy *snowflake.ID `json:"updated_by,omitempty"`
	UpdatedAt time.Time     `gorm:"not null" json:"updated_at"`
	Note      *string       `json:"note,omitempty"`
}

func (RoomState) TableName() string { return "room_states" }

// BedState mirrors RoomState per bed.
type BedState struct {
	BedID     snowflake.ID  `gorm:"primaryKey;autoIncrement:false" json:"bed_id"`
	StatusID  snowflake.ID  `gorm:"not null;index" json:"status_id"`
	UpdatedBy *snowflake.ID `json:"updated_by,omitempty"`
	UpdatedAt time.Time     `gorm:"not null" json:"updated_at"`
	Note      *string       `json:"note,omitempty"`
}

func (BedState) TableName() string { return "bed_states" }

// ResetFilter selects state rows for a bulk status rewrite. Empty AreaIDs
// means every area.
type ResetFilter struct {
	FromStatusID snowflake.ID
	ToStatusID   snowflake.ID
	AreaIDs      []snowflake.ID
	At           time.Time
}

// ResetCandidate is one state row matched by a ResetFilter.
type ResetCandidate struct {
	TargetID snowflake.ID
	RoomID   snowflake.ID
	AreaID   snowflake.ID
}

package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type TargetType string

const (
	TargetRoom   TargetType = "room"
	TargetBed    TargetType = "bed"
	TargetSystem TargetType = "system"
)

func (t TargetType) Valid() bool {
	switch t {
	case TargetRoom, TargetBed, TargetSystem:
		return true
	default:
		return false
	}
}

// AuditEntry records one state change, or one summary of a bulk change when
// TargetType is system. Rows are never updated.
type AuditEntry struct {
	ID           snowflake.ID      `gorm:"primaryKey" json:"id"`
	TargetType   TargetType        `gorm:"size:16;not null;index" json:"target_type"`
	RoomID       *snowflake.ID     `gorm:"index" json:"room_id,omitempty"`
	BedID        *snowflake.ID     `gorm:"index" json:"bed_id,omitempty"`
	AreaID       *snowflake.ID     `gorm:"index" json:"area_id,omitempty"`
	FromStatusID *snowflake.ID     `json:"from_status_id,omitempty"`
	ToStatusID   *snowflake.ID     `json:"to_status_id,omitempty"`
	ChangedBy    *snowflake.ID     `gorm:"index" json:"changed_by,omitempty"`
	ChangedAt    time.Time         `gorm:"not null;index" json:"changed_at"`
	Note         *string           `json:"note,omitempty"`
	Meta         datatypes.JSONMap `json:"meta,omitempty"`
}

func (AuditEntry) TableName() string { return "audit_entries" }

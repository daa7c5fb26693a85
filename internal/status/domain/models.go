package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Status is one selectable occupancy state. Key is the stable identity used
// by configuration; ID is what state rows and audit entries reference.
type Status struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	Key           string       `gorm:"column:status_key;size:64;not null;uniqueIndex" json:"key"`
	Label         string       `gorm:"size:128;not null" json:"label"`
	ColorTag      string       `gorm:"size:64;not null" json:"color_tag"`
	IconTag       string       `gorm:"size:64;not null" json:"icon_tag"`
	SortOrder     int          `gorm:"not null" json:"sort_order"`
	IsActive      bool         `gorm:"not null" json:"is_active"`
	AppliesToRoom bool         `gorm:"not null" json:"applies_to_room"`
	AppliesToBed  bool         `gorm:"not null" json:"applies_to_bed"`
	CreatedAt     time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"not null" json:"updated_at"`
}

func (Status) TableName() string { return "statuses" }

// Seed describes a catalog entry installed on first start.
type Seed struct {
	Key       string
	Label     string
	ColorTag  string
	IconTag   string
	SortOrder int
}

func DefaultSeeds() []Seed {
	return []Seed{
		{Key: "vacant", Label: "空き", ColorTag: "bg-success", IconTag: "bi-check-circle", SortOrder: 1},
		{Key: "occupied", Label: "使用中", ColorTag: "bg-danger", IconTag: "bi-person-fill", SortOrder: 2},
		{Key: "cleaning", Label: "清掃中", ColorTag: "bg-info", IconTag: "bi-stars", SortOrder: 3},
		{Key: "hold", Label: "調整中", ColorTag: "bg-warning", IconTag: "bi-exclamation-triangle", SortOrder: 4},
	}
}

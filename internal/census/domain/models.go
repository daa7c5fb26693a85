package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// CountConfig names the status keys that classify an available bed.
type CountConfig struct {
	OccupiedKeys []string
	VacantKeys   []string
}

// AreaCount is the census of one area. VacantBeds is derived as
// TotalAvailableBeds - OccupiedBeds; UnclassifiedBeds counts available beds
// whose status is in neither set (or that have no state) and does not feed
// into VacantBeds.
type AreaCount struct {
	AreaID             snowflake.ID `json:"area_id"`
	AreaName           string       `json:"area_name"`
	SortOrder          int          `json:"sort_order"`
	TotalAvailableBeds int64        `json:"total_available_beds"`
	UnavailableBeds    int64        `json:"unavailable_beds"`
	OccupiedBeds       int64        `json:"occupied_beds"`
	VacantBeds         int64        `json:"vacant_beds"`
	UnclassifiedBeds   int64        `json:"unclassified_beds"`
}

type Totals struct {
	TotalAvailableBeds int64 `json:"total_available_beds"`
	UnavailableBeds    int64 `json:"unavailable_beds"`
	OccupiedBeds       int64 `json:"occupied_beds"`
	VacantBeds         int64 `json:"vacant_beds"`
	UnclassifiedBeds   int64 `json:"unclassified_beds"`
}

type Summary struct {
	Areas       []AreaCount `json:"areas"`
	Totals      Totals      `json:"totals"`
	GeneratedAt time.Time   `json:"generated_at"`
}

// BedCountRow is one group of the census query. StatusKey is nil for beds
// that never transitioned.
type BedCountRow struct {
	AreaID      snowflake.ID
	IsAvailable bool
	StatusKey   *string
	Beds        int64
}

package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// CountBeds groups active beds in active rooms by area, availability and
	// current status key.
	CountBeds(ctx context.Context, db *gorm.DB, areaID *snowflake.ID) ([]BedCountRow, error)
}

package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	AreaID     *snowflake.ID
	TargetType TargetType
	ChangedBy  *snowflake.ID
	RoomID     *snowflake.ID
	BedID      *snowflake.ID
	BeforeID   *snowflake.ID
	Limit      int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *AuditEntry) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]AuditEntry, error)
	DeleteBefore(ctx context.Context, db *gorm.DB, threshold time.Time) (int64, error)
}

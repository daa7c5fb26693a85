package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, status *Status) error
	Update(ctx context.Context, db *gorm.DB, status *Status) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Status, error)
	FindByKey(ctx context.Context, db *gorm.DB, key string) (*Status, error)
	FindByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]Status, error)
	List(ctx context.Context, db *gorm.DB, activeOnly bool) ([]Status, error)
	Count(ctx context.Context, db *gorm.DB) (int64, error)
}

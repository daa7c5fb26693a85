package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// ApplyRoomState locks or creates the room's state row and writes next.
	// It returns the previous status, nil when the row was just created.
	ApplyRoomState(ctx context.Context, tx *gorm.DB, next RoomState) (*snowflake.ID, error)
	ApplyBedState(ctx context.Context, tx *gorm.DB, next BedState) (*snowflake.ID, error)

	ListRoomStates(ctx context.Context, db *gorm.DB, roomIDs []snowflake.ID) ([]RoomState, error)
	ListBedStates(ctx context.Context, db *gorm.DB, bedIDs []snowflake.ID) ([]BedState, error)

	ResetRoomStates(ctx context.Context, tx *gorm.DB, filter ResetFilter) (int64, error)
	ResetBedStates(ctx context.Context, tx *gorm.DB, filter ResetFilter) (int64, error)

	LockRoomResetCandidates(ctx context.Context, tx *gorm.DB, filter ResetFilter) ([]ResetCandidate, error)
	LockBedResetCandidates(ctx context.Context, tx *gorm.DB, filter ResetFilter) ([]ResetCandidate, error)
	ResetRoomStatesByID(ctx context.Context, tx *gorm.DB, filter ResetFilter, roomIDs []snowflake.ID) (int64, error)
	ResetBedStatesByID(ctx context.Context, tx *gorm.DB, filter ResetFilter, bedIDs []snowflake.ID) (int64, error)
}

package domain

import (
	"context"
	"io"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/wardboard/internal/domainerr"
	"github.com/smallbiznis/wardboard/pkg/db/pagination"
	"gorm.io/gorm"
)

type RecordRequest struct {
	TargetType   TargetType
	RoomID       *snowflake.ID
	BedID        *snowflake.ID
	AreaID       *snowflake.ID
	FromStatusID *snowflake.ID
	ToStatusID   *snowflake.ID
	ChangedBy    *snowflake.ID
	ChangedAt    time.Time
	Note         string
	Meta         map[string]any
}

type ListRequest struct {
	pagination.Pagination
	AreaID     string `form:"area_id"`
	TargetType string `form:"target_type"`
	UserID     string `form:"user_id"`
}

type ListResponse struct {
	pagination.PageInfo
	Entries []AuditEntry `json:"entries"`
}

type Service interface {
	// Record appends an entry using tx when the caller owns a transaction.
	Record(ctx context.Context, tx *gorm.DB, req RecordRequest) (*AuditEntry, error)
	List(ctx context.Context, req ListRequest) (ListResponse, error)
	Purge(ctx context.Context, now time.Time, retentionDays int) (int64, error)
	ExportXLSX(ctx context.Context, req ListRequest, w io.Writer) error
}

var (
	ErrInvalidTargetType = domainerr.Validation("invalid_target_type")
	ErrInvalidPageToken  = domainerr.Validation("invalid_page_token")
	ErrInvalidFilter     = domainerr.Validation("invalid_filter")
	ErrInvalidRetention  = domainerr.Validation("invalid_retention_days")
)

package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/wardboard/internal/audit/domain"
	"github.com/smallbiznis/wardboard/internal/domainerr"
	facilitydomain "github.com/smallbiznis/wardboard/internal/facility/domain"
	statusdomain "github.com/smallbiznis/wardboard/internal/status/domain"
)

type ApplyTransitionRequest struct {
	TargetType auditdomain.TargetType
	TargetID   snowflake.ID
	StatusID   snowflake.ID
	ActorID    *snowflake.ID
	Note       string
}

type TransitionResult struct {
	TargetType   auditdomain.TargetType `json:"target_type"`
	TargetID     snowflake.ID           `json:"target_id"`
	AreaID       snowflake.ID           `json:"area_id"`
	FromStatusID *snowflake.ID          `json:"from_status_id"`
	Status       statusdomain.Status    `json:"status"`
	UpdatedAt    time.Time              `json:"updated_at"`
	AuditEntryID snowflake.ID           `json:"audit_entry_id"`
}

type StateView struct {
	Status    statusdomain.Status `json:"status"`
	UpdatedAt time.Time           `json:"updated_at"`
	UpdatedBy *snowflake.ID       `json:"updated_by,omitempty"`
	Note      *string             `json:"note,omitempty"`
}

type BoardBed struct {
	facilitydomain.Bed
	State *StateView `json:"state"`
}

// BoardRoom carries RoomState only for rooms without beds; bed states take
// precedence otherwise.
type BoardRoom struct {
	facilitydomain.Room
	Beds      []BoardBed `json:"beds"`
	RoomState *StateView `json:"room_state"`
}

type Board struct {
	Area     facilitydomain.Area   `json:"area"`
	Rooms    []BoardRoom           `json:"rooms"`
	Statuses []statusdomain.Status `json:"statuses"`
}

type Service interface {
	ApplyTransition(ctx context.Context, req ApplyTransitionRequest) (*TransitionResult, error)
	GetBoardData(ctx context.Context, areaID snowflake.ID) (*Board, error)
}

var (
	ErrInvalidTargetType   = domainerr.Validation("invalid_target_type")
	ErrStatusNotApplicable = domainerr.Validation("status_not_applicable")
	ErrStatusInactive      = domainerr.Validation("status_inactive")
)

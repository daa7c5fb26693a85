package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/wardboard/internal/domainerr"
)

type CreateRequest struct {
	Key           string `json:"key"`
	Label         string `json:"label"`
	ColorTag      string `json:"color_tag"`
	IconTag       string `json:"icon_tag"`
	SortOrder     int    `json:"sort_order"`
	AppliesToRoom *bool  `json:"applies_to_room"`
	AppliesToBed  *bool  `json:"applies_to_bed"`
}

type UpdateRequest struct {
	Label         *string `json:"label"`
	ColorTag      *string `json:"color_tag"`
	IconTag       *string `json:"icon_tag"`
	SortOrder     *int    `json:"sort_order"`
	AppliesToRoom *bool   `json:"applies_to_room"`
	AppliesToBed  *bool   `json:"applies_to_bed"`
}

type Service interface {
	List(ctx context.Context, activeOnly bool) ([]Status, error)
	GetByID(ctx context.Context, id snowflake.ID) (*Status, error)
	GetByKey(ctx context.Context, key string) (*Status, error)
	Create(ctx context.Context, req CreateRequest) (*Status, error)
	Update(ctx context.Context, id snowflake.ID, req UpdateRequest) (*Status, error)
	ToggleActive(ctx context.Context, id snowflake.ID) (*Status, error)
	EnsureDefaults(ctx context.Context) (int, error)
}

var (
	ErrStatusNotFound = domainerr.NotFound("status_not_found")
	ErrInvalidKey     = domainerr.Validation("invalid_status_key")
	ErrInvalidLabel   = domainerr.Validation("invalid_status_label")
	ErrDuplicateKey   = domainerr.Conflict("duplicate_status_key")
	ErrNoTarget       = domainerr.Validation("status_applies_to_nothing")
)

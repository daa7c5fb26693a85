package domain

import (
	"context"
	"io"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	ComputeBedCounts(ctx context.Context, areaID *snowflake.ID, cfg CountConfig) ([]AreaCount, error)
	Summary(ctx context.Context, areaID *snowflake.ID, cfg CountConfig) (*Summary, error)
	RenderPDF(ctx context.Context, summary *Summary, w io.Writer) error
}

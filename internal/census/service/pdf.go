package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/smallbiznis/wardboard/internal/census/domain"
)

var pdfHeaders = []string{"Area", "Available", "Occupied", "Vacant", "Unclassified", "Unavailable"}

// RenderPDF writes a printable one-table census.
func (s *Service) RenderPDF(ctx context.Context, summary *domain.Summary, w io.Writer) error {
	if summary == nil {
		return fmt.Errorf("census summary is required")
	}

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()
	m := maroto.New(cfg)

	m.AddRow(20,
		text.NewCol(8, "Bed census", props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
		col.New(4).Add(
			text.New("Generated "+summary.GeneratedAt.Format(time.DateTime), props.Text{Size: 8, Align: align.Right, Top: 4}),
		),
	)

	header := make([]any, 0, len(pdfHeaders))
	for _, h := range pdfHeaders {
		header = append(header, h)
	}
	m.AddRow(10, censusRow(header, fontstyle.Bold)...)

	for _, area := range summary.Areas {
		m.AddRow(8, censusRow([]any{
			area.AreaName,
			area.TotalAvailableBeds,
			area.OccupiedBeds,
			area.VacantBeds,
			area.UnclassifiedBeds,
			area.UnavailableBeds,
		}, fontstyle.Normal)...)
	}

	t := summary.Totals
	m.AddRow(10, censusRow([]any{
		"Total",
		t.TotalAvailableBeds,
		t.OccupiedBeds,
		t.VacantBeds,
		t.UnclassifiedBeds,
		t.UnavailableBeds,
	}, fontstyle.Bold)...)

	doc, err := m.Generate()
	if err != nil {
		return fmt.Errorf("generate census pdf: %w", err)
	}
	_, err = w.Write(doc.GetBytes())
	return err
}

func censusRow(values []any, style fontstyle.Type) []core.Col {
	cols := make([]core.Col, 0, len(values))
	for i, v := range values {
		a := align.Right
		if i == 0 {
			a = align.Left
		}
		cols = append(cols, text.NewCol(2, fmt.Sprint(v), props.Text{Size: 9, Style: style, Align: a}))
	}
	return cols
}

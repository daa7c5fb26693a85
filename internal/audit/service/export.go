package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/xuri/excelize/v2"

	auditdomain "github.com/smallbiznis/wardboard/internal/audit/domain"
	"github.com/smallbiznis/wardboard/pkg/db/pagination"
)

const (
	exportSheet   = "AuditLog"
	exportMaxRows = 10000
)

var exportHeaders = []string{"Changed At", "Target", "Area", "Room", "Bed", "From", "To", "Changed By", "Note"}

var exportWidths = []float64{22, 10, 20, 20, 20, 14, 14, 20, 40}

// ExportXLSX writes the filtered log, newest first, as a single-sheet workbook.
func (s *Service) ExportXLSX(ctx context.Context, req auditdomain.ListRequest, w io.Writer) error {
	filter, err := buildFilter(req)
	if err != nil {
		return err
	}
	filter.BeforeID = nil
	filter.Limit = exportMaxRows
	if req.PageSize > 0 {
		filter.Limit = pagination.Pagination{PageSize: req.PageSize}.Limit()
	}

	entries, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return err
	}
	if len(entries) > filter.Limit {
		entries = entries[:filter.Limit]
	}

	labels, err := s.statusLabels(ctx, entries)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("delete default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	for i, header := range exportHeaders {
		if err := setCell(f, i+1, 1, header); err != nil {
			return err
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(exportSheet, col, col, exportWidths[i]); err != nil {
			return err
		}
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	if err := f.SetCellStyle(exportSheet, "A1", lastHeader, headerStyle); err != nil {
		return err
	}

	for i, entry := range entries {
		row := i + 2
		values := []any{
			entry.ChangedAt.UTC().Format(time.RFC3339),
			string(entry.TargetType),
			idString(entry.AreaID),
			idString(entry.RoomID),
			idString(entry.BedID),
			labelFor(labels, entry.FromStatusID),
			labelFor(labels, entry.ToStatusID),
			idString(entry.ChangedBy),
			stringValue(entry.Note),
		}
		for col, value := range values {
			if err := setCell(f, col+1, row, value); err != nil {
				return err
			}
		}
	}

	if err := f.SetPanes(exportSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func (s *Service) statusLabels(ctx context.Context, entries []auditdomain.AuditEntry) (map[snowflake.ID]string, error) {
	seen := map[snowflake.ID]struct{}{}
	ids := make([]snowflake.ID, 0)
	for _, entry := range entries {
		for _, id := range []*snowflake.ID{entry.FromStatusID, entry.ToStatusID} {
			if id == nil {
				continue
			}
			if _, ok := seen[*id]; ok {
				continue
			}
			seen[*id] = struct{}{}
			ids = append(ids, *id)
		}
	}

	statuses, err := s.statusRepo.FindByIDs(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}
	labels := make(map[snowflake.ID]string, len(statuses))
	for _, status := range statuses {
		labels[status.ID] = status.Label
	}
	return labels, nil
}

func setCell(f *excelize.File, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(exportSheet, cell, value)
}

func labelFor(labels map[snowflake.ID]string, id *snowflake.ID) string {
	if id == nil {
		return ""
	}
	if label, ok := labels[*id]; ok {
		return label
	}
	return id.String()
}

func idString(id *snowflake.ID) string {
	if id == nil {
		return ""
	}
	return id.String()
}

func stringValue(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

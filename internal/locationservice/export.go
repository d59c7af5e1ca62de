package locationservice

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/starford/raido/internal/models"
)

const exportSheet = "Locations"

var exportHeader = []string{"ID", "Address", "House number", "Region", "Name", "Instructions", "Updated"}

// ExportRegion renders a region's records as an xlsx workbook. The
// Instructions column carries the first text block of each record.
func (s *Service) ExportRegion(ctx context.Context, region string) ([]byte, error) {
	records, err := s.store.ListByRegion(ctx, region)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, fmt.Errorf("export: new sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("export: drop default sheet: %w", err)
	}

	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return nil, fmt.Errorf("export: header: %w", err)
	}
	for i, rec := range records {
		row := []any{
			rec.ID,
			rec.Address,
			rec.HouseNumber,
			rec.Meta.Region,
			rec.Meta.Name,
			firstTextBlock(rec.Content),
			rec.UpdatedAt.Format("2006-01-02 15:04"),
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("export: row %d: %w", i+2, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("export: write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func firstTextBlock(blocks []models.ContentBlock) string {
	for _, b := range blocks {
		if b.Type == models.BlockText && b.Data != "" {
			return b.Data
		}
	}
	return ""
}

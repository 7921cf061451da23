package comext

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ExportXLSX writes the canonical table as a single-sheet workbook.
// One row per fact, columns in canonical order. Used by the export command
// and the /api/table/export route so analysts can inspect the normalized
// data outside the chat flow.
func ExportXLSX(t *Table, w io.Writer) error {
	if t == nil || len(t.Facts) == 0 {
		return fmt.Errorf("export: canonical table is empty")
	}

	wb := excelize.NewFile()
	defer wb.Close()

	const sheet = "Canonical Table"
	idx, err := wb.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("export: create sheet: %w", err)
	}
	wb.SetActiveSheet(idx)
	if err := wb.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("export: drop default sheet: %w", err)
	}

	headers := []string{"reporter", "partner", "product", "indicators", "time_period", "obs_value"}
	for col, h := range headers {
		ref, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := wb.SetCellValue(sheet, ref, h); err != nil {
			return fmt.Errorf("export: header %s: %w", h, err)
		}
	}

	for i, f := range t.Facts {
		row := i + 2
		values := []interface{}{f.Reporter, f.Partner, f.Product, f.Indicator, f.TimePeriod, f.Value}
		for col, v := range values {
			ref, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := wb.SetCellValue(sheet, ref, v); err != nil {
				return fmt.Errorf("export: row %d: %w", row, err)
			}
		}
	}

	if err := wb.Write(w); err != nil {
		return fmt.Errorf("export: write workbook: %w", err)
	}
	return nil
}

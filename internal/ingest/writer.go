package ingest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"aolcli/internal/dataset"
)

// WriteWorkbook writes a table as a single-sheet Excel file. The workbook is
// staged in a temporary file and renamed into place so a failed run never
// leaves a partial file at the target path.
func WriteWorkbook(path, sheet string, table *dataset.Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const defaultSheet = "Sheet1"
	if sheet != defaultSheet {
		if err := f.SetSheetName(defaultSheet, sheet); err != nil {
			return fmt.Errorf("failed to name sheet %s: %w", sheet, err)
		}
	}

	header := make([]interface{}, len(table.Columns))
	for i, c := range table.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	for r := range table.Rows {
		row := make([]interface{}, len(table.Columns))
		for c := range table.Columns {
			cell := table.Cell(r, c)
			if v, ok := dataset.ParseNumber(cell); ok {
				row[c] = v
			} else {
				row[c] = cell
			}
		}
		addr, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return fmt.Errorf("failed to compute cell address: %w", err)
		}
		if err := f.SetSheetRow(sheet, addr, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r+2, err)
		}
	}

	// The staging name keeps the .xlsx extension: excelize derives the
	// workbook format from it and rejects anything else.
	tmp := path + ".tmp.xlsx"
	if err := f.SaveAs(tmp); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to move workbook into place: %w", err)
	}
	return nil
}

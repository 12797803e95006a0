package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"aolcli/internal/dataset"
)

// heatmap color stops approximating the red-yellow-green scale the reports
// have always used.
const (
	heatmapMinColor = "#F8696B"
	heatmapMidColor = "#FFEB84"
	heatmapMaxColor = "#63BE7B"
)

// writeDerived writes one derived table as its own workbook under the program
// report directory.
func writeDerived(dir, program, name string, derived *Derived) error {
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.xlsx", program, name))

	f := excelize.NewFile()
	defer f.Close()

	const defaultSheet = "Sheet1"
	if derived.Sheet != defaultSheet {
		if err := f.SetSheetName(defaultSheet, derived.Sheet); err != nil {
			return fmt.Errorf("failed to name sheet: %w", err)
		}
	}

	header := make([]interface{}, len(derived.Columns))
	for i, c := range derived.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(derived.Sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		endHeader, _ := excelize.CoordinatesToCellName(len(derived.Columns), 1)
		f.SetCellStyle(derived.Sheet, "A1", endHeader, bold)
	}

	for r, row := range derived.Rows {
		cells := make([]interface{}, len(row))
		for c, cell := range row {
			if v, ok := dataset.ParseNumber(cell); ok && cell != emDash {
				cells[c] = v
			} else {
				cells[c] = cell
			}
		}
		addr, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return fmt.Errorf("failed to compute cell address: %w", err)
		}
		if err := f.SetSheetRow(derived.Sheet, addr, &cells); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r+2, err)
		}
	}

	if derived.Heatmap && len(derived.Rows) > 0 && len(derived.Columns) > derived.HeatmapFrom {
		if err := applyHeatmap(f, derived); err != nil {
			return fmt.Errorf("failed to style heatmap: %w", err)
		}
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save table workbook: %w", err)
	}
	return nil
}

// applyHeatmap covers the numeric body with a 3-color-scale conditional
// format, skipping the leading label columns.
func applyHeatmap(f *excelize.File, derived *Derived) error {
	start, err := excelize.CoordinatesToCellName(derived.HeatmapFrom+1, 2)
	if err != nil {
		return err
	}
	end, err := excelize.CoordinatesToCellName(len(derived.Columns), len(derived.Rows)+1)
	if err != nil {
		return err
	}
	return f.SetConditionalFormat(derived.Sheet, start+":"+end, []excelize.ConditionalFormatOptions{
		{
			Type:     "3_color_scale",
			Criteria: "=",
			MinType:  "min",
			MidType:  "percentile",
			MidValue: "50",
			MaxType:  "max",
			MinColor: heatmapMinColor,
			MidColor: heatmapMidColor,
			MaxColor: heatmapMaxColor,
		},
	})
}

// Package ingest reads the raw spreadsheet exports into dataset tables.
package ingest

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"aolcli/internal/dataset"
)

// ReadWorkbook loads the first non-empty sheet of an Excel file as a table.
// The first row with at least two non-empty cells is taken as the header; rows
// above it are discarded (exports occasionally carry a title banner).
func ReadWorkbook(path string) (*dataset.Table, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("input file not available: %w", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	var rows [][]string
	var sheetName string
	for _, name := range f.GetSheetList() {
		sheetRows, err := f.GetRows(name)
		if err != nil {
			continue
		}
		if len(sheetRows) > 0 {
			rows = sheetRows
			sheetName = name
			break
		}
	}
	if rows == nil {
		return nil, fmt.Errorf("workbook %s has no readable sheet", path)
	}

	headerRow := findHeaderRow(rows)
	if headerRow < 0 {
		return nil, fmt.Errorf("workbook %s sheet %s has no header row", path, sheetName)
	}

	table := dataset.New(trimAll(rows[headerRow])...)
	lastDataRow := findLastDataRow(rows, headerRow)
	for i := headerRow + 1; i <= lastDataRow; i++ {
		if isEmptyRow(rows[i]) {
			continue
		}
		table.AppendRow(rows[i])
	}

	slog.Debug("workbook loaded",
		slog.String("path", path),
		slog.String("sheet", sheetName),
		slog.Int("columns", len(table.Columns)),
		slog.Int("rows", table.Len()))

	return table, nil
}

// findHeaderRow returns the first row that looks like a header: at least two
// non-empty cells.
func findHeaderRow(rows [][]string) int {
	for i, row := range rows {
		filled := 0
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				filled++
			}
		}
		if filled >= 2 {
			return i
		}
	}
	return -1
}

// findLastDataRow scans backwards for the last row carrying any value, so a
// trailing block of formatting-only rows does not become data.
func findLastDataRow(rows [][]string, headerRow int) int {
	for i := len(rows) - 1; i > headerRow; i-- {
		if !isEmptyRow(rows[i]) {
			return i
		}
	}
	return headerRow
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func trimAll(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.TrimSpace(c)
	}
	return out
}

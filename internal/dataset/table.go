// Package dataset provides the in-memory tabular representation shared by the
// consolidation and reporting pipeline. Cells are strings as read from the
// spreadsheet; the empty string is the null value.
package dataset

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Table is an ordered-column table of string cells. Rows may be shorter than
// the column list; missing trailing cells read as empty.
type Table struct {
	Columns []string
	Rows    [][]string
}

// New creates a table with the given columns and no rows.
func New(columns ...string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// AppendRow adds a row, padding or truncating it to the column count.
func (t *Table) AppendRow(row []string) {
	r := make([]string, len(t.Columns))
	copy(r, row)
	t.Rows = append(t.Rows, r)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Cell returns the value at (row, column index), empty when out of range.
func (t *Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

// Value returns the cell in the named column for a row, empty on a missing
// column.
func (t *Table) Value(row int, column string) string {
	return t.Cell(row, t.ColumnIndex(column))
}

// SetValue writes a cell in the named column. Rows shorter than the column
// list are padded first.
func (t *Table) SetValue(row int, column, value string) error {
	col := t.ColumnIndex(column)
	if col < 0 {
		return fmt.Errorf("column %q not present", column)
	}
	if row < 0 || row >= len(t.Rows) {
		return fmt.Errorf("row %d out of range", row)
	}
	for len(t.Rows[row]) <= col {
		t.Rows[row] = append(t.Rows[row], "")
	}
	t.Rows[row][col] = value
	return nil
}

// AddColumn appends a new column with the given per-row values. Values beyond
// the current row count are ignored; missing values read as empty.
func (t *Table) AddColumn(name string, values []string) {
	t.Columns = append(t.Columns, name)
	for i := range t.Rows {
		v := ""
		if i < len(values) {
			v = values[i]
		}
		t.Rows[i] = append(t.Rows[i], v)
	}
}

// RenameColumn renames the first column named old to new.
func (t *Table) RenameColumn(old, new string) bool {
	for i, c := range t.Columns {
		if c == old {
			t.Columns[i] = new
			return true
		}
	}
	return false
}

// DropColumn removes the named column and its cells.
func (t *Table) DropColumn(name string) {
	col := t.ColumnIndex(name)
	if col < 0 {
		return
	}
	t.Columns = append(t.Columns[:col], t.Columns[col+1:]...)
	for i, row := range t.Rows {
		if col < len(row) {
			t.Rows[i] = append(row[:col], row[col+1:]...)
		}
	}
}

// Select returns a new table holding only the named columns, in order.
// Unknown columns are skipped.
func (t *Table) Select(columns ...string) *Table {
	idx := make([]int, 0, len(columns))
	names := make([]string, 0, len(columns))
	for _, c := range columns {
		if i := t.ColumnIndex(c); i >= 0 {
			idx = append(idx, i)
			names = append(names, c)
		}
	}
	out := New(names...)
	for r := range t.Rows {
		row := make([]string, len(idx))
		for j, i := range idx {
			row[j] = t.Cell(r, i)
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

// Filter returns the rows for which keep reports true.
func (t *Table) Filter(keep func(row int) bool) *Table {
	out := New(t.Columns...)
	for r := range t.Rows {
		if keep(r) {
			out.AppendRow(t.Rows[r])
		}
	}
	return out
}

// Head returns at most n leading rows.
func (t *Table) Head(n int) *Table {
	out := New(t.Columns...)
	for r := 0; r < len(t.Rows) && r < n; r++ {
		out.AppendRow(t.Rows[r])
	}
	return out
}

// DropDuplicateRows removes rows whose every cell equals an earlier row,
// keeping first occurrences in order.
func (t *Table) DropDuplicateRows() *Table {
	seen := make(map[string]struct{}, len(t.Rows))
	return t.Filter(func(r int) bool {
		key := strings.Join(t.Rows[r], "\x1f")
		if _, dup := seen[key]; dup {
			return false
		}
		seen[key] = struct{}{}
		return true
	})
}

// DistinctValues returns the sorted distinct non-empty values of a column.
func (t *Table) DistinctValues(column string) []string {
	col := t.ColumnIndex(column)
	if col < 0 {
		return nil
	}
	seen := make(map[string]struct{})
	for r := range t.Rows {
		if v := t.Cell(r, col); v != "" {
			seen[v] = struct{}{}
		}
	}
	values := make([]string, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	out := New(t.Columns...)
	for _, row := range t.Rows {
		out.AppendRow(row)
	}
	return out
}

// ParseNumber parses a cell as a float. Decimal commas are accepted because
// the exports come from Spanish-locale Excel; thousand separators are not
// expected in score columns.
func ParseNumber(cell string) (float64, bool) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return 0, false
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, true
	}
	if v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64); err == nil {
		return v, true
	}
	return 0, false
}

// FormatNumber renders a float with two decimals, the precision used across
// the report tables.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

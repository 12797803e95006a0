package report

import (
	"math"
	"sort"

	"aolcli/internal/dataset"
)

// accumulator collects score observations for one group cell.
type accumulator struct {
	sum    float64
	values []float64
}

func (a *accumulator) add(v float64) {
	a.sum += v
	a.values = append(a.values, v)
}

func (a *accumulator) mean() (float64, bool) {
	if len(a.values) == 0 {
		return 0, false
	}
	return a.sum / float64(len(a.values)), true
}

// stdDev is the sample standard deviation (ddof=1). Undefined below two
// observations.
func (a *accumulator) stdDev() (float64, bool) {
	n := len(a.values)
	if n < 2 {
		return 0, false
	}
	mean := a.sum / float64(n)
	var ss float64
	for _, v := range a.values {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(n-1)), true
}

// pivotKey addresses one cell of a two-dimensional pivot.
type pivotKey struct {
	row string
	col string
}

// pivot accumulates score values grouped by a row label and a column label.
type pivot struct {
	cells map[pivotKey]*accumulator
	rows  map[string]struct{}
	cols  map[string]struct{}
}

func newPivot() *pivot {
	return &pivot{
		cells: make(map[pivotKey]*accumulator),
		rows:  make(map[string]struct{}),
		cols:  make(map[string]struct{}),
	}
}

func (p *pivot) add(row, col string, value float64) {
	key := pivotKey{row: row, col: col}
	acc, ok := p.cells[key]
	if !ok {
		acc = &accumulator{}
		p.cells[key] = acc
	}
	acc.add(value)
	p.rows[row] = struct{}{}
	p.cols[col] = struct{}{}
}

func (p *pivot) rowLabels() []string { return sortedKeys(p.rows) }
func (p *pivot) colLabels() []string { return sortedKeys(p.cols) }

func (p *pivot) at(row, col string) *accumulator {
	return p.cells[pivotKey{row: row, col: col}]
}

// mean returns the rounded mean for a cell, blank when the cell is empty.
func (p *pivot) mean(row, col string) (float64, bool) {
	acc := p.at(row, col)
	if acc == nil {
		return 0, false
	}
	return acc.mean()
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// round2 rounds to the two decimals used throughout the report tables.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// formatMean renders a mean cell, empty when absent.
func formatMean(v float64, ok bool) string {
	if !ok {
		return ""
	}
	return dataset.FormatNumber(round2(v))
}

// meanOf averages a plain slice, reporting false for an empty one.
func meanOf(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), true
}

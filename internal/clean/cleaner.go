// Package clean normalizes the merged table into the consolidated shape the
// report generators consume.
package clean

import (
	"log/slog"
	"sort"
	"strings"

	"aolcli/internal/dataset"
	"aolcli/internal/schema"
)

// CriterionColumn is the label the criterion-text column is renamed to after
// its structural code prefix is stripped.
const CriterionColumn = "nombre del criterio"

// AcceptedCompetencies is the institutional competency vocabulary. Values
// outside it are only warned about, never dropped: drift in the export is a
// data-quality signal, not a reason to lose rows.
var AcceptedCompetencies = map[string]struct{}{
	"ET":   {},
	"CO-E": {},
	"CO-O": {},
	"PC":   {},
	"TD":   {},
	"CO":   {},
	"IT":   {},
	"LI":   {},
	"AI":   {},
	"TE":   {},
	"PG":   {},
}

// Cleaner applies the ordered cleaning steps.
type Cleaner struct {
	logger *slog.Logger
}

// NewCleaner builds a cleaner.
func NewCleaner(logger *slog.Logger) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{logger: logger}
}

// Clean runs every step in order and returns the consolidated table. Each
// step is total over valid tabular input; steps whose column cannot be
// resolved are skipped with a warning rather than failing the run.
func (c *Cleaner) Clean(merged *dataset.Table) *dataset.Table {
	t := merged.Clone()

	c.normalizeHeaders(t)

	before := t.Len()
	t = t.DropDuplicateRows()
	if dropped := before - t.Len(); dropped > 0 {
		c.logger.Info("dropped duplicate rows", slog.Int("count", dropped))
	}

	t = c.dropIncompleteRows(t)
	c.stripObjectiveCodes(t)
	c.stripCriterionCodes(t)
	c.normalizeCompetency(t)
	c.validateCompetency(t)

	c.logger.Info("cleaning complete", slog.Int("rows", t.Len()), slog.Int("columns", len(t.Columns)))
	return t
}

// normalizeHeaders lower-cases and trims every column name.
func (c *Cleaner) normalizeHeaders(t *dataset.Table) {
	for i, col := range t.Columns {
		t.Columns[i] = schema.Normalize(col)
	}
}

// dropIncompleteRows removes rows whose derived cohort or score is null.
func (c *Cleaner) dropIncompleteRows(t *dataset.Table) *dataset.Table {
	cohortCol, okCohort := schema.Resolve(t.Columns, schema.RoleCohort)
	scoreCol, okScore := schema.Resolve(t.Columns, schema.RoleScore)
	if !okCohort || !okScore {
		c.logger.Warn("cohort or score column not found, incomplete-row drop skipped",
			slog.Bool("cohort_resolved", okCohort),
			slog.Bool("score_resolved", okScore))
		return t
	}
	ci := t.ColumnIndex(cohortCol)
	si := t.ColumnIndex(scoreCol)
	before := t.Len()
	out := t.Filter(func(r int) bool {
		return strings.TrimSpace(t.Cell(r, ci)) != "" && strings.TrimSpace(t.Cell(r, si)) != ""
	})
	if dropped := before - out.Len(); dropped > 0 {
		c.logger.Info("dropped rows without cohort or score", slog.Int("count", dropped))
	}
	return out
}

// stripObjectiveCodes removes the leading structural code from the objective
// text. The first whitespace token is treated as a code only when it contains
// a hyphen ("3-1 Comunicación efectiva" → "Comunicación efectiva").
func (c *Cleaner) stripObjectiveCodes(t *dataset.Table) {
	objCol, ok := schema.Resolve(t.Columns, schema.RoleObjective)
	if !ok {
		c.logger.Warn("objective column not found, code stripping skipped")
		return
	}
	for r := range t.Rows {
		t.SetValue(r, objCol, StripObjectiveCode(t.Value(r, objCol)))
	}
}

// stripCriterionCodes drops everything up to and including the first pipe
// segment of the criterion text, then renames the column to its clearer
// label.
func (c *Cleaner) stripCriterionCodes(t *dataset.Table) {
	critCol, ok := schema.Resolve(t.Columns, schema.RoleCriterion)
	if !ok {
		c.logger.Warn("criterion column not found, code stripping skipped")
		return
	}
	for r := range t.Rows {
		t.SetValue(r, critCol, StripCriterionCode(t.Value(r, critCol)))
	}
	if critCol != CriterionColumn {
		t.RenameColumn(critCol, CriterionColumn)
	}
}

// normalizeCompetency trims and upper-cases competency values, leaving
// empties untouched.
func (c *Cleaner) normalizeCompetency(t *dataset.Table) {
	compCol, ok := schema.Resolve(t.Columns, schema.RoleCompetency)
	if !ok {
		c.logger.Warn("competency column not found, normalization skipped")
		return
	}
	for r := range t.Rows {
		v := t.Value(r, compCol)
		if strings.TrimSpace(v) == "" {
			continue
		}
		t.SetValue(r, compCol, strings.ToUpper(strings.TrimSpace(v)))
	}
}

// validateCompetency warns about competency values outside the accepted
// vocabulary. Observational only.
func (c *Cleaner) validateCompetency(t *dataset.Table) {
	compCol, ok := schema.Resolve(t.Columns, schema.RoleCompetency)
	if !ok {
		return
	}
	ci := t.ColumnIndex(compCol)
	unknown := make(map[string]int)
	for r := range t.Rows {
		v := t.Cell(r, ci)
		if v == "" {
			continue
		}
		if _, accepted := AcceptedCompetencies[v]; !accepted {
			unknown[v]++
		}
	}
	if len(unknown) == 0 {
		return
	}
	values := make([]string, 0, len(unknown))
	for v := range unknown {
		values = append(values, v)
	}
	sort.Strings(values)
	for _, v := range values {
		c.logger.Warn("competency value outside the accepted set",
			slog.String("value", v),
			slog.Int("rows", unknown[v]))
	}
}

// StripObjectiveCode removes a hyphenated leading token from the objective
// text; text without such a token is returned intact.
func StripObjectiveCode(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return text
	}
	fields := strings.Fields(trimmed)
	if !strings.Contains(fields[0], "-") {
		return text
	}
	return strings.Join(fields[1:], " ")
}

// StripCriterionCode drops everything before and including the first pipe
// delimiter, re-joining any remaining segments with spaces.
func StripCriterionCode(text string) string {
	if !strings.Contains(text, "|") {
		return text
	}
	parts := strings.Split(text, "|")
	rest := make([]string, 0, len(parts)-1)
	for _, p := range parts[1:] {
		if s := strings.TrimSpace(p); s != "" {
			rest = append(rest, s)
		}
	}
	return strings.Join(rest, " ")
}

// Package merge joins the roster and admissions exports into one table and
// derives the real admission cohort for every student.
package merge

import (
	"fmt"
	"log/slog"
	"strings"

	"aolcli/internal/dataset"
	"aolcli/internal/schema"
)

// CohortColumn is the derived column appended by Merge. The cleaner later
// lower-cases it along with every other header.
const CohortColumn = "Cohorte Real"

// Merger performs the roster-preserving join.
type Merger struct {
	logger   *slog.Logger
	strategy CohortStrategy
}

// NewMerger builds a merger with the given cohort strategy. A nil strategy
// selects the default chained derivation.
func NewMerger(logger *slog.Logger, strategy CohortStrategy) *Merger {
	if logger == nil {
		logger = slog.Default()
	}
	if strategy == nil {
		strategy = DefaultCohortStrategy()
	}
	return &Merger{logger: logger, strategy: strategy}
}

// Merge left-joins admissions onto the roster by student identifier and
// appends the derived cohort column. Every roster row is retained; roster rows
// without a matching admission get an empty cohort.
func (m *Merger) Merge(roster, admissions *dataset.Table) (*dataset.Table, error) {
	rosterID, ok := schema.Resolve(roster.Columns, schema.RoleStudentID)
	if !ok {
		return nil, fmt.Errorf("roster has no student identifier column (columns: %s)",
			strings.Join(roster.Columns, ", "))
	}
	admissionID, ok := schema.Resolve(admissions.Columns, schema.RoleStudentID)
	if !ok {
		return nil, fmt.Errorf("admissions file has no student identifier column (columns: %s)",
			strings.Join(admissions.Columns, ", "))
	}
	admissionPeriod, ok := schema.Resolve(admissions.Columns, schema.RoleAdmissionPeriod)
	if !ok {
		return nil, fmt.Errorf("admissions file has no admission period column (columns: %s)",
			strings.Join(admissions.Columns, ", "))
	}

	m.logger.Info("merging roster with admissions",
		slog.String("roster_key", rosterID),
		slog.String("admissions_key", admissionID),
		slog.String("admission_period", admissionPeriod),
		slog.String("cohort_strategy", m.strategy.Name()),
		slog.Int("roster_rows", roster.Len()),
		slog.Int("admission_rows", admissions.Len()))

	cohortByStudent := m.buildCohortIndex(admissions, admissionID, admissionPeriod)

	idCol := roster.ColumnIndex(rosterID)
	cohorts := make([]string, roster.Len())
	matched := 0
	for r := range roster.Rows {
		student := normalizeID(roster.Cell(r, idCol))
		if cohort, ok := cohortByStudent[student]; ok {
			cohorts[r] = cohort
			if cohort != "" {
				matched++
			}
		}
	}

	merged := roster.Clone()
	merged.AddColumn(CohortColumn, cohorts)

	m.logger.Info("merge complete",
		slog.Int("rows", merged.Len()),
		slog.Int("rows_with_cohort", matched),
		slog.Int("rows_without_cohort", merged.Len()-matched))

	return merged, nil
}

// buildCohortIndex derives one cohort per admitted student. First admission
// record wins when a student appears twice.
func (m *Merger) buildCohortIndex(admissions *dataset.Table, idColumn, periodColumn string) map[string]string {
	idCol := admissions.ColumnIndex(idColumn)
	periodCol := admissions.ColumnIndex(periodColumn)

	index := make(map[string]string, admissions.Len())
	unparseable := 0
	for r := range admissions.Rows {
		student := normalizeID(admissions.Cell(r, idCol))
		if student == "" {
			continue
		}
		if _, exists := index[student]; exists {
			continue
		}
		raw := admissions.Cell(r, periodCol)
		cohort := m.strategy.Derive(raw)
		if cohort == "" && strings.TrimSpace(raw) != "" {
			unparseable++
		}
		index[student] = cohort
	}
	if unparseable > 0 {
		m.logger.Warn("admission periods could not be interpreted",
			slog.Int("count", unparseable),
			slog.String("cohort_strategy", m.strategy.Name()))
	}
	return index
}

// normalizeID strips whitespace and a numeric-cell ".0" suffix so join keys
// compare equal regardless of the cell type Excel assigned them.
func normalizeID(raw string) string {
	return strings.TrimSuffix(strings.TrimSpace(raw), ".0")
}

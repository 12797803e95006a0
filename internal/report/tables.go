package report

import (
	"sort"
	"strconv"
	"strings"

	"aolcli/internal/dataset"
	"aolcli/internal/schema"
)

// tableSpecs is the fixed battery of derived tables every program report
// carries, in output order.
var tableSpecs = []tableSpec{
	{Name: "tabla_1", Build: buildCompetencyCatalog},
	{Name: "tabla_2", Build: buildCountsMatrix},
	{Name: "tabla_3", Build: buildCriteriaCatalog},
	{Name: "tabla_4", Build: buildCompetencyPeriodMeans},
	{Name: "tabla_5", Build: buildCriterionObjectivePeriodMeans},
	{Name: "tabla_6", Build: buildPeriodMeanSummary},
	{Name: "tabla_7", Build: buildObjectiveCriterionPivot},
	{Name: "tabla_8", Build: buildCompetencyCohortMeans},
	{Name: "tabla_9", Build: buildObjectiveCohortSpread},
}

// emDash replaces zero counts for readability.
const emDash = "—"

// buildCompetencyCatalog lists the unique competency / learning-goal /
// objective triples, one row per competency with the distinct texts
// aggregated one per line.
func buildCompetencyCatalog(t *dataset.Table) (*Derived, error) {
	cols, err := resolveRoles(t, schema.RoleCompetency, schema.RoleGoal, schema.RoleObjective)
	if err != nil {
		return nil, err
	}
	comp := t.ColumnIndex(cols[schema.RoleCompetency])
	goal := t.ColumnIndex(cols[schema.RoleGoal])
	obj := t.ColumnIndex(cols[schema.RoleObjective])

	goals := make(map[string]map[string]struct{})
	objectives := make(map[string]map[string]struct{})
	for r := range t.Rows {
		c, g, o := t.Cell(r, comp), t.Cell(r, goal), t.Cell(r, obj)
		if c == "" || g == "" || o == "" {
			continue
		}
		if goals[c] == nil {
			goals[c] = make(map[string]struct{})
			objectives[c] = make(map[string]struct{})
		}
		goals[c][g] = struct{}{}
		objectives[c][o] = struct{}{}
	}

	derived := &Derived{
		Sheet:   "Tabla 1",
		Columns: []string{"Competencia", "Metas de aprendizaje", "Objetivos de aprendizaje"},
	}
	for _, c := range sortedKeys(setOfKeys(goals)) {
		derived.Rows = append(derived.Rows, []string{
			c,
			strings.Join(sortedKeys(goals[c]), "\n"),
			strings.Join(sortedKeys(objectives[c]), "\n"),
		})
	}
	return derived, nil
}

// buildCountsMatrix cross-tabs measurement counts by period and objective
// with row/column totals; zero cells render as an em-dash.
func buildCountsMatrix(t *dataset.Table) (*Derived, error) {
	cols, err := resolveRoles(t, schema.RolePeriod, schema.RoleObjective)
	if err != nil {
		return nil, err
	}
	per := t.ColumnIndex(cols[schema.RolePeriod])
	obj := t.ColumnIndex(cols[schema.RoleObjective])

	counts := make(map[pivotKey]int)
	periods := make(map[string]struct{})
	objectives := make(map[string]struct{})
	for r := range t.Rows {
		p, o := t.Cell(r, per), t.Cell(r, obj)
		if p == "" || o == "" {
			continue
		}
		counts[pivotKey{row: p, col: o}]++
		periods[p] = struct{}{}
		objectives[o] = struct{}{}
	}

	periodLabels := sortedKeys(periods)
	objectiveLabels := sortedKeys(objectives)

	derived := &Derived{Sheet: "Tabla 2"}
	derived.Columns = append([]string{"Periodo"}, objectiveLabels...)
	derived.Columns = append(derived.Columns, "# Total")

	colTotals := make([]int, len(objectiveLabels))
	grand := 0
	for _, p := range periodLabels {
		row := []string{p}
		rowTotal := 0
		for j, o := range objectiveLabels {
			n := counts[pivotKey{row: p, col: o}]
			row = append(row, formatCount(n))
			rowTotal += n
			colTotals[j] += n
		}
		row = append(row, formatCount(rowTotal))
		grand += rowTotal
		derived.Rows = append(derived.Rows, row)
	}

	totalRow := []string{"Total"}
	for _, n := range colTotals {
		totalRow = append(totalRow, formatCount(n))
	}
	totalRow = append(totalRow, formatCount(grand))
	derived.Rows = append(derived.Rows, totalRow)

	return derived, nil
}

func formatCount(n int) string {
	if n == 0 {
		return emDash
	}
	return itoa(n)
}

// buildCriteriaCatalog lists the distinct criteria per objective with a
// per-objective count, blanking the objective and count cells on every row
// after the first, plus a grand-total row.
func buildCriteriaCatalog(t *dataset.Table) (*Derived, error) {
	cols, err := resolveRoles(t, schema.RoleObjective, schema.RoleCriterion)
	if err != nil {
		return nil, err
	}
	obj := t.ColumnIndex(cols[schema.RoleObjective])
	crit := t.ColumnIndex(cols[schema.RoleCriterion])

	byObjective := make(map[string]map[string]struct{})
	for r := range t.Rows {
		o, c := t.Cell(r, obj), t.Cell(r, crit)
		if o == "" || c == "" {
			continue
		}
		if byObjective[o] == nil {
			byObjective[o] = make(map[string]struct{})
		}
		byObjective[o][c] = struct{}{}
	}

	derived := &Derived{
		Sheet:   "Tabla 3",
		Columns: []string{"Objetivos de aprendizaje", "Número de criterios", "Nombre del criterio"},
	}
	total := 0
	for _, o := range sortedKeys(setOfKeys(byObjective)) {
		criteria := sortedKeys(byObjective[o])
		total += len(criteria)
		for i, c := range criteria {
			if i == 0 {
				derived.Rows = append(derived.Rows, []string{o, itoa(len(criteria)), c})
			} else {
				derived.Rows = append(derived.Rows, []string{"", "", c})
			}
		}
	}
	derived.Rows = append(derived.Rows, []string{"Total criterios", itoa(total), ""})
	return derived, nil
}

// buildCompetencyPeriodMeans is the mean score by period and competency.
func buildCompetencyPeriodMeans(t *dataset.Table) (*Derived, error) {
	cols, err := resolveRoles(t, schema.RolePeriod, schema.RoleCompetency, schema.RoleScore)
	if err != nil {
		return nil, err
	}
	pv := scorePivot(t,
		t.ColumnIndex(cols[schema.RolePeriod]),
		t.ColumnIndex(cols[schema.RoleCompetency]),
		t.ColumnIndex(cols[schema.RoleScore]))

	derived := &Derived{Sheet: "Tabla 4"}
	derived.Columns = append([]string{"Periodo"}, pv.colLabels()...)
	for _, p := range pv.rowLabels() {
		row := []string{p}
		for _, c := range pv.colLabels() {
			row = append(row, formatMean(pv.mean(p, c)))
		}
		derived.Rows = append(derived.Rows, row)
	}
	return derived, nil
}

// buildCriterionObjectivePeriodMeans is the mean score per criterion within
// objective across periods, styled as a heatmap.
func buildCriterionObjectivePeriodMeans(t *dataset.Table) (*Derived, error) {
	return objectiveCriterionMatrix(t, "Tabla 5")
}

// buildObjectiveCriterionPivot is the second heatmap pivot over the same
// (objective, criterion) × period axes, kept as its own artifact to match the
// report battery.
func buildObjectiveCriterionPivot(t *dataset.Table) (*Derived, error) {
	return objectiveCriterionMatrix(t, "Tabla 7")
}

func objectiveCriterionMatrix(t *dataset.Table, sheet string) (*Derived, error) {
	cols, err := resolveRoles(t,
		schema.RolePeriod, schema.RoleObjective, schema.RoleCriterion, schema.RoleScore)
	if err != nil {
		return nil, err
	}
	per := t.ColumnIndex(cols[schema.RolePeriod])
	obj := t.ColumnIndex(cols[schema.RoleObjective])
	crit := t.ColumnIndex(cols[schema.RoleCriterion])
	score := t.ColumnIndex(cols[schema.RoleScore])

	type rowKey struct{ objective, criterion string }
	cells := make(map[rowKey]map[string]*accumulator)
	periods := make(map[string]struct{})
	for r := range t.Rows {
		o, c, p := t.Cell(r, obj), t.Cell(r, crit), t.Cell(r, per)
		v, ok := dataset.ParseNumber(t.Cell(r, score))
		if o == "" || c == "" || p == "" || !ok {
			continue
		}
		key := rowKey{objective: o, criterion: c}
		if cells[key] == nil {
			cells[key] = make(map[string]*accumulator)
		}
		if cells[key][p] == nil {
			cells[key][p] = &accumulator{}
		}
		cells[key][p].add(v)
		periods[p] = struct{}{}
	}

	keys := make([]rowKey, 0, len(cells))
	for k := range cells {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].objective != keys[j].objective {
			return keys[i].objective < keys[j].objective
		}
		return keys[i].criterion < keys[j].criterion
	})
	periodLabels := sortedKeys(periods)

	derived := &Derived{Sheet: sheet, Heatmap: true, HeatmapFrom: 2}
	derived.Columns = append([]string{"Objetivo de aprendizaje", "Nombre del criterio"}, periodLabels...)
	for _, k := range keys {
		row := []string{k.objective, k.criterion}
		for _, p := range periodLabels {
			if acc := cells[k][p]; acc != nil {
				row = append(row, formatMean(acc.mean()))
			} else {
				row = append(row, "")
			}
		}
		derived.Rows = append(derived.Rows, row)
	}
	return derived, nil
}

// buildPeriodMeanSummary is the single mean-score-by-period (or cohort)
// summary.
func buildPeriodMeanSummary(t *dataset.Table) (*Derived, error) {
	periodColumn, ok := schema.Resolve(t.Columns, schema.RoleCohort)
	if !ok {
		periodColumn, ok = schema.Resolve(t.Columns, schema.RolePeriod)
	}
	if !ok {
		return nil, &ErrColumnsUnresolved{Roles: []schema.Role{schema.RoleCohort, schema.RolePeriod}}
	}
	scoreColumn, ok := schema.Resolve(t.Columns, schema.RoleScore)
	if !ok {
		return nil, &ErrColumnsUnresolved{Roles: []schema.Role{schema.RoleScore}}
	}

	per := t.ColumnIndex(periodColumn)
	score := t.ColumnIndex(scoreColumn)

	byPeriod := make(map[string]*accumulator)
	for r := range t.Rows {
		p := t.Cell(r, per)
		v, okNum := dataset.ParseNumber(t.Cell(r, score))
		if p == "" || !okNum {
			continue
		}
		if byPeriod[p] == nil {
			byPeriod[p] = &accumulator{}
		}
		byPeriod[p].add(v)
	}

	derived := &Derived{Sheet: "Tabla 6", Columns: []string{"Periodo", "Promedio"}}
	for _, p := range sortedKeys(setOfKeys(byPeriod)) {
		derived.Rows = append(derived.Rows, []string{p, formatMean(byPeriod[p].mean())})
	}
	return derived, nil
}

// buildCompetencyCohortMeans is the mean score by admission cohort and
// competency, with a per-row Promedio column and a trailing overall-mean row.
func buildCompetencyCohortMeans(t *dataset.Table) (*Derived, error) {
	cols, err := resolveRoles(t, schema.RoleCohort, schema.RoleCompetency, schema.RoleScore)
	if err != nil {
		return nil, err
	}
	pv := scorePivot(t,
		t.ColumnIndex(cols[schema.RoleCohort]),
		t.ColumnIndex(cols[schema.RoleCompetency]),
		t.ColumnIndex(cols[schema.RoleScore]))

	competencies := pv.colLabels()
	derived := &Derived{Sheet: "Tabla 8"}
	derived.Columns = append([]string{"Cohorte"}, competencies...)
	derived.Columns = append(derived.Columns, "Promedio")

	columnMeans := make([][]float64, len(competencies)+1)
	for _, cohort := range pv.rowLabels() {
		row := []string{"Cohorte " + cohort}
		var rowMeans []float64
		for j, comp := range competencies {
			v, ok := pv.mean(cohort, comp)
			row = append(row, formatMean(v, ok))
			if ok {
				rowMeans = append(rowMeans, round2(v))
				columnMeans[j] = append(columnMeans[j], round2(v))
			}
		}
		avg, okAvg := meanOf(rowMeans)
		row = append(row, formatMean(avg, okAvg))
		if okAvg {
			columnMeans[len(competencies)] = append(columnMeans[len(competencies)], round2(avg))
		}
		derived.Rows = append(derived.Rows, row)
	}

	meanRow := []string{"Promedio"}
	for _, values := range columnMeans {
		avg, ok := meanOf(values)
		meanRow = append(meanRow, formatMean(avg, ok))
	}
	derived.Rows = append(derived.Rows, meanRow)
	return derived, nil
}

// buildObjectiveCohortSpread interleaves mean (μ) and sample standard
// deviation (σ) per objective across admission cohorts, with a trailing
// average row.
func buildObjectiveCohortSpread(t *dataset.Table) (*Derived, error) {
	periodColumn, ok := schema.Resolve(t.Columns, schema.RoleCohort)
	if !ok {
		periodColumn, ok = schema.Resolve(t.Columns, schema.RolePeriod)
	}
	if !ok {
		return nil, &ErrColumnsUnresolved{Roles: []schema.Role{schema.RoleCohort, schema.RolePeriod}}
	}
	cols, err := resolveRoles(t, schema.RoleObjective, schema.RoleScore)
	if err != nil {
		return nil, err
	}

	coh := t.ColumnIndex(periodColumn)
	obj := t.ColumnIndex(cols[schema.RoleObjective])
	score := t.ColumnIndex(cols[schema.RoleScore])

	cells := make(map[pivotKey]*accumulator)
	cohorts := make(map[string]struct{})
	objectives := make(map[string]struct{})
	for r := range t.Rows {
		c, o := t.Cell(r, coh), t.Cell(r, obj)
		v, okNum := dataset.ParseNumber(t.Cell(r, score))
		if c == "" || o == "" || !okNum {
			continue
		}
		key := pivotKey{row: c, col: o}
		if cells[key] == nil {
			cells[key] = &accumulator{}
		}
		cells[key].add(v)
		cohorts[c] = struct{}{}
		objectives[o] = struct{}{}
	}

	cohortLabels := sortedKeys(cohorts)
	objectiveLabels := sortedKeys(objectives)

	derived := &Derived{Sheet: "Tabla 9", Columns: []string{"Cohorte"}}
	for _, o := range objectiveLabels {
		derived.Columns = append(derived.Columns, o+" (μ)", o+" (σ)")
	}

	columnValues := make([][]float64, 2*len(objectiveLabels))
	for _, c := range cohortLabels {
		row := []string{c}
		for j, o := range objectiveLabels {
			acc := cells[pivotKey{row: c, col: o}]
			if acc == nil {
				row = append(row, "", "")
				continue
			}
			mu, okMu := acc.mean()
			row = append(row, formatMean(mu, okMu))
			if okMu {
				columnValues[2*j] = append(columnValues[2*j], round2(mu))
			}
			sigma, okSigma := acc.stdDev()
			row = append(row, formatMean(sigma, okSigma))
			if okSigma {
				columnValues[2*j+1] = append(columnValues[2*j+1], round2(sigma))
			}
		}
		derived.Rows = append(derived.Rows, row)
	}

	avgRow := []string{"Promedio"}
	for _, values := range columnValues {
		avg, okAvg := meanOf(values)
		avgRow = append(avgRow, formatMean(avg, okAvg))
	}
	derived.Rows = append(derived.Rows, avgRow)
	return derived, nil
}

// scorePivot accumulates parseable scores into a (row, column) pivot.
func scorePivot(t *dataset.Table, rowCol, colCol, scoreCol int) *pivot {
	pv := newPivot()
	for r := range t.Rows {
		rowLabel, colLabel := t.Cell(r, rowCol), t.Cell(r, colCol)
		v, ok := dataset.ParseNumber(t.Cell(r, scoreCol))
		if rowLabel == "" || colLabel == "" || !ok {
			continue
		}
		pv.add(rowLabel, colLabel, v)
	}
	return pv
}

func setOfKeys[V any](m map[string]V) map[string]struct{} {
	set := make(map[string]struct{}, len(m))
	for k := range m {
		set[k] = struct{}{}
	}
	return set
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

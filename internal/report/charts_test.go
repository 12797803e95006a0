package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wcharczuk/go-chart/v2"

	"aolcli/internal/dataset"
)

func TestBuildPeriodEvaluationCounts(t *testing.T) {
	values, err := buildPeriodEvaluationCounts(consolidatedFixture())
	require.NoError(t, err)

	assert.Equal(t, []chart.Value{
		{Label: "2024-1", Value: 2},
		{Label: "2024-2", Value: 2},
	}, values, "students are counted once per period")
}

func TestBuildCohortEvaluationCounts(t *testing.T) {
	values, err := buildCohortEvaluationCounts(consolidatedFixture())
	require.NoError(t, err)

	require.Len(t, values, 2)
	assert.Equal(t, "Cohorte 202410", values[0].Label)
	assert.Equal(t, 2.0, values[0].Value)
	assert.Equal(t, "Cohorte 202420", values[1].Label)
	assert.Equal(t, 2.0, values[1].Value)
}

func TestChartBuilders_MissingColumns(t *testing.T) {
	empty := dataset.New("foo")
	for _, spec := range chartSpecs {
		t.Run(spec.Name, func(t *testing.T) {
			_, err := spec.Build(empty)
			var unresolved *ErrColumnsUnresolved
			assert.ErrorAs(t, err, &unresolved)
		})
	}
}

func TestWriteChart_RendersPNG(t *testing.T) {
	dir := t.TempDir()
	err := writeChart(discardLogger(), chartSpecs[0], consolidatedFixture(), dir, "MIM")
	require.NoError(t, err)

	assertPNG(t, filepath.Join(dir, "MIM_figura_1.png"))
}

func TestWriteChart_PlaceholderOnMissingColumns(t *testing.T) {
	dir := t.TempDir()
	tbl := dataset.New("foo")
	tbl.AppendRow([]string{"1"})

	err := writeChart(discardLogger(), chartSpecs[1], tbl, dir, "MIM")
	require.NoError(t, err)

	assertPNG(t, filepath.Join(dir, "MIM_figura_2.png"))
}

func TestWriteChart_PlaceholderOnEmptySeries(t *testing.T) {
	dir := t.TempDir()
	tbl := dataset.New("semestre o ciclo", "código del estudiante")

	err := writeChart(discardLogger(), chartSpecs[0], tbl, dir, "MIM")
	require.NoError(t, err)

	assertPNG(t, filepath.Join(dir, "MIM_figura_1.png"))
}

func assertPNG(t *testing.T, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(data), 8)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}, data[:8])
}

func TestMaxValue(t *testing.T) {
	assert.Equal(t, 1.0, maxValue(nil), "floor keeps the axis range valid")
	assert.Equal(t, 7.0, maxValue([]chart.Value{{Value: 3}, {Value: 7}, {Value: 2}}))
}

package services

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"aolcli/internal/config"
	"aolcli/internal/ingest"
	"aolcli/internal/studentmap"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeWorkbook(t *testing.T, path string, rows [][]interface{}) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		addr, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", addr, &row))
	}
	require.NoError(t, f.SaveAs(path))
}

func pipelineFixture(t *testing.T) (*Pipeline, *config.Paths) {
	t.Helper()
	paths := config.PathsAt(t.TempDir())
	require.NoError(t, paths.EnsureDirectories())

	writeWorkbook(t, paths.RosterFile, [][]interface{}{
		{"Código del estudiante", "Programa", "Semestre o Ciclo", "Competencia", "Metas de aprendizaje", "Objetivo de aprendizaje", "Código y nombre del criterio", "Puntaje Criterio"},
		{"1001", "MIM", "2024-1", "CO-E", "Comunicarse con claridad", "3-1 Comunicación efectiva", "CR-01 | Claridad", 3.0},
		{"1001", "MIM", "2024-1", "CO-E", "Comunicarse con claridad", "3-1 Comunicación efectiva", "CR-02 | Estructura", 4.0},
		{"1002", "MIM", "2024-2", "PC", "Analizar con rigor", "3-2 Pensamiento crítico", "CR-03 | Rigor", 2.0},
		{"1003", "MIM", "2024-2", "PC", "Analizar con rigor", "3-2 Pensamiento crítico", "CR-03 | Rigor", 5.0},
	})
	writeWorkbook(t, paths.AdmissionsFile, [][]interface{}{
		{"Código", "Programa", "Fecha Inicio"},
		{"1001", "M-MIMC", "2024-03-15"},
		{"1002", "M-MIMC", "2024-08-01"},
		{"1003", "E-MIMC", "20241"},
	})

	pipeline := NewPipeline(discardLogger(), paths, config.PipelineConfig{CohortStrategy: "auto"})
	return pipeline, paths
}

func TestRunConsolidation(t *testing.T) {
	pipeline, paths := pipelineFixture(t)

	require.True(t, pipeline.RunConsolidation(context.Background()))

	consolidated, err := ingest.ReadWorkbook(paths.ConsolidatedFile)
	require.NoError(t, err)

	assert.Contains(t, consolidated.Columns, "cohorte real")
	assert.Contains(t, consolidated.Columns, "nombre del criterio")
	require.Equal(t, 4, consolidated.Len())

	assert.Equal(t, "202410", consolidated.Value(0, "cohorte real"))
	assert.Equal(t, "202420", consolidated.Value(2, "cohorte real"))
	assert.Equal(t, "20240", consolidated.Value(3, "cohorte real"))
	assert.Equal(t, "Comunicación efectiva", consolidated.Value(0, "objetivo de aprendizaje"))
	assert.Equal(t, "Claridad", consolidated.Value(0, "nombre del criterio"))

	entries, err := studentmap.NewStore(discardLogger()).Read(paths.StudentMapFile)
	require.NoError(t, err)
	assert.Equal(t, []studentmap.Entry{
		{StudentID: "1001", Program: "MIM"},
		{StudentID: "1002", Program: "MIM"},
		{StudentID: "1003", Program: "MIM"},
	}, entries)
}

func TestRunConsolidation_MissingInputs(t *testing.T) {
	paths := config.PathsAt(t.TempDir())
	pipeline := NewPipeline(discardLogger(), paths, config.PipelineConfig{})

	assert.False(t, pipeline.RunConsolidation(context.Background()))
}

func TestRunConsolidation_IsRepeatable(t *testing.T) {
	pipeline, _ := pipelineFixture(t)

	require.True(t, pipeline.RunConsolidation(context.Background()))
	assert.True(t, pipeline.RunConsolidation(context.Background()))
}

func TestRunReporting(t *testing.T) {
	pipeline, paths := pipelineFixture(t)
	require.True(t, pipeline.RunConsolidation(context.Background()))

	require.True(t, pipeline.RunReporting(context.Background()))

	programDir := filepath.Join(paths.ReportsDir, "MIM")
	assert.FileExists(t, filepath.Join(programDir, "MIM_tabla_1.xlsx"))
	assert.FileExists(t, filepath.Join(programDir, "MIM_tabla_9.xlsx"))
	assert.FileExists(t, filepath.Join(programDir, "MIM_figura_1.png"))
	assert.FileExists(t, filepath.Join(programDir, "MIM_figura_2.png"))
}

func TestRunReporting_BeforeConsolidation(t *testing.T) {
	_, paths := pipelineFixture(t)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	pipeline := NewPipeline(logger, paths, config.PipelineConfig{})

	assert.False(t, pipeline.RunReporting(context.Background()))
	assert.Contains(t, buf.String(), "reporting aborted, consolidated inputs missing",
		"missing preconditions are reported as such, not as a generic failure")
}

func TestRunConsolidation_MissingInputsLogsAbort(t *testing.T) {
	paths := config.PathsAt(t.TempDir())

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	pipeline := NewPipeline(logger, paths, config.PipelineConfig{})

	assert.False(t, pipeline.RunConsolidation(context.Background()))
	assert.Contains(t, buf.String(), "consolidation aborted, required input missing")
}

func TestRunReportingFor_UnknownProgram(t *testing.T) {
	pipeline, paths := pipelineFixture(t)
	require.True(t, pipeline.RunConsolidation(context.Background()))

	require.True(t, pipeline.RunReportingFor(context.Background(), []string{"EMBA"}))
	assert.NoDirExists(t, filepath.Join(paths.ReportsDir, "MIM"))
}

func TestCohortStrategySelection(t *testing.T) {
	paths := config.PathsAt(t.TempDir())

	date := NewPipeline(discardLogger(), paths, config.PipelineConfig{CohortStrategy: "date"})
	assert.Equal(t, "date_half_year", date.cohortStrategy().Name())

	encoded := NewPipeline(discardLogger(), paths, config.PipelineConfig{CohortStrategy: "encoded"})
	assert.Equal(t, "encoded_period", encoded.cohortStrategy().Name())

	auto := NewPipeline(discardLogger(), paths, config.PipelineConfig{CohortStrategy: "auto"})
	assert.Equal(t, "date_half_year+encoded_period", auto.cohortStrategy().Name())
}

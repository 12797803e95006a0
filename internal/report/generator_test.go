package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aolcli/internal/dataset"
	aolerrors "aolcli/internal/errors"
	"aolcli/internal/ingest"
	"aolcli/internal/studentmap"
)

func consolidatedWithProgram() *dataset.Table {
	base := consolidatedFixture()
	programs := make([]string, base.Len())
	for i := range programs {
		programs[i] = "MIM"
	}
	base.AddColumn("programa", programs)
	return base
}

func generatorFixture(t *testing.T, entries []studentmap.Entry) Options {
	t.Helper()
	dir := t.TempDir()
	opts := Options{
		ConsolidatedPath: filepath.Join(dir, "base_consolidada.xlsx"),
		StudentMapPath:   filepath.Join(dir, "student_program_map.csv"),
		ReportsDir:       filepath.Join(dir, "reportes"),
	}
	require.NoError(t, ingest.WriteWorkbook(opts.ConsolidatedPath, "Consolidado", consolidatedWithProgram()))
	require.NoError(t, studentmap.NewStore(discardLogger()).Write(opts.StudentMapPath, entries))
	return opts
}

func TestGenerate_WritesFullBundle(t *testing.T) {
	opts := generatorFixture(t, []studentmap.Entry{
		{StudentID: "1001", Program: "MIM"},
		{StudentID: "1002", Program: "MIM"},
		{StudentID: "1003", Program: "MIM"},
	})

	gen := NewGenerator(discardLogger(), opts)
	require.NoError(t, gen.Generate(context.Background()))

	programDir := filepath.Join(opts.ReportsDir, "MIM")
	for i := 1; i <= 9; i++ {
		assert.FileExists(t, filepath.Join(programDir, fmt.Sprintf("MIM_tabla_%d.xlsx", i)))
	}
	assert.FileExists(t, filepath.Join(programDir, "MIM_figura_1.png"))
	assert.FileExists(t, filepath.Join(programDir, "MIM_figura_2.png"))
}

func TestGenerate_MissingConsolidatedTable(t *testing.T) {
	dir := t.TempDir()
	gen := NewGenerator(discardLogger(), Options{
		ConsolidatedPath: filepath.Join(dir, "missing.xlsx"),
		StudentMapPath:   filepath.Join(dir, "map.csv"),
		ReportsDir:       filepath.Join(dir, "reportes"),
	})

	err := gen.Generate(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, aolerrors.ErrMissingInput)
}

func TestGenerate_MissingStudentMap(t *testing.T) {
	opts := generatorFixture(t, nil)
	require.NoError(t, os.Remove(opts.StudentMapPath))

	err := NewGenerator(discardLogger(), opts).Generate(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, aolerrors.ErrMissingPrecondition)
}

func TestGenerate_ProgramFilter(t *testing.T) {
	opts := generatorFixture(t, nil)
	opts.Programs = []string{"AFIN"}

	require.NoError(t, NewGenerator(discardLogger(), opts).Generate(context.Background()))
	assert.NoDirExists(t, filepath.Join(opts.ReportsDir, "MIM"))
}

func TestGenerate_ValidationSkipsProgramWithoutAdmittedStudents(t *testing.T) {
	// The map holds no MIM students, so validation empties the slice and the
	// program directory is never created.
	opts := generatorFixture(t, []studentmap.Entry{{StudentID: "9999", Program: "AFIN"}})
	opts.ValidateStudents = true

	require.NoError(t, NewGenerator(discardLogger(), opts).Generate(context.Background()))
	assert.NoDirExists(t, filepath.Join(opts.ReportsDir, "MIM"))
}

func TestGenerate_CancelledContext(t *testing.T) {
	opts := generatorFixture(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewGenerator(discardLogger(), opts).Generate(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFilterByStudentMap(t *testing.T) {
	rows := dataset.New("código del estudiante", "puntaje criterio")
	rows.AppendRow([]string{"1001", "3.0"})
	rows.AppendRow([]string{"2002", "4.0"})

	index := studentmap.Index([]studentmap.Entry{{StudentID: "1001", Program: "MIM"}})

	gen := NewGenerator(discardLogger(), Options{})
	filtered := gen.FilterByStudentMap(rows, index, "MIM")

	require.Equal(t, 1, filtered.Len())
	assert.Equal(t, "1001", filtered.Value(0, "código del estudiante"))
}

func TestFilterByStudentMap_NoStudentColumn(t *testing.T) {
	rows := dataset.New("puntaje criterio")
	rows.AppendRow([]string{"3.0"})

	gen := NewGenerator(discardLogger(), Options{})
	filtered := gen.FilterByStudentMap(rows, nil, "MIM")

	assert.Equal(t, 1, filtered.Len(), "rows pass through when the student column is missing")
}

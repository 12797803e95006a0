// Package report derives the per-program statistics tables and charts from
// the consolidated table.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"aolcli/internal/dataset"
	aolerrors "aolcli/internal/errors"
	"aolcli/internal/ingest"
	"aolcli/internal/schema"
	"aolcli/internal/studentmap"
)

// Options configures a report run.
type Options struct {
	ConsolidatedPath string
	StudentMapPath   string
	ReportsDir       string
	// ValidateStudents turns on the student-map cross-check stage before the
	// per-program tables. Off by default; the check is exposed on its own so
	// integration decides whether it belongs in the default path.
	ValidateStudents bool
	// Programs optionally narrows the run to these canonical codes.
	Programs []string
}

// Generator produces one report bundle per program.
type Generator struct {
	logger *slog.Logger
	store  *studentmap.Store
	opts   Options
}

// NewGenerator builds a generator.
func NewGenerator(logger *slog.Logger, opts Options) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		logger: logger,
		store:  studentmap.NewStore(logger),
		opts:   opts,
	}
}

// Generate runs the whole reporting stage. Only missing inputs and the
// missing student map abort the run; everything below the per-program loop
// degrades to fallbacks and warnings.
func (g *Generator) Generate(ctx context.Context) error {
	consolidated, err := ingest.ReadWorkbook(g.opts.ConsolidatedPath)
	if err != nil {
		return aolerrors.MissingInput(g.opts.ConsolidatedPath, err)
	}

	mapEntries, err := g.store.Read(g.opts.StudentMapPath)
	if err != nil {
		return aolerrors.MissingPrecondition(fmt.Sprintf(
			"student-program map %s: %v; run the consolidation first", g.opts.StudentMapPath, err))
	}
	mapIndex := studentmap.Index(mapEntries)
	g.logger.Info("student-program map loaded",
		slog.String("path", g.opts.StudentMapPath),
		slog.Int("students", len(mapEntries)))

	programColumn, ok := schema.Resolve(consolidated.Columns, schema.RoleProgram)
	if !ok {
		return aolerrors.MissingPrecondition("consolidated table has no program column")
	}

	programs := consolidated.DistinctValues(programColumn)
	if len(g.opts.Programs) > 0 {
		programs = intersect(programs, g.opts.Programs)
	}
	g.logger.Info("generating program reports", slog.Int("programs", len(programs)))

	for _, program := range programs {
		if err := ctx.Err(); err != nil {
			return err
		}
		g.generateProgram(consolidated, mapIndex, programColumn, program)
	}

	g.logger.Info("program reports generated", slog.Int("programs", len(programs)))
	return nil
}

// generateProgram derives one program's bundle. Per-table and per-chart
// failures are isolated here and never abort sibling programs.
func (g *Generator) generateProgram(consolidated *dataset.Table, mapIndex map[string]map[string]struct{}, programColumn, program string) {
	col := consolidated.ColumnIndex(programColumn)
	rows := consolidated.Filter(func(r int) bool {
		return consolidated.Cell(r, col) == program
	})

	if g.opts.ValidateStudents {
		rows = g.FilterByStudentMap(rows, mapIndex, program)
	}

	if rows.Len() == 0 {
		g.logger.Warn("no valid student data for program, skipping",
			slog.String("program", program))
		return
	}

	// Dropped so the per-program tables never carry the constant column.
	rows.DropColumn(programColumn)

	dir := filepath.Join(g.opts.ReportsDir, program)
	if err := os.MkdirAll(dir, 0755); err != nil {
		g.logger.Error("failed to create program report directory",
			slog.String("program", program),
			slog.String("error", err.Error()))
		return
	}

	g.logger.Info("generating tables",
		slog.String("program", program),
		slog.Int("rows", rows.Len()))

	for _, spec := range tableSpecs {
		derived := deriveOrFallback(g.logger, spec, rows, program)
		if derived == nil {
			continue
		}
		if err := writeDerived(dir, program, spec.Name, derived); err != nil {
			g.logger.Error("failed to write table",
				slog.String("table", spec.Name),
				slog.String("program", program),
				slog.String("error", err.Error()))
			continue
		}
		g.logger.Info("table generated",
			slog.String("table", spec.Name),
			slog.String("program", program))
	}

	for _, spec := range chartSpecs {
		if err := writeChart(g.logger, spec, rows, dir, program); err != nil {
			g.logger.Error("failed to write chart",
				slog.String("chart", spec.Name),
				slog.String("program", program),
				slog.String("error", err.Error()))
			continue
		}
		g.logger.Info("chart generated",
			slog.String("chart", spec.Name),
			slog.String("program", program))
	}
}

// FilterByStudentMap keeps only rows whose student is officially admitted to
// the program according to the persisted map, logging how many rows were
// dropped. Rows pass through untouched when the student column cannot be
// resolved.
func (g *Generator) FilterByStudentMap(rows *dataset.Table, mapIndex map[string]map[string]struct{}, program string) *dataset.Table {
	studentColumn, ok := schema.Resolve(rows.Columns, schema.RoleStudentID)
	if !ok {
		g.logger.Warn("student column not found, map validation skipped",
			slog.String("program", program))
		return rows
	}
	valid := mapIndex[program]

	col := rows.ColumnIndex(studentColumn)
	before := rows.Len()
	filtered := rows.Filter(func(r int) bool {
		_, admitted := valid[rows.Cell(r, col)]
		return admitted
	})

	if dropped := before - filtered.Len(); dropped > 0 {
		g.logger.Warn("records removed for students not found in the program map",
			slog.String("program", program),
			slog.Int("dropped", dropped))
	} else {
		g.logger.Info("all records validated against program map",
			slog.String("program", program),
			slog.Int("records", before))
	}
	return filtered
}

func intersect(all, wanted []string) []string {
	keep := make(map[string]struct{}, len(wanted))
	for _, w := range wanted {
		keep[w] = struct{}{}
	}
	out := make([]string, 0, len(all))
	for _, p := range all {
		if _, ok := keep[p]; ok {
			out = append(out, p)
		}
	}
	return out
}

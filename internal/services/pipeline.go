// Package services exposes the two pipeline operations the GUI and the CLIs
// invoke. Each operation catches every error at its boundary and reports a
// plain success flag; all diagnostic detail goes to the log stream.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"aolcli/internal/clean"
	"aolcli/internal/config"
	aolerrors "aolcli/internal/errors"
	"aolcli/internal/ingest"
	"aolcli/internal/merge"
	"aolcli/internal/report"
	"aolcli/internal/studentmap"
)

// Pipeline wires the consolidation and reporting stages over one path set.
// The design assumes a single writer: callers serialize runs.
type Pipeline struct {
	logger *slog.Logger
	paths  *config.Paths
	cfg    config.PipelineConfig
}

// NewPipeline builds the pipeline service.
func NewPipeline(logger *slog.Logger, paths *config.Paths, cfg config.PipelineConfig) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{logger: logger, paths: paths, cfg: cfg}
}

// RunConsolidation merges, cleans and persists the consolidated table, then
// builds and persists the student-program map. Safe to re-invoke; a failed
// run leaves any prior consolidated file untouched.
func (p *Pipeline) RunConsolidation(ctx context.Context) (success bool) {
	defer p.recoverBoundary("consolidation", &success)

	if err := p.Consolidate(ctx); err != nil {
		msg := "error generating consolidated file"
		if aolerrors.IsFatal(err) {
			msg = "consolidation aborted, required input missing"
		}
		p.logger.Error(msg, slog.String("error", err.Error()))
		return false
	}
	p.logger.Info("consolidated file generated successfully")
	return true
}

// RunReporting generates every program report bundle from the persisted
// consolidated table and student-program map.
func (p *Pipeline) RunReporting(ctx context.Context) (success bool) {
	return p.RunReportingFor(ctx, nil)
}

// RunReportingFor narrows a reporting run to the given canonical program
// codes; nil means all programs.
func (p *Pipeline) RunReportingFor(ctx context.Context, programs []string) (success bool) {
	defer p.recoverBoundary("reporting", &success)

	if err := p.Report(ctx, programs); err != nil {
		msg := "error generating tables and graphs"
		if aolerrors.IsFatal(err) {
			msg = "reporting aborted, consolidated inputs missing"
		}
		p.logger.Error(msg, slog.String("error", err.Error()))
		return false
	}
	p.logger.Info("tables and graphs generated successfully")
	return true
}

// Consolidate is the error-returning core of the consolidation operation,
// kept separate so tests can assert on the failure taxonomy.
func (p *Pipeline) Consolidate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	roster, err := ingest.ReadWorkbook(p.paths.RosterFile)
	if err != nil {
		return aolerrors.MissingInput(p.paths.RosterFile, err)
	}
	admissions, err := ingest.ReadWorkbook(p.paths.AdmissionsFile)
	if err != nil {
		return aolerrors.MissingInput(p.paths.AdmissionsFile, err)
	}

	merger := merge.NewMerger(p.logger, p.cohortStrategy())
	merged, err := merger.Merge(roster, admissions)
	if err != nil {
		return fmt.Errorf("merge failed: %w", err)
	}

	cleaned := clean.NewCleaner(p.logger).Clean(merged)

	if err := ingest.WriteWorkbook(p.paths.ConsolidatedFile, "Consolidado", cleaned); err != nil {
		return fmt.Errorf("failed to persist consolidated table: %w", err)
	}
	p.logger.Info("consolidated table written",
		slog.String("path", p.paths.ConsolidatedFile),
		slog.Int("rows", cleaned.Len()))

	entries, err := studentmap.NewBuilder(p.logger).Build(admissions)
	if err != nil {
		return fmt.Errorf("failed to build student-program map: %w", err)
	}
	if err := studentmap.NewStore(p.logger).Write(p.paths.StudentMapFile, entries); err != nil {
		return fmt.Errorf("failed to persist student-program map: %w", err)
	}
	return nil
}

// Report is the error-returning core of the reporting operation.
func (p *Pipeline) Report(ctx context.Context, programs []string) error {
	generator := report.NewGenerator(p.logger, report.Options{
		ConsolidatedPath: p.paths.ConsolidatedFile,
		StudentMapPath:   p.paths.StudentMapFile,
		ReportsDir:       p.paths.ReportsDir,
		ValidateStudents: p.cfg.ValidateStudents,
		Programs:         programs,
	})
	return generator.Generate(ctx)
}

func (p *Pipeline) cohortStrategy() merge.CohortStrategy {
	switch p.cfg.CohortStrategy {
	case "date":
		return merge.DateHalfYearStrategy{}
	case "encoded":
		return merge.EncodedPeriodStrategy{}
	default:
		return merge.DefaultCohortStrategy()
	}
}

// recoverBoundary keeps panics from crossing the operation boundary; the GUI
// contract is a bool, never a raised error.
func (p *Pipeline) recoverBoundary(operation string, success *bool) {
	if rec := recover(); rec != nil {
		p.logger.Error("unexpected failure",
			slog.String("operation", operation),
			slog.Any("panic", rec))
		*success = false
	}
}

package report

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"aolcli/internal/dataset"
	"aolcli/internal/schema"
)

// fallbackRows is how many raw rows a fallback sheet carries in place of a
// derivation whose columns could not be located.
const fallbackRows = 50

// FallbackSheet is the sheet name marking a fallback dump.
const FallbackSheet = "Datos"

// ErrColumnsUnresolved marks a derivation that cannot run because one or more
// semantic columns are missing from the consolidated table. It selects the
// raw-rows fallback path instead of failing the artifact.
type ErrColumnsUnresolved struct {
	Roles []schema.Role
}

func (e *ErrColumnsUnresolved) Error() string {
	names := make([]string, len(e.Roles))
	for i, r := range e.Roles {
		names[i] = r.String()
	}
	return fmt.Sprintf("columns unresolved for roles: %s", strings.Join(names, ", "))
}

// resolveRoles resolves every role or returns ErrColumnsUnresolved listing
// the misses.
func resolveRoles(t *dataset.Table, roles ...schema.Role) (map[schema.Role]string, error) {
	resolved := make(map[schema.Role]string, len(roles))
	var missing []schema.Role
	for _, role := range roles {
		name, ok := schema.Resolve(t.Columns, role)
		if !ok {
			missing = append(missing, role)
			continue
		}
		resolved[role] = name
	}
	if len(missing) > 0 {
		return nil, &ErrColumnsUnresolved{Roles: missing}
	}
	return resolved, nil
}

// Derived is one report table ready for writing.
type Derived struct {
	Sheet   string
	Columns []string
	Rows    [][]string
	// Heatmap applies a 3-color scale over the numeric body. HeatmapFrom is
	// the first data column (0-based) the scale covers, so leading label
	// columns stay unstyled.
	Heatmap     bool
	HeatmapFrom int
}

// tableSpec pairs an artifact name with its pure builder.
type tableSpec struct {
	Name  string
	Build func(t *dataset.Table) (*Derived, error)
}

// deriveOrFallback executes one table builder inside the shared failure
// boundary: a column-resolution miss degrades to the first raw rows, any
// other error is logged and only that artifact is skipped.
func deriveOrFallback(logger *slog.Logger, spec tableSpec, t *dataset.Table, program string) *Derived {
	derived, err := spec.Build(t)
	if err == nil {
		return derived
	}

	var unresolved *ErrColumnsUnresolved
	if errors.As(err, &unresolved) {
		logger.Warn("table fallback written, column not found",
			slog.String("table", spec.Name),
			slog.String("program", program),
			slog.String("detail", unresolved.Error()))
		head := t.Head(fallbackRows)
		return &Derived{
			Sheet:   FallbackSheet,
			Columns: head.Columns,
			Rows:    head.Rows,
		}
	}

	logger.Error("table generation failed",
		slog.String("table", spec.Name),
		slog.String("program", program),
		slog.String("error", err.Error()))
	return nil
}

package report

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/wcharczuk/go-chart/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"aolcli/internal/dataset"
	"aolcli/internal/schema"
)

// chartSpec pairs a figure name with its bar-series builder.
type chartSpec struct {
	Name    string
	Title   string
	YLabel  string
	Missing string
	Build   func(t *dataset.Table) ([]chart.Value, error)
}

// chartSpecs is the pair of figures every program report carries.
var chartSpecs = []chartSpec{
	{
		Name:    "figura_1",
		Title:   "Número de evaluaciones AOL",
		YLabel:  "Estudiantes evaluados",
		Missing: "No hay columnas de periodo/estudiante",
		Build:   buildPeriodEvaluationCounts,
	},
	{
		Name:    "figura_2",
		Title:   "Estudiantes evaluados por cohorte de ingreso",
		YLabel:  "Estudiantes evaluados",
		Missing: "No hay columnas de cohorte/estudiante",
		Build:   buildCohortEvaluationCounts,
	},
}

// buildPeriodEvaluationCounts counts distinct evaluated students per
// application period.
func buildPeriodEvaluationCounts(t *dataset.Table) ([]chart.Value, error) {
	cols, err := resolveRoles(t, schema.RolePeriod, schema.RoleStudentID)
	if err != nil {
		return nil, err
	}
	return uniqueStudentCounts(t,
		t.ColumnIndex(cols[schema.RolePeriod]),
		t.ColumnIndex(cols[schema.RoleStudentID]),
		""), nil
}

// buildCohortEvaluationCounts counts distinct evaluated students per
// admission cohort.
func buildCohortEvaluationCounts(t *dataset.Table) ([]chart.Value, error) {
	cols, err := resolveRoles(t, schema.RoleCohort, schema.RoleStudentID)
	if err != nil {
		return nil, err
	}
	return uniqueStudentCounts(t,
		t.ColumnIndex(cols[schema.RoleCohort]),
		t.ColumnIndex(cols[schema.RoleStudentID]),
		"Cohorte "), nil
}

func uniqueStudentCounts(t *dataset.Table, groupCol, studentCol int, labelPrefix string) []chart.Value {
	students := make(map[string]map[string]struct{})
	for r := range t.Rows {
		g, s := t.Cell(r, groupCol), t.Cell(r, studentCol)
		if g == "" || s == "" {
			continue
		}
		if students[g] == nil {
			students[g] = make(map[string]struct{})
		}
		students[g][s] = struct{}{}
	}
	values := make([]chart.Value, 0, len(students))
	for _, g := range sortedKeys(setOfKeys(students)) {
		values = append(values, chart.Value{
			Label: labelPrefix + g,
			Value: float64(len(students[g])),
		})
	}
	return values
}

// writeChart renders one figure, degrading to a "no data" placeholder panel
// when the needed columns are missing. Other render errors skip only this
// figure.
func writeChart(logger *slog.Logger, spec chartSpec, t *dataset.Table, dir, program string) error {
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.png", program, spec.Name))

	values, err := spec.Build(t)
	var unresolved *ErrColumnsUnresolved
	if errors.As(err, &unresolved) {
		logger.Warn("chart placeholder written, column not found",
			slog.String("chart", spec.Name),
			slog.String("program", program),
			slog.String("detail", unresolved.Error()))
		return writePlaceholder(path, spec.Missing)
	}
	if err != nil {
		return fmt.Errorf("failed to build chart series: %w", err)
	}
	if len(values) == 0 {
		logger.Warn("chart placeholder written, no data points",
			slog.String("chart", spec.Name),
			slog.String("program", program))
		return writePlaceholder(path, spec.Missing)
	}

	bars := chart.BarChart{
		Title:    spec.Title,
		Width:    1000,
		Height:   600,
		BarWidth: 48,
		XAxis:    chart.Style{TextRotationDegrees: 45},
		YAxis: chart.YAxis{
			Name: spec.YLabel,
			Range: &chart.ContinuousRange{
				Min: 0,
				Max: maxValue(values) * 1.1,
			},
		},
		Bars: values,
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer file.Close()

	if err := bars.Render(chart.PNG, file); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

func maxValue(values []chart.Value) float64 {
	max := 1.0
	for _, v := range values {
		if v.Value > max {
			max = v.Value
		}
	}
	return max
}

// writePlaceholder renders a plain panel carrying the missing-data message so
// the report bundle stays complete even without the chart columns.
func writePlaceholder(path, message string) error {
	const width, height = 800, 600

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	face := basicfont.Face7x13
	textWidth := font.MeasureString(face, message).Ceil()
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Gray{Y: 64}),
		Face: face,
		Dot: fixed.P(
			(width-textWidth)/2,
			height/2,
		),
	}
	drawer.DrawString(message)

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create placeholder file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return fmt.Errorf("failed to encode placeholder: %w", err)
	}
	return nil
}

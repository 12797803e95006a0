// Package studentmap derives the student→program lookup from the admissions
// export. The persisted map is the trust boundary for program reports: only
// students listed in it are officially admitted to a program.
package studentmap

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"aolcli/internal/dataset"
	"aolcli/internal/schema"
)

// Column labels of the persisted map file.
const (
	StudentColumn = "código del estudiante"
	ProgramColumn = "programa"
)

// programCodes maps the raw institutional admission codes to the canonical
// program abbreviations used in the consolidated table.
var programCodes = map[string]string{
	"E-AFIN": "AFIN",
	"M-AFIN": "AFIN",
	"M-MMBA": "MBATP",
	"E-MMBA": "MBATP",
	"M-MBAE": "EMBA",
	"E-MBAE": "EMBA",
	"M-MIMC": "MIM",
	"E-MIMC": "MIM",
	"M-MGPD": "MGP",
	"E-MGPD": "MGP",
	"M-MADM": "MADM",
}

// Entry is one student→program row of the map.
type Entry struct {
	StudentID string
	Program   string
}

// Builder derives the map from an admissions table.
type Builder struct {
	logger *slog.Logger
}

// NewBuilder builds a Builder.
func NewBuilder(logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{logger: logger}
}

// Build selects student id and raw program code from the admissions table,
// applies the canonical code table, deduplicates to one entry per student
// (first occurrence wins), drops unmapped students, and returns the entries
// in a deterministic order (sorted by student id).
func (b *Builder) Build(admissions *dataset.Table) ([]Entry, error) {
	idColumn, ok := schema.Resolve(admissions.Columns, schema.RoleStudentID)
	if !ok {
		return nil, fmt.Errorf("admissions file has no student identifier column")
	}
	programColumn, ok := schema.Resolve(admissions.Columns, schema.RoleProgram)
	if !ok {
		return nil, fmt.Errorf("admissions file has no program code column")
	}

	selected := admissions.Select(idColumn, programColumn)

	seen := make(map[string]struct{}, selected.Len())
	unmapped := make(map[string]int)
	entries := make([]Entry, 0, selected.Len())
	for r := range selected.Rows {
		student := strings.TrimSuffix(strings.TrimSpace(selected.Cell(r, 0)), ".0")
		if student == "" {
			continue
		}
		if _, dup := seen[student]; dup {
			continue
		}
		seen[student] = struct{}{}

		rawCode := strings.ToUpper(strings.TrimSpace(selected.Cell(r, 1)))
		program, known := programCodes[rawCode]
		if !known {
			if rawCode != "" {
				unmapped[rawCode]++
			}
			continue
		}
		entries = append(entries, Entry{StudentID: student, Program: program})
	}

	if len(unmapped) > 0 {
		codes := make([]string, 0, len(unmapped))
		for code := range unmapped {
			codes = append(codes, code)
		}
		sort.Strings(codes)
		for _, code := range codes {
			b.logger.Warn("raw program code has no canonical mapping, students excluded from map",
				slog.String("raw_code", code),
				slog.Int("students", unmapped[code]))
		}
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].StudentID < entries[j].StudentID })

	b.logger.Info("student-program map built",
		slog.Int("students", len(entries)),
		slog.Int("unmapped_codes", len(unmapped)))

	return entries, nil
}

// CanonicalProgram resolves a raw institutional code, reporting false for
// unknown codes.
func CanonicalProgram(rawCode string) (string, bool) {
	program, ok := programCodes[strings.ToUpper(strings.TrimSpace(rawCode))]
	return program, ok
}

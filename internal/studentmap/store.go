package studentmap

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Store persists and reloads the map as a delimited text file with a UTF-8
// BOM so Excel opens the Spanish headers correctly.
type Store struct {
	logger *slog.Logger
}

// NewStore builds a Store.
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{logger: logger}
}

// Write persists the entries. Identical input yields a byte-identical file:
// the builder already sorts entries and the writer adds nothing
// non-deterministic.
func (s *Store) Write(path string, entries []Entry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create map directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create map file: %w", err)
	}
	defer file.Close()

	if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{StudentColumn, ProgramColumn}); err != nil {
		return fmt.Errorf("failed to write map header: %w", err)
	}
	for _, e := range entries {
		if err := writer.Write([]string{e.StudentID, e.Program}); err != nil {
			return fmt.Errorf("failed to write map row for student %s: %w", e.StudentID, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush map file: %w", err)
	}

	s.logger.Info("student-program map written",
		slog.String("path", path),
		slog.Int("students", len(entries)))
	return nil
}

// Read loads a persisted map, keyed for program-membership lookups.
func (s *Store) Read(path string) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open map file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = 2

	var entries []Entry
	first := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read map file: %w", err)
		}
		if first {
			first = false
			continue // header
		}
		entries = append(entries, Entry{
			StudentID: stripBOM(record[0]),
			Program:   record[1],
		})
	}
	return entries, nil
}

// Index turns entries into a program→student-set lookup.
func Index(entries []Entry) map[string]map[string]struct{} {
	index := make(map[string]map[string]struct{})
	for _, e := range entries {
		students, ok := index[e.Program]
		if !ok {
			students = make(map[string]struct{})
			index[e.Program] = students
		}
		students[e.StudentID] = struct{}{}
	}
	return index
}

func stripBOM(s string) string {
	if len(s) >= 3 && s[0] == 0xEF && s[1] == 0xBB && s[2] == 0xBF {
		return s[3:]
	}
	return s
}

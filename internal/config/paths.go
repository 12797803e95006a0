package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths is the single source of truth for every file path the pipeline
// touches. All paths are anchored at the executable directory, never the
// working directory, so the packaged app finds its data folder wherever it is
// launched from.
type Paths struct {
	BaseDir      string
	DataDir      string
	RawDir       string
	ProcessedDir string
	ReportsDir   string
	LogsDir      string

	RosterFile       string
	AdmissionsFile   string
	ConsolidatedFile string
	StudentMapFile   string
}

// GetPaths resolves the directory tree next to the executable:
//
//	<base>/
//	  data/
//	    raw/        base.xlsx, admitidos.xlsx
//	    procesada/  base_consolidada.xlsx, student_program_map.csv
//	    reportes/programa/<programa>/
//	  logs/
func GetPaths() (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %w", err)
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %w", err)
	}
	return PathsAt(filepath.Dir(exe)), nil
}

// PathsAt builds the path set under an explicit base directory. Tests use it
// with a temporary directory.
func PathsAt(baseDir string) *Paths {
	dataDir := filepath.Join(baseDir, "data")
	rawDir := filepath.Join(dataDir, "raw")
	processedDir := filepath.Join(dataDir, "procesada")
	return &Paths{
		BaseDir:      baseDir,
		DataDir:      dataDir,
		RawDir:       rawDir,
		ProcessedDir: processedDir,
		ReportsDir:   filepath.Join(dataDir, "reportes", "programa"),
		LogsDir:      filepath.Join(baseDir, "logs"),

		RosterFile:       filepath.Join(rawDir, "base.xlsx"),
		AdmissionsFile:   filepath.Join(rawDir, "admitidos.xlsx"),
		ConsolidatedFile: filepath.Join(processedDir, "base_consolidada.xlsx"),
		StudentMapFile:   filepath.Join(processedDir, "student_program_map.csv"),
	}
}

// EnsureDirectories creates the directory tree.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{
		p.DataDir,
		p.RawDir,
		p.ProcessedDir,
		p.ReportsDir,
		p.LogsDir,
	} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

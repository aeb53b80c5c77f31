package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths anchors every relative file path of a run.
// Unlike a server install, spireport resolves against the working directory,
// so `data/us_states.csv` means the same thing it does in a shell.
type Paths struct {
	BaseDir string
}

// WorkingPaths returns Paths rooted at the current working directory
func WorkingPaths() (*Paths, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewPaths(wd), nil
}

// NewPaths returns Paths rooted at baseDir
func NewPaths(baseDir string) *Paths {
	return &Paths{BaseDir: filepath.Clean(baseDir)}
}

// Resolve returns path unchanged when absolute, otherwise joined to BaseDir
func (p *Paths) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.BaseDir, path)
}

// EnsureParentDirs creates the parent directory of every given file path
func (p *Paths) EnsureParentDirs(files ...string) error {
	for _, file := range files {
		if file == "" {
			continue
		}
		dir := filepath.Dir(p.Resolve(file))
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		slog.Debug("Ensured directory exists", slog.String("directory", dir))
	}
	return nil
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// LogPathResolution logs where each input and output of cfg lives
func (p *Paths) LogPathResolution(logger *slog.Logger, cfg *Config) {
	if logger == nil {
		return
	}

	logger.Info("Path resolution summary",
		slog.String("base_dir", p.BaseDir),
		slog.Group("inputs",
			slog.String("social_progress", cfg.Inputs.SocialProgress),
			slog.String("state_metadata", cfg.Inputs.StateMetadata),
			slog.String("house", cfg.Inputs.House),
			slog.String("senate", cfg.Inputs.Senate),
		),
		slog.Group("outputs",
			slog.String("cache", cfg.Cache.Path),
			slog.String("party_plot", cfg.Report.PartyPlot),
			slog.String("overall_plot", cfg.Report.OverallPlot),
			slog.String("workbook", cfg.Export.Workbook),
		))
}

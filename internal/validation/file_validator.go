package validation

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	apperrors "spicongress/internal/errors"
)

// SourceExtensions are the file types ReadTable understands
var SourceExtensions = []string{".csv", ".xlsx"}

// FileValidator checks input and output paths before a step touches them.
// Every failure is an AppError carrying the offending path.
type FileValidator struct {
	logger *slog.Logger
}

func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{logger: logger}
}

// ValidateSource accepts an existing, readable .csv or .xlsx file that is
// not an Excel lock file ("~$name.xlsx")
func (v *FileValidator) ValidateSource(path string) error {
	if err := v.ValidateFile(path); err != nil {
		return err
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !slices.Contains(SourceExtensions, ext) {
		return v.reject(path, apperrors.NewValidationError(
			fmt.Sprintf("unsupported source type %q", ext), nil))
	}
	if strings.HasPrefix(filepath.Base(path), "~$") {
		return v.reject(path, apperrors.NewValidationError("source is an Excel lock file", nil))
	}
	return nil
}

// ValidateFile accepts an existing regular file that can be opened
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return v.reject(path, apperrors.NewMissingFileError(path, err))
	case err != nil:
		return v.reject(path, apperrors.NewStorageError("cannot stat file", err))
	case info.IsDir():
		return v.reject(path, apperrors.NewValidationError("path is a directory", nil))
	}

	f, err := os.Open(path)
	if err != nil {
		return v.reject(path, apperrors.NewStorageError("file is not readable", err))
	}
	_ = f.Close()

	v.logger.Debug("Source validated", slog.String("path", path), slog.Int64("bytes", info.Size()))
	return nil
}

// ValidateOutputDirectory creates the parent directory of each file and
// checks it with a throwaway temp file. Empty paths are ignored.
func (v *FileValidator) ValidateOutputDirectory(files ...string) error {
	for _, file := range files {
		if file == "" {
			continue
		}
		dir := filepath.Dir(file)

		if err := os.MkdirAll(dir, 0755); err != nil {
			return v.reject(file, apperrors.NewStorageError(
				fmt.Sprintf("cannot create output directory %s", dir), err))
		}
		scratch, err := os.CreateTemp(dir, ".spireport-write-*")
		if err != nil {
			return v.reject(file, apperrors.NewStorageError(
				fmt.Sprintf("output directory %s is not writable", dir), err))
		}
		_ = scratch.Close()
		_ = os.Remove(scratch.Name())
	}
	return nil
}

// reject logs a failed check at debug level; the step that receives the
// error logs it again at error level
func (v *FileValidator) reject(path string, err *apperrors.AppError) error {
	v.logger.Debug("Path rejected", slog.String("path", path), slog.String("reason", err.Message))
	return err.WithContext("path", path)
}

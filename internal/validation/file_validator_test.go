package validation

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "spicongress/internal/errors"
)

func newTestValidator() *FileValidator {
	return NewFileValidator(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestFileValidator_ValidateSource(t *testing.T) {
	tests := []struct {
		name      string
		setupFunc func(t *testing.T) string
		wantErr   error
	}{
		{
			name: "csv source",
			setupFunc: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "us_states.csv")
				require.NoError(t, os.WriteFile(path, []byte("name,code\n"), 0644))
				return path
			},
		},
		{
			name: "xlsx source with upper case extension",
			setupFunc: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "HOUSE.XLSX")
				require.NoError(t, os.WriteFile(path, []byte("test"), 0644))
				return path
			},
		},
		{
			name: "missing source",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "absent.csv")
			},
			wantErr: apperrors.ErrMissingFile,
		},
		{
			name: "directory",
			setupFunc: func(t *testing.T) string {
				dir := filepath.Join(t.TempDir(), "data.csv")
				require.NoError(t, os.Mkdir(dir, 0755))
				return dir
			},
			wantErr: apperrors.ErrValidation,
		},
		{
			name: "unsupported extension",
			setupFunc: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "senate.json")
				require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))
				return path
			},
			wantErr: apperrors.ErrValidation,
		},
		{
			name: "excel lock file",
			setupFunc: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "~$house.xlsx")
				require.NoError(t, os.WriteFile(path, []byte("lock"), 0644))
				return path
			},
			wantErr: apperrors.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newTestValidator().ValidateSource(tt.setupFunc(t))
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	dir := t.TempDir()
	v := newTestValidator()

	nested := filepath.Join(dir, "charts", "2026", "parties.png")
	require.NoError(t, v.ValidateOutputDirectory("", nested))
	assert.DirExists(t, filepath.Dir(nested))

	entries, err := os.ReadDir(filepath.Dir(nested))
	require.NoError(t, err)
	assert.Empty(t, entries, "scratch file must be removed")

	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
	err = v.ValidateOutputDirectory(filepath.Join(blocker, "out.png"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrStorage))
}

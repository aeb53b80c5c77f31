package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spicongress/internal/dataprocessing"
	apperrors "spicongress/internal/errors"
)

func joinedTable() *dataprocessing.Table {
	table := dataprocessing.NewTable("state", "senate", "congressperson_progressiveness_score", "social_progress_index")
	table.Rows = [][]string{
		{"CA", "False", "0.9", "85.5"},
		{"PR", "False", "0.5", ""},
	}
	return table
}

func countingCompute(calls *int, table *dataprocessing.Table) ComputeFunc {
	return func(context.Context) (*dataprocessing.Table, error) {
		*calls++
		return table, nil
	}
}

func TestLoadOrComputeMissThenHit(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(nil)
	calls := 0

	table, outcome, err := LoadOrCompute(ctx, store, countingCompute(&calls, joinedTable()))
	require.NoError(t, err)
	assert.Equal(t, Miss, outcome)
	assert.Equal(t, joinedTable(), table)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, store.Saves())

	table, outcome, err = LoadOrCompute(ctx, store, countingCompute(&calls, nil))
	require.NoError(t, err)
	assert.Equal(t, Hit, outcome)
	assert.Equal(t, joinedTable(), table)
	assert.Equal(t, 1, calls, "compute is skipped on a hit")
	assert.Equal(t, 1, store.Saves(), "nothing is written on a hit")
}

func TestLoadOrComputeComputeError(t *testing.T) {
	store := NewMemoryStore(nil)
	boom := apperrors.NewParseError("bad", nil)

	_, _, err := LoadOrCompute(context.Background(), store, func(context.Context) (*dataprocessing.Table, error) {
		return nil, boom
	})

	assert.ErrorIs(t, err, apperrors.ErrParse)
	assert.Equal(t, 0, store.Saves())
}

func TestLoadOrComputeNilTable(t *testing.T) {
	calls := 0
	_, _, err := LoadOrCompute(context.Background(), NewMemoryStore(nil), countingCompute(&calls, nil))
	assert.Error(t, err)
}

func TestFileStoreIdempotence(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "congress.csv")
	store := NewFileStore(path)
	calls := 0

	_, outcome, err := LoadOrCompute(ctx, store, countingCompute(&calls, joinedTable()))
	require.NoError(t, err)
	assert.Equal(t, Miss, outcome)

	first, err := os.ReadFile(path)
	require.NoError(t, err)
	firstInfo, err := os.Stat(path)
	require.NoError(t, err)

	table, outcome, err := LoadOrCompute(ctx, NewFileStore(path), countingCompute(&calls, nil))
	require.NoError(t, err)
	assert.Equal(t, Hit, outcome)
	assert.Equal(t, 1, calls)
	assert.Equal(t, joinedTable(), table)

	second, err := os.ReadFile(path)
	require.NoError(t, err)
	secondInfo, err := os.Stat(path)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, firstInfo.ModTime(), secondInfo.ModTime())
}

func TestFileStoreMissingFileIsMiss(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "none.csv"))

	table, ok, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, table)
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "congress.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n1,2,3\n"), 0644))

	_, _, err := NewFileStore(path).Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrStorage))
}

func TestFileStoreSaveFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	err := NewFileStore(filepath.Join(blocker, "congress.csv")).Save(context.Background(), joinedTable())
	assert.True(t, errors.Is(err, apperrors.ErrStorage))
}

func TestMemoryStoreCopies(t *testing.T) {
	table := joinedTable()
	store := NewMemoryStore(table)
	table.Rows[0][0] = "XX"

	loaded, ok, err := store.Load(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "CA", loaded.Rows[0][0])
	assert.Equal(t, "memory", store.Location())
}

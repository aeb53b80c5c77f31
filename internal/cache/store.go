package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"spicongress/internal/dataprocessing"
	apperrors "spicongress/internal/errors"
	"spicongress/internal/exporter"
)

// Store persists one joined table
type Store interface {
	// Load returns the stored table and true, or nil and false when nothing
	// is stored.
	Load(ctx context.Context) (*dataprocessing.Table, bool, error)
	Save(ctx context.Context, table *dataprocessing.Table) error
	Location() string
}

// FileStore keeps the table as a CSV file
type FileStore struct {
	path   string
	writer *exporter.CSVWriter
}

// NewFileStore creates a store backed by the CSV file at path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, writer: exporter.NewCSVWriter(nil)}
}

// Load implements Store. A missing file is a miss, not an error.
func (s *FileStore) Load(ctx context.Context) (*dataprocessing.Table, bool, error) {
	if _, err := os.Stat(s.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, apperrors.NewStorageError("failed to stat cache "+s.path, err)
	}

	table, err := dataprocessing.ReadTable(s.path)
	if err != nil {
		return nil, false, apperrors.NewStorageError("failed to read cache "+s.path, err)
	}

	slog.DebugContext(ctx, "Cache file read", slog.String("path", s.path), slog.Int("rows", table.Len()))
	return table, true, nil
}

// Save implements Store
func (s *FileStore) Save(ctx context.Context, table *dataprocessing.Table) error {
	if err := s.writer.WriteTable(s.path, table); err != nil {
		return apperrors.NewStorageError("failed to write cache "+s.path, err)
	}
	slog.DebugContext(ctx, "Cache file written", slog.String("path", s.path), slog.Int("rows", table.Len()))
	return nil
}

// Location implements Store
func (s *FileStore) Location() string {
	return s.path
}

// MemoryStore is an in-memory Store
type MemoryStore struct {
	mu    sync.RWMutex
	table *dataprocessing.Table
	saves int
}

// NewMemoryStore creates a store, optionally pre-filled with table
func NewMemoryStore(table *dataprocessing.Table) *MemoryStore {
	return &MemoryStore{table: copyTable(table)}
}

// Load implements Store
func (s *MemoryStore) Load(_ context.Context) (*dataprocessing.Table, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.table == nil {
		return nil, false, nil
	}
	return copyTable(s.table), true, nil
}

// Save implements Store
func (s *MemoryStore) Save(_ context.Context, table *dataprocessing.Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.table = copyTable(table)
	s.saves++
	return nil
}

// Location implements Store
func (s *MemoryStore) Location() string {
	return "memory"
}

// Saves returns how many times Save was called
func (s *MemoryStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

func copyTable(t *dataprocessing.Table) *dataprocessing.Table {
	if t == nil {
		return nil
	}
	out := dataprocessing.NewTable(t.Columns...)
	out.Rows = make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		out.Rows[i] = append([]string(nil), row...)
	}
	return out
}

// Outcome tells whether LoadOrCompute was served from the store
type Outcome string

const (
	Hit  Outcome = "hit"
	Miss Outcome = "miss"
)

// ComputeFunc produces the table on a miss
type ComputeFunc func(ctx context.Context) (*dataprocessing.Table, error)

// LoadOrCompute returns the stored table, or computes, saves and returns it
func LoadOrCompute(ctx context.Context, store Store, compute ComputeFunc) (*dataprocessing.Table, Outcome, error) {
	table, ok, err := store.Load(ctx)
	if err != nil {
		return nil, "", err
	}
	if ok {
		slog.InfoContext(ctx, "Using cached joined table",
			slog.String("location", store.Location()),
			slog.Int("rows", table.Len()))
		return table, Hit, nil
	}

	table, err = compute(ctx)
	if err != nil {
		return nil, Miss, err
	}
	if table == nil {
		return nil, Miss, fmt.Errorf("compute returned no table")
	}

	if err := store.Save(ctx, table); err != nil {
		return nil, Miss, err
	}
	slog.InfoContext(ctx, "Joined table cached",
		slog.String("location", store.Location()),
		slog.Int("rows", table.Len()))

	return table, Miss, nil
}

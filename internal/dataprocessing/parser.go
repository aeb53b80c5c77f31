package dataprocessing

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "spicongress/internal/errors"
)

const utf8BOM = "\ufeff"

// ReadTable loads a source table. Files ending in .xlsx are read from their
// first sheet; anything else is read as comma-separated text with a header row.
func ReadTable(path string) (*Table, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewMissingFileError(path, err)
		}
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	var (
		table *Table
		err   error
	)
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		table, err = readWorkbook(path)
	} else {
		table, err = readCSVFile(path)
	}
	if err != nil {
		return nil, err
	}

	slog.Debug("Source table loaded",
		slog.String("path", path),
		slog.Int("rows", table.Len()),
		slog.Int("columns", len(table.Columns)))
	return table, nil
}

func readCSVFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	table, err := ReadCSV(f)
	if err != nil {
		return nil, apperrors.NewParseError(path, err)
	}
	return table, nil
}

// ReadCSV reads a header row and records from r
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty input: no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	table := NewTable(header...)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}
		table.Rows = append(table.Rows, record)
	}
	return table, nil
}

// readWorkbook reads the first sheet of an xlsx file. The first row is the
// header; short rows are padded with nulls.
func readWorkbook(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewParseError(path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.NewParseError(path, fmt.Errorf("workbook has no sheets"))
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperrors.NewParseError(path, err)
	}
	if len(rows) == 0 {
		return nil, apperrors.NewParseError(path, fmt.Errorf("sheet %q is empty", sheets[0]))
	}

	table := NewTable(rows[0]...)
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		cells := make([]string, len(table.Columns))
		copy(cells, row)
		table.Rows = append(table.Rows, cells)
	}
	return table, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

package dataprocessing

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	apperrors "spicongress/internal/errors"
)

// Table is an ordered set of named columns over string rows.
// An empty cell is a null value.
type Table struct {
	Columns []string
	Rows    [][]string
}

// NewTable creates an empty table with the given columns
func NewTable(columns ...string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{Columns: cols}
}

// Len returns the number of rows
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// ColumnIndex returns the position of name, or -1
func (t *Table) ColumnIndex(name string) int {
	for i, col := range t.Columns {
		if col == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the table has a column called name
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// Require returns a schema error naming the first missing column
func (t *Table) Require(source string, columns ...string) error {
	for _, col := range columns {
		if !t.HasColumn(col) {
			return apperrors.NewSchemaError(source, col)
		}
	}
	return nil
}

// AppendRow adds a row, which must have one cell per column
func (t *Table) AppendRow(row []string) error {
	if len(row) != len(t.Columns) {
		return fmt.Errorf("row has %d cells, table has %d columns", len(row), len(t.Columns))
	}
	t.Rows = append(t.Rows, row)
	return nil
}

// Value returns the cell at row i in column name, or "" when the column is absent
func (t *Table) Value(i int, name string) string {
	idx := t.ColumnIndex(name)
	if idx < 0 || i < 0 || i >= len(t.Rows) {
		return ""
	}
	return t.Rows[i][idx]
}

// Column returns a copy of all cells in column name
func (t *Table) Column(name string) ([]string, error) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, apperrors.NewSchemaError("table", name)
	}
	values := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row[idx]
	}
	return values, nil
}

// Float returns the numeric value at row i in column name. Null cells give
// NaN; anything else that is not a number is a parse error.
func (t *Table) Float(i int, name string) (float64, error) {
	return ParseFloat(t.Value(i, name))
}

// Head returns a table sharing t's columns with at most n rows
func (t *Table) Head(n int) *Table {
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	return &Table{Columns: t.Columns, Rows: t.Rows[:n]}
}

// renameColumn returns a copy of columns with from replaced by to
func renameColumn(columns []string, from, to string) []string {
	out := make([]string, len(columns))
	for i, col := range columns {
		if col == from {
			col = to
		}
		out[i] = col
	}
	return out
}

// IsNull reports whether a cell holds no value
func IsNull(cell string) bool {
	switch strings.TrimSpace(cell) {
	case "", "NA", "NaN", "nan", "N/A", "null":
		return true
	}
	return false
}

// ParseFloat parses a cell as a float. Null cells give NaN.
func ParseFloat(cell string) (float64, error) {
	if IsNull(cell) {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil {
		return math.NaN(), apperrors.NewParseError(cell, err)
	}
	return v, nil
}

// FormatBool writes a flag the way the cache file stores it
func FormatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// ParseBool reads a flag written by FormatBool, also accepting the usual
// spellings of true and 1/0
func ParseBool(cell string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(cell)) {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	}
	return false, apperrors.NewParseError(cell, nil)
}

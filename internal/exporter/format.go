package exporter

import (
	"strconv"
	"strings"

	"spicongress/internal/dataprocessing"
)

// workbookCell converts a table cell to the value stored in a workbook.
// Numbers and True/False become typed cells; nulls become empty cells.
func workbookCell(cell string) interface{} {
	if dataprocessing.IsNull(cell) {
		return nil
	}
	switch cell {
	case "True":
		return true
	case "False":
		return false
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(cell), 64); err == nil {
		return f
	}
	return cell
}

// Package exporter writes tables to disk.
//
// CSVWriter writes comma-separated files atomically through a temporary
// sibling and a rename. It backs the joined-table cache.
//
// WorkbookWriter writes a single-sheet xlsx copy of a table with typed
// numeric and boolean cells, for readers who open the data in a spreadsheet.
//
//	w := exporter.NewCSVWriter(paths)
//	err := w.WriteTable("data/congress.csv", table)
package exporter

package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"spicongress/internal/config"
	"spicongress/internal/dataprocessing"
)

// DefaultSheetName is the sheet the joined table is written to
const DefaultSheetName = "congress"

// WorkbookWriter writes tables as single-sheet xlsx workbooks
type WorkbookWriter struct {
	paths *config.Paths
	sheet string
}

// NewWorkbookWriter creates a workbook writer using DefaultSheetName
func NewWorkbookWriter(paths *config.Paths) *WorkbookWriter {
	return &WorkbookWriter{paths: paths, sheet: DefaultSheetName}
}

// WriteTable writes table to filePath with a bold, frozen header row
func (w *WorkbookWriter) WriteTable(filePath string, table *dataprocessing.Table) error {
	fullPath := filePath
	if w.paths != nil {
		fullPath = w.paths.Resolve(filePath)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), w.sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(table.Columns))
	for i, col := range table.Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(w.sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range table.Rows {
		values := make([]interface{}, len(row))
		for j, cell := range row {
			values[j] = workbookCell(cell)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(w.sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if len(table.Columns) > 0 {
		if err := w.styleHeader(f, len(table.Columns)); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := f.SaveAs(fullPath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	slog.Debug("Workbook written", slog.String("path", fullPath), slog.Int("rows", table.Len()))
	return nil
}

func (w *WorkbookWriter) styleHeader(f *excelize.File, columns int) error {
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(columns, 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(w.sheet, "A1", last, style); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}
	return f.SetPanes(w.sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"phewasview/internal/pipeline"
)

// Format is an export file type
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ContentType returns the HTTP media type of the format
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// FormatForPath picks the format from a file extension, defaulting to CSV
func FormatForPath(path string) Format {
	if strings.ToLower(filepath.Ext(path)) == ".xlsx" {
		return FormatXLSX
	}
	return FormatCSV
}

const sheetName = "Sheet1"

// Write serializes table in the given format
func Write(w io.Writer, table pipeline.Table, format Format) error {
	switch format {
	case FormatXLSX:
		return WriteXLSX(w, table)
	case FormatCSV:
		return WriteCSV(w, table)
	default:
		return fmt.Errorf("unsupported export format: %s", format)
	}
}

// WriteCSV writes the header row followed by one line per table row
func WriteCSV(w io.Writer, table pipeline.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(table.Records()); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}

// WriteXLSX writes the table to Sheet1 of a new workbook. p and q are stored
// as numbers; missing values are left as empty cells.
func WriteXLSX(w io.Writer, table pipeline.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]interface{}, len(table.Columns))
	for i, c := range table.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range table.Rows {
		values := make([]interface{}, 0, len(table.Columns))
		for _, c := range table.Columns {
			switch c {
			case pipeline.ColGene:
				values = append(values, row.Gene)
			case pipeline.ColOutcomeID:
				values = append(values, row.OutcomeID)
			case pipeline.ColDescription:
				values = append(values, row.Description)
			case pipeline.ColP:
				values = append(values, optionalCell(row.P))
			case pipeline.ColQ:
				values = append(values, optionalCell(row.Q))
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %w", i+2, err)
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func optionalCell(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

// WriteFile exports table to path, choosing the format from its extension
func WriteFile(path string, table pipeline.Table) error {
	start := time.Now()
	format := FormatForPath(path)

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := Write(file, table, format); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	log.Printf("[Export] wrote %d rows to %s (%s) in %.2fms", len(table.Rows), path, format, float64(time.Since(start).Nanoseconds())/1e6)
	return nil
}

// Package export turns stored result tables into downloadable files.
package export

import (
	"fmt"
	"io"
	"mime"

	"github.com/xuri/excelize/v2"

	"github.com/maxviazov/query-explorer/internal/model"
)

const (
	// XLSXContentType is the media type of an Office Open XML workbook.
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	// SheetName is the single sheet every export writes.
	SheetName = "Sheet1"
)

// XLSXFilename is the download name for table, "<table>.xlsx".
func XLSXFilename(table string) string { return table + ".xlsx" }

// AttachmentDisposition builds the Content-Disposition header for filename,
// falling back to the RFC 2231 form for names that are not plain ASCII.
func AttachmentDisposition(filename string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": filename})
}

// WriteXLSX writes t as a workbook with one sheet: a bold header row of
// column names followed by the rows in stored order. No index column.
func WriteXLSX(w io.Writer, t model.ResultTable) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("xlsx stream writer: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("xlsx header style: %w", err)
	}

	if err := sw.SetRow("A1", cells(t.Columns), excelize.RowOpts{StyleID: bold}); err != nil {
		return fmt.Errorf("xlsx header row: %w", err)
	}
	for i, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("xlsx row %d: %w", i, err)
		}
		if err := sw.SetRow(cell, cells(row)); err != nil {
			return fmt.Errorf("xlsx row %d: %w", i, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("xlsx flush: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}

func cells(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

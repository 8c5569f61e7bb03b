package reports

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/odyssey-erp/odyssey-admin/internal/apiclient"
)

// SheetName is the worksheet holding exported rows.
const SheetName = "Report"

// WriteXLSX writes rows as a workbook with a bold header row. Numeric
// values are stored as numbers.
func WriteXLSX(w io.Writer, rows []apiclient.Record) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("reports: xlsx: rename sheet: %w", err)
	}
	header := Columns(rows)
	headerRow := make([]any, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &headerRow); err != nil {
		return fmt.Errorf("reports: xlsx: header: %w", err)
	}
	if len(header) > 0 {
		style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return fmt.Errorf("reports: xlsx: style: %w", err)
		}
		last, err := excelize.CoordinatesToCellName(len(header), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(SheetName, "A1", last, style); err != nil {
			return fmt.Errorf("reports: xlsx: style header: %w", err)
		}
	}
	for r, row := range rows {
		values := make([]any, len(header))
		for i, key := range header {
			v, _ := row.Get(key)
			values[i] = cellValue(v)
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("reports: xlsx: row %d: %w", r+1, err)
		}
	}
	return f.Write(w)
}

func cellValue(v any) any {
	switch t := v.(type) {
	case nil:
		return ""
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case float64, int, int64, bool, string:
		return t
	}
	return apiclient.FormatValue(v)
}

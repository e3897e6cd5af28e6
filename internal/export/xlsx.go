package export

import (
	"fmt"
	"io"
	"time"

	"github.com/ikkim/bookcity-backend/pkg/util"
	"github.com/xuri/excelize/v2"
)

// maxSheetName is the Excel limit on sheet name length.
const maxSheetName = 31

// WriteXLSX writes the report as a single-sheet workbook with a bold header row.
func WriteXLSX(w io.Writer, report *Report) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(report.Title)
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return err
	}

	header := make([]interface{}, len(report.Columns))
	for i, col := range report.Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if len(report.Columns) > 0 {
		last, err := excelize.CoordinatesToCellName(len(report.Columns), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
			return err
		}
	}

	for i, row := range report.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = cellValue(v)
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	return f.Write(w)
}

// cellValue keeps numbers numeric and turns dates into text.
func cellValue(v interface{}) interface{} {
	switch val := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(val)
	case time.Time, util.DateOnly:
		return FormatValue(val)
	}
	return v
}

func sheetName(title string) string {
	if title == "" {
		return "Report"
	}
	if len(title) > maxSheetName {
		return title[:maxSheetName]
	}
	return title
}

package export

import (
	"encoding/csv"
	"io"
)

// WriteCSV writes the header row then one record per report row.
func WriteCSV(w io.Writer, report *Report) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(report.Columns); err != nil {
		return err
	}

	record := make([]string, len(report.Columns))
	for _, row := range report.Rows {
		for i := range record {
			record[i] = ""
			if i < len(row) {
				record[i] = FormatValue(row[i])
			}
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

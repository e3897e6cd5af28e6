// Package export renders reports as downloadable files.
package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/ikkim/bookcity-backend/pkg/util"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts "csv" or "xlsx"; an empty string means csv.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Report is a titled table ready to be written out.
type Report struct {
	Title   string          `json:"title"`
	Columns []string        `json:"columns"`
	Rows    [][]interface{} `json:"rows"`
}

// FileName suggests "<Title_With_Underscores>_<YYYY-MM-DD>.<ext>".
func FileName(title string, date time.Time, format Format) string {
	slug := strings.Join(strings.Fields(title), "_")
	return fmt.Sprintf("%s_%s.%s", slug, date.Format(util.DateLayout), format)
}

// Write renders report to w in the given format.
func Write(w io.Writer, report *Report, format Format) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, report)
	case FormatXLSX:
		return WriteXLSX(w, report)
	}
	return fmt.Errorf("unknown export format %q", format)
}

// FormatValue renders a cell for text output.
func FormatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case float64:
		return strconv.FormatFloat(val, 'f', 2, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', 2, 32)
	case time.Time:
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 {
			return val.Format(util.DateLayout)
		}
		return val.Format(time.RFC3339)
	case util.DateOnly:
		return val.String()
	case fmt.Stringer:
		return val.String()
	}
	return fmt.Sprint(v)
}

// Records returns the rows keyed by column name.
func (r *Report) Records() []map[string]interface{} {
	records := make([]map[string]interface{}, 0, len(r.Rows))
	for _, row := range r.Rows {
		record := make(map[string]interface{}, len(r.Columns))
		for i, col := range r.Columns {
			if i < len(row) {
				record[col] = row[i]
			} else {
				record[col] = nil
			}
		}
		records = append(records, record)
	}
	return records
}

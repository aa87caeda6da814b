package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"ecommerce-analytics/internal/report"

	"github.com/olekukonko/tablewriter"
)

// Format selects how a result table is rendered.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
)

const nullText = "NULL"

// ParseFormat accepts table, json or csv.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatTable, FormatJSON, FormatCSV:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

// Ext is the file extension used when a result is saved to disk.
func (f Format) Ext() string {
	if f == FormatTable {
		return "txt"
	}
	return string(f)
}

// Write renders t to w in the given format.
func Write(w io.Writer, f Format, t report.Table) error {
	switch f {
	case FormatJSON:
		return WriteJSON(w, t)
	case FormatCSV:
		return WriteCSV(w, t)
	default:
		return WriteTable(w, t)
	}
}

func WriteTable(w io.Writer, t report.Table) error {
	table := tablewriter.NewWriter(w)
	header := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	table.Header(header...)
	for _, row := range t.Rows {
		cells := make([]any, len(row))
		for i, v := range row {
			cells[i] = formatValue(v)
		}
		if err := table.Append(cells...); err != nil {
			return fmt.Errorf("render %s: %w", t.Metric, err)
		}
	}
	return table.Render()
}

// WriteJSON writes the rows as an array of objects keyed by column name.
// Floats are rounded to two decimals like the other formats.
func WriteJSON(w io.Writer, t report.Table) error {
	out := make([]map[string]any, 0, len(t.Rows))
	for _, row := range t.Rows {
		obj := make(map[string]any, len(row))
		for i, v := range row {
			obj[t.Columns[i]] = jsonValue(v)
		}
		out = append(out, obj)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// jsonValue applies the table and CSV formatting rules to a cell while keeping
// numbers and NULL as JSON numbers and null.
func jsonValue(v any) any {
	switch x := v.(type) {
	case time.Time:
		return x.Format(time.DateOnly)
	case float64:
		return math.Round(x*100) / 100
	default:
		return v
	}
}

func WriteCSV(w io.Writer, t report.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	for _, row := range t.Rows {
		rec := make([]string, len(row))
		for i, v := range row {
			rec[i] = formatValue(v)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return nullText
	case time.Time:
		return x.Format(time.DateOnly)
	case float64:
		return strconv.FormatFloat(x, 'f', 2, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

// TimestampedFilename builds dir/<metric>_<yyyymmdd_hhmmss>.<ext>.
func TimestampedFilename(dir string, metric report.Name, ext string, now time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s.%s", metric, now.Format("20060102_150405"), ext))
}

// SaveFile renders t into a new timestamped file under dir and returns its path.
func SaveFile(dir string, f Format, t report.Table, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := TimestampedFilename(dir, t.Metric, f.Ext(), now)
	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := Write(file, f, t); err != nil {
		file.Close()
		return "", err
	}
	return path, file.Close()
}

package report

// Table is one metric's result. Cells hold int64, float64, string, time.Time
// (date buckets and timestamps) or nil for NULL.
type Table struct {
	Metric  Name
	Columns []string
	Rows    [][]any
}

// Column returns the values of the named column, or nil if absent.
func (t Table) Column(name string) []any {
	idx := -1
	for i, c := range t.Columns {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	out := make([]any, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[idx]
	}
	return out
}

func (t *Table) add(cells ...any) {
	t.Rows = append(t.Rows, cells)
}

package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ecommerce-analytics/internal/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() report.Table {
	return report.Table{
		Metric:  report.YoYPartialPeriodGrowth,
		Columns: []string{"month", "state", "orders_count", "growth_pct"},
		Rows: [][]any{
			{time.Date(2018, time.March, 1, 0, 0, 0, 0, time.Local), "SP", int64(12), 52.5821},
			{time.Date(2018, time.April, 1, 0, 0, 0, 0, time.Local), "RJ", int64(3), nil},
		},
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("csv")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)
	assert.Equal(t, "txt", FormatTable.Ext())

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sample()))
	assert.Equal(t, "month,state,orders_count,growth_pct\n"+
		"2018-03-01,SP,12,52.58\n"+
		"2018-04-01,RJ,3,NULL\n", buf.String())
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sample()))

	var rows []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "2018-03-01", rows[0]["month"])
	assert.Equal(t, 12.0, rows[0]["orders_count"])
	assert.Equal(t, 52.58, rows[0]["growth_pct"])
	assert.NotContains(t, buf.String(), "52.5821")
	assert.Nil(t, rows[1]["growth_pct"])
	assert.Contains(t, rows[1], "growth_pct")
}

func TestWriteJSON_EmptyIsArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, report.Table{Columns: []string{"x"}}))
	assert.Equal(t, "[]\n", buf.String())
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, sample()))
	out := buf.String()
	assert.Contains(t, out, "2018-03-01")
	assert.Contains(t, out, "52.58")
	assert.Contains(t, out, "NULL")
}

func TestSaveFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	now := time.Date(2024, time.May, 6, 7, 8, 9, 0, time.Local)

	path, err := SaveFile(dir, FormatCSV, sample(), now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "yoy-partial-period-growth_20240506_070809.csv"), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "2018-04-01,RJ,3,NULL")
}

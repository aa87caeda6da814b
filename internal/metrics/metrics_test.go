package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ecommerce-analytics/internal/report"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ report.Recorder = (*Registry)(nil)

func TestObserveRun(t *testing.T) {
	r := NewRegistry()
	r.ObserveRun("volume-by-year", "sql", 20*time.Millisecond, 3, nil)
	r.ObserveRun("volume-by-year", "sql", 10*time.Millisecond, 0, errors.New("timeout"))

	assert.Equal(t, 1.0, testutil.ToFloat64(r.Runs.WithLabelValues("volume-by-year", "sql", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Runs.WithLabelValues("volume-by-year", "sql", "error")))
	// the failed run leaves the last row count alone
	assert.Equal(t, 3.0, testutil.ToFloat64(r.Rows.WithLabelValues("volume-by-year", "sql")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.DurationSec))
}

func TestWriteTextfile(t *testing.T) {
	r := NewRegistry()
	r.ObserveRun("daypart-mix", "memory", time.Millisecond, 4, nil)

	path := filepath.Join(t.TempDir(), "ecomreport.prom")
	require.NoError(t, r.WriteTextfile(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(raw)
	assert.Contains(t, out, `ecomreport_metric_runs_total{engine="memory",metric="daypart-mix",status="ok"} 1`)
	assert.Contains(t, out, `ecomreport_metric_rows{engine="memory",metric="daypart-mix"} 4`)
	assert.Contains(t, out, "ecomreport_metric_duration_seconds_count")
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	statusOK    = "ok"
	statusError = "error"
)

// Registry holds the instruments for one reporting run.
type Registry struct {
	reg         *prometheus.Registry
	Runs        *prometheus.CounterVec
	DurationSec *prometheus.HistogramVec
	Rows        *prometheus.GaugeVec
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ecomreport_metric_runs_total",
		Help: "Metric executions by outcome.",
	}, []string{"metric", "engine", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ecomreport_metric_duration_seconds",
		Help:    "Wall time of a metric execution.",
		Buckets: prometheus.DefBuckets,
	}, []string{"metric", "engine"})
	rows := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ecomreport_metric_rows",
		Help: "Rows returned by the last successful execution.",
	}, []string{"metric", "engine"})

	r.MustRegister(runs, duration, rows)
	return &Registry{
		reg:         r,
		Runs:        runs,
		DurationSec: duration,
		Rows:        rows,
	}
}

// ObserveRun records one metric execution.
func (r *Registry) ObserveRun(metric, engine string, d time.Duration, rows int64, err error) {
	status := statusOK
	if err != nil {
		status = statusError
	}
	r.Runs.WithLabelValues(metric, engine, status).Inc()
	r.DurationSec.WithLabelValues(metric, engine).Observe(d.Seconds())
	if err == nil {
		r.Rows.WithLabelValues(metric, engine).Set(float64(rows))
	}
}

// WriteTextfile dumps the registry in the text exposition format, for the
// node_exporter textfile collector.
func (r *Registry) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.reg)
}

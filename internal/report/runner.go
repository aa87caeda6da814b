package report

import (
	"context"
	"fmt"
	"time"
)

// Result captures the outcome, timing and optional plan of one metric run.
type Result struct {
	Name        Name
	Description string
	Engine      string
	Table       Table
	Duration    time.Duration
	RowCount    int64
	Explain     []string
	Err         error
}

// Recorder receives one observation per metric run.
type Recorder interface {
	ObserveRun(metric, engine string, d time.Duration, rows int64, err error)
}

type RunOptions struct {
	Explain  bool
	Recorder Recorder
}

// RunCatalog executes each metric in order. A failing metric is reported in
// its Result and does not stop the rest.
func RunCatalog(ctx context.Context, exec Executor, metrics []Metric, p Params, opts RunOptions) ([]Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(metrics))
	for _, m := range metrics {
		res := Result{Name: m.Name, Description: m.Description, Engine: exec.Engine()}

		start := time.Now()
		table, err := exec.Run(ctx, m, p)
		res.Duration = time.Since(start)
		if err != nil {
			res.Err = err
		} else {
			res.Table = table
			res.RowCount = int64(len(table.Rows))
		}
		if opts.Recorder != nil {
			opts.Recorder.ObserveRun(string(m.Name), exec.Engine(), res.Duration, res.RowCount, res.Err)
		}

		if opts.Explain && res.Err == nil {
			if ex, ok := exec.(Explainer); ok {
				lines, err := ex.Explain(ctx, m, p)
				if err != nil {
					lines = []string{fmt.Sprintf("failed to collect EXPLAIN: %v", err)}
				}
				res.Explain = lines
			}
		}

		results = append(results, res)
	}
	return results, nil
}

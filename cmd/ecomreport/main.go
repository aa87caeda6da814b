package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"text/tabwriter"
	"time"
	"unicode/utf8"

	"ecommerce-analytics/internal/data"
	"ecommerce-analytics/internal/db"
	"ecommerce-analytics/internal/export"
	"ecommerce-analytics/internal/metrics"
	"ecommerce-analytics/internal/report"

	"gorm.io/gorm"
)

func main() {
	defaults := report.DefaultParams()
	var (
		metricSpec  = flag.String("metric", "all", "comma separated metric names, or all")
		engine      = flag.String("engine", "sql", "execution engine: sql runs against MySQL, memory loads a snapshot first")
		listOnly    = flag.Bool("list", false, "print the metric catalog and exit")
		importDir   = flag.String("import", "", "directory holding the Olist CSV files to load")
		seedOrders  = flag.Int("seed", 0, "top up the database with synthetic orders up to this count")
		batchSize   = flag.Int("batch", 1000, "batch size for bulk inserts")
		constraints = flag.Bool("constraints", true, "apply the foreign key migrations")
		showExplain = flag.Bool("explain", false, "print EXPLAIN output for each metric (sql engine)")
		formatName  = flag.String("format", "table", "result format: table, json or csv")
		outDir      = flag.String("out", "", "write each result to a timestamped file in this directory")
		metricsFile = flag.String("metrics-file", "", "write run metrics in Prometheus text format to this path")
		fromMonth   = flag.Int("from-month", defaults.PeriodFromMonth, "first month of the year-over-year window")
		toMonth     = flag.Int("to-month", defaults.PeriodToMonth, "last month of the year-over-year window")
		topN        = flag.Int("top", defaults.TopN, "states per side in top/bottom rankings")
		limit       = flag.Int("limit", defaults.Limit, "rows in category and city leaderboards")
	)
	flag.Parse()

	if *listOnly {
		printCatalog(report.Catalog())
		return
	}

	selected, err := report.Select(*metricSpec)
	if err != nil {
		log.Fatalf("invalid -metric: %v", err)
	}
	format, err := export.ParseFormat(*formatName)
	if err != nil {
		log.Fatalf("invalid -format: %v", err)
	}
	params := report.Params{
		PeriodFromMonth: *fromMonth,
		PeriodToMonth:   *toMonth,
		TopN:            *topN,
		Limit:           *limit,
	}
	if err := params.Validate(); err != nil {
		log.Fatalf("%v", err)
	}

	cfg := db.FromEnv()
	gdb, err := db.Open(cfg)
	if err != nil {
		log.Fatalf("failed to connect to MySQL: %v", err)
	}

	if err := data.EnsureSchema(gdb); err != nil {
		log.Fatalf("failed to migrate schema: %v", err)
	}

	ctx := context.Background()

	for _, step := range loadPlan(*constraints, *importDir, *seedOrders) {
		start := time.Now()
		switch step {
		case stepConstraints:
			if err := data.ApplyConstraints(cfg.MigrationURL()); err != nil {
				log.Fatalf("failed to apply constraints: %v", err)
			}
			log.Printf("foreign key constraints in place")
		case stepImport:
			counts, err := data.ImportDir(ctx, gdb, *importDir, *batchSize)
			if err != nil {
				log.Fatalf("failed to import %s: %v", *importDir, err)
			}
			log.Printf("imported %d tables from %s in %s", len(counts), *importDir, time.Since(start))
		case stepSeed:
			seedCfg := data.SeedConfig{
				Orders:    *seedOrders,
				BatchSize: *batchSize,
			}
			if err := data.SeedDataset(ctx, gdb, seedCfg); err != nil {
				log.Fatalf("failed to seed dataset: %v", err)
			}
			log.Printf("dataset ready (orders target=%d) in %s", *seedOrders, time.Since(start))
		}
	}

	if err := logDatasetStats(ctx, gdb); err != nil {
		log.Printf("failed to collect dataset stats: %v", err)
	}

	exec, err := newExecutor(ctx, *engine, gdb)
	if err != nil {
		log.Fatalf("%v", err)
	}

	reg := metrics.NewRegistry()
	results, err := report.RunCatalog(ctx, exec, selected, params, report.RunOptions{
		Explain:  *showExplain,
		Recorder: reg,
	})
	if err != nil {
		log.Fatalf("%v", err)
	}

	if *showExplain {
		for _, res := range results {
			if res.Err != nil {
				log.Printf("[metric: %s] skipped explain due to error: %v", res.Name, res.Err)
				continue
			}
			log.Printf("[metric: %s] %s", res.Name, res.Description)
			for _, line := range res.Explain {
				log.Printf("  %s", line)
			}
		}
	}

	printResultsTable(results)

	now := time.Now()
	for _, res := range results {
		if res.Err != nil {
			continue
		}
		if *outDir != "" {
			path, err := export.SaveFile(*outDir, format, res.Table, now)
			if err != nil {
				log.Printf("[metric: %s] failed to save: %v", res.Name, err)
				continue
			}
			log.Printf("[metric: %s] saved %s", res.Name, path)
			continue
		}
		fmt.Printf("\n== %s ==\n", res.Name)
		if err := export.Write(os.Stdout, format, res.Table); err != nil {
			log.Printf("[metric: %s] failed to render: %v", res.Name, err)
		}
	}

	if *metricsFile != "" {
		if err := reg.WriteTextfile(*metricsFile); err != nil {
			log.Printf("failed to write metrics file: %v", err)
		}
	}

	for _, res := range results {
		if res.Err != nil {
			os.Exit(1)
		}
	}
}

const (
	stepConstraints = "constraints"
	stepImport      = "import"
	stepSeed        = "seed"
)

// loadPlan orders the setup steps. Constraints come first so an orphan row
// fails the insert that carries it instead of the later ALTER TABLE.
func loadPlan(constraints bool, importDir string, seedOrders int) []string {
	var steps []string
	if constraints {
		steps = append(steps, stepConstraints)
	}
	if importDir != "" {
		steps = append(steps, stepImport)
	}
	if seedOrders > 0 {
		steps = append(steps, stepSeed)
	}
	return steps
}

func newExecutor(ctx context.Context, engine string, gdb *gorm.DB) (report.Executor, error) {
	switch engine {
	case "sql":
		exec, err := report.NewSQLExecutor(gdb)
		if err != nil {
			return nil, err
		}
		return exec, nil
	case "memory":
		start := time.Now()
		ds, err := data.LoadDataset(ctx, gdb)
		if err != nil {
			return nil, fmt.Errorf("failed to load snapshot: %w", err)
		}
		log.Printf("snapshot loaded (orders=%d) in %s", len(ds.Orders), time.Since(start))
		return report.NewMemoryExecutor(ds), nil
	}
	return nil, fmt.Errorf("unknown engine %q (want sql or memory)", engine)
}

func logDatasetStats(ctx context.Context, gdb *gorm.DB) error {
	counts, err := data.CountRows(ctx, gdb)
	if err != nil {
		return err
	}
	parts := make([]string, 0, len(counts))
	for _, c := range counts {
		parts = append(parts, fmt.Sprintf("%s=%d", c.Table, c.Rows))
	}
	log.Printf("current dataset: %s", strings.Join(parts, " "))
	return nil
}

func printCatalog(catalog []report.Metric) {
	tw := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "metric\tcolumns\tdescription")
	for _, m := range catalog {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", m.Name, strings.Join(m.Columns, ","), m.Description)
	}
	tw.Flush()
}

func printResultsTable(results []report.Result) {
	tw := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tmetric\tdescription (truncated)\tengine\tduration\trows\tstatus")
	for i, res := range results {
		status := "OK"
		if res.Err != nil {
			status = "ERR: " + res.Err.Error()
		}
		desc := truncateText(res.Description, 40)
		fmt.Fprintf(tw, "%2d\t%-34s\t%-40s\t%s\t%12s\t%8d\t%s\n", i+1, res.Name, desc, res.Engine, res.Duration, res.RowCount, status)
	}
	fmt.Fprintf(tw, "%s\n", strings.Repeat("─", 34))
	tw.Flush()
}

func truncateText(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "…"
}

package report

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"ecommerce-analytics/internal/data"

	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

// Executor runs one metric and returns its result table.
type Executor interface {
	Engine() string
	Run(ctx context.Context, m Metric, p Params) (Table, error)
}

// Explainer is implemented by executors that can show a query plan.
type Explainer interface {
	Explain(ctx context.Context, m Metric, p Params) ([]string, error)
}

// SQLExecutor runs the catalog's SQL text against MySQL.
type SQLExecutor struct {
	gdb *gorm.DB
	db  *sqlx.DB
}

// NewSQLExecutor shares gdb's connection pool.
func NewSQLExecutor(gdb *gorm.DB) (*SQLExecutor, error) {
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	return &SQLExecutor{gdb: gdb, db: sqlx.NewDb(sqlDB, "mysql")}, nil
}

func (e *SQLExecutor) Engine() string { return "sql" }

func (e *SQLExecutor) Run(ctx context.Context, m Metric, p Params) (Table, error) {
	rows, err := e.db.QueryxContext(ctx, m.Query, m.Args(p)...)
	if err != nil {
		return Table{}, fmt.Errorf("%s: %w", m.Name, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return Table{}, err
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return Table{}, err
	}

	t := Table{Metric: m.Name, Columns: cols}
	for rows.Next() {
		cells, err := rows.SliceScan()
		if err != nil {
			return Table{}, fmt.Errorf("%s: scan: %w", m.Name, err)
		}
		for i := range cells {
			cells[i] = normalizeCell(cells[i], databaseType(types, i))
		}
		t.Rows = append(t.Rows, cells)
	}
	if err := rows.Err(); err != nil {
		return Table{}, fmt.Errorf("%s: %w", m.Name, err)
	}
	return t, nil
}

func databaseType(types []*sql.ColumnType, i int) string {
	if i >= len(types) || types[i] == nil {
		return ""
	}
	return types[i].DatabaseTypeName()
}

// normalizeCell maps driver values onto the cell types Table promises.
// DECIMAL arrives as text and becomes float64; other text becomes string.
func normalizeCell(v any, dbType string) any {
	switch x := v.(type) {
	case nil:
		return nil
	case []byte:
		return normalizeText(string(x), dbType)
	case string:
		return normalizeText(x, dbType)
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case int16:
		return int64(x)
	case int8:
		return int64(x)
	case uint64:
		return int64(x)
	case uint32:
		return int64(x)
	case float32:
		return float64(x)
	default:
		return v
	}
}

func normalizeText(s, dbType string) any {
	switch strings.ToUpper(dbType) {
	case "DECIMAL", "NEWDECIMAL", "DOUBLE", "FLOAT":
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	case "BIGINT", "INT", "MEDIUMINT", "SMALLINT", "TINYINT", "UNSIGNED BIGINT", "UNSIGNED INT":
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
	}
	return s
}

// Explain prefers EXPLAIN ANALYZE and falls back to plain EXPLAIN.
func (e *SQLExecutor) Explain(ctx context.Context, m Metric, p Params) ([]string, error) {
	args := m.Args(p)
	lines, err := fetchExplain(ctx, e.gdb, "EXPLAIN ANALYZE "+m.Query, args...)
	if err == nil {
		return lines, nil
	}
	return fetchExplain(ctx, e.gdb, "EXPLAIN "+m.Query, args...)
}

func fetchExplain(ctx context.Context, db *gorm.DB, query string, args ...any) ([]string, error) {
	var rows []map[string]any
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		keys := make([]string, 0, len(row))
		for k := range row {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(row))
		for _, k := range keys {
			v := row[k]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			parts = append(parts, fmt.Sprintf("%s=%v", k, v))
		}
		lines = append(lines, strings.Join(parts, " "))
	}
	return lines, nil
}

// MemoryExecutor computes metrics from a loaded snapshot.
type MemoryExecutor struct {
	ds *data.Dataset
}

func NewMemoryExecutor(ds *data.Dataset) *MemoryExecutor {
	return &MemoryExecutor{ds: ds}
}

func (e *MemoryExecutor) Engine() string { return "memory" }

func (e *MemoryExecutor) Run(ctx context.Context, m Metric, p Params) (Table, error) {
	if err := ctx.Err(); err != nil {
		return Table{}, err
	}
	if m.Compute == nil {
		return Table{}, fmt.Errorf("%s: no in-memory rendition", m.Name)
	}
	t := m.Compute(e.ds, p)
	t.Metric = m.Name
	t.Columns = m.Columns
	return t, nil
}

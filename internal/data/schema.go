package data

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var constraintMigrations embed.FS

// tables in foreign-key order: parents before children.
var tables = []struct {
	name  string
	model interface{}
}{
	{"customers", &Customer{}},
	{"sellers", &Seller{}},
	{"products", &Product{}},
	{"orders", &Order{}},
	{"order_items", &OrderItem{}},
	{"payments", &Payment{}},
	{"order_reviews", &OrderReview{}},
}

// EnsureSchema creates the tables. Foreign keys are added separately by
// ApplyConstraints.
func EnsureSchema(db *gorm.DB) error {
	models := make([]interface{}, 0, len(tables))
	for _, t := range tables {
		models = append(models, t.model)
	}
	return db.AutoMigrate(models...)
}

// ApplyConstraints runs the embedded foreign-key migrations against the
// database behind migrationURL (a mysql:// URL). Apply them before loading
// data so that orphan rows are rejected by the insert that carries them.
func ApplyConstraints(migrationURL string) error {
	src, err := iofs.New(constraintMigrations, "migrations")
	if err != nil {
		return fmt.Errorf("open constraint migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, migrationURL)
	if err != nil {
		return fmt.Errorf("init migrate: %w", err)
	}
	defer m.Close()

	return applyConstraints(m, src)
}

func applyConstraints(m *migrate.Migrate, src source.Driver) error {
	if err := clearDirty(m, src); err != nil {
		return err
	}
	err := m.Up()
	if err == nil || errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	if cerr := clearDirty(m, src); cerr != nil {
		log.Printf("failed to reset constraint migration state: %v", cerr)
	}
	if IsOrphanRow(err) {
		return fmt.Errorf("apply constraints: %w: %v", ErrOrphanRow, err)
	}
	return fmt.Errorf("apply constraints: %w", err)
}

// clearDirty moves a version left dirty by a failed migration back to the
// last one that applied. Every constraint migration is a single ALTER TABLE,
// which MySQL applies atomically, so the failed one left nothing behind.
func clearDirty(m *migrate.Migrate, src source.Driver) error {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read constraint version: %w", err)
	}
	if !dirty {
		return nil
	}

	target := database.NilVersion
	prev, err := src.Prev(version)
	switch {
	case err == nil:
		target = int(prev)
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("find version before %d: %w", version, err)
	}
	log.Printf("constraint migration %d is dirty; resetting to %d", version, target)
	if err := m.Force(target); err != nil {
		return fmt.Errorf("reset constraint version: %w", err)
	}
	return nil
}

// TableCount is the row count of one table.
type TableCount struct {
	Table string
	Rows  int64
}

// CountRows reports the row count of every table in foreign-key order.
func CountRows(ctx context.Context, db *gorm.DB) ([]TableCount, error) {
	counts := make([]TableCount, 0, len(tables))
	for _, t := range tables {
		var n int64
		if err := db.WithContext(ctx).Model(t.model).Count(&n).Error; err != nil {
			return nil, fmt.Errorf("count %s: %w", t.name, err)
		}
		counts = append(counts, TableCount{Table: t.name, Rows: n})
	}
	return counts, nil
}

// LoadDataset reads a snapshot of every table.
func LoadDataset(ctx context.Context, db *gorm.DB) (*Dataset, error) {
	ds := &Dataset{}
	loads := []struct {
		name string
		dest interface{}
	}{
		{"customers", &ds.Customers},
		{"sellers", &ds.Sellers},
		{"products", &ds.Products},
		{"orders", &ds.Orders},
		{"order_items", &ds.Items},
		{"payments", &ds.Payments},
		{"order_reviews", &ds.Reviews},
	}
	for _, l := range loads {
		if err := db.WithContext(ctx).Find(l.dest).Error; err != nil {
			return nil, fmt.Errorf("load %s: %w", l.name, err)
		}
	}
	return ds, nil
}

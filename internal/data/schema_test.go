package data

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/stub"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// constraintDB records migrations like the stub driver and can refuse the
// payments foreign key the way MySQL does when an orphan payment exists.
type constraintDB struct {
	*stub.Stub
	orphanPayments bool
}

func newConstraintDB(t *testing.T) *constraintDB {
	t.Helper()
	drv, err := stub.WithInstance(nil, &stub.Config{})
	require.NoError(t, err)
	return &constraintDB{Stub: drv.(*stub.Stub)}
}

func (d *constraintDB) Run(migration io.Reader) error {
	body, err := io.ReadAll(migration)
	if err != nil {
		return err
	}
	if d.orphanPayments && strings.Contains(string(body), "fk_payments_order") {
		return database.Error{
			OrigErr: &mysql.MySQLError{Number: 1452, Message: "Cannot add or update a child row: a foreign key constraint fails"},
			Err:     "migration failed",
			Query:   body,
		}
	}
	return d.Stub.Run(bytes.NewReader(body))
}

func runConstraints(t *testing.T, db *constraintDB) error {
	t.Helper()
	src, err := iofs.New(constraintMigrations, "migrations")
	require.NoError(t, err)
	m, err := migrate.NewWithInstance("iofs", src, "stub", db)
	require.NoError(t, err)
	defer m.Close()
	return applyConstraints(m, src)
}

func TestApplyConstraints_AppliesAllInOrder(t *testing.T) {
	db := newConstraintDB(t)
	require.NoError(t, runConstraints(t, db))
	assert.Equal(t, 4, db.CurrentVersion)
	assert.False(t, db.IsDirty)
	require.Len(t, db.MigrationSequence, 4)
	assert.Contains(t, db.MigrationSequence[0], "fk_orders_customer")
	assert.Contains(t, db.MigrationSequence[3], "fk_payments_order")

	// already applied
	require.NoError(t, runConstraints(t, db))
	assert.Len(t, db.MigrationSequence, 4)
}

func TestApplyConstraints_OrphanRowsLeaveCleanVersion(t *testing.T) {
	db := newConstraintDB(t)
	db.orphanPayments = true

	err := runConstraints(t, db)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOrphanRow)
	assert.True(t, IsOrphanRow(err))
	assert.Equal(t, 3, db.CurrentVersion)
	assert.False(t, db.IsDirty, "a failed constraint must not block later runs")

	// once the orphan rows are gone the next run finishes the job
	db.orphanPayments = false
	require.NoError(t, runConstraints(t, db))
	assert.Equal(t, 4, db.CurrentVersion)
	assert.False(t, db.IsDirty)
}

func TestApplyConstraints_RecoversDirtyVersion(t *testing.T) {
	db := newConstraintDB(t)
	db.CurrentVersion = 4
	db.IsDirty = true

	require.NoError(t, runConstraints(t, db))
	assert.Equal(t, 4, db.CurrentVersion)
	assert.False(t, db.IsDirty)
	require.Len(t, db.MigrationSequence, 1)
	assert.Contains(t, db.MigrationSequence[0], "fk_payments_order")
}

func TestApplyConstraints_RecoversDirtyFirstVersion(t *testing.T) {
	db := newConstraintDB(t)
	db.CurrentVersion = 1
	db.IsDirty = true

	require.NoError(t, runConstraints(t, db))
	assert.Equal(t, 4, db.CurrentVersion)
	assert.Len(t, db.MigrationSequence, 4)
}

package data

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4/database"
	"gorm.io/gorm"
)

// ErrOrphanRow marks a write rejected because the referenced parent row does
// not exist.
var ErrOrphanRow = errors.New("referenced row does not exist")

// mysqlNoReferencedRow is ER_NO_REFERENCED_ROW_2.
const mysqlNoReferencedRow = 1452

// IsOrphanRow reports whether err is a foreign-key rejection, whether or not
// gorm translated it.
func IsOrphanRow(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrOrphanRow) || errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlNoReferencedRow
	}
	// migrate's database.Error does not unwrap to the driver error.
	var dbErr database.Error
	if errors.As(err, &dbErr) {
		return IsOrphanRow(dbErr.OrigErr)
	}
	var dbErrPtr *database.Error
	if errors.As(err, &dbErrPtr) && dbErrPtr != nil {
		return IsOrphanRow(dbErrPtr.OrigErr)
	}
	return false
}

func classifyWriteError(table string, err error) error {
	if err == nil {
		return nil
	}
	if IsOrphanRow(err) {
		return fmt.Errorf("insert %s: %w: %v", table, ErrOrphanRow, err)
	}
	return fmt.Errorf("insert %s: %w", table, err)
}

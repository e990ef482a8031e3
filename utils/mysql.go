package utils

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

const mysqlErrDuplicateEntry = 1062

// IsDuplicateKeyError reports whether err is a MySQL unique constraint
// violation. The posting engine leans on unique indexes for idempotency, so
// this is how a lost insert race is told apart from a real failure.
func IsDuplicateKeyError(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == mysqlErrDuplicateEntry
	}
	return false
}

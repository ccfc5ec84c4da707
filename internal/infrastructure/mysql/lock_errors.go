package mysql

import (
	"context"
	"errors"

	"github.com/go-sql-driver/mysql"
)

const (
	errLockWaitTimeout = 1205
	errDeadlock        = 1213
)

// IsLockContention reports deadlocks, lock wait timeouts and transaction
// deadline expiry. All three are safe to retry from scratch.
func IsLockContention(err error) bool {
	if err == nil {
		return false
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == errDeadlock || mysqlErr.Number == errLockWaitTimeout
	}
	return errors.Is(err, context.DeadlineExceeded)
}

package repositories

import (
	"context"
	"database/sql"
	"errors"

	"bookingcore/internal/domain"

	"github.com/go-sql-driver/mysql"
)

// Queryer is satisfied by both *sql.DB and *sql.Tx so conflict checks can
// run as an advisory read outside a transaction and as a locked recheck
// inside one.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// MySQL error numbers that drive engine semantics.
const (
	mysqlErrDuplicate       = 1062
	mysqlErrLockWaitTimeout = 1205
	mysqlErrDeadlock        = 1213
)

// IsDuplicate reports a unique-key violation. Both the idempotency key on
// bookings and the per-booking debit key on the ledger rely on this to turn
// replays into successes.
func IsDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlErrDuplicate
}

// MapStoreError classifies driver failures: lock timeouts and deadlocks are
// retryable, everything else is internal.
func MapStoreError(err error) error {
	if err == nil {
		return nil
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case mysqlErrLockWaitTimeout:
			return domain.TransientError{Msg: "lock wait timeout, retry the request", Err: err}
		case mysqlErrDeadlock:
			return domain.TransientError{Msg: "deadlock detected, retry the request", Err: err}
		}
	}
	return domain.InternalError{Err: err}
}

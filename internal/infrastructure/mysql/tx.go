package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"
)

// TxManager runs units of work inside a single REPEATABLE READ transaction.
// Row locks taken with SELECT ... FOR UPDATE inside fn are held until the
// transaction commits or rolls back.
type TxManager struct {
	db              *sql.DB
	timeout         time.Duration
	lockWaitTimeout time.Duration
}

func NewTxManager(db *sql.DB, timeout, lockWaitTimeout time.Duration) *TxManager {
	return &TxManager{
		db:              db,
		timeout:         timeout,
		lockWaitTimeout: lockWaitTimeout,
	}
}

// WithinTx commits when fn returns nil and rolls back otherwise.
func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) error {
	txCtx := ctx
	if m.timeout > 0 {
		var cancel context.CancelFunc
		txCtx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	tx, err := m.db.BeginTx(txCtx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	// MySQL ignores rollback if already committed.
	defer tx.Rollback()

	if m.lockWaitTimeout > 0 {
		seconds := int(math.Ceil(m.lockWaitTimeout.Seconds()))
		if _, err := tx.ExecContext(txCtx, fmt.Sprintf("SET SESSION innodb_lock_wait_timeout = %d", seconds)); err != nil {
			return fmt.Errorf("setting lock wait timeout: %w", err)
		}
	}

	if err := fn(txCtx, tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

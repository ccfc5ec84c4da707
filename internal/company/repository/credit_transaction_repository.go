package repository

import (
	"context"
	"database/sql"
	"fmt"

	"storefront/internal/domain"
)

// MySQLCreditTransactionRepository is the append-only journal of balance
// adjustments. Rows are never updated or deleted.
type MySQLCreditTransactionRepository struct {
	db *sql.DB
}

func NewMySQLCreditTransactionRepository(db *sql.DB) *MySQLCreditTransactionRepository {
	return &MySQLCreditTransactionRepository{db: db}
}

func (r *MySQLCreditTransactionRepository) Insert(ctx context.Context, tx *sql.Tx, entry domain.CreditTransaction) (int64, error) {
	query := `
		INSERT INTO CompanyCreditTransactions (companyId, kind, amount, balanceAfter, description, forced)
		VALUES (?, ?, ?, ?, ?, ?)`

	result, err := tx.ExecContext(ctx, query,
		entry.CompanyID, string(entry.Kind), entry.Amount, entry.BalanceAfter, entry.Description, entry.Forced,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting credit transaction: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return id, nil
}

func (r *MySQLCreditTransactionRepository) ListByCompanyID(ctx context.Context, companyID int64) ([]domain.CreditTransaction, error) {
	query := `
		SELECT id, companyId, kind, amount, balanceAfter, description, forced, createdAt
		FROM CompanyCreditTransactions
		WHERE companyId = ?
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("querying credit transactions: %w", err)
	}
	defer rows.Close()

	var entries []domain.CreditTransaction
	for rows.Next() {
		var e domain.CreditTransaction
		var kind string
		if err := rows.Scan(&e.ID, &e.CompanyID, &kind, &e.Amount, &e.BalanceAfter, &e.Description, &e.Forced, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning credit transaction row: %w", err)
		}
		e.Kind = domain.CreditTransactionKind(kind)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating credit transaction rows: %w", err)
	}

	return entries, nil
}

package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/errors"
)

const companyColumns = `id, name, creditLimit, currentBalance, paymentTermDays, isActive, createdAt, updatedAt`

type MySQLCompanyRepository struct {
	db *sql.DB
}

func NewMySQLCompanyRepository(db *sql.DB) *MySQLCompanyRepository {
	return &MySQLCompanyRepository{db: db}
}

func (r *MySQLCompanyRepository) FindByID(ctx context.Context, id int64) (*domain.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM Companies WHERE id = ?`
	return scanCompany(r.db.QueryRowContext(ctx, query, id), id)
}

// FindByIDInTx is a plain consistent read through tx; it takes no locks.
func (r *MySQLCompanyRepository) FindByIDInTx(ctx context.Context, tx *sql.Tx, id int64) (*domain.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM Companies WHERE id = ?`
	return scanCompany(tx.QueryRowContext(ctx, query, id), id)
}

// FindByIDForUpdate locks the company row until tx ends. Every balance
// read-modify-write must go through it.
func (r *MySQLCompanyRepository) FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM Companies WHERE id = ? FOR UPDATE`
	return scanCompany(tx.QueryRowContext(ctx, query, id), id)
}

func (r *MySQLCompanyRepository) UpdateBalance(ctx context.Context, tx *sql.Tx, id int64, balance decimal.Decimal) error {
	query := `UPDATE Companies SET currentBalance = ? WHERE id = ?`

	result, err := tx.ExecContext(ctx, query, balance, id)
	if err != nil {
		return fmt.Errorf("updating company balance: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.NewEntityNotFoundError("company", id)
	}

	return nil
}

func scanCompany(row *sql.Row, id int64) (*domain.Company, error) {
	var c domain.Company
	err := row.Scan(
		&c.ID, &c.Name, &c.CreditLimit, &c.CurrentBalance, &c.PaymentTermDays,
		&c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, errors.NewEntityNotFoundError("company", id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying company by id: %w", err)
	}

	return &c, nil
}

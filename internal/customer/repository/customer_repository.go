package repository

import (
	"context"
	"database/sql"
	"fmt"

	"storefront/internal/domain"
	"storefront/internal/errors"
)

type MySQLCustomerRepository struct {
	db *sql.DB
}

func NewMySQLCustomerRepository(db *sql.DB) *MySQLCustomerRepository {
	return &MySQLCustomerRepository{db: db}
}

// FindByIDInTx reads through tx so callers already holding a connection do
// not need a second one from the pool.
func (r *MySQLCustomerRepository) FindByIDInTx(ctx context.Context, tx *sql.Tx, id int64) (*domain.Customer, error) {
	query := `
		SELECT id, email, firstName, lastName, isActive, createdAt
		FROM Customers
		WHERE id = ?
	`

	var c domain.Customer
	err := tx.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.Email, &c.FirstName, &c.LastName, &c.IsActive, &c.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, errors.NewEntityNotFoundError("customer", id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying customer by id: %w", err)
	}

	return &c, nil
}

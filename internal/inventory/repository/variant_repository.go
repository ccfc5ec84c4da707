package repository

import (
	"context"
	"database/sql"
	"fmt"

	"storefront/internal/domain"
	"storefront/internal/errors"
)

const variantColumns = `
		v.id, v.productId, p.name, v.name, v.sku, v.price, v.salePrice,
		v.stockQuantity, v.reservedQuantity, v.isActive, v.createdAt, v.updatedAt`

type MySQLVariantRepository struct {
	db *sql.DB
}

func NewMySQLVariantRepository(db *sql.DB) *MySQLVariantRepository {
	return &MySQLVariantRepository{db: db}
}

// FindByIDForUpdate reads the variant and holds an exclusive row lock on it
// until tx ends. Only the variant row is locked, not its product.
func (r *MySQLVariantRepository) FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.ProductVariant, error) {
	query := `
		SELECT` + variantColumns + `
		FROM ProductVariants v
		JOIN Products p ON p.id = v.productId
		WHERE v.id = ?
		FOR UPDATE OF v`

	var v domain.ProductVariant
	err := tx.QueryRowContext(ctx, query, id).Scan(
		&v.ID, &v.ProductID, &v.ProductName, &v.Name, &v.SKU, &v.Price, &v.SalePrice,
		&v.StockQuantity, &v.ReservedQuantity, &v.IsActive, &v.CreatedAt, &v.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, errors.NewEntityNotFoundError("variant", id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying variant %d for update: %w", id, err)
	}

	return &v, nil
}

func (r *MySQLVariantRepository) IncrementReserved(ctx context.Context, tx *sql.Tx, id int64, quantity int) error {
	query := `UPDATE ProductVariants SET reservedQuantity = reservedQuantity + ? WHERE id = ?`
	return r.exec(ctx, tx, query, "incrementing reserved quantity", id, quantity, id)
}

// DecrementReserved never drives reservedQuantity below zero.
func (r *MySQLVariantRepository) DecrementReserved(ctx context.Context, tx *sql.Tx, id int64, quantity int) error {
	query := `UPDATE ProductVariants SET reservedQuantity = GREATEST(reservedQuantity - ?, 0) WHERE id = ?`
	return r.exec(ctx, tx, query, "decrementing reserved quantity", id, quantity, id)
}

func (r *MySQLVariantRepository) IncrementStock(ctx context.Context, tx *sql.Tx, id int64, quantity int) error {
	query := `UPDATE ProductVariants SET stockQuantity = stockQuantity + ? WHERE id = ?`
	return r.exec(ctx, tx, query, "incrementing stock quantity", id, quantity, id)
}

func (r *MySQLVariantRepository) exec(ctx context.Context, tx *sql.Tx, query, op string, id int64, args ...interface{}) error {
	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.NewEntityNotFoundError("variant", id)
	}

	return nil
}

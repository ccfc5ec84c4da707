package repository

import (
	"context"
	"database/sql"
	"fmt"

	"storefront/internal/domain"
	"storefront/internal/errors"
)

type MySQLCartRepository struct {
	db *sql.DB
}

func NewMySQLCartRepository(db *sql.DB) *MySQLCartRepository {
	return &MySQLCartRepository{db: db}
}

// FindActiveByCustomerIDForUpdate locks the customer's active cart so two
// checkouts of the same cart serialise. It returns nil, nil when the customer
// has no active cart. Each item carries the variant's current catalog price.
func (r *MySQLCartRepository) FindActiveByCustomerIDForUpdate(ctx context.Context, tx *sql.Tx, customerID int64) (*domain.Cart, error) {
	query := `
		SELECT id, customerId, createdAt, updatedAt
		FROM Carts
		WHERE customerId = ? AND isActive = 1
		ORDER BY id DESC
		LIMIT 1
		FOR UPDATE`

	var cart domain.Cart
	err := tx.QueryRowContext(ctx, query, customerID).Scan(&cart.ID, &cart.CustomerID, &cart.CreatedAt, &cart.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying active cart: %w", err)
	}

	itemsQuery := `
		SELECT ci.id, ci.cartId, ci.variantId, ci.quantity, ci.unitPrice,
		       COALESCE(v.salePrice, v.price)
		FROM CartItems ci
		JOIN ProductVariants v ON v.id = ci.variantId
		WHERE ci.cartId = ?
		ORDER BY ci.id`

	rows, err := tx.QueryContext(ctx, itemsQuery, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("querying cart items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(&item.ID, &item.CartID, &item.VariantID, &item.Quantity, &item.UnitPrice, &item.CurrentPrice); err != nil {
			return nil, fmt.Errorf("scanning cart item row: %w", err)
		}
		cart.Items = append(cart.Items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating cart item rows: %w", err)
	}

	return &cart, nil
}

// DeleteByID removes the cart and its items.
func (r *MySQLCartRepository) DeleteByID(ctx context.Context, tx *sql.Tx, cartID int64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM CartItems WHERE cartId = ?`, cartID); err != nil {
		return fmt.Errorf("deleting cart items: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM Carts WHERE id = ?`, cartID)
	if err != nil {
		return fmt.Errorf("deleting cart: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.NewEntityNotFoundError("cart", cartID)
	}

	return nil
}

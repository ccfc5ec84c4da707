package repository

import (
	"context"
	"database/sql"
	"fmt"

	"storefront/internal/domain"
)

type MySQLOrderItemRepository struct {
	db *sql.DB
}

func NewMySQLOrderItemRepository(db *sql.DB) *MySQLOrderItemRepository {
	return &MySQLOrderItemRepository{db: db}
}

func (r *MySQLOrderItemRepository) Insert(ctx context.Context, tx *sql.Tx, item domain.OrderItem) (int64, error) {
	query := `
		INSERT INTO OrderItems (
			orderId, variantId, productName, variantName, sku, quantity,
			unitPrice, discountAmount, taxAmount, total, stockReserved, createdAt
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := tx.ExecContext(ctx, query,
		item.OrderID, item.VariantID, item.ProductName, item.VariantName, item.SKU, item.Quantity,
		item.UnitPrice, item.DiscountAmount, item.TaxAmount, item.Total, item.StockReserved, item.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting order item: %w", err)
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return lastInsertID, nil
}

// FindByOrderID reads through tx when one is given so callers holding the
// order lock see their own writes.
func (r *MySQLOrderItemRepository) FindByOrderID(ctx context.Context, tx *sql.Tx, orderID int64) ([]domain.OrderItem, error) {
	query := `
		SELECT id, orderId, variantId, productName, variantName, sku, quantity,
		       unitPrice, discountAmount, taxAmount, total, stockReserved, createdAt
		FROM OrderItems
		WHERE orderId = ?
		ORDER BY id`

	var (
		rows *sql.Rows
		err  error
	)
	if tx != nil {
		rows, err = tx.QueryContext(ctx, query, orderID)
	} else {
		rows, err = r.db.QueryContext(ctx, query, orderID)
	}
	if err != nil {
		return nil, fmt.Errorf("querying order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		err := rows.Scan(
			&item.ID, &item.OrderID, &item.VariantID, &item.ProductName, &item.VariantName, &item.SKU, &item.Quantity,
			&item.UnitPrice, &item.DiscountAmount, &item.TaxAmount, &item.Total, &item.StockReserved, &item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning order item row: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order item rows: %w", err)
	}

	return items, nil
}

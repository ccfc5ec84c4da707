package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"storefront/internal/domain"
)

type MySQLRepository struct {
	db *sql.DB
}

func NewMySQLRepository(db *sql.DB) *MySQLRepository {
	return &MySQLRepository{db: db}
}

// FindVariantsByIDs is a plain consistent read; it takes no locks. Inactive
// variants are returned so callers can tell them apart from missing ones.
func (r *MySQLRepository) FindVariantsByIDs(ctx context.Context, ids []int64) ([]domain.ProductVariant, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	query := fmt.Sprintf(`
		SELECT v.id, v.productId, p.name, v.name, v.sku, v.price, v.salePrice,
		       v.stockQuantity, v.reservedQuantity, v.isActive, v.createdAt, v.updatedAt
		FROM ProductVariants v
		JOIN Products p ON p.id = v.productId
		WHERE v.id IN (%s)
		ORDER BY v.id`,
		strings.Join(placeholders, ", "),
	)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying variants: %w", err)
	}
	defer rows.Close()

	var variants []domain.ProductVariant
	for rows.Next() {
		var v domain.ProductVariant
		err := rows.Scan(
			&v.ID, &v.ProductID, &v.ProductName, &v.Name, &v.SKU, &v.Price, &v.SalePrice,
			&v.StockQuantity, &v.ReservedQuantity, &v.IsActive, &v.CreatedAt, &v.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning variant row: %w", err)
		}
		variants = append(variants, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating variant rows: %w", err)
	}

	return variants, nil
}

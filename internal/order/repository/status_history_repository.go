package repository

import (
	"context"
	"database/sql"
	"fmt"

	"storefront/internal/domain"
)

// MySQLStatusHistoryRepository only appends. There is deliberately no update
// or delete.
type MySQLStatusHistoryRepository struct {
	db *sql.DB
}

func NewMySQLStatusHistoryRepository(db *sql.DB) *MySQLStatusHistoryRepository {
	return &MySQLStatusHistoryRepository{db: db}
}

func (r *MySQLStatusHistoryRepository) Insert(ctx context.Context, tx *sql.Tx, entry domain.OrderStatusHistory) (int64, error) {
	query := `
		INSERT INTO OrderStatusHistory (orderId, fromStatus, toStatus, reason, changedBy, createdAt)
		VALUES (?, ?, ?, ?, ?, ?)`

	result, err := tx.ExecContext(ctx, query,
		entry.OrderID, string(entry.FromStatus), string(entry.ToStatus), entry.Reason, entry.ChangedBy, entry.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting status history: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return id, nil
}

func (r *MySQLStatusHistoryRepository) ListByOrderID(ctx context.Context, orderID int64) ([]domain.OrderStatusHistory, error) {
	query := `
		SELECT id, orderId, fromStatus, toStatus, reason, changedBy, createdAt
		FROM OrderStatusHistory
		WHERE orderId = ?
		ORDER BY createdAt, id`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("querying status history: %w", err)
	}
	defer rows.Close()

	var entries []domain.OrderStatusHistory
	for rows.Next() {
		var (
			e        domain.OrderStatusHistory
			from, to string
		)
		if err := rows.Scan(&e.ID, &e.OrderID, &from, &to, &e.Reason, &e.ChangedBy, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning status history row: %w", err)
		}
		e.FromStatus = domain.OrderStatus(from)
		e.ToStatus = domain.OrderStatus(to)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating status history rows: %w", err)
	}

	return entries, nil
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
)

type MySQLOrderNumberRepository struct {
	db *sql.DB
}

func NewMySQLOrderNumberRepository(db *sql.DB) *MySQLOrderNumberRepository {
	return &MySQLOrderNumberRepository{db: db}
}

// NextSequence increments and returns the counter for year. The upsert keeps
// the counter row locked until tx ends, so concurrent callers queue behind
// each other and a rolled back transaction gives its number back.
func (r *MySQLOrderNumberRepository) NextSequence(ctx context.Context, tx *sql.Tx, year int) (int, error) {
	upsert := `
		INSERT INTO OrderNumberSequences (year, lastValue) VALUES (?, 1)
		ON DUPLICATE KEY UPDATE lastValue = lastValue + 1`

	if _, err := tx.ExecContext(ctx, upsert, year); err != nil {
		return 0, fmt.Errorf("incrementing order number sequence: %w", err)
	}

	var value int
	err := tx.QueryRowContext(ctx, `SELECT lastValue FROM OrderNumberSequences WHERE year = ?`, year).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("reading order number sequence: %w", err)
	}

	return value, nil
}

package testutil

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
)

func InsertCustomer(t *testing.T, db *sql.DB, email string) int64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO Customers (email, firstName, lastName) VALUES (?, 'Test', 'Customer')`, email)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

func InsertCompany(t *testing.T, db *sql.DB, name, creditLimit, balance string) int64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO Companies (name, creditLimit, currentBalance) VALUES (?, ?, ?)`, name, creditLimit, balance)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

// InsertVariant creates a product with a single variant and returns the variant id.
func InsertVariant(t *testing.T, db *sql.DB, productName, sku, price string, stock, reserved int) int64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO Products (name) VALUES (?)`, productName)
	require.NoError(t, err)
	productID, err := res.LastInsertId()
	require.NoError(t, err)

	res, err = db.Exec(`
		INSERT INTO ProductVariants (productId, name, sku, price, stockQuantity, reservedQuantity)
		VALUES (?, 'Default', ?, ?, ?, ?)`,
		productID, sku, price, stock, reserved,
	)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

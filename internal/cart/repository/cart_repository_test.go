package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/testutil"
)

// Unit Tests

func TestNewMySQLCartRepository(t *testing.T) {
	db := &sql.DB{}
	repo := NewMySQLCartRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

// Integration Tests

func TestCartRepository_LoadAndDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	customerID := testutil.InsertCustomer(t, db, "cart@example.com")
	variantID := testutil.InsertVariant(t, db, "Floor Lamp", "LAMP-FLOOR", "105.00", 5, 0)

	res, err := db.Exec(`INSERT INTO Carts (customerId) VALUES (?)`, customerID)
	require.NoError(t, err)
	cartID, err := res.LastInsertId()
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO CartItems (cartId, variantId, quantity, unitPrice) VALUES (?, ?, 2, 100.00)`, cartID, variantID)
	require.NoError(t, err)

	repo := NewMySQLCartRepository(db)
	ctx := context.Background()

	tx, err := db.Begin()
	require.NoError(t, err)

	cart, err := repo.FindActiveByCustomerIDForUpdate(ctx, tx, customerID)
	require.NoError(t, err)
	require.NotNil(t, cart)
	require.Len(t, cart.Items, 1)
	assert.True(t, decimal.RequireFromString("100.00").Equal(cart.Items[0].ExpectedPrice()))
	assert.True(t, decimal.RequireFromString("105.00").Equal(cart.Items[0].CurrentPrice))

	require.NoError(t, repo.DeleteByID(ctx, tx, cart.ID))
	require.NoError(t, tx.Commit())

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM Carts WHERE id = ?`, cartID).Scan(&count))
	assert.Zero(t, count)
}

func TestCartRepository_NoActiveCart(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	customerID := testutil.InsertCustomer(t, db, "empty@example.com")
	repo := NewMySQLCartRepository(db)

	tx, err := db.Begin()
	require.NoError(t, err)
	defer tx.Rollback()

	cart, err := repo.FindActiveByCustomerIDForUpdate(context.Background(), tx, customerID)
	require.NoError(t, err)
	assert.Nil(t, cart)
}

func TestCartItems_RejectNonPositiveQuantity(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	customerID := testutil.InsertCustomer(t, db, "zero@example.com")
	variantID := testutil.InsertVariant(t, db, "Mug", "MUG-ZERO", "9.90", 5, 0)

	res, err := db.Exec(`INSERT INTO Carts (customerId) VALUES (?)`, customerID)
	require.NoError(t, err)
	cartID, err := res.LastInsertId()
	require.NoError(t, err)

	for _, qty := range []int{0, -1} {
		_, err = db.Exec(`INSERT INTO CartItems (cartId, variantId, quantity) VALUES (?, ?, ?)`, cartID, variantID, qty)
		assert.Error(t, err, "quantity %d", qty)
	}
}

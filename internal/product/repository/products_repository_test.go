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

func TestNewMySQLRepository(t *testing.T) {
	db := &sql.DB{}
	repo := NewMySQLRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

func TestRepository_FindVariantsByIDs_EmptyList(t *testing.T) {
	repo := NewMySQLRepository(&sql.DB{})

	variants, err := repo.FindVariantsByIDs(context.Background(), []int64{})
	require.NoError(t, err)
	assert.Nil(t, variants)
}

// Integration Tests

func TestRepository_FindVariantsByIDs_Success(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLRepository(db)

	first := testutil.InsertVariant(t, db, "Oak Chair", "CHAIR-OAK", "89.00", 12, 2)
	second := testutil.InsertVariant(t, db, "Pine Table", "TABLE-PINE", "240.00", 3, 0)
	_, err := db.Exec(`UPDATE ProductVariants SET salePrice = 199.00 WHERE id = ?`, second)
	require.NoError(t, err)

	variants, err := repo.FindVariantsByIDs(context.Background(), []int64{second, first, 9999})
	require.NoError(t, err)
	require.Len(t, variants, 2)

	assert.Equal(t, first, variants[0].ID)
	assert.Equal(t, "Oak Chair", variants[0].ProductName)
	assert.Equal(t, 10, variants[0].AvailableQuantity())

	assert.Equal(t, second, variants[1].ID)
	assert.True(t, variants[1].SalePrice.Valid)
	assert.True(t, decimal.RequireFromString("199.00").Equal(variants[1].CurrentPrice()))
}

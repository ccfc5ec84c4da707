package testutil

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"

	"storefront/internal/infrastructure/mysql"
)

const defaultTestDSN = "root:@tcp(localhost:3306)/storefront_test?parseTime=true&loc=UTC&clientFoundRows=true"

// Tables in delete order (children first).
var tables = []string{
	"OrderStatusHistory",
	"OrderItems",
	"Orders",
	"OrderNumberSequences",
	"CartItems",
	"Carts",
	"ProductVariants",
	"Products",
	"CompanyCreditTransactions",
	"Companies",
	"Customers",
}

func testDSN() string {
	if dsn := os.Getenv("TEST_DB_DSN"); dsn != "" {
		return dsn
	}
	return defaultTestDSN
}

// SetupTestDB opens the integration database (TEST_DB_DSN, or a local
// storefront_test schema) and skips the test when it is not reachable.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("mysql", testDSN())
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("test database not available: %v", err)
	}

	return db
}

// SetupTestTables applies the embedded migrations.
func SetupTestTables(t *testing.T, db *sql.DB) {
	t.Helper()

	m, err := mysql.NewMigratorFromDSN(testDSN())
	if err != nil {
		t.Fatalf("failed to create migrator: %v", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		t.Fatalf("failed to apply migrations: %v", err)
	}

	truncate(t, db)
}

// CleanupTestDB empties every table and closes db.
func CleanupTestDB(t *testing.T, db *sql.DB) {
	if db == nil {
		return
	}

	truncate(t, db)
	db.Close()
}

func truncate(t *testing.T, db *sql.DB) {
	for _, table := range tables {
		if _, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}

package mysql

import (
	"embed"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"storefront/internal/config"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// NewMigrator returns a migrate instance backed by the embedded schema files.
func NewMigrator(cfg config.DatabaseConfig) (*migrate.Migrate, error) {
	return NewMigratorFromDSN(DSN(cfg))
}

func NewMigratorFromDSN(dsn string) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("loading embedded migrations: %w", err)
	}

	dsnCfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing dsn: %w", err)
	}
	dsnCfg.MultiStatements = true

	m, err := migrate.NewWithSourceInstance("iofs", src, "mysql://"+dsnCfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("creating migrator: %w", err)
	}

	return m, nil
}

package mysql

import "storefront/internal/config"

func testDatabaseConfig() config.DatabaseConfig {
	return config.DatabaseConfig{
		Host:     "db.local",
		Port:     3307,
		User:     "storefront",
		Password: "secret",
		Name:     "shop",
	}
}

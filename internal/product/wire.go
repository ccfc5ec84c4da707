package product

import (
	"database/sql"

	"go.uber.org/zap"

	"storefront/internal/product/repository"
)

func NewModule(db *sql.DB, logger *zap.Logger) *Controller {
	return NewModuleFromRepository(repository.NewMySQLRepository(db), logger)
}

func NewModuleFromRepository(repo Repository, logger *zap.Logger) *Controller {
	catalog := NewCatalog(repo)
	uc := NewSearchUseCase(catalog)
	return NewController(uc, logger)
}

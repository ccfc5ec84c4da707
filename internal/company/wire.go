package company

import (
	"database/sql"

	"go.uber.org/zap"

	"storefront/internal/company/controller"
	"storefront/internal/company/repository"
	"storefront/internal/company/service"
	"storefront/internal/company/usecase"
	"storefront/internal/config"
	"storefront/internal/infrastructure/mysql"
	"storefront/internal/infrastructure/telemetry"
)

type Module struct {
	Ledger     *service.LedgerService
	Companies  *repository.MySQLCompanyRepository
	Controller *controller.BalanceController
}

func NewModule(db *sql.DB, txManager *mysql.TxManager, metrics *telemetry.Metrics, cfg *config.Config, logger *zap.Logger) *Module {
	companyRepo := repository.NewMySQLCompanyRepository(db)
	journalRepo := repository.NewMySQLCreditTransactionRepository(db)

	ledger := service.NewLedgerService(companyRepo, journalRepo, logger)

	uc := usecase.NewAdjustBalanceUseCase(
		txManager,
		ledger,
		companyRepo,
		journalRepo,
		metrics,
		logger,
		cfg.Order.MaxRetryAttempts,
	)

	return &Module{
		Ledger:     ledger,
		Companies:  companyRepo,
		Controller: controller.NewBalanceController(uc, logger),
	}
}

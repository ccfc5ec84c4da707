package order

import (
	"database/sql"

	"go.uber.org/zap"

	cartrepo "storefront/internal/cart/repository"
	companyrepo "storefront/internal/company/repository"
	"storefront/internal/config"
	customerrepo "storefront/internal/customer/repository"
	"storefront/internal/infrastructure/mysql"
	"storefront/internal/infrastructure/telemetry"
	inventoryrepo "storefront/internal/inventory/repository"
	inventory "storefront/internal/inventory/service"
	"storefront/internal/order/controller"
	orderrepo "storefront/internal/order/repository"
	"storefront/internal/order/service"
	"storefront/internal/order/usecase"
)

// Infrastructure carries the adapters built once at startup and shared with
// other modules.
type Infrastructure struct {
	TxManager   *mysql.TxManager
	Metrics     *telemetry.Metrics
	Ledger      usecase.Ledger
	Idempotency usecase.IdempotencyStore
	Events      usecase.EventPublisher
	Payments    usecase.PaymentGateway
}

func NewModule(db *sql.DB, infra Infrastructure, cfg *config.Config, logger *zap.Logger) *controller.OrderController {
	orderRepo := orderrepo.NewMySQLOrderRepository(db)
	orderItemRepo := orderrepo.NewMySQLOrderItemRepository(db)
	historyRepo := orderrepo.NewMySQLStatusHistoryRepository(db)
	sequenceRepo := orderrepo.NewMySQLOrderNumberRepository(db)
	cartRepo := cartrepo.NewMySQLCartRepository(db)
	customerRepo := customerrepo.NewMySQLCustomerRepository(db)
	companyRepo := companyrepo.NewMySQLCompanyRepository(db)
	variantRepo := inventoryrepo.NewMySQLVariantRepository(db)

	reservations := inventory.NewReservationService(variantRepo, logger)
	stateMachine := service.NewStateMachine(orderRepo, orderItemRepo, historyRepo, reservations, logger)

	create := usecase.NewCreateOrderUseCase(usecase.CreateOrderDeps{
		TxManager:    infra.TxManager,
		Carts:        cartRepo,
		Rules:        service.NewBusinessRuleValidator(customerRepo, companyRepo, cfg.Order.MaxB2CItems, cfg.Order.MinB2BOrderTotal),
		Reservations: reservations,
		Prices:       service.NewPriceValidator(logger),
		Numbers:      service.NewOrderNumberGenerator(sequenceRepo, logger),
		Totals:       service.NewTotalsCalculator(cfg.Order.TaxRate, cfg.Order.ShippingFee),
		Orders:       orderRepo,
		Items:        orderItemRepo,
		StateMachine: stateMachine,
		Idempotency:  infra.Idempotency,
		Events:       infra.Events,
		Metrics:      infra.Metrics,
	}, usecase.OrderSettings{
		Currency:               cfg.Order.Currency,
		DefaultPaymentTermDays: cfg.Order.DefaultPaymentTermDays,
		MaxRetryAttempts:       cfg.Order.MaxRetryAttempts,
	}, logger)

	lifecycle := usecase.NewOrderLifecycleUseCase(
		infra.TxManager,
		stateMachine,
		orderRepo,
		orderItemRepo,
		historyRepo,
		infra.Events,
		infra.Metrics,
		logger,
		cfg.Order.MaxRetryAttempts,
	)

	refund := usecase.NewRefundUseCase(
		infra.TxManager,
		stateMachine,
		orderRepo,
		orderItemRepo,
		reservations,
		infra.Ledger,
		infra.Payments,
		infra.Events,
		infra.Metrics,
		logger,
		cfg.Order.MaxRetryAttempts,
	)

	return controller.NewOrderController(create, lifecycle, refund, logger)
}

package usecase

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/infrastructure/idempotency"
	"storefront/internal/order/service"
	"storefront/internal/payment"
)

type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) error
}

type CartRepository interface {
	FindActiveByCustomerIDForUpdate(ctx context.Context, tx *sql.Tx, customerID int64) (*domain.Cart, error)
	DeleteByID(ctx context.Context, tx *sql.Tx, cartID int64) error
}

type RuleValidator interface {
	ValidateB2C(ctx context.Context, tx *sql.Tx, customerID int64, lines []domain.OrderLine) error
	ValidateB2B(ctx context.Context, tx *sql.Tx, customerID, companyID int64, lines []domain.OrderLine) (*domain.Company, error)
}

type StockReserver interface {
	Reserve(ctx context.Context, tx *sql.Tx, items []domain.ReservationItem) ([]domain.ProductVariant, error)
}

type StockRestocker interface {
	Restock(ctx context.Context, tx *sql.Tx, items []domain.ReservationItem) error
}

type PriceChecker interface {
	Validate(lines []domain.OrderLine, locked []domain.ProductVariant) error
}

type NumberGenerator interface {
	Generate(ctx context.Context, tx *sql.Tx, year int) (string, error)
}

type TotalsCalculator interface {
	Apply(order *domain.Order, lines []domain.OrderLine, variants []domain.ProductVariant, now time.Time) error
}

type OrderRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, order *domain.Order) (int64, error)
	FindByID(ctx context.Context, id int64) (*domain.Order, error)
	FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.Order, error)
}

type OrderItemRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, item domain.OrderItem) (int64, error)
	FindByOrderID(ctx context.Context, tx *sql.Tx, orderID int64) ([]domain.OrderItem, error)
}

type HistoryReader interface {
	ListByOrderID(ctx context.Context, orderID int64) ([]domain.OrderStatusHistory, error)
}

type StateMachine interface {
	Transition(ctx context.Context, tx *sql.Tx, orderID int64, to domain.OrderStatus, reason *string, actor *int64) (*service.StatusChange, error)
	RecordApproval(ctx context.Context, tx *sql.Tx, order *domain.Order, actor *int64) error
	RecordRefund(ctx context.Context, tx *sql.Tx, order *domain.Order, reason *string, actor *int64) (*service.StatusChange, error)
}

type Ledger interface {
	AdjustBalance(ctx context.Context, tx *sql.Tx, adj domain.BalanceAdjustment) (decimal.Decimal, error)
}

type IdempotencyStore interface {
	Claim(ctx context.Context, scope, key string) (idempotency.Claim, error)
	Complete(ctx context.Context, scope, key string, orderID int64) error
	Release(ctx context.Context, scope, key string) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event domain.OrderEvent) error
}

type PaymentGateway interface {
	Refund(ctx context.Context, req payment.RefundRequest) error
}

type Metrics interface {
	OrderCreated(ctx context.Context, orderType string, elapsed time.Duration)
	OrderFailed(ctx context.Context, orderType, code string, elapsed time.Duration)
	Transitioned(ctx context.Context, orderType, from, to string)
	Refunded(ctx context.Context, orderType string)
	IdempotentReplay(ctx context.Context, orderType string)
}

package usecase

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/dto"
	apperrors "storefront/internal/errors"
	"storefront/internal/infrastructure/mysql"
	"storefront/internal/payment"
)

type RefundUseCase struct {
	txManager        Transactor
	stateMachine     StateMachine
	orders           OrderRepository
	items            OrderItemRepository
	stock            StockRestocker
	ledger           Ledger
	gateway          PaymentGateway
	events           EventPublisher
	metrics          Metrics
	logger           *zap.Logger
	maxRetryAttempts int
	now              func() time.Time
}

func NewRefundUseCase(
	txManager Transactor,
	stateMachine StateMachine,
	orders OrderRepository,
	items OrderItemRepository,
	stock StockRestocker,
	ledger Ledger,
	gateway PaymentGateway,
	events EventPublisher,
	metrics Metrics,
	logger *zap.Logger,
	maxRetryAttempts int,
) *RefundUseCase {
	return &RefundUseCase{
		txManager:        txManager,
		stateMachine:     stateMachine,
		orders:           orders,
		items:            items,
		stock:            stock,
		ledger:           ledger,
		gateway:          gateway,
		events:           events,
		metrics:          metrics,
		logger:           logger,
		maxRetryAttempts: maxRetryAttempts,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// Refund reverses a delivered order: its quantities go back on hand, the order
// becomes CANCELLED and a B2B company is credited with the refunded amount.
// All of it commits together. The payment gateway is called after commit.
func (uc *RefundUseCase) Refund(ctx context.Context, in dto.RefundInput) (*domain.Order, error) {
	ctx, span := tracer.Start(ctx, "order.Refund")
	defer span.End()
	span.SetAttributes(attribute.Int64("order.id", in.OrderID))

	if !in.Amount.IsPositive() {
		return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "amount",
			Message: "amount must be greater than zero",
		})
	}

	var order *domain.Order
	err := mysql.RetryOnContention(ctx, uc.maxRetryAttempts, uc.logger, func(ctx context.Context) error {
		return uc.txManager.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
			var err error
			order, err = uc.refundInTx(ctx, tx, in)
			return err
		})
	})
	if err != nil {
		span.RecordError(err)
		if apperrors.IsDomainError(err) {
			uc.logger.Info("refund rejected", zap.Int64("orderId", in.OrderID), zap.Error(err))
			return nil, err
		}
		uc.logger.Error("refund failed", zap.Int64("orderId", in.OrderID), zap.Error(err))
		return nil, apperrors.NewInternalError("refunding order", err)
	}

	err = uc.gateway.Refund(context.WithoutCancel(ctx), payment.RefundRequest{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Amount:      in.Amount,
		Currency:    order.Currency,
		Reason:      in.Reason,
	})
	if err != nil {
		uc.logger.Error("payment refund failed after order was refunded",
			zap.Int64("orderId", order.ID),
			zap.String("amount", in.Amount.StringFixed(2)),
			zap.Error(err),
		)
	}

	publishEvent(ctx, uc.events, uc.logger, domain.NewOrderEvent(domain.EventOrderRefunded, order, domain.StatusDelivered, in.Amount, uc.now()))
	uc.metrics.Refunded(ctx, string(order.Type))

	uc.logger.Info("order refunded",
		zap.Int64("orderId", order.ID),
		zap.String("orderNumber", order.OrderNumber),
		zap.String("amount", in.Amount.StringFixed(2)),
	)
	return order, nil
}

func (uc *RefundUseCase) refundInTx(ctx context.Context, tx *sql.Tx, in dto.RefundInput) (*domain.Order, error) {
	order, err := uc.orders.FindByIDForUpdate(ctx, tx, in.OrderID)
	if err != nil {
		return nil, err
	}

	if order.Status != domain.StatusDelivered {
		return nil, apperrors.NewInvalidTransitionError(string(order.Status), string(domain.StatusCancelled),
			"refunds are only allowed for delivered orders")
	}

	if in.Amount.GreaterThan(order.Total) {
		return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "amount",
			Message: fmt.Sprintf("amount must not exceed the order total of %s", order.Total.StringFixed(2)),
		})
	}

	items, err := uc.items.FindByOrderID(ctx, tx, order.ID)
	if err != nil {
		return nil, err
	}

	if err := uc.stock.Restock(ctx, tx, domain.ReservationItemsFromOrderItems(items)); err != nil {
		return nil, err
	}

	reason := in.Reason
	if _, err := uc.stateMachine.RecordRefund(ctx, tx, order, &reason, in.ActorID); err != nil {
		return nil, err
	}

	if order.Type == domain.OrderTypeB2B && order.CompanyID != nil {
		_, err := uc.ledger.AdjustBalance(ctx, tx, domain.BalanceAdjustment{
			CompanyID:   *order.CompanyID,
			Amount:      in.Amount,
			Kind:        domain.CreditTransactionCredit,
			Description: fmt.Sprintf("refund for order %s", order.OrderNumber),
		})
		if err != nil {
			return nil, err
		}
	}

	order.Items = items
	return order, nil
}

package usecase

import (
	"context"
	"database/sql"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/dto"
	apperrors "storefront/internal/errors"
	"storefront/internal/infrastructure/mysql"
	"storefront/internal/order/service"
)

type OrderLifecycleUseCase struct {
	txManager        Transactor
	stateMachine     StateMachine
	orders           OrderRepository
	items            OrderItemRepository
	history          HistoryReader
	events           EventPublisher
	metrics          Metrics
	logger           *zap.Logger
	maxRetryAttempts int
	now              func() time.Time
}

func NewOrderLifecycleUseCase(
	txManager Transactor,
	stateMachine StateMachine,
	orders OrderRepository,
	items OrderItemRepository,
	history HistoryReader,
	events EventPublisher,
	metrics Metrics,
	logger *zap.Logger,
	maxRetryAttempts int,
) *OrderLifecycleUseCase {
	return &OrderLifecycleUseCase{
		txManager:        txManager,
		stateMachine:     stateMachine,
		orders:           orders,
		items:            items,
		history:          history,
		events:           events,
		metrics:          metrics,
		logger:           logger,
		maxRetryAttempts: maxRetryAttempts,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// TransitionOrder applies one status change. Cancelling releases the order's
// reservations in the same transaction; if that fails the status is unchanged.
func (uc *OrderLifecycleUseCase) TransitionOrder(ctx context.Context, in dto.TransitionInput) (*domain.Order, error) {
	ctx, span := tracer.Start(ctx, "order.Transition")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("order.id", in.OrderID),
		attribute.String("order.to_status", string(in.To)),
	)

	var change *service.StatusChange
	err := mysql.RetryOnContention(ctx, uc.maxRetryAttempts, uc.logger, func(ctx context.Context) error {
		return uc.txManager.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
			var err error
			change, err = uc.stateMachine.Transition(ctx, tx, in.OrderID, in.To, in.Reason, in.ActorID)
			return err
		})
	})
	if err != nil {
		span.RecordError(err)
		if apperrors.IsDomainError(err) {
			return nil, err
		}
		uc.logger.Error("order transition failed", zap.Int64("orderId", in.OrderID), zap.String("to", string(in.To)), zap.Error(err))
		return nil, apperrors.NewInternalError("transitioning order", err)
	}

	order := change.Order
	order.Items, err = uc.items.FindByOrderID(ctx, nil, order.ID)
	if err != nil {
		uc.logger.Warn("loading items after transition failed", zap.Int64("orderId", order.ID), zap.Error(err))
	}

	publishEvent(ctx, uc.events, uc.logger, domain.NewOrderEvent(domain.EventOrderStatusChanged, order, change.From, order.Total, uc.now()))
	uc.metrics.Transitioned(ctx, string(order.Type), string(change.From), string(change.To))

	return order, nil
}

func (uc *OrderLifecycleUseCase) GetOrder(ctx context.Context, orderID int64) (*domain.Order, error) {
	return loadOrderWithItems(ctx, uc.orders, uc.items, orderID)
}

func (uc *OrderLifecycleUseCase) GetHistory(ctx context.Context, orderID int64) ([]domain.OrderStatusHistory, error) {
	if _, err := uc.orders.FindByID(ctx, orderID); err != nil {
		return nil, err
	}
	return uc.history.ListByOrderID(ctx, orderID)
}

// GetValidNextStates returns the order's current status and the statuses it
// may move to.
func (uc *OrderLifecycleUseCase) GetValidNextStates(ctx context.Context, orderID int64) (domain.OrderStatus, []domain.OrderStatus, error) {
	order, err := uc.orders.FindByID(ctx, orderID)
	if err != nil {
		return "", nil, err
	}
	return order.Status, service.ValidNextStates(order.Type, order.Status), nil
}

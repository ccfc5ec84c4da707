package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/errors"
)

type OrderRepository interface {
	FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.Order, error)
	UpdateStatus(ctx context.Context, tx *sql.Tx, order *domain.Order) error
}

type OrderItemReader interface {
	FindByOrderID(ctx context.Context, tx *sql.Tx, orderID int64) ([]domain.OrderItem, error)
}

type StatusHistoryWriter interface {
	Insert(ctx context.Context, tx *sql.Tx, entry domain.OrderStatusHistory) (int64, error)
}

type StockReleaser interface {
	Release(ctx context.Context, tx *sql.Tx, items []domain.ReservationItem) error
}

// StatusChange describes one applied transition.
type StatusChange struct {
	Order *domain.Order
	From  domain.OrderStatus
	To    domain.OrderStatus
}

// StateMachine is the only writer of an order's status. Every change it makes
// appends exactly one history row in the same transaction.
type StateMachine struct {
	orders   OrderRepository
	items    OrderItemReader
	history  StatusHistoryWriter
	releaser StockReleaser
	logger   *zap.Logger
	now      func() time.Time
}

func NewStateMachine(
	orders OrderRepository,
	items OrderItemReader,
	history StatusHistoryWriter,
	releaser StockReleaser,
	logger *zap.Logger,
) *StateMachine {
	return &StateMachine{
		orders:   orders,
		items:    items,
		history:  history,
		releaser: releaser,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ValidNextStates is the transition table lookup for a given order type.
func ValidNextStates(orderType domain.OrderType, current domain.OrderStatus) []domain.OrderStatus {
	return domain.AllowedTransitions(orderType, current)
}

// Transition locks the order and moves it to `to` if the order type's table
// allows it. Cancelling releases the stock reserved by every line item. On
// rejection nothing is written.
func (sm *StateMachine) Transition(ctx context.Context, tx *sql.Tx, orderID int64, to domain.OrderStatus, reason *string, actor *int64) (*StatusChange, error) {
	order, err := sm.orders.FindByIDForUpdate(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}

	from := order.Status
	if !domain.CanTransition(order.Type, from, to) {
		sm.logger.Info("transition rejected",
			zap.Int64("orderId", orderID),
			zap.String("from", string(from)),
			zap.String("to", string(to)),
		)
		return nil, errors.NewInvalidTransitionError(string(from), string(to),
			fmt.Sprintf("%s orders cannot move from %s to %s", order.Type, from, to))
	}

	if to == domain.StatusCancelled {
		if err := sm.releaseReservations(ctx, tx, order); err != nil {
			return nil, err
		}
	}

	if err := sm.apply(ctx, tx, order, to, reason, actor); err != nil {
		return nil, err
	}

	return &StatusChange{Order: order, From: from, To: to}, nil
}

// RecordApproval writes the audit trail for a B2B order that was inserted
// directly as APPROVED: one PENDING to APPROVED history row plus the approval
// fields.
func (sm *StateMachine) RecordApproval(ctx context.Context, tx *sql.Tx, order *domain.Order, actor *int64) error {
	if order.Type != domain.OrderTypeB2B || order.Status != domain.StatusApproved {
		return errors.NewInvalidTransitionError(string(domain.StatusPending), string(domain.StatusApproved),
			"only new B2B orders are auto-approved")
	}

	now := sm.now()
	approval := domain.ApprovalStatusApproved
	order.ApprovalStatus = &approval
	order.ApprovedBy = actor
	order.StampMilestone(domain.StatusApproved, now)

	reason := "auto-approved on creation"
	return sm.record(ctx, tx, order, domain.StatusPending, domain.StatusApproved, &reason, actor, now)
}

// RecordRefund moves a locked DELIVERED order to CANCELLED outside the
// transition table. Stock and ledger effects belong to the caller.
func (sm *StateMachine) RecordRefund(ctx context.Context, tx *sql.Tx, order *domain.Order, reason *string, actor *int64) (*StatusChange, error) {
	from := order.Status
	if from != domain.StatusDelivered {
		return nil, errors.NewInvalidTransitionError(string(from), string(domain.StatusCancelled),
			"refunds are only allowed for delivered orders")
	}

	if err := sm.apply(ctx, tx, order, domain.StatusCancelled, reason, actor); err != nil {
		return nil, err
	}

	return &StatusChange{Order: order, From: from, To: domain.StatusCancelled}, nil
}

func (sm *StateMachine) releaseReservations(ctx context.Context, tx *sql.Tx, order *domain.Order) error {
	items, err := sm.items.FindByOrderID(ctx, tx, order.ID)
	if err != nil {
		return err
	}

	reserved := make([]domain.OrderItem, 0, len(items))
	for _, item := range items {
		if item.StockReserved {
			reserved = append(reserved, item)
		}
	}

	if err := sm.releaser.Release(ctx, tx, domain.ReservationItemsFromOrderItems(reserved)); err != nil {
		return err
	}

	sm.logger.Info("reservations released",
		zap.Int64("orderId", order.ID),
		zap.Int("items", len(reserved)),
	)
	return nil
}

func (sm *StateMachine) apply(ctx context.Context, tx *sql.Tx, order *domain.Order, to domain.OrderStatus, reason *string, actor *int64) error {
	from := order.Status
	now := sm.now()

	order.Status = to
	order.StampMilestone(to, now)

	return sm.record(ctx, tx, order, from, to, reason, actor, now)
}

func (sm *StateMachine) record(ctx context.Context, tx *sql.Tx, order *domain.Order, from, to domain.OrderStatus, reason *string, actor *int64, now time.Time) error {
	order.UpdatedAt = now

	if err := sm.orders.UpdateStatus(ctx, tx, order); err != nil {
		return err
	}

	_, err := sm.history.Insert(ctx, tx, domain.OrderStatusHistory{
		OrderID:    order.ID,
		FromStatus: from,
		ToStatus:   to,
		Reason:     reason,
		ChangedBy:  actor,
		CreatedAt:  now,
	})
	if err != nil {
		return err
	}

	sm.logger.Info("order status changed",
		zap.Int64("orderId", order.ID),
		zap.String("orderNumber", order.OrderNumber),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)
	return nil
}

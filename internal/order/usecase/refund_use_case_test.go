package usecase

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/dto"
	apperrors "storefront/internal/errors"
	"storefront/internal/order/service"
)

type refundFixture struct {
	order       *domain.Order
	restocked   [][]domain.ReservationItem
	adjustments []domain.BalanceAdjustment
	refunds     int
	gateway     *recordingGateway
	events      *recordingPublisher
	metrics     *recordingMetrics
	ledger      *mockLedger
}

func newRefundFixture(order *domain.Order) *refundFixture {
	f := &refundFixture{
		order:   order,
		gateway: &recordingGateway{},
		events:  &recordingPublisher{},
		metrics: &recordingMetrics{},
	}
	f.ledger = &mockLedger{
		AdjustBalanceFunc: func(ctx context.Context, tx *sql.Tx, adj domain.BalanceAdjustment) (decimal.Decimal, error) {
			f.adjustments = append(f.adjustments, adj)
			return decimal.Zero, nil
		},
	}
	return f
}

func (f *refundFixture) useCase() *RefundUseCase {
	orders := &mockOrderRepository{
		FindByIDForUpdateFunc: func(ctx context.Context, tx *sql.Tx, id int64) (*domain.Order, error) {
			if f.order == nil || f.order.ID != id {
				return nil, apperrors.NewEntityNotFoundError("order", id)
			}
			return f.order, nil
		},
	}
	items := &mockOrderItemRepository{
		FindByOrderIDFunc: func(ctx context.Context, tx *sql.Tx, orderID int64) ([]domain.OrderItem, error) {
			return []domain.OrderItem{{VariantID: 9, Quantity: 2}, {VariantID: 3, Quantity: 1}}, nil
		},
	}
	stock := &mockStockRestocker{
		RestockFunc: func(ctx context.Context, tx *sql.Tx, items []domain.ReservationItem) error {
			f.restocked = append(f.restocked, items)
			return nil
		},
	}
	sm := &mockStateMachine{
		RecordRefundFunc: func(ctx context.Context, tx *sql.Tx, order *domain.Order, reason *string, actor *int64) (*service.StatusChange, error) {
			f.refunds++
			from := order.Status
			order.Status = domain.StatusCancelled
			return &service.StatusChange{Order: order, From: from, To: domain.StatusCancelled}, nil
		},
	}

	uc := NewRefundUseCase(&mockTransactor{}, sm, orders, items, stock, f.ledger, f.gateway, f.events, f.metrics, zap.NewNop(), 3)
	uc.now = func() time.Time { return testNow }
	return uc
}

func deliveredOrder(orderType domain.OrderType) *domain.Order {
	o := &domain.Order{
		ID:          21,
		OrderNumber: "ORD-2026-000021",
		Type:        orderType,
		Status:      domain.StatusDelivered,
		Total:       decimal.RequireFromString("300.00"),
		Currency:    "EUR",
	}
	if orderType == domain.OrderTypeB2B {
		companyID := int64(3)
		o.CompanyID = &companyID
	}
	return o
}

func TestRefund_B2C(t *testing.T) {
	f := newRefundFixture(deliveredOrder(domain.OrderTypeB2C))

	order, err := f.useCase().Refund(context.Background(), dto.RefundInput{
		OrderID: 21, Amount: decimal.RequireFromString("120.00"), Reason: "damaged",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, order.Status)
	assert.Equal(t, 1, f.refunds)
	require.Len(t, f.restocked, 1)
	assert.Equal(t, []domain.ReservationItem{{VariantID: 9, Quantity: 2}, {VariantID: 3, Quantity: 1}}, f.restocked[0])
	assert.Empty(t, f.adjustments)

	require.Len(t, f.gateway.refunds, 1)
	assert.Equal(t, "ORD-2026-000021", f.gateway.refunds[0].OrderNumber)
	assert.True(t, decimal.RequireFromString("120.00").Equal(f.gateway.refunds[0].Amount))

	require.Len(t, f.events.events, 1)
	assert.Equal(t, domain.EventOrderRefunded, f.events.events[0].Type)
	assert.Equal(t, []string{"B2C"}, f.metrics.refunded)
}

func TestRefund_B2BCreditsCompany(t *testing.T) {
	f := newRefundFixture(deliveredOrder(domain.OrderTypeB2B))

	_, err := f.useCase().Refund(context.Background(), dto.RefundInput{
		OrderID: 21, Amount: decimal.RequireFromString("300.00"), Reason: "returned",
	})

	require.NoError(t, err)
	require.Len(t, f.adjustments, 1)
	adj := f.adjustments[0]
	assert.Equal(t, int64(3), adj.CompanyID)
	assert.Equal(t, domain.CreditTransactionCredit, adj.Kind)
	assert.True(t, decimal.RequireFromString("300.00").Equal(adj.Amount))
	assert.Contains(t, adj.Description, "ORD-2026-000021")
}

func TestRefund_LedgerFailureFailsRefund(t *testing.T) {
	f := newRefundFixture(deliveredOrder(domain.OrderTypeB2B))
	f.ledger.AdjustBalanceFunc = func(ctx context.Context, tx *sql.Tx, adj domain.BalanceAdjustment) (decimal.Decimal, error) {
		return decimal.Zero, apperrors.NewEntityNotFoundError("company", adj.CompanyID)
	}

	_, err := f.useCase().Refund(context.Background(), dto.RefundInput{
		OrderID: 21, Amount: decimal.RequireFromString("10.00"), Reason: "returned",
	})

	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
	assert.Empty(t, f.gateway.refunds)
	assert.Empty(t, f.events.events)
}

func TestRefund_OnlyFromDelivered(t *testing.T) {
	order := deliveredOrder(domain.OrderTypeB2C)
	order.Status = domain.StatusShipped
	f := newRefundFixture(order)

	_, err := f.useCase().Refund(context.Background(), dto.RefundInput{
		OrderID: 21, Amount: decimal.RequireFromString("10.00"), Reason: "x",
	})

	ite, ok := apperrors.IsInvalidTransitionError(err)
	require.True(t, ok)
	assert.Equal(t, "SHIPPED", ite.From)
	assert.Empty(t, f.restocked)
	assert.Zero(t, f.refunds)
}

func TestRefund_AmountValidation(t *testing.T) {
	tests := []struct {
		name   string
		amount string
	}{
		{"zero", "0"},
		{"negative", "-5.00"},
		{"above total", "300.01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRefundFixture(deliveredOrder(domain.OrderTypeB2C))

			_, err := f.useCase().Refund(context.Background(), dto.RefundInput{
				OrderID: 21, Amount: decimal.RequireFromString(tt.amount), Reason: "x",
			})

			_, ok := apperrors.IsValidationError(err)
			assert.True(t, ok)
			assert.Empty(t, f.restocked)
		})
	}
}

func TestRefund_GatewayFailureDoesNotUndoRefund(t *testing.T) {
	f := newRefundFixture(deliveredOrder(domain.OrderTypeB2C))
	f.gateway.err = errors.New("provider timeout")

	order, err := f.useCase().Refund(context.Background(), dto.RefundInput{
		OrderID: 21, Amount: decimal.RequireFromString("50.00"), Reason: "x",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, order.Status)
	assert.Len(t, f.events.events, 1)
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderEventType string

const (
	EventOrderCreated       OrderEventType = "OrderCreated"
	EventOrderStatusChanged OrderEventType = "OrderStatusChanged"
	EventOrderRefunded      OrderEventType = "OrderRefunded"
)

// OrderEvent is published after the transaction that produced it commits.
type OrderEvent struct {
	Type           OrderEventType  `json:"type"`
	OrderID        int64           `json:"orderId"`
	OrderNumber    string          `json:"orderNumber"`
	OrderType      OrderType       `json:"orderType"`
	Status         OrderStatus     `json:"status"`
	PreviousStatus OrderStatus     `json:"previousStatus,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	OccurredAt     time.Time       `json:"occurredAt"`
}

func NewOrderEvent(eventType OrderEventType, order *Order, previous OrderStatus, amount decimal.Decimal, at time.Time) OrderEvent {
	return OrderEvent{
		Type:           eventType,
		OrderID:        order.ID,
		OrderNumber:    order.OrderNumber,
		OrderType:      order.Type,
		Status:         order.Status,
		PreviousStatus: previous,
		Amount:         amount,
		Currency:       order.Currency,
		OccurredAt:     at,
	}
}

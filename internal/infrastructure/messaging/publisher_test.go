package messaging

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
)

func TestNewMessage(t *testing.T) {
	at := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	event := domain.OrderEvent{
		Type:        domain.EventOrderCreated,
		OrderID:     812,
		OrderNumber: "ORD-2026-000812",
		OrderType:   domain.OrderTypeB2C,
		Status:      domain.StatusPending,
		Amount:      decimal.RequireFromString("128.70"),
		Currency:    "EUR",
		OccurredAt:  at,
	}

	msg, err := newMessage(event)
	require.NoError(t, err)

	assert.Equal(t, "812", string(msg.Key))
	assert.Equal(t, at, msg.Time)
	assert.Equal(t, "OrderCreated", NewHeaderCarrier(&msg).Get("event-type"))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "ORD-2026-000812", decoded["orderNumber"])
	assert.Equal(t, "128.7", decoded["amount"])
	assert.NotContains(t, decoded, "previousStatus")
}

func TestHeaderCarrier(t *testing.T) {
	msg := kafka.Message{}
	carrier := NewHeaderCarrier(&msg)

	carrier.Set("traceparent", "a")
	carrier.Set("tracestate", "b")
	carrier.Set("traceparent", "c")

	assert.Equal(t, "c", carrier.Get("traceparent"))
	assert.Equal(t, "", carrier.Get("missing"))
	assert.Equal(t, []string{"traceparent", "tracestate"}, carrier.Keys())
	assert.Len(t, msg.Headers, 2)
}

func TestNopPublisher(t *testing.T) {
	var p NopPublisher
	assert.NoError(t, p.Publish(context.Background(), domain.OrderEvent{}))
	assert.NoError(t, p.Close())
}

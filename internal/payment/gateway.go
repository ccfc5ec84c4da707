package payment

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type RefundRequest struct {
	OrderID     int64
	OrderNumber string
	Amount      decimal.Decimal
	Currency    string
	Reason      string
}

// StubGateway accepts every refund and only logs it. No payment provider is
// integrated.
type StubGateway struct {
	logger *zap.Logger
}

func NewStubGateway(logger *zap.Logger) *StubGateway {
	return &StubGateway{logger: logger}
}

func (g *StubGateway) Refund(ctx context.Context, req RefundRequest) error {
	g.logger.Info("refund issued",
		zap.Int64("orderId", req.OrderID),
		zap.String("orderNumber", req.OrderNumber),
		zap.String("amount", req.Amount.StringFixed(2)),
		zap.String("currency", req.Currency),
	)
	return nil
}

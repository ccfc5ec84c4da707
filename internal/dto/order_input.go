package dto

import (
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

// CreateB2COrderInput places a consumer order. With no Items the customer's
// active cart is checked out.
type CreateB2COrderInput struct {
	CustomerID        int64
	Items             []domain.OrderLine
	BillingAddressID  int64
	ShippingAddressID int64
	CouponCode        *string
	Notes             *string
	IdempotencyKey    string
}

type CreateB2BOrderInput struct {
	CustomerID          int64
	CompanyID           int64
	Items               []domain.OrderLine
	BillingAddressID    int64
	ShippingAddressID   int64
	PurchaseOrderNumber *string
	Notes               *string
	IdempotencyKey      string
}

type TransitionInput struct {
	OrderID int64
	To      domain.OrderStatus
	Reason  *string
	ActorID *int64
}

type RefundInput struct {
	OrderID int64
	Amount  decimal.Decimal
	Reason  string
	ActorID *int64
}

// OrderResult is a created or loaded order. Replayed marks an order returned
// for a repeated idempotency key instead of being created again.
type OrderResult struct {
	Order    *domain.Order
	Replayed bool
}

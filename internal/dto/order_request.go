package dto

import "github.com/shopspring/decimal"

type OrderItemRequest struct {
	VariantID int64            `json:"variantId"`
	Quantity  int              `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unitPrice"`
}

type CreateB2COrderRequest struct {
	CustomerID        int64              `json:"customerId"`
	Items             []OrderItemRequest `json:"items,omitempty"`
	BillingAddressID  int64              `json:"billingAddressId"`
	ShippingAddressID int64              `json:"shippingAddressId"`
	CouponCode        *string            `json:"couponCode,omitempty"`
	Notes             *string            `json:"notes,omitempty"`
}

type CreateB2BOrderRequest struct {
	CustomerID          int64              `json:"customerId"`
	CompanyID           int64              `json:"companyId"`
	Items               []OrderItemRequest `json:"items"`
	BillingAddressID    int64              `json:"billingAddressId"`
	ShippingAddressID   int64              `json:"shippingAddressId"`
	PurchaseOrderNumber *string            `json:"purchaseOrderNumber,omitempty"`
	Notes               *string            `json:"notes,omitempty"`
}

type TransitionRequest struct {
	Status  string  `json:"status"`
	Reason  *string `json:"reason,omitempty"`
	ActorID *int64  `json:"actorId,omitempty"`
}

type RefundRequest struct {
	Amount  decimal.Decimal `json:"amount"`
	Reason  string          `json:"reason"`
	ActorID *int64          `json:"actorId,omitempty"`
}

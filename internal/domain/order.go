package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderType string

const (
	OrderTypeB2C OrderType = "B2C"
	OrderTypeB2B OrderType = "B2B"
)

func (t OrderType) Valid() bool {
	return t == OrderTypeB2C || t == OrderTypeB2B
}

const (
	ApprovalStatusApproved = "APPROVED"
)

type Order struct {
	ID                  int64
	OrderNumber         string
	CustomerID          int64
	CompanyID           *int64
	Type                OrderType
	Status              OrderStatus
	Subtotal            decimal.Decimal
	DiscountAmount      decimal.Decimal
	TaxAmount           decimal.Decimal
	ShippingAmount      decimal.Decimal
	Total               decimal.Decimal
	Currency            string
	BillingAddressID    int64
	ShippingAddressID   int64
	CouponCode          *string
	Notes               *string
	ApprovedDate        *time.Time
	ProcessedDate       *time.Time
	ShippedDate         *time.Time
	DeliveredDate       *time.Time
	CancelledDate       *time.Time
	PaymentTermDays     *int
	DueDate             *time.Time
	ApprovalStatus      *string
	ApprovedBy          *int64
	PurchaseOrderNumber *string
	CreatedAt           time.Time
	UpdatedAt           time.Time
	Items               []OrderItem
}

// ComputeTotal returns subtotal - discount + tax + shipping.
func (o Order) ComputeTotal() decimal.Decimal {
	return o.Subtotal.Sub(o.DiscountAmount).Add(o.TaxAmount).Add(o.ShippingAmount)
}

func (o Order) IsTotalConsistent() bool {
	return o.Total.Equal(o.ComputeTotal())
}

// StampMilestone sets the timestamp that belongs to status. Statuses without
// a milestone column are ignored.
func (o *Order) StampMilestone(status OrderStatus, at time.Time) {
	switch status {
	case StatusApproved:
		o.ApprovedDate = &at
	case StatusProcessing:
		o.ProcessedDate = &at
	case StatusShipped:
		o.ShippedDate = &at
	case StatusDelivered:
		o.DeliveredDate = &at
	case StatusCancelled:
		o.CancelledDate = &at
	}
}

type OrderItem struct {
	ID             int64
	OrderID        int64
	VariantID      int64
	ProductName    string
	VariantName    string
	SKU            string
	Quantity       int
	UnitPrice      decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	Total          decimal.Decimal
	StockReserved  bool
	CreatedAt      time.Time
}

// LineSubtotal is unit price times quantity, before tax and discount.
func (i OrderItem) LineSubtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type OrderStatusHistory struct {
	ID         int64
	OrderID    int64
	FromStatus OrderStatus
	ToStatus   OrderStatus
	Reason     *string
	ChangedBy  *int64
	CreatedAt  time.Time
}

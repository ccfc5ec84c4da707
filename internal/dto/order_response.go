package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

type OrderResponse struct {
	TraceID   string    `json:"traceId"`
	Order     OrderDTO  `json:"order"`
	Replayed  bool      `json:"replayed,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type OrderDTO struct {
	ID                  int64           `json:"id"`
	OrderNumber         string          `json:"orderNumber"`
	CustomerID          int64           `json:"customerId"`
	CompanyID           *int64          `json:"companyId,omitempty"`
	Type                string          `json:"orderType"`
	Status              string          `json:"status"`
	Subtotal            decimal.Decimal `json:"subtotal"`
	DiscountAmount      decimal.Decimal `json:"discountAmount"`
	TaxAmount           decimal.Decimal `json:"taxAmount"`
	ShippingAmount      decimal.Decimal `json:"shippingAmount"`
	Total               decimal.Decimal `json:"total"`
	Currency            string          `json:"currency"`
	BillingAddressID    int64           `json:"billingAddressId"`
	ShippingAddressID   int64           `json:"shippingAddressId"`
	CouponCode          *string         `json:"couponCode,omitempty"`
	Notes               *string         `json:"notes,omitempty"`
	ApprovedDate        *time.Time      `json:"approvedDate,omitempty"`
	ProcessedDate       *time.Time      `json:"processedDate,omitempty"`
	ShippedDate         *time.Time      `json:"shippedDate,omitempty"`
	DeliveredDate       *time.Time      `json:"deliveredDate,omitempty"`
	CancelledDate       *time.Time      `json:"cancelledDate,omitempty"`
	PaymentTermDays     *int            `json:"paymentTermDays,omitempty"`
	DueDate             *time.Time      `json:"dueDate,omitempty"`
	ApprovalStatus      *string         `json:"approvalStatus,omitempty"`
	ApprovedBy          *int64          `json:"approvedBy,omitempty"`
	PurchaseOrderNumber *string         `json:"purchaseOrderNumber,omitempty"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
	Items               []OrderItemDTO  `json:"items"`
}

type OrderItemDTO struct {
	ID          int64           `json:"id"`
	VariantID   int64           `json:"variantId"`
	ProductName string          `json:"productName"`
	VariantName string          `json:"variantName"`
	SKU         string          `json:"sku"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	TaxAmount   decimal.Decimal `json:"taxAmount"`
	Total       decimal.Decimal `json:"total"`
}

type StatusHistoryDTO struct {
	FromStatus string    `json:"fromStatus"`
	ToStatus   string    `json:"toStatus"`
	Reason     *string   `json:"reason,omitempty"`
	ChangedBy  *int64    `json:"changedBy,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

type StatusHistoryResponse struct {
	TraceID string             `json:"traceId"`
	OrderID int64              `json:"orderId"`
	History []StatusHistoryDTO `json:"history"`
}

type NextStatesResponse struct {
	TraceID    string   `json:"traceId"`
	OrderID    int64    `json:"orderId"`
	Status     string   `json:"status"`
	NextStates []string `json:"nextStates"`
}

type RefundResponse struct {
	TraceID        string          `json:"traceId"`
	Order          OrderDTO        `json:"order"`
	RefundedAmount decimal.Decimal `json:"refundedAmount"`
	Timestamp      time.Time       `json:"timestamp"`
}

func NewOrderDTO(o *domain.Order) OrderDTO {
	items := make([]OrderItemDTO, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemDTO{
			ID:          it.ID,
			VariantID:   it.VariantID,
			ProductName: it.ProductName,
			VariantName: it.VariantName,
			SKU:         it.SKU,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TaxAmount:   it.TaxAmount,
			Total:       it.Total,
		})
	}

	return OrderDTO{
		ID:                  o.ID,
		OrderNumber:         o.OrderNumber,
		CustomerID:          o.CustomerID,
		CompanyID:           o.CompanyID,
		Type:                string(o.Type),
		Status:              string(o.Status),
		Subtotal:            o.Subtotal,
		DiscountAmount:      o.DiscountAmount,
		TaxAmount:           o.TaxAmount,
		ShippingAmount:      o.ShippingAmount,
		Total:               o.Total,
		Currency:            o.Currency,
		BillingAddressID:    o.BillingAddressID,
		ShippingAddressID:   o.ShippingAddressID,
		CouponCode:          o.CouponCode,
		Notes:               o.Notes,
		ApprovedDate:        o.ApprovedDate,
		ProcessedDate:       o.ProcessedDate,
		ShippedDate:         o.ShippedDate,
		DeliveredDate:       o.DeliveredDate,
		CancelledDate:       o.CancelledDate,
		PaymentTermDays:     o.PaymentTermDays,
		DueDate:             o.DueDate,
		ApprovalStatus:      o.ApprovalStatus,
		ApprovedBy:          o.ApprovedBy,
		PurchaseOrderNumber: o.PurchaseOrderNumber,
		CreatedAt:           o.CreatedAt,
		UpdatedAt:           o.UpdatedAt,
		Items:               items,
	}
}

func NewStatusHistoryDTOs(entries []domain.OrderStatusHistory) []StatusHistoryDTO {
	out := make([]StatusHistoryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, StatusHistoryDTO{
			FromStatus: string(e.FromStatus),
			ToStatus:   string(e.ToStatus),
			Reason:     e.Reason,
			ChangedBy:  e.ChangedBy,
			CreatedAt:  e.CreatedAt,
		})
	}
	return out
}

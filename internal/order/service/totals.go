package service

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

// TotalsCalculator prices an order from the locked variant snapshots. Tax is
// charged per line and rounded to cents; shipping is a flat fee on B2C orders.
// Discounts are always zero.
type TotalsCalculator struct {
	taxRate     decimal.Decimal
	shippingFee decimal.Decimal
}

func NewTotalsCalculator(taxRate, shippingFee decimal.Decimal) *TotalsCalculator {
	return &TotalsCalculator{
		taxRate:     taxRate,
		shippingFee: shippingFee,
	}
}

// Apply fills order.Items and the order's amounts. Every line must have a
// matching variant.
func (c *TotalsCalculator) Apply(order *domain.Order, lines []domain.OrderLine, variants []domain.ProductVariant, now time.Time) error {
	byID := make(map[int64]domain.ProductVariant, len(variants))
	for _, v := range variants {
		byID[v.ID] = v
	}

	subtotal := decimal.Zero
	tax := decimal.Zero
	items := make([]domain.OrderItem, 0, len(lines))

	for _, l := range lines {
		variant, ok := byID[l.VariantID]
		if !ok {
			return fmt.Errorf("no reserved variant for line %d", l.VariantID)
		}

		item := domain.OrderItem{
			VariantID:      l.VariantID,
			ProductName:    variant.ProductName,
			VariantName:    variant.Name,
			SKU:            variant.SKU,
			Quantity:       l.Quantity,
			UnitPrice:      domain.RoundMoney(variant.CurrentPrice()),
			DiscountAmount: decimal.Zero,
			StockReserved:  true,
			CreatedAt:      now,
		}
		lineSubtotal := item.LineSubtotal()
		item.TaxAmount = domain.RoundMoney(lineSubtotal.Mul(c.taxRate))
		item.Total = lineSubtotal.Add(item.TaxAmount)

		subtotal = subtotal.Add(lineSubtotal)
		tax = tax.Add(item.TaxAmount)
		items = append(items, item)
	}

	shipping := decimal.Zero
	if order.Type == domain.OrderTypeB2C {
		shipping = c.shippingFee
	}

	order.Items = items
	order.Subtotal = subtotal
	order.DiscountAmount = decimal.Zero
	order.TaxAmount = tax
	order.ShippingAmount = shipping
	order.Total = order.ComputeTotal()
	return nil
}

package domain

import "github.com/shopspring/decimal"

// OrderLine is one requested (variant, quantity) with the unit price the buyer
// expects to pay.
type OrderLine struct {
	VariantID int64
	Quantity  int
	UnitPrice decimal.Decimal
}

func (l OrderLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// LinesFromCart derives order lines from a cart, each at the price the
// customer saw.
func LinesFromCart(cart *Cart) []OrderLine {
	if cart == nil {
		return nil
	}
	lines := make([]OrderLine, 0, len(cart.Items))
	for _, item := range cart.Items {
		lines = append(lines, OrderLine{
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
			UnitPrice: item.ExpectedPrice(),
		})
	}
	return lines
}

func LinesSubtotal(lines []OrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func ReservationItemsFromLines(lines []OrderLine) []ReservationItem {
	items := make([]ReservationItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, ReservationItem{VariantID: l.VariantID, Quantity: l.Quantity})
	}
	return items
}

func ReservationItemsFromOrderItems(orderItems []OrderItem) []ReservationItem {
	items := make([]ReservationItem, 0, len(orderItems))
	for _, oi := range orderItems {
		items = append(items, ReservationItem{VariantID: oi.VariantID, Quantity: oi.Quantity})
	}
	return items
}

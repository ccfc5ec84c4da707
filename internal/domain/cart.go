package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Customer struct {
	ID        int64
	Email     string
	FirstName string
	LastName  string
	IsActive  bool
	CreatedAt time.Time
}

type Cart struct {
	ID         int64
	CustomerID int64
	Items      []CartItem
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

// CartItem carries the price captured when the item was added to the cart
// next to the catalog price at load time.
type CartItem struct {
	ID           int64
	CartID       int64
	VariantID    int64
	Quantity     int
	UnitPrice    decimal.NullDecimal
	CurrentPrice decimal.Decimal
}

// ExpectedPrice is the price the customer saw: the captured price when
// present, the current catalog price otherwise.
func (i CartItem) ExpectedPrice() decimal.Decimal {
	if i.UnitPrice.Valid {
		return i.UnitPrice.Decimal
	}
	return i.CurrentPrice
}

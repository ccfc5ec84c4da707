package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProductVariant struct {
	ID               int64
	ProductID        int64
	ProductName      string
	Name             string
	SKU              string
	Price            decimal.Decimal
	SalePrice        decimal.NullDecimal
	StockQuantity    int
	ReservedQuantity int
	IsActive         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// CurrentPrice is the sale price when one is set, otherwise the base price.
func (v ProductVariant) CurrentPrice() decimal.Decimal {
	if v.SalePrice.Valid {
		return v.SalePrice.Decimal
	}
	return v.Price
}

func (v ProductVariant) AvailableQuantity() int {
	available := v.StockQuantity - v.ReservedQuantity
	if available < 0 {
		return 0
	}
	return available
}

// ReservationItem is one (variant, quantity) pair handed to the reservation engine.
type ReservationItem struct {
	VariantID int64
	Quantity  int
}

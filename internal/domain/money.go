package domain

import "github.com/shopspring/decimal"

// MinorUnit is the smallest currency step (one cent).
var MinorUnit = decimal.New(1, -2)

func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// PricesDiffer reports whether two prices are at least one minor unit apart.
func PricesDiffer(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().GreaterThanOrEqual(MinorUnit)
}

package product

import "github.com/shopspring/decimal"

type SearchVariantsRequest struct {
	VariantIDs []int64 `json:"variantIds"`
}

// SearchVariantsResponse lists orderable variants with the price a cart line
// would be checked against at checkout.
type SearchVariantsResponse struct {
	Variants []VariantDTO `json:"variants"`
	Inactive []int64      `json:"inactive"`
	NotFound []int64      `json:"notFound"`
}

type VariantDTO struct {
	ID                int64               `json:"id"`
	ProductID         int64               `json:"productId"`
	ProductName       string              `json:"productName"`
	Name              string              `json:"name"`
	SKU               string              `json:"sku"`
	Price             decimal.Decimal     `json:"price"`
	SalePrice         decimal.NullDecimal `json:"salePrice"`
	CurrentPrice      decimal.Decimal     `json:"currentPrice"`
	AvailableQuantity int                 `json:"availableQuantity"`
	InStock           bool                `json:"inStock"`
}

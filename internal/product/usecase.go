package product

import (
	"context"
)

type searchUseCase struct {
	catalog Catalog
}

func NewSearchUseCase(catalog Catalog) SearchUseCase {
	return &searchUseCase{catalog: catalog}
}

func (uc *searchUseCase) SearchVariants(ctx context.Context, req SearchVariantsRequest) (*SearchVariantsResponse, error) {
	lookup, err := uc.catalog.Lookup(ctx, req.VariantIDs)
	if err != nil {
		return nil, err
	}

	variants := make([]VariantDTO, 0, len(lookup.Orderable))
	for _, v := range lookup.Orderable {
		variants = append(variants, VariantDTO{
			ID:                v.ID,
			ProductID:         v.ProductID,
			ProductName:       v.ProductName,
			Name:              v.Name,
			SKU:               v.SKU,
			Price:             v.Price,
			SalePrice:         v.SalePrice,
			CurrentPrice:      v.CurrentPrice(),
			AvailableQuantity: v.AvailableQuantity(),
			InStock:           v.AvailableQuantity() > 0,
		})
	}

	return &SearchVariantsResponse{
		Variants: variants,
		Inactive: lookup.Inactive,
		NotFound: lookup.Missing,
	}, nil
}

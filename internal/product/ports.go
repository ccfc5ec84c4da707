package product

import (
	"context"

	"storefront/internal/domain"
)

type SearchUseCase interface {
	SearchVariants(ctx context.Context, req SearchVariantsRequest) (*SearchVariantsResponse, error)
}

// Catalog resolves storefront lookups against the variant store.
type Catalog interface {
	Lookup(ctx context.Context, ids []int64) (*Lookup, error)
}

type Repository interface {
	FindVariantsByIDs(ctx context.Context, ids []int64) ([]domain.ProductVariant, error)
}

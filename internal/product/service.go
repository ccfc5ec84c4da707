package product

import (
	"context"

	"storefront/internal/domain"
)

// Lookup splits a set of requested variant ids into the ones a customer can
// order, the ones that exist but are switched off, and the unknown ones. Each
// list follows the order of the request.
type Lookup struct {
	Orderable []domain.ProductVariant
	Inactive  []int64
	Missing   []int64
}

type catalogService struct {
	repo Repository
}

func NewCatalog(repo Repository) Catalog {
	return &catalogService{repo: repo}
}

func (s *catalogService) Lookup(ctx context.Context, ids []int64) (*Lookup, error) {
	ids = uniqueIDs(ids)

	variants, err := s.repo.FindVariantsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]domain.ProductVariant, len(variants))
	for _, v := range variants {
		byID[v.ID] = v
	}

	result := &Lookup{
		Orderable: make([]domain.ProductVariant, 0, len(variants)),
		Inactive:  []int64{},
		Missing:   []int64{},
	}
	for _, id := range ids {
		v, ok := byID[id]
		switch {
		case !ok:
			result.Missing = append(result.Missing, id)
		case !v.IsActive:
			result.Inactive = append(result.Inactive, id)
		default:
			result.Orderable = append(result.Orderable, v)
		}
	}

	return result, nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

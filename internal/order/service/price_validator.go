package service

import (
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/errors"
)

type PriceValidator struct {
	logger *zap.Logger
}

func NewPriceValidator(logger *zap.Logger) *PriceValidator {
	return &PriceValidator{logger: logger}
}

// Validate compares every line's expected unit price with the current price
// of the variants locked by the reservation, so the check and the stock
// decision see the same rows. Differences below one cent are ignored. All
// mismatches are collected into a single PriceChangedError.
func (v *PriceValidator) Validate(lines []domain.OrderLine, locked []domain.ProductVariant) error {
	if len(lines) == 0 {
		return nil
	}

	byID := make(map[int64]domain.ProductVariant, len(locked))
	for _, variant := range locked {
		byID[variant.ID] = variant
	}

	var mismatches []errors.PriceMismatch
	for _, l := range lines {
		variant, ok := byID[l.VariantID]
		if !ok {
			return errors.NewEntityNotFoundError("variant", l.VariantID)
		}

		current := variant.CurrentPrice()
		if domain.PricesDiffer(l.UnitPrice, current) {
			mismatches = append(mismatches, errors.PriceMismatch{
				VariantID:     l.VariantID,
				ProductName:   variant.ProductName,
				ExpectedPrice: l.UnitPrice,
				CurrentPrice:  current,
			})
		}
	}

	if len(mismatches) > 0 {
		v.logger.Info("price drift detected", zap.Int("mismatches", len(mismatches)))
		return errors.NewPriceChangedError(mismatches)
	}

	return nil
}

package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/errors"
)

const RuleInvalidQuantity = "INVALID_QUANTITY"

type VariantRepository interface {
	FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.ProductVariant, error)
	IncrementReserved(ctx context.Context, tx *sql.Tx, id int64, quantity int) error
	DecrementReserved(ctx context.Context, tx *sql.Tx, id int64, quantity int) error
	IncrementStock(ctx context.Context, tx *sql.Tx, id int64, quantity int) error
}

// ReservationService is the only writer of a variant's stock and reserved
// quantities. Every method runs inside the caller's transaction and locks each
// variant row before touching it, in ascending id order.
type ReservationService struct {
	variantRepo VariantRepository
	logger      *zap.Logger
}

func NewReservationService(variantRepo VariantRepository, logger *zap.Logger) *ReservationService {
	return &ReservationService{
		variantRepo: variantRepo,
		logger:      logger,
	}
}

// Reserve holds stock for every item or fails on the first one that cannot be
// satisfied. Non-positive quantities are rejected before any row is locked. On failure nothing is undone here: the caller rolls back tx.
// The returned variants reflect the post-reservation state.
func (s *ReservationService) Reserve(ctx context.Context, tx *sql.Tx, items []domain.ReservationItem) ([]domain.ProductVariant, error) {
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, errors.NewBusinessRuleError(RuleInvalidQuantity,
				fmt.Sprintf("quantity for variant %d must be positive, got %d", item.VariantID, item.Quantity))
		}
	}

	sorted := sortedByVariant(items)
	reserved := make([]domain.ProductVariant, 0, len(sorted))

	for _, item := range sorted {
		variant, err := s.variantRepo.FindByIDForUpdate(ctx, tx, item.VariantID)
		if err != nil {
			return nil, err
		}

		available := variant.AvailableQuantity()
		if !variant.IsActive {
			available = 0
		}

		if available < item.Quantity {
			s.logger.Warn("insufficient stock",
				zap.Int64("variantId", item.VariantID),
				zap.String("productName", variant.ProductName),
				zap.Int("available", available),
				zap.Int("requested", item.Quantity),
			)
			return nil, errors.NewStockUnavailableError(item.VariantID, variant.ProductName, available, item.Quantity)
		}

		if err := s.variantRepo.IncrementReserved(ctx, tx, item.VariantID, item.Quantity); err != nil {
			return nil, err
		}

		variant.ReservedQuantity += item.Quantity
		reserved = append(reserved, *variant)

		s.logger.Debug("stock reserved",
			zap.Int64("variantId", item.VariantID),
			zap.Int("quantity", item.Quantity),
			zap.Int("availableAfter", available-item.Quantity),
		)
	}

	return reserved, nil
}

// Release returns reserved quantities to the available pool. A release larger
// than what is currently reserved is clamped at zero and logged.
func (s *ReservationService) Release(ctx context.Context, tx *sql.Tx, items []domain.ReservationItem) error {
	for _, item := range sortedByVariant(items) {
		variant, err := s.variantRepo.FindByIDForUpdate(ctx, tx, item.VariantID)
		if err != nil {
			return err
		}

		if variant.ReservedQuantity < item.Quantity {
			s.logger.Warn("release exceeds reserved quantity, clamping at zero",
				zap.Int64("variantId", item.VariantID),
				zap.Int("reserved", variant.ReservedQuantity),
				zap.Int("released", item.Quantity),
			)
		}

		if err := s.variantRepo.DecrementReserved(ctx, tx, item.VariantID, item.Quantity); err != nil {
			return err
		}
	}

	return nil
}

// Restock puts returned goods back on hand.
func (s *ReservationService) Restock(ctx context.Context, tx *sql.Tx, items []domain.ReservationItem) error {
	for _, item := range sortedByVariant(items) {
		if _, err := s.variantRepo.FindByIDForUpdate(ctx, tx, item.VariantID); err != nil {
			return err
		}

		if err := s.variantRepo.IncrementStock(ctx, tx, item.VariantID, item.Quantity); err != nil {
			return err
		}

		s.logger.Debug("stock restored", zap.Int64("variantId", item.VariantID), zap.Int("quantity", item.Quantity))
	}

	return nil
}

// sortedByVariant copies items ordered by variant id so that concurrent
// transactions acquire row locks in the same order.
func sortedByVariant(items []domain.ReservationItem) []domain.ReservationItem {
	sorted := make([]domain.ReservationItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].VariantID < sorted[j].VariantID })
	return sorted
}

package service

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

type SequenceRepository interface {
	NextSequence(ctx context.Context, tx *sql.Tx, year int) (int, error)
}

// FormatOrderNumber renders ORD-{year}-{sequence}, the sequence zero-padded to
// six digits. Longer sequences are printed in full.
func FormatOrderNumber(year, sequence int) string {
	return fmt.Sprintf("ORD-%d-%06d", year, sequence)
}

type OrderNumberGenerator struct {
	sequences SequenceRepository
	logger    *zap.Logger
}

func NewOrderNumberGenerator(sequences SequenceRepository, logger *zap.Logger) *OrderNumberGenerator {
	return &OrderNumberGenerator{
		sequences: sequences,
		logger:    logger,
	}
}

// Generate draws the next number for year inside tx. The number is only
// consumed when tx commits.
func (g *OrderNumberGenerator) Generate(ctx context.Context, tx *sql.Tx, year int) (string, error) {
	seq, err := g.sequences.NextSequence(ctx, tx, year)
	if err != nil {
		return "", err
	}

	number := FormatOrderNumber(year, seq)
	g.logger.Debug("order number generated", zap.String("orderNumber", number))
	return number, nil
}

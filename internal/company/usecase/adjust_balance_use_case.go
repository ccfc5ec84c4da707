package usecase

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
	"storefront/internal/infrastructure/mysql"
)

var tracer = otel.Tracer("storefront/company")

type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) error
}

type Ledger interface {
	AdjustBalance(ctx context.Context, tx *sql.Tx, adj domain.BalanceAdjustment) (decimal.Decimal, error)
}

type CreditTransactionReader interface {
	ListByCompanyID(ctx context.Context, companyID int64) ([]domain.CreditTransaction, error)
}

type CompanyReader interface {
	FindByID(ctx context.Context, id int64) (*domain.Company, error)
}

type Metrics interface {
	LedgerAdjusted(ctx context.Context, kind string, forced bool)
}

type AdjustBalanceUseCase struct {
	txManager        Transactor
	ledger           Ledger
	companyRepo      CompanyReader
	journalRepo      CreditTransactionReader
	metrics          Metrics
	logger           *zap.Logger
	maxRetryAttempts int
}

func NewAdjustBalanceUseCase(
	txManager Transactor,
	ledger Ledger,
	companyRepo CompanyReader,
	journalRepo CreditTransactionReader,
	metrics Metrics,
	logger *zap.Logger,
	maxRetryAttempts int,
) *AdjustBalanceUseCase {
	return &AdjustBalanceUseCase{
		txManager:        txManager,
		ledger:           ledger,
		companyRepo:      companyRepo,
		journalRepo:      journalRepo,
		metrics:          metrics,
		logger:           logger,
		maxRetryAttempts: maxRetryAttempts,
	}
}

// AdjustBalance runs one ledger adjustment in its own transaction.
func (uc *AdjustBalanceUseCase) AdjustBalance(ctx context.Context, adj domain.BalanceAdjustment) (decimal.Decimal, error) {
	ctx, span := tracer.Start(ctx, "company.AdjustBalance")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("company.id", adj.CompanyID),
		attribute.String("ledger.kind", string(adj.Kind)),
	)

	var balance decimal.Decimal
	err := mysql.RetryOnContention(ctx, uc.maxRetryAttempts, uc.logger, func(ctx context.Context) error {
		return uc.txManager.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
			var err error
			balance, err = uc.ledger.AdjustBalance(ctx, tx, adj)
			return err
		})
	})
	if err != nil {
		span.RecordError(err)
		if apperrors.IsDomainError(err) {
			return decimal.Zero, err
		}
		uc.logger.Error("balance adjustment failed", zap.Int64("companyId", adj.CompanyID), zap.Error(err))
		return decimal.Zero, apperrors.NewInternalError("adjusting company balance", err)
	}

	uc.metrics.LedgerAdjusted(ctx, string(adj.Kind), adj.Forced)
	return balance, nil
}

// ListTransactions returns the company's journal, oldest first.
func (uc *AdjustBalanceUseCase) ListTransactions(ctx context.Context, companyID int64) ([]domain.CreditTransaction, error) {
	if _, err := uc.companyRepo.FindByID(ctx, companyID); err != nil {
		return nil, err
	}
	return uc.journalRepo.ListByCompanyID(ctx, companyID)
}

package service

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/errors"
)

type CompanyRepository interface {
	FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.Company, error)
	UpdateBalance(ctx context.Context, tx *sql.Tx, id int64, balance decimal.Decimal) error
}

type CreditTransactionRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, entry domain.CreditTransaction) (int64, error)
}

// LedgerService is the only writer of Companies.currentBalance.
type LedgerService struct {
	companyRepo CompanyRepository
	journalRepo CreditTransactionRepository
	logger      *zap.Logger
}

func NewLedgerService(companyRepo CompanyRepository, journalRepo CreditTransactionRepository, logger *zap.Logger) *LedgerService {
	return &LedgerService{
		companyRepo: companyRepo,
		journalRepo: journalRepo,
		logger:      logger,
	}
}

// AdjustBalance applies adj under the company's row lock and journals it.
// It returns the balance after the adjustment.
func (s *LedgerService) AdjustBalance(ctx context.Context, tx *sql.Tx, adj domain.BalanceAdjustment) (decimal.Decimal, error) {
	if !adj.Kind.Valid() {
		return decimal.Zero, errors.NewInvalidTransactionTypeError(string(adj.Kind))
	}
	if !adj.Amount.IsPositive() {
		return decimal.Zero, errors.NewValidationError("amount must be positive", errors.ValidationDetail{
			Field:   "amount",
			Message: "amount must be greater than zero",
		})
	}

	company, err := s.companyRepo.FindByIDForUpdate(ctx, tx, adj.CompanyID)
	if err != nil {
		return decimal.Zero, err
	}

	amount := domain.RoundMoney(adj.Amount)
	var balance decimal.Decimal

	switch adj.Kind {
	case domain.CreditTransactionDebit:
		balance = company.CurrentBalance.Add(amount)
		if balance.GreaterThan(company.CreditLimit) {
			if !adj.Forced {
				return decimal.Zero, errors.NewCreditLimitExceededError(company.ID, company.CreditLimit, company.CurrentBalance, amount)
			}
			s.logger.Warn("forced debit exceeds credit limit",
				zap.Int64("companyId", company.ID),
				zap.String("creditLimit", company.CreditLimit.StringFixed(2)),
				zap.String("balanceAfter", balance.StringFixed(2)),
			)
		}
	case domain.CreditTransactionCredit:
		balance = company.CurrentBalance.Sub(amount)
		if balance.IsNegative() {
			s.logger.Warn("credit exceeds outstanding balance, clamping at zero",
				zap.Int64("companyId", company.ID),
				zap.String("currentBalance", company.CurrentBalance.StringFixed(2)),
				zap.String("amount", amount.StringFixed(2)),
			)
			balance = decimal.Zero
		}
	}

	if err := s.companyRepo.UpdateBalance(ctx, tx, company.ID, balance); err != nil {
		return decimal.Zero, err
	}

	_, err = s.journalRepo.Insert(ctx, tx, domain.CreditTransaction{
		CompanyID:    company.ID,
		Kind:         adj.Kind,
		Amount:       amount,
		BalanceAfter: balance,
		Description:  adj.Description,
		Forced:       adj.Forced,
	})
	if err != nil {
		return decimal.Zero, err
	}

	s.logger.Info("company balance adjusted",
		zap.Int64("companyId", company.ID),
		zap.String("kind", string(adj.Kind)),
		zap.String("amount", amount.StringFixed(2)),
		zap.String("balanceAfter", balance.StringFixed(2)),
		zap.Bool("forced", adj.Forced),
	)

	return balance, nil
}

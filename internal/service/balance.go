package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Yusufdydx/vv-ng/internal/model"
	"github.com/Yusufdydx/vv-ng/internal/repository"
)

type BalanceService struct {
	repo *repository.Repository
}

func NewBalanceService(repo *repository.Repository) *BalanceService {
	return &BalanceService{repo: repo}
}

// GetBalance returns the user's available balance, derived on demand
// from completed transactions. Zero for a user with no history.
func (s *BalanceService) GetBalance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	return s.repo.GetUserBalance(ctx, userID)
}

// GetPlatformBalance returns the platform-wide balance.
func (s *BalanceService) GetPlatformBalance(ctx context.Context) (decimal.Decimal, error) {
	return s.repo.GetPlatformBalance(ctx)
}

// GetTransactions returns the user's transaction history.
func (s *BalanceService) GetTransactions(ctx context.Context, userID int64, limit, offset int) ([]model.Transaction, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.repo.ListUserTransactions(ctx, userID, limit, offset)
}

func (s *BalanceService) GetTransaction(ctx context.Context, userID int64, reference string) (*model.Transaction, error) {
	txn, err := s.repo.GetTransactionByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if txn.UserID != userID {
		return nil, repository.ErrTransactionNotFound
	}
	return txn, nil
}

// GetDisplayRate returns the fixed multiplier used when rendering
// amounts in the display currency.
func (s *BalanceService) GetDisplayRate(ctx context.Context) (decimal.Decimal, error) {
	rate, err := s.repo.GetSettingDecimal(ctx, "currency_rate")
	if err != nil {
		return decimal.NewFromInt(1), nil
	}
	return rate, nil
}

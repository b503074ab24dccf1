package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Yusufdydx/vv-ng/internal/repository"
)

// ErrConfigurationUnavailable means a fee percentage could not be
// resolved from site settings. The operation must abort before any
// ledger write.
var ErrConfigurationUnavailable = errors.New("fee configuration unavailable")

type FeeKind string

const (
	FeeWithdraw   FeeKind = "withdraw_fee_pct"
	FeeTransfer   FeeKind = "transfer_fee_pct"
	FeeMentorship FeeKind = "mentorship_fee_pct"
)

// FeePolicy resolves percentage fees from site settings. The resolved
// percentage is captured into transaction metadata at creation time
// and stays with the transaction even if the setting later changes.
type FeePolicy struct {
	repo *repository.Repository
}

func NewFeePolicy(repo *repository.Repository) *FeePolicy {
	return &FeePolicy{repo: repo}
}

func (p *FeePolicy) ResolveFeePct(ctx context.Context, kind FeeKind) (decimal.Decimal, error) {
	pct, err := p.repo.GetSettingDecimal(ctx, string(kind))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s: %v", ErrConfigurationUnavailable, kind, err)
	}
	if pct.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %s is negative", ErrConfigurationUnavailable, kind)
	}
	return pct, nil
}

// ComputeFee splits amount into the platform fee and the net that
// reaches the counterparty. The fee is rounded to currency minor
// units; net absorbs the rounding so fee + net always equals amount.
func ComputeFee(amount, pct decimal.Decimal) (fee, net decimal.Decimal) {
	fee = amount.Mul(pct).Div(decimal.NewFromInt(100)).Round(2)
	net = amount.Sub(fee)
	return fee, net
}

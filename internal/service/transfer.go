package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Yusufdydx/vv-ng/internal/model"
	"github.com/Yusufdydx/vv-ng/internal/repository"
)

var (
	ErrInvalidAmount    = errors.New("amount must be positive")
	ErrInvalidRecipient = errors.New("recipient not found or invalid")
)

type TransferService struct {
	repo *repository.Repository
	fees *FeePolicy
}

func NewTransferService(repo *repository.Repository, fees *FeePolicy) *TransferService {
	return &TransferService{repo: repo, fees: fees}
}

// Transfer moves amount from the sender to the recipient as three
// completed ledger legs committed atomically: the sender's debit for
// the full amount, the recipient's credit net of fee, and the fee leg
// owned by the platform account. The fee percentage is resolved once
// here and captured into the leg metadata.
func (s *TransferService) Transfer(ctx context.Context, senderID int64, recipientUsername string, amount decimal.Decimal, description string) (*model.TransferResult, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}

	sender, err := s.repo.GetUser(ctx, senderID)
	if err != nil {
		return nil, err
	}

	recipient, err := s.repo.GetUserByUsername(ctx, recipientUsername)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidRecipient
		}
		return nil, err
	}
	if recipient.ID == sender.ID {
		return nil, ErrInvalidRecipient
	}

	pct, err := s.fees.ResolveFeePct(ctx, FeeTransfer)
	if err != nil {
		return nil, err
	}
	fee, net := ComputeFee(amount, pct)

	debit := &model.Transaction{
		UserID:      sender.ID,
		Kind:        model.KindTransfer,
		Amount:      amount,
		Reference:   repository.NewReference(),
		Status:      model.StatusCompleted,
		Description: fmt.Sprintf("Transfer to %s: %s", recipient.Username, description),
		Metadata: model.Metadata{
			model.MetaRecipientID: recipient.ID,
			model.MetaAdminFee:    fee.String(),
			model.MetaNetAmount:   net.String(),
			model.MetaFeePct:      pct.String(),
		},
	}
	credit := &model.Transaction{
		UserID:      recipient.ID,
		Kind:        model.KindTransfer,
		Amount:      net,
		Status:      model.StatusCompleted,
		Description: fmt.Sprintf("Transfer from %s: %s", sender.Username, description),
		Metadata: model.Metadata{
			model.MetaSenderID:       sender.ID,
			model.MetaOriginalAmount: amount.String(),
			model.MetaAdminFee:       fee.String(),
		},
	}

	var feeLeg *model.Transaction
	if fee.IsPositive() {
		platform, err := s.repo.GetPlatformAccount(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve platform account: %w", err)
		}
		feeLeg = &model.Transaction{
			UserID:      platform.ID,
			Kind:        model.KindAdminFee,
			Amount:      fee,
			Status:      model.StatusCompleted,
			Description: fmt.Sprintf("Transfer fee for transaction %s", debit.Reference),
			Metadata: model.Metadata{
				model.MetaSenderID: sender.ID,
			},
		}
	}

	if err := s.repo.Transfer(ctx, debit, credit, feeLeg); err != nil {
		return nil, err
	}

	return &model.TransferResult{Debit: debit, Credit: credit, Fee: feeLeg}, nil
}

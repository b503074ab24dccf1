package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Yusufdydx/vv-ng/internal/model"
	"github.com/Yusufdydx/vv-ng/internal/repository"
)

var ErrDepositorNameRequired = errors.New("depositor name is required")

type PaymentService struct {
	repo *repository.Repository
	fees *FeePolicy
}

func NewPaymentService(repo *repository.Repository, fees *FeePolicy) *PaymentService {
	return &PaymentService{repo: repo, fees: fees}
}

// RequestWithdrawal creates a pending withdrawal after a balance check
// under the user's row lock. The withdrawal fee is resolved now and
// stamped into metadata only; the payout of net_amount happens outside
// the ledger once a reviewer approves.
func (s *PaymentService) RequestWithdrawal(ctx context.Context, userID int64, amount decimal.Decimal, methodID *uuid.UUID) (*model.Transaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}
	if methodID != nil {
		method, err := s.repo.GetPaymentMethod(ctx, *methodID)
		if err != nil {
			return nil, err
		}
		if !method.IsActive {
			return nil, repository.ErrPaymentMethodNotFound
		}
	}

	pct, err := s.fees.ResolveFeePct(ctx, FeeWithdraw)
	if err != nil {
		return nil, err
	}
	fee, net := ComputeFee(amount, pct)

	txn := &model.Transaction{
		UserID:          userID,
		Kind:            model.KindWithdraw,
		Amount:          amount,
		Status:          model.StatusPending,
		PaymentMethodID: methodID,
		Description:     fmt.Sprintf("Withdrawal request of %s", amount.StringFixed(2)),
	}
	if fee.IsPositive() {
		txn.Metadata = model.Metadata{
			model.MetaAdminFee:  fee.String(),
			model.MetaNetAmount: net.String(),
			model.MetaFeePct:    pct.String(),
		}
	}

	if err := s.repo.CreatePendingDebit(ctx, txn); err != nil {
		return nil, err
	}
	return txn, nil
}

// SubmitManualDeposit records a proof-of-payment submission. It has no
// ledger effect until a reviewer approves it.
func (s *PaymentService) SubmitManualDeposit(ctx context.Context, userID int64, amount decimal.Decimal, screenshot, depositorName string, depositDate time.Time) (*model.ManualDeposit, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}
	if depositorName == "" {
		return nil, ErrDepositorNameRequired
	}

	deposit := &model.ManualDeposit{
		UserID:        userID,
		Amount:        amount,
		Screenshot:    screenshot,
		DepositorName: depositorName,
		DepositDate:   depositDate,
	}
	if err := s.repo.CreateManualDeposit(ctx, deposit); err != nil {
		return nil, err
	}
	return deposit, nil
}

func (s *PaymentService) GetDeposits(ctx context.Context, userID int64, limit, offset int) ([]model.ManualDeposit, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.repo.ListUserDeposits(ctx, userID, limit, offset)
}

func (s *PaymentService) GetActivePaymentMethods(ctx context.Context) ([]model.PaymentMethod, error) {
	return s.repo.ListActivePaymentMethods(ctx)
}

// GetManualBankDetails returns the bank account displayed for manual
// transfers, read from site settings.
func (s *PaymentService) GetManualBankDetails(ctx context.Context) (*model.ManualBankDetails, error) {
	settings, err := s.repo.GetAllSettings(ctx)
	if err != nil {
		return nil, err
	}
	return &model.ManualBankDetails{
		BankName:      settings["manual_bank_name"],
		AccountNumber: settings["manual_account_number"],
		AccountName:   settings["manual_account_name"],
	}, nil
}

// RecordSale credits a seller with a completed sale. Entry point for
// the course and job checkout collaborators, which construct the
// request and display the returned transaction.
func (s *PaymentService) RecordSale(ctx context.Context, sellerID int64, amount decimal.Decimal, description string, metadata model.Metadata) (*model.Transaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}

	txn := &model.Transaction{
		UserID:      sellerID,
		Kind:        model.KindSale,
		Amount:      amount,
		Status:      model.StatusCompleted,
		Description: description,
		Metadata:    metadata,
	}
	if err := s.repo.CreateTransaction(ctx, txn); err != nil {
		return nil, err
	}
	return txn, nil
}

// CreateMentorshipPayment creates the student's pending payment for a
// mentorship engagement. The mentorship fee percentage is captured
// into metadata now; on approval the mentor's commission and the
// platform fee settle atomically with the student's debit.
func (s *PaymentService) CreateMentorshipPayment(ctx context.Context, studentID, mentorID int64, total decimal.Decimal, applicationRef, title string) (*model.Transaction, error) {
	if total.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}
	if _, err := s.repo.GetUser(ctx, mentorID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidRecipient
		}
		return nil, err
	}

	pct, err := s.fees.ResolveFeePct(ctx, FeeMentorship)
	if err != nil {
		return nil, err
	}
	fee, net := ComputeFee(total, pct)

	txn := &model.Transaction{
		UserID:      studentID,
		Kind:        model.KindTransfer,
		Amount:      total,
		Status:      model.StatusPending,
		Description: fmt.Sprintf("Mentorship application for %s", title),
		Metadata: model.Metadata{
			model.MetaMentorID:       strconv.FormatInt(mentorID, 10),
			model.MetaApplicationRef: applicationRef,
			model.MetaAdminFee:       fee.String(),
			model.MetaNetAmount:      net.String(),
			model.MetaFeePct:         pct.String(),
		},
	}
	if err := s.repo.CreatePendingDebit(ctx, txn); err != nil {
		return nil, err
	}
	return txn, nil
}

package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Yusufdydx/vv-ng/internal/model"
	"github.com/Yusufdydx/vv-ng/internal/repository"
)

var ErrReasonRequired = errors.New("rejection reason is required")

// ModerationService transitions pending records through their review
// lifecycle. Transitions are guarded at the database so two reviewers
// racing on the same record cannot both win; the loser gets
// repository.ErrAlreadyFinalized and the record is left untouched.
type ModerationService struct {
	repo *repository.Repository
}

func NewModerationService(repo *repository.Repository) *ModerationService {
	return &ModerationService{repo: repo}
}

// ApproveTransaction finalizes a pending transaction into the
// completed state, which is when it starts counting toward balances.
func (s *ModerationService) ApproveTransaction(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	platform, err := s.repo.GetPlatformAccount(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ApproveTransaction(ctx, id, platform.ID)
}

func (s *ModerationService) RejectTransaction(ctx context.Context, id uuid.UUID, reason string) error {
	if reason == "" {
		return ErrReasonRequired
	}
	return s.repo.RejectTransaction(ctx, id, reason)
}

// ApproveDeposit approves a manual deposit and credits the claimed
// amount in one atomic step. Returns the created add_money
// transaction.
func (s *ModerationService) ApproveDeposit(ctx context.Context, id uuid.UUID, reviewerID int64, notes string) (*model.Transaction, error) {
	return s.repo.ApproveManualDeposit(ctx, id, reviewerID, notes)
}

func (s *ModerationService) RejectDeposit(ctx context.Context, id uuid.UUID, reviewerID int64, reason string) error {
	if reason == "" {
		return ErrReasonRequired
	}
	return s.repo.RejectManualDeposit(ctx, id, reviewerID, reason)
}

func (s *ModerationService) PendingTransactions(ctx context.Context, limit, offset int) ([]model.Transaction, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.ListPendingTransactions(ctx, limit, offset)
}

func (s *ModerationService) PendingDeposits(ctx context.Context, limit, offset int) ([]model.ManualDeposit, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.ListPendingDeposits(ctx, limit, offset)
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Yusufdydx/vv-ng/internal/model"
)

func (r *Repository) CreateManualDeposit(ctx context.Context, deposit *model.ManualDeposit) error {
	query := `
		INSERT INTO manual_deposits (user_id, amount, screenshot, depositor_name, deposit_date, status)
		VALUES ($1, $2, $3, $4, $5, 'pending')
		RETURNING id, status, created_at`

	return r.db.QueryRowContext(ctx, query,
		deposit.UserID,
		deposit.Amount,
		deposit.Screenshot,
		deposit.DepositorName,
		deposit.DepositDate,
	).Scan(&deposit.ID, &deposit.Status, &deposit.CreatedAt)
}

func (r *Repository) GetManualDeposit(ctx context.Context, id uuid.UUID) (*model.ManualDeposit, error) {
	var deposit model.ManualDeposit
	err := r.db.GetContext(ctx, &deposit, "SELECT * FROM manual_deposits WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDepositNotFound
		}
		return nil, err
	}
	return &deposit, nil
}

func (r *Repository) ListUserDeposits(ctx context.Context, userID int64, limit, offset int) ([]model.ManualDeposit, error) {
	var deposits []model.ManualDeposit
	err := r.db.SelectContext(ctx, &deposits, `
		SELECT * FROM manual_deposits
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	return deposits, err
}

func (r *Repository) ListPendingDeposits(ctx context.Context, limit, offset int) ([]model.ManualDeposit, error) {
	var deposits []model.ManualDeposit
	err := r.db.SelectContext(ctx, &deposits, `
		SELECT * FROM manual_deposits
		WHERE status = 'pending'
		ORDER BY created_at ASC
		LIMIT $1 OFFSET $2`,
		limit, offset)
	return deposits, err
}

// ApproveManualDeposit marks a pending deposit approved and credits
// the claimed amount as a completed add_money transaction, both in the
// same database transaction. Either both records settle or neither
// does. The created transaction carries the deposit id in metadata so
// the link survives for audit.
func (r *Repository) ApproveManualDeposit(ctx context.Context, id uuid.UUID, reviewerID int64, notes string) (*model.Transaction, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var deposit model.ManualDeposit
	err = tx.GetContext(ctx, &deposit, "SELECT * FROM manual_deposits WHERE id = $1 FOR UPDATE", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDepositNotFound
		}
		return nil, err
	}
	if deposit.Status != model.DepositStatusPending {
		return nil, ErrAlreadyFinalized
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE manual_deposits
		SET status = 'approved', reviewed_by = $2, reviewed_at = NOW(), admin_notes = $3
		WHERE id = $1`,
		id, reviewerID, notes)
	if err != nil {
		return nil, fmt.Errorf("failed to approve deposit: %w", err)
	}

	credit := &model.Transaction{
		UserID:      deposit.UserID,
		Kind:        model.KindAddMoney,
		Amount:      deposit.Amount,
		Status:      model.StatusCompleted,
		Description: fmt.Sprintf("Manual deposit by %s", deposit.DepositorName),
		Metadata: model.Metadata{
			model.MetaManualDepositID: deposit.ID.String(),
		},
	}
	if err := insertTransaction(ctx, tx, credit); err != nil {
		return nil, fmt.Errorf("failed to credit deposit: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return credit, nil
}

// RejectManualDeposit marks a pending deposit rejected. No ledger row
// is created.
func (r *Repository) RejectManualDeposit(ctx context.Context, id uuid.UUID, reviewerID int64, reason string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE manual_deposits
		SET status = 'rejected', reviewed_by = $2, reviewed_at = NOW(), admin_notes = $3
		WHERE id = $1 AND status = 'pending'`,
		id, reviewerID, reason)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		if _, err := r.GetManualDeposit(ctx, id); err != nil {
			return err
		}
		return ErrAlreadyFinalized
	}
	return nil
}

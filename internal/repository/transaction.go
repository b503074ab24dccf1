package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/Yusufdydx/vv-ng/internal/model"
)

const referenceAttempts = 3

// NewReference generates a globally unique ledger reference. UUID
// entropy makes collisions practically impossible; inserts still sit
// behind a unique constraint as a last line of defense.
func NewReference() string {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "TXN-" + strings.ToUpper(raw[:16])
}

const insertTransactionQuery = `
	INSERT INTO transactions
		(user_id, kind, amount, currency, status, payment_method_id, reference, description, metadata, completed_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	RETURNING id, created_at, updated_at`

// insertTransaction writes a single ledger row using q, which is
// either the pool or an open database transaction. The reference is
// generated here if the caller left it empty; completed rows get
// their completed_at stamped exactly once.
func insertTransaction(ctx context.Context, q sqlx.ExtContext, txn *model.Transaction) error {
	if txn.Amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("transaction amount must be positive, got %s", txn.Amount)
	}
	if txn.Currency == "" {
		txn.Currency = model.DefaultCurrency
	}
	if txn.Reference == "" {
		txn.Reference = NewReference()
	}
	if txn.Status == model.StatusCompleted && txn.CompletedAt == nil {
		now := time.Now()
		txn.CompletedAt = &now
	}

	return q.QueryRowxContext(ctx, insertTransactionQuery,
		txn.UserID,
		txn.Kind,
		txn.Amount,
		txn.Currency,
		txn.Status,
		txn.PaymentMethodID,
		txn.Reference,
		txn.Description,
		txn.Metadata,
		txn.CompletedAt,
	).Scan(&txn.ID, &txn.CreatedAt, &txn.UpdatedAt)
}

// CreateTransaction inserts a standalone ledger row. A duplicate
// reference is retried with a freshly generated one; the error only
// surfaces after the retries are exhausted.
func (r *Repository) CreateTransaction(ctx context.Context, txn *model.Transaction) error {
	for attempt := 0; attempt < referenceAttempts; attempt++ {
		err := insertTransaction(ctx, r.db, txn)
		if err == nil {
			return nil
		}
		if isUniqueViolation(err) {
			txn.Reference = ""
			continue
		}
		return err
	}
	return ErrDuplicateReference
}

func (r *Repository) GetTransaction(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	var txn model.Transaction
	err := r.db.GetContext(ctx, &txn, "SELECT * FROM transactions WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return &txn, nil
}

func (r *Repository) GetTransactionByReference(ctx context.Context, reference string) (*model.Transaction, error) {
	var txn model.Transaction
	err := r.db.GetContext(ctx, &txn, "SELECT * FROM transactions WHERE reference = $1", reference)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return &txn, nil
}

func (r *Repository) ListUserTransactions(ctx context.Context, userID int64, limit, offset int) ([]model.Transaction, error) {
	var transactions []model.Transaction
	err := r.db.SelectContext(ctx, &transactions, `
		SELECT * FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	return transactions, err
}

func (r *Repository) ListPendingTransactions(ctx context.Context, limit, offset int) ([]model.Transaction, error) {
	var transactions []model.Transaction
	err := r.db.SelectContext(ctx, &transactions, `
		SELECT * FROM transactions
		WHERE status = 'pending'
		ORDER BY created_at ASC
		LIMIT $1 OFFSET $2`,
		limit, offset)
	return transactions, err
}

const userBalanceQuery = `
	SELECT COALESCE(SUM(
		CASE WHEN kind IN ('add_money', 'sale', 'commission') THEN amount ELSE -amount END
	), 0)
	FROM transactions
	WHERE user_id = $1 AND status = 'completed'`

// GetUserBalance derives the user's available balance from completed
// transactions. Pending and rejected rows never count; a user with no
// history has balance zero.
func (r *Repository) GetUserBalance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	return userBalance(ctx, r.db, userID)
}

func userBalance(ctx context.Context, q sqlx.QueryerContext, userID int64) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := q.QueryRowxContext(ctx, userBalanceQuery, userID).Scan(&balance)
	return balance, err
}

// GetPlatformBalance derives the platform-wide balance. Transfers,
// sales and commissions are zero-sum or externally settled from the
// platform's perspective, so only deposits, fees and withdrawals count.
func (r *Repository) GetPlatformBalance(ctx context.Context) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.db.QueryRowxContext(ctx, `
		SELECT COALESCE(SUM(
			CASE WHEN kind IN ('add_money', 'admin_fee') THEN amount ELSE -amount END
		), 0)
		FROM transactions
		WHERE status = 'completed' AND kind IN ('add_money', 'admin_fee', 'withdraw')`,
	).Scan(&balance)
	return balance, err
}

// lockUser takes the row lock that serializes all balance-affecting
// writes for one user. The balance check that follows is then safe
// against concurrent spends from the same account.
func lockUser(ctx context.Context, tx *sqlx.Tx, userID int64) error {
	var id int64
	err := tx.GetContext(ctx, &id, "SELECT id FROM users WHERE id = $1 FOR UPDATE", userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to lock user %d: %w", userID, err)
	}
	return nil
}

// Transfer commits the legs of a peer-to-peer transfer as a single
// database transaction: either all legs exist afterwards or none do.
// The sender row is locked and the balance re-derived under that lock
// so concurrent transfers from the same sender serialize instead of
// both passing a stale check. fee may be nil when the fee is zero.
func (r *Repository) Transfer(ctx context.Context, debit, credit *model.Transaction, fee *model.Transaction) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := lockUser(ctx, tx, debit.UserID); err != nil {
		return err
	}

	balance, err := userBalance(ctx, tx, debit.UserID)
	if err != nil {
		return fmt.Errorf("failed to derive sender balance: %w", err)
	}
	if balance.LessThan(debit.Amount) {
		return ErrInsufficientBalance
	}

	if err := insertTransaction(ctx, tx, debit); err != nil {
		return fmt.Errorf("failed to insert debit leg: %w", err)
	}
	if err := insertTransaction(ctx, tx, credit); err != nil {
		return fmt.Errorf("failed to insert credit leg: %w", err)
	}
	if fee != nil {
		if err := insertTransaction(ctx, tx, fee); err != nil {
			return fmt.Errorf("failed to insert fee leg: %w", err)
		}
	}

	return tx.Commit()
}

// CreatePendingDebit inserts a pending debit request (withdrawal or
// mentorship payment) after checking balance sufficiency under the
// owner's row lock. Any fee is carried only in metadata until review;
// no fee leg exists at request time.
func (r *Repository) CreatePendingDebit(ctx context.Context, txn *model.Transaction) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := lockUser(ctx, tx, txn.UserID); err != nil {
		return err
	}

	balance, err := userBalance(ctx, tx, txn.UserID)
	if err != nil {
		return fmt.Errorf("failed to derive balance: %w", err)
	}
	if balance.LessThan(txn.Amount) {
		return ErrInsufficientBalance
	}

	if err := insertTransaction(ctx, tx, txn); err != nil {
		return fmt.Errorf("failed to insert withdrawal: %w", err)
	}

	return tx.Commit()
}

// ApproveTransaction finalizes a pending transaction. Approval is the
// single trigger that makes money move: the row becomes completed and
// starts counting toward balances. When the row is a mentorship
// payment (a pending transfer carrying mentor metadata) the mentor's
// commission leg and the platform's fee leg are settled in the same
// database transaction.
func (r *Repository) ApproveTransaction(ctx context.Context, id uuid.UUID, platformAccountID int64) (*model.Transaction, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var txn model.Transaction
	err = tx.GetContext(ctx, &txn, "SELECT * FROM transactions WHERE id = $1 FOR UPDATE", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	if txn.Status != model.StatusPending {
		return nil, ErrAlreadyFinalized
	}

	err = tx.GetContext(ctx, &txn, `
		UPDATE transactions
		SET status = 'completed', completed_at = NOW(), updated_at = NOW()
		WHERE id = $1
		RETURNING *`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to finalize transaction: %w", err)
	}

	if legs := mentorshipSettlementLegs(&txn, platformAccountID); legs != nil {
		for _, leg := range legs {
			if err := insertTransaction(ctx, tx, leg); err != nil {
				return nil, fmt.Errorf("failed to settle mentorship leg: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &txn, nil
}

// mentorshipSettlementLegs builds the completed legs owed when a
// mentorship payment finalizes: the mentor's commission net of fee and
// the platform's fee. Returns nil for every other transaction.
func mentorshipSettlementLegs(txn *model.Transaction, platformAccountID int64) []*model.Transaction {
	if txn.Kind != model.KindTransfer {
		return nil
	}
	mentorID, ok := txn.Metadata.Int64(model.MetaMentorID)
	if !ok {
		return nil
	}
	net, ok := txn.Metadata.Decimal(model.MetaNetAmount)
	if !ok {
		net = txn.Amount
	}

	legs := []*model.Transaction{{
		UserID:      mentorID,
		Kind:        model.KindCommission,
		Amount:      net,
		Currency:    txn.Currency,
		Status:      model.StatusCompleted,
		Description: fmt.Sprintf("Mentorship commission for %s", txn.Reference),
		Metadata: model.Metadata{
			model.MetaOriginalTxnID: txn.ID.String(),
		},
	}}

	if fee, ok := txn.Metadata.Decimal(model.MetaAdminFee); ok && fee.IsPositive() {
		legs = append(legs, &model.Transaction{
			UserID:      platformAccountID,
			Kind:        model.KindAdminFee,
			Amount:      fee,
			Currency:    txn.Currency,
			Status:      model.StatusCompleted,
			Description: fmt.Sprintf("Mentorship fee for %s", txn.Reference),
			Metadata: model.Metadata{
				model.MetaOriginalTxnID: txn.ID.String(),
			},
		})
	}
	return legs
}

// RejectTransaction marks a pending transaction rejected with the
// given reason. The guarded predicate means a second reviewer racing
// on the same row loses and gets ErrAlreadyFinalized; an existing
// rejection is never overwritten with a different reason.
func (r *Repository) RejectTransaction(ctx context.Context, id uuid.UUID, reason string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET status = 'rejected', rejection_reason = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'`,
		id, reason)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		if _, err := r.GetTransaction(ctx, id); err != nil {
			return err
		}
		return ErrAlreadyFinalized
	}
	return nil
}

// CountTransactions reports how many ledger rows exist, optionally
// filtered by status. Used by admin stats.
func (r *Repository) CountTransactions(ctx context.Context, status model.TransactionStatus) (int64, error) {
	var count int64
	var err error
	if status == "" {
		err = r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM transactions")
	} else {
		err = r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM transactions WHERE status = $1", status)
	}
	return count, err
}

package service_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Yusufdydx/vv-ng/internal/model"
	"github.com/Yusufdydx/vv-ng/internal/repository"
	"github.com/Yusufdydx/vv-ng/internal/service"
)

type testEnv struct {
	repo       *repository.Repository
	balance    *service.BalanceService
	transfer   *service.TransferService
	payment    *service.PaymentService
	moderation *service.ModerationService
}

func setupTest(t *testing.T) *testEnv {
	t.Helper()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL is not set")
	}

	repo, err := repository.New(dsn)
	if err != nil {
		t.Fatalf("db connection: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	applySchema(t, repo)

	fees := service.NewFeePolicy(repo)
	return &testEnv{
		repo:       repo,
		balance:    service.NewBalanceService(repo),
		transfer:   service.NewTransferService(repo, fees),
		payment:    service.NewPaymentService(repo, fees),
		moderation: service.NewModerationService(repo),
	}
}

func applySchema(t *testing.T, repo *repository.Repository) {
	t.Helper()

	down, err := os.ReadFile(filepath.Join("..", "..", "migrations", "000001_init.down.sql"))
	if err != nil {
		t.Fatalf("read down migration: %v", err)
	}
	up, err := os.ReadFile(filepath.Join("..", "..", "migrations", "000001_init.up.sql"))
	if err != nil {
		t.Fatalf("read up migration: %v", err)
	}

	if _, err := repo.DB().Exec(string(down)); err != nil {
		t.Fatalf("apply down migration: %v", err)
	}
	if _, err := repo.DB().Exec(string(up)); err != nil {
		t.Fatalf("apply up migration: %v", err)
	}
}

func (e *testEnv) createUser(t *testing.T, username string) *model.User {
	t.Helper()
	user := &model.User{Username: username, Role: model.RoleMember}
	if err := e.repo.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

// fund credits a user with a completed add_money transaction.
func (e *testEnv) fund(t *testing.T, userID int64, amount string) {
	t.Helper()
	txn := &model.Transaction{
		UserID:      userID,
		Kind:        model.KindAddMoney,
		Amount:      decimal.RequireFromString(amount),
		Status:      model.StatusCompleted,
		Description: "test funding",
	}
	if err := e.repo.CreateTransaction(context.Background(), txn); err != nil {
		t.Fatalf("fund user %d: %v", userID, err)
	}
}

func (e *testEnv) setFee(t *testing.T, key, value string) {
	t.Helper()
	if err := e.repo.SetSetting(context.Background(), key, value); err != nil {
		t.Fatalf("set %s: %v", key, err)
	}
}

func (e *testEnv) mustBalance(t *testing.T, userID int64, want string) {
	t.Helper()
	balance, err := e.balance.GetBalance(context.Background(), userID)
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	if !balance.Equal(decimal.RequireFromString(want)) {
		t.Fatalf("balance = %s, want %s", balance, want)
	}
}

func (e *testEnv) countTransactions(t *testing.T, userID int64) int {
	t.Helper()
	var count int
	err := e.repo.DB().Get(&count, "SELECT COUNT(*) FROM transactions WHERE user_id = $1", userID)
	if err != nil {
		t.Fatalf("count transactions: %v", err)
	}
	return count
}

func TestBalanceZeroForNewUser(t *testing.T) {
	env := setupTest(t)
	user := env.createUser(t, "fresh")
	env.mustBalance(t, user.ID, "0")
}

func TestBalanceIgnoresPendingAndRejected(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	user := env.createUser(t, "alice")

	env.fund(t, user.ID, "1000")
	env.mustBalance(t, user.ID, "1000")

	env.setFee(t, "withdraw_fee_pct", "0")
	pending, err := env.payment.RequestWithdrawal(ctx, user.ID, decimal.RequireFromString("300"), nil)
	if err != nil {
		t.Fatalf("request withdrawal: %v", err)
	}
	env.mustBalance(t, user.ID, "1000")

	if err := env.moderation.RejectTransaction(ctx, pending.ID, "test reject"); err != nil {
		t.Fatalf("reject: %v", err)
	}
	env.mustBalance(t, user.ID, "1000")
}

func TestWithdrawalApprovalFlow(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	user := env.createUser(t, "bob")

	env.fund(t, user.ID, "1000")
	env.setFee(t, "withdraw_fee_pct", "2")

	txn, err := env.payment.RequestWithdrawal(ctx, user.ID, decimal.RequireFromString("300"), nil)
	if err != nil {
		t.Fatalf("request withdrawal: %v", err)
	}
	if txn.Status != model.StatusPending {
		t.Fatalf("withdrawal status = %s, want pending", txn.Status)
	}
	fee, ok := txn.Metadata.Decimal(model.MetaAdminFee)
	if !ok || !fee.Equal(decimal.RequireFromString("6")) {
		t.Errorf("stamped fee = %s, want 6", fee)
	}
	env.mustBalance(t, user.ID, "1000")

	approved, err := env.moderation.ApproveTransaction(ctx, txn.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != model.StatusCompleted {
		t.Fatalf("approved status = %s, want completed", approved.Status)
	}
	if approved.CompletedAt == nil {
		t.Fatal("completed_at not stamped")
	}
	env.mustBalance(t, user.ID, "700")

	// A second approval must fail without touching the record.
	if _, err := env.moderation.ApproveTransaction(ctx, txn.ID); !errors.Is(err, repository.ErrAlreadyFinalized) {
		t.Fatalf("second approve err = %v, want ErrAlreadyFinalized", err)
	}
	env.mustBalance(t, user.ID, "700")
}

func TestWithdrawalInsufficientBalance(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	user := env.createUser(t, "poor")
	env.fund(t, user.ID, "50")

	_, err := env.payment.RequestWithdrawal(ctx, user.ID, decimal.RequireFromString("100"), nil)
	if !errors.Is(err, repository.ErrInsufficientBalance) {
		t.Fatalf("err = %v, want ErrInsufficientBalance", err)
	}
	if got := env.countTransactions(t, user.ID); got != 1 {
		t.Fatalf("transaction count = %d, want 1 (funding only)", got)
	}
}

func TestTransferAtomicity(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	sender := env.createUser(t, "sender")
	recipient := env.createUser(t, "recipient")

	env.fund(t, sender.ID, "1000")
	env.setFee(t, "transfer_fee_pct", "5")

	result, err := env.transfer.Transfer(ctx, sender.ID, "recipient", decimal.RequireFromString("100"), "rent")
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}

	if !result.Debit.Amount.Equal(decimal.RequireFromString("100")) {
		t.Errorf("debit = %s, want 100", result.Debit.Amount)
	}
	if !result.Credit.Amount.Equal(decimal.RequireFromString("95")) {
		t.Errorf("credit = %s, want 95", result.Credit.Amount)
	}
	if result.Fee == nil || !result.Fee.Amount.Equal(decimal.RequireFromString("5")) {
		t.Errorf("fee leg = %+v, want amount 5", result.Fee)
	}

	env.mustBalance(t, sender.ID, "900")
	env.mustBalance(t, recipient.ID, "95")

	platform, err := env.repo.GetPlatformAccount(ctx)
	if err != nil {
		t.Fatalf("platform account: %v", err)
	}
	if result.Fee.UserID != platform.ID {
		t.Errorf("fee leg owner = %d, want platform account %d", result.Fee.UserID, platform.ID)
	}

	// Platform balance counts only deposits, fees and withdrawals.
	got, err := env.balance.GetPlatformBalance(ctx)
	if err != nil {
		t.Fatalf("platform balance: %v", err)
	}
	if !got.Equal(decimal.RequireFromString("1005")) {
		t.Errorf("platform balance = %s, want 1005", got)
	}
}

func TestTransferZeroFeeHasTwoLegs(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	sender := env.createUser(t, "zf_sender")
	env.createUser(t, "zf_recipient")

	env.fund(t, sender.ID, "100")
	env.setFee(t, "transfer_fee_pct", "0")

	result, err := env.transfer.Transfer(ctx, sender.ID, "zf_recipient", decimal.RequireFromString("40"), "")
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if result.Fee != nil {
		t.Error("zero-fee transfer must not create a fee leg")
	}
	if !result.Credit.Amount.Equal(decimal.RequireFromString("40")) {
		t.Errorf("credit = %s, want 40", result.Credit.Amount)
	}
}

func TestTransferRejections(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	sender := env.createUser(t, "reject_sender")
	recipient := env.createUser(t, "reject_recipient")

	env.fund(t, sender.ID, "50")
	env.setFee(t, "transfer_fee_pct", "1")

	if _, err := env.transfer.Transfer(ctx, sender.ID, "reject_recipient", decimal.RequireFromString("100"), ""); !errors.Is(err, repository.ErrInsufficientBalance) {
		t.Errorf("overspend err = %v, want ErrInsufficientBalance", err)
	}
	if _, err := env.transfer.Transfer(ctx, sender.ID, "nobody", decimal.RequireFromString("10"), ""); !errors.Is(err, service.ErrInvalidRecipient) {
		t.Errorf("unknown recipient err = %v, want ErrInvalidRecipient", err)
	}
	if _, err := env.transfer.Transfer(ctx, sender.ID, "reject_sender", decimal.RequireFromString("10"), ""); !errors.Is(err, service.ErrInvalidRecipient) {
		t.Errorf("self transfer err = %v, want ErrInvalidRecipient", err)
	}
	if _, err := env.transfer.Transfer(ctx, sender.ID, "reject_recipient", decimal.Zero, ""); !errors.Is(err, service.ErrInvalidAmount) {
		t.Errorf("zero amount err = %v, want ErrInvalidAmount", err)
	}

	// None of the failures may leave partial legs behind.
	if got := env.countTransactions(t, sender.ID); got != 1 {
		t.Errorf("sender transaction count = %d, want 1 (funding only)", got)
	}
	if got := env.countTransactions(t, recipient.ID); got != 0 {
		t.Errorf("recipient transaction count = %d, want 0", got)
	}
}

func TestRejectIdempotence(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	user := env.createUser(t, "rej")
	env.fund(t, user.ID, "500")
	env.setFee(t, "withdraw_fee_pct", "0")

	txn, err := env.payment.RequestWithdrawal(ctx, user.ID, decimal.RequireFromString("100"), nil)
	if err != nil {
		t.Fatalf("request withdrawal: %v", err)
	}

	if err := env.moderation.RejectTransaction(ctx, txn.ID, "first reason"); err != nil {
		t.Fatalf("first reject: %v", err)
	}
	if err := env.moderation.RejectTransaction(ctx, txn.ID, "second reason"); !errors.Is(err, repository.ErrAlreadyFinalized) {
		t.Fatalf("second reject err = %v, want ErrAlreadyFinalized", err)
	}

	got, err := env.repo.GetTransaction(ctx, txn.ID)
	if err != nil {
		t.Fatalf("get transaction: %v", err)
	}
	if got.Status != model.StatusRejected || got.RejectionReason != "first reason" {
		t.Fatalf("status=%s reason=%q, original rejection must be preserved", got.Status, got.RejectionReason)
	}
}

func TestManualDepositLifecycle(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	user := env.createUser(t, "depositor")
	reviewer := env.createUser(t, "reviewer")

	deposit, err := env.payment.SubmitManualDeposit(ctx, user.ID, decimal.RequireFromString("500"), "proof.png", "John Doe", time.Now())
	if err != nil {
		t.Fatalf("submit deposit: %v", err)
	}
	env.mustBalance(t, user.ID, "0")

	txn, err := env.moderation.ApproveDeposit(ctx, deposit.ID, reviewer.ID, "verified")
	if err != nil {
		t.Fatalf("approve deposit: %v", err)
	}
	if txn.Kind != model.KindAddMoney || !txn.Amount.Equal(decimal.RequireFromString("500")) {
		t.Fatalf("credit = %s %s, want add_money 500", txn.Kind, txn.Amount)
	}
	if id, ok := txn.Metadata[model.MetaManualDepositID]; !ok || id != deposit.ID.String() {
		t.Errorf("credit metadata missing deposit link")
	}
	env.mustBalance(t, user.ID, "500")

	if _, err := env.moderation.ApproveDeposit(ctx, deposit.ID, reviewer.ID, ""); !errors.Is(err, repository.ErrAlreadyFinalized) {
		t.Fatalf("second approve err = %v, want ErrAlreadyFinalized", err)
	}
	env.mustBalance(t, user.ID, "500")
}

func TestManualDepositRejectionHasNoLedgerEffect(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	user := env.createUser(t, "rejected_depositor")
	reviewer := env.createUser(t, "deposit_reviewer")

	deposit, err := env.payment.SubmitManualDeposit(ctx, user.ID, decimal.RequireFromString("500"), "proof.png", "John Doe", time.Now())
	if err != nil {
		t.Fatalf("submit deposit: %v", err)
	}
	if err := env.moderation.RejectDeposit(ctx, deposit.ID, reviewer.ID, "blurry screenshot"); err != nil {
		t.Fatalf("reject deposit: %v", err)
	}

	if got := env.countTransactions(t, user.ID); got != 0 {
		t.Fatalf("transaction count = %d, want 0", got)
	}
	env.mustBalance(t, user.ID, "0")
}

func TestMentorshipPaymentSettlement(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	student := env.createUser(t, "student")
	mentor := env.createUser(t, "mentor")

	env.fund(t, student.ID, "1000")
	env.setFee(t, "mentorship_fee_pct", "10")

	txn, err := env.payment.CreateMentorshipPayment(ctx, student.ID, mentor.ID, decimal.RequireFromString("200"), "APP-1", "Go for beginners")
	if err != nil {
		t.Fatalf("create mentorship payment: %v", err)
	}
	env.mustBalance(t, student.ID, "1000")
	env.mustBalance(t, mentor.ID, "0")

	if _, err := env.moderation.ApproveTransaction(ctx, txn.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}

	env.mustBalance(t, student.ID, "800")
	env.mustBalance(t, mentor.ID, "180")

	platform, _ := env.repo.GetPlatformAccount(ctx)
	var feeCount int
	err = env.repo.DB().Get(&feeCount,
		"SELECT COUNT(*) FROM transactions WHERE user_id = $1 AND kind = 'admin_fee' AND amount = 20",
		platform.ID)
	if err != nil || feeCount != 1 {
		t.Fatalf("platform fee legs = %d (err %v), want 1", feeCount, err)
	}
}

func TestConcurrentTransfersSingleWinner(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	sender := env.createUser(t, "racer")
	env.createUser(t, "race_target")

	env.fund(t, sender.ID, "100")
	env.setFee(t, "transfer_fee_pct", "0")

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.transfer.Transfer(ctx, sender.ID, "race_target",
				decimal.RequireFromString("100"), fmt.Sprintf("attempt %d", i))
		}(i)
	}
	wg.Wait()

	var wins int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, repository.ErrInsufficientBalance):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("wins = %d, want exactly 1", wins)
	}

	balance, err := env.balance.GetBalance(ctx, sender.ID)
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	if balance.IsNegative() {
		t.Fatalf("final balance %s is negative", balance)
	}
	if !balance.IsZero() {
		t.Fatalf("final balance = %s, want 0", balance)
	}
}

func TestRecordSale(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	seller := env.createUser(t, "seller")

	txn, err := env.payment.RecordSale(ctx, seller.ID, decimal.RequireFromString("75"), "Course: Intro to SQL", model.Metadata{"course_id": "17"})
	if err != nil {
		t.Fatalf("record sale: %v", err)
	}
	if txn.Status != model.StatusCompleted {
		t.Fatalf("sale status = %s, want completed", txn.Status)
	}
	env.mustBalance(t, seller.ID, "75")
}

func TestFeePolicyUnavailableAbortsBeforeWrite(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	user := env.createUser(t, "nofee")
	env.fund(t, user.ID, "1000")

	if _, err := env.repo.DB().Exec("DELETE FROM settings WHERE key = 'withdraw_fee_pct'"); err != nil {
		t.Fatalf("drop setting: %v", err)
	}

	_, err := env.payment.RequestWithdrawal(ctx, user.ID, decimal.RequireFromString("10"), nil)
	if !errors.Is(err, service.ErrConfigurationUnavailable) {
		t.Fatalf("err = %v, want ErrConfigurationUnavailable", err)
	}
	if got := env.countTransactions(t, user.ID); got != 1 {
		t.Fatalf("transaction count = %d, want 1 (funding only)", got)
	}
}

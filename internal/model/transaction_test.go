package model

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestKindClassification(t *testing.T) {
	credits := []TransactionKind{KindAddMoney, KindSale, KindCommission}
	debits := []TransactionKind{KindWithdraw, KindTransfer, KindAdminFee}

	for _, k := range credits {
		if !k.IsCredit() || k.IsDebit() {
			t.Errorf("%s should be a credit kind", k)
		}
	}
	for _, k := range debits {
		if !k.IsDebit() || k.IsCredit() {
			t.Errorf("%s should be a debit kind", k)
		}
	}
	if TransactionKind("refund").Valid() {
		t.Error("unknown kind should not be valid")
	}
}

func TestStatusTerminal(t *testing.T) {
	if StatusPending.Terminal() {
		t.Error("pending must allow transitions")
	}
	for _, s := range []TransactionStatus{StatusCompleted, StatusApproved, StatusRejected} {
		if !s.Terminal() {
			t.Errorf("%s must be terminal", s)
		}
	}
}

func TestMetadataScanValue(t *testing.T) {
	m := Metadata{
		MetaAdminFee:    "5.25",
		MetaRecipientID: "42",
	}

	v, err := m.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}

	var got Metadata
	if err := got.Scan(v); err != nil {
		t.Fatalf("Scan: %v", err)
	}

	fee, ok := got.Decimal(MetaAdminFee)
	if !ok || !fee.Equal(decimal.RequireFromString("5.25")) {
		t.Errorf("admin_fee = %s, want 5.25", fee)
	}
	id, ok := got.Int64(MetaRecipientID)
	if !ok || id != 42 {
		t.Errorf("recipient_id = %d, want 42", id)
	}
}

func TestMetadataScanNil(t *testing.T) {
	var m Metadata
	if err := m.Scan(nil); err != nil {
		t.Fatalf("Scan(nil): %v", err)
	}
	if m != nil {
		t.Error("nil source should leave metadata nil")
	}
}

func TestMetadataNumericValues(t *testing.T) {
	// JSON decoding produces float64 for numbers written without
	// string conversion; both forms must read back.
	m := Metadata{
		MetaAdminFee: float64(12.5),
		MetaMentorID: float64(7),
	}

	fee, ok := m.Decimal(MetaAdminFee)
	if !ok || !fee.Equal(decimal.RequireFromString("12.5")) {
		t.Errorf("admin_fee = %s, want 12.5", fee)
	}
	id, ok := m.Int64(MetaMentorID)
	if !ok || id != 7 {
		t.Errorf("mentor_id = %d, want 7", id)
	}
}

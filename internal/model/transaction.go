package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionKind string

const (
	KindAddMoney   TransactionKind = "add_money"
	KindWithdraw   TransactionKind = "withdraw"
	KindTransfer   TransactionKind = "transfer"
	KindSale       TransactionKind = "sale"
	KindCommission TransactionKind = "commission"
	KindAdminFee   TransactionKind = "admin_fee"
)

// IsCredit reports whether the kind increases the owner's balance
// when the transaction is completed.
func (k TransactionKind) IsCredit() bool {
	switch k {
	case KindAddMoney, KindSale, KindCommission:
		return true
	}
	return false
}

// IsDebit reports whether the kind decreases the owner's balance
// when the transaction is completed.
func (k TransactionKind) IsDebit() bool {
	switch k {
	case KindWithdraw, KindTransfer, KindAdminFee:
		return true
	}
	return false
}

func (k TransactionKind) Valid() bool {
	return k.IsCredit() || k.IsDebit()
}

type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusApproved  TransactionStatus = "approved"
	StatusRejected  TransactionStatus = "rejected"
	StatusCompleted TransactionStatus = "completed"
)

// Terminal reports whether no further transition is permitted.
func (s TransactionStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusApproved || s == StatusRejected
}

const DefaultCurrency = "NGN"

// Metadata is a free-form audit map stored as jsonb. It is never read
// by the balance engine; amounts inside it are stored as strings to
// keep decimal precision.
type Metadata map[string]any

func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *Metadata) Scan(src any) error {
	if src == nil {
		*m = nil
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("metadata: cannot scan %T", src)
	}
	return json.Unmarshal(data, m)
}

// Well-known metadata keys, kept for audit reconstruction.
const (
	MetaAdminFee        = "admin_fee"
	MetaNetAmount       = "net_amount"
	MetaFeePct          = "fee_pct"
	MetaRecipientID     = "recipient_id"
	MetaSenderID        = "sender_id"
	MetaOriginalAmount  = "original_amount"
	MetaOriginalTxnID   = "original_transaction_id"
	MetaManualDepositID = "manual_deposit_id"
	MetaMentorID        = "mentor_id"
	MetaApplicationRef  = "mentorship_application_ref"
)

// Decimal reads a decimal value stored under key. Amounts are written
// as strings but older rows may carry JSON numbers.
func (m Metadata) Decimal(key string) (decimal.Decimal, bool) {
	v, ok := m[key]
	if !ok {
		return decimal.Zero, false
	}
	switch n := v.(type) {
	case string:
		d, err := decimal.NewFromString(n)
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	case float64:
		return decimal.NewFromFloat(n), true
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	}
	return decimal.Zero, false
}

// Int64 reads an integer id stored under key.
func (m Metadata) Int64(key string) (int64, bool) {
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case string:
		id, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0, false
		}
		return id, true
	case float64:
		return int64(n), true
	case json.Number:
		id, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return id, true
	case int64:
		return n, true
	}
	return 0, false
}

type Transaction struct {
	ID              uuid.UUID         `json:"id" db:"id"`
	UserID          int64             `json:"user_id" db:"user_id"`
	Kind            TransactionKind   `json:"kind" db:"kind"`
	Amount          decimal.Decimal   `json:"amount" db:"amount"`
	Currency        string            `json:"currency" db:"currency"`
	Status          TransactionStatus `json:"status" db:"status"`
	PaymentMethodID *uuid.UUID        `json:"payment_method_id,omitempty" db:"payment_method_id"`
	Reference       string            `json:"reference" db:"reference"`
	Description     string            `json:"description" db:"description"`
	Metadata        Metadata          `json:"metadata,omitempty" db:"metadata"`
	RejectionReason string            `json:"rejection_reason,omitempty" db:"rejection_reason"`
	CreatedAt       time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at" db:"updated_at"`
	CompletedAt     *time.Time        `json:"completed_at,omitempty" db:"completed_at"`
}

// TransferResult describes the three ledger legs committed by a
// successful peer-to-peer transfer.
type TransferResult struct {
	Debit  *Transaction `json:"debit"`
	Credit *Transaction `json:"credit"`
	Fee    *Transaction `json:"fee,omitempty"`
}

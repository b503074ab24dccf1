package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DepositStatus string

const (
	DepositStatusPending  DepositStatus = "pending"
	DepositStatusApproved DepositStatus = "approved"
	DepositStatusRejected DepositStatus = "rejected"
)

// ManualDeposit is a proof-of-payment submission. It has no ledger
// effect until a reviewer approves it, at which point a completed
// add_money transaction is created in the same database transaction.
type ManualDeposit struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	UserID        int64           `json:"user_id" db:"user_id"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	Screenshot    string          `json:"screenshot" db:"screenshot"`
	DepositorName string          `json:"depositor_name" db:"depositor_name"`
	DepositDate   time.Time       `json:"deposit_date" db:"deposit_date"`
	Status        DepositStatus   `json:"status" db:"status"`
	AdminNotes    string          `json:"admin_notes" db:"admin_notes"`
	ReviewedBy    *int64          `json:"reviewed_by,omitempty" db:"reviewed_by"`
	ReviewedAt    *time.Time      `json:"reviewed_at,omitempty" db:"reviewed_at"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

package model

import (
	"time"

	"github.com/google/uuid"
)

type PaymentMethodType string

const (
	MethodTypeAuto   PaymentMethodType = "auto"   // automatic gateway
	MethodTypeManual PaymentMethodType = "manual" // manual bank transfer
)

type PaymentMethod struct {
	ID           uuid.UUID         `json:"id" db:"id"`
	Name         string            `json:"name" db:"name"`
	MethodType   PaymentMethodType `json:"method_type" db:"method_type"`
	IsActive     bool              `json:"is_active" db:"is_active"`
	Instructions string            `json:"instructions" db:"instructions"`
	CreatedAt    time.Time         `json:"created_at" db:"created_at"`
}

// ManualBankDetails is the bank account shown to users for manual
// transfers. Read from site settings, never persisted per deposit.
type ManualBankDetails struct {
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
}

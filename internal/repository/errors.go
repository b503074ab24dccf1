package repository

import "errors"

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrTransactionNotFound   = errors.New("transaction not found")
	ErrDepositNotFound       = errors.New("manual deposit not found")
	ErrPaymentMethodNotFound = errors.New("payment method not found")
	ErrSettingNotFound       = errors.New("setting not found")

	// ErrInsufficientBalance means a debit would exceed the balance
	// derived from completed transactions at the time of the check.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrAlreadyFinalized means a state transition was attempted on a
	// record that is no longer pending. The record is left untouched.
	ErrAlreadyFinalized = errors.New("record already finalized")

	// ErrDuplicateReference is returned after reference generation
	// exhausted its retries on unique constraint violations. It is an
	// internal condition and should not reach callers in practice.
	ErrDuplicateReference = errors.New("duplicate transaction reference")
)

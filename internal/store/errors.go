package store

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrAssetNotFound     = errors.New("asset not found")
	ErrAlreadyOwned      = errors.New("asset already owned")
	ErrDuplicateAsset    = errors.New("duplicate asset reference")
	ErrDuplicateEntry    = errors.New("duplicate ledger entry")
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrStorageUnavailable wraps transient backend failures. Reads may
	// be retried a bounded number of times; mutations must not be
	// retried blindly, the caller re-observes terminal state instead.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrInvariantViolation marks a state the store must never reach
	// (negative balance, reassigned owner). It is surfaced, never
	// swallowed, so an operator can investigate.
	ErrInvariantViolation = errors.New("invariant violation")
)

// InsufficientFundsError carries the balance observed when a debit was
// refused, so the client can render an actionable message without a
// second round trip. Matches ErrInsufficientFunds under errors.Is.
type InsufficientFundsError struct {
	Balance decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: balance %s", e.Balance)
}

func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

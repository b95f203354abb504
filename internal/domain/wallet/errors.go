package wallet

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrWalletNotActive     = errors.New("wallet is not active")
	ErrDescriptionRequired = errors.New("description is required")
	ErrCategoryRequired    = errors.New("category is required")
	ErrReferenceRequired   = errors.New("idempotency key is required")
	ErrInvalidStatus       = errors.New("invalid wallet status")
)

// InsufficientBalanceError is returned when a debit exceeds the current
// balance. No mutation and no ledger row are produced for the attempt.
type InsufficientBalanceError struct {
	Required  int64
	Available int64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: required %d, available %d", e.Required, e.Available)
}

// IsInsufficientBalance reports whether err is an InsufficientBalanceError
func IsInsufficientBalance(err error) (*InsufficientBalanceError, bool) {
	var ibe *InsufficientBalanceError
	if errors.As(err, &ibe) {
		return ibe, true
	}
	return nil, false
}

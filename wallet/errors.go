// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package wallet

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
)

var (
	// ErrNilTransaction is returned when a nil transaction is passed where
	// a value is required.
	ErrNilTransaction = errors.New("transaction is nil")
	// ErrZeroAmount is returned when a transaction is requested for a zero amount.
	ErrZeroAmount = errors.New("transaction amount is zero")
	// ErrNoAddress is returned when no destination or change address is available.
	ErrNoAddress = errors.New("no address available")
	// ErrFeeUnknown is returned when a transaction fee cannot be computed
	// because some of its inputs are not funded by registered transactions.
	ErrFeeUnknown = errors.New("transaction fee is unknown")
	// ErrUnknownOutput is returned when the requested outpoint is not in
	// the unspent output set.
	ErrUnknownOutput = errors.New("unknown wallet output")
	// ErrOutputLeased is returned when the requested outpoint is already
	// reserved by an active lease.
	ErrOutputLeased = errors.New("output is already leased")
	// ErrUnknownLease is returned when a lease release does not match an
	// active lease.
	ErrUnknownLease = errors.New("unknown output lease")
)

// InsufficientFundsError is the error type to describe failed coin
// selection with details.
type InsufficientFundsError struct {
	Need btcutil.Amount
	Have btcutil.Amount
}

// NewInsufficientFundsError is a constructor for InsufficientFundsError.
func NewInsufficientFundsError(need, have btcutil.Amount) *InsufficientFundsError {
	return &InsufficientFundsError{Need: need, Have: have}
}

// Error returns error description.
func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: need %s, have %s", e.Need, e.Have)
}

// Is implements comparator method for [errors] package, any two
// insufficient funds errors match regardless of amounts.
func (e *InsufficientFundsError) Is(target error) bool {
	_, ok := target.(*InsufficientFundsError)
	return ok
}

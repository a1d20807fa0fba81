// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package wallet

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
)

const (
	// DefaultFeePerKB is the fee rate used when none is configured, the
	// common minimum relay rate.
	DefaultFeePerKB btcutil.Amount = 1000
	// MaxFeePerKB bounds the configurable fee rate.
	MaxFeePerKB = DefaultFeePerKB * 1000
)

// SetFeePerKB sets the fee rate applied to created transactions. Rates
// are clamped into [DefaultFeePerKB; MaxFeePerKB].
func (w *Wallet) SetFeePerKB(feePerKB btcutil.Amount) {
	w.mu.Lock()
	defer w.mu.Unlock()

	clamped := clampFeePerKB(feePerKB)
	if clamped != feePerKB {
		log.Warnf("Fee rate %v clamped to %v", feePerKB, clamped)
	}
	w.feePerKB = clamped
}

// FeePerKB returns the fee rate applied to created transactions.
func (w *Wallet) FeePerKB() btcutil.Amount {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.feePerKB
}

// FeeForTxSize returns the fee the wallet will add for a transaction of
// the given size in bytes.
func (w *Wallet) FeeForTxSize(size int) btcutil.Amount {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return feeForSize(w.feePerKB, size)
}

// FeeForTransaction returns the fee paid by the given transaction, the
// sum of its input amounts minus the sum of its output amounts. The fee
// is computable only when every input is funded by a registered
// transaction, ErrFeeUnknown is returned otherwise.
func (w *Wallet) FeeForTransaction(tx *Transaction) (btcutil.Amount, error) {
	if tx == nil {
		return 0, ErrNilTransaction
	}

	w.mu.RLock()
	defer w.mu.RUnlock()

	var inputTotal btcutil.Amount
	for _, in := range tx.Inputs {
		funding, ok := w.txIndex[in.PrevOut.Hash]
		if !ok || in.PrevOut.Index >= uint32(len(funding.Outputs)) {
			return 0, ErrFeeUnknown
		}

		inputTotal += funding.Outputs[in.PrevOut.Index].Amount
	}

	var outputTotal btcutil.Amount
	for _, out := range tx.Outputs {
		outputTotal += out.Amount
	}
	if outputTotal > inputTotal {
		return 0, fmt.Errorf("transaction outputs %v exceed inputs %v", outputTotal, inputTotal)
	}

	return inputTotal - outputTotal, nil
}

// feeForSize computes the fee for a transaction of the given size at the
// given rate, rounded up to the nearest 100 satoshi.
func feeForSize(feePerKB btcutil.Amount, size int) btcutil.Amount {
	fee := int64(size) * int64(feePerKB) / 1000

	return btcutil.Amount((fee + 99) / 100 * 100)
}

// clampFeePerKB forces a fee rate into the supported range.
func clampFeePerKB(feePerKB btcutil.Amount) btcutil.Amount {
	if feePerKB < DefaultFeePerKB {
		return DefaultFeePerKB
	}
	if feePerKB > MaxFeePerKB {
		return MaxFeePerKB
	}

	return feePerKB
}

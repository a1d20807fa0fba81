// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package wallet

import (
	"time"

	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

// lockTimeHorizon is how far ahead the wall clock may run and still
// satisfy a timestamp lock time.
const lockTimeHorizon = 10 * time.Minute

// IsTransactionValid returns true if no registered wallet transaction
// spends any of the given transaction's inputs and no input-funding
// wallet transaction is itself invalid. The transaction does not have to
// be registered, externally received transactions are evaluated against
// the current ledger state. Inputs funded by transactions unknown to the
// ledger are treated as non-conflicting.
func (w *Wallet) IsTransactionValid(tx *Transaction) bool {
	if tx == nil {
		return false
	}

	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.isValidLocked(tx)
}

func (w *Wallet) isValidLocked(tx *Transaction) bool {
	// only unconfirmed transactions can be invalid.
	if tx.BlockHeight != HeightUnconfirmed {
		return true
	}

	if _, ok := w.txIndex[tx.Hash]; ok {
		_, bad := w.invalid[tx.Hash]
		return !bad
	}

	for _, in := range tx.Inputs {
		if spender, spent := w.spentOutputs[in.PrevOut]; spent && spender != tx.Hash {
			return false
		}
		if funding, ok := w.txIndex[in.PrevOut.Hash]; ok && !w.isValidLocked(funding) {
			return false
		}
	}

	return true
}

// IsTransactionPostdated returns true if the transaction will not be
// valid by blockHeight + 1 and will not become valid within the next ten
// minutes of wall clock time. Used to exclude not yet spendable outputs
// from coin selection and balance figures.
func (w *Wallet) IsTransactionPostdated(tx *Transaction, blockHeight uint32) bool {
	if tx == nil {
		return false
	}

	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.isPostdatedLocked(tx, blockHeight)
}

func (w *Wallet) isPostdatedLocked(tx *Transaction, blockHeight uint32) bool {
	if tx.BlockHeight != HeightUnconfirmed || tx.LockTime == 0 {
		return false
	}

	// lock time is ignored unless some input opts into it.
	enabled := false
	for _, in := range tx.Inputs {
		if in.Sequence < wire.MaxTxInSequenceNum {
			enabled = true
			break
		}
	}
	if !enabled {
		return false
	}

	if tx.LockTime < txscript.LockTimeThreshold {
		return tx.LockTime > blockHeight+1
	}

	return int64(tx.LockTime) > w.clock.Now().Add(lockTimeHorizon).Unix()
}

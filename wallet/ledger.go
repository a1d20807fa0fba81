// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package wallet

import (
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/davecgh/go-spew/spew"
)

// RegisterTransaction adds the transaction to the ledger, or returns
// false if it is not associated with the wallet. Registration is
// idempotent on the transaction hash. The wallet keeps its own copy, the
// caller is free to reuse the passed value.
func (w *Wallet) RegisterTransaction(tx *Transaction) (bool, error) {
	if tx == nil {
		return false, ErrNilTransaction
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.txIndex[tx.Hash]; ok {
		return true, nil
	}
	if !w.containsTransactionLocked(tx) {
		log.Debugf("Rejected transaction %v: no wallet-relevant inputs or outputs", tx.Hash)
		return false, nil
	}

	record := tx.snapshot()
	w.insertTxLocked(&record)
	w.txIndex[record.Hash] = &record

	prevBalance := w.balance
	w.replayLocked()

	log.Debugf("Registered transaction %v, balance %v", record.Hash, w.balance)
	log.Tracef("Transaction %v: %v", record.Hash,
		newLogClosure(func() string { return spew.Sdump(record) }))

	added := record.snapshot()
	w.enqueue(func(n Notifier) { n.TransactionAdded(added) })
	if w.balance != prevBalance {
		w.notifyBalanceLocked()
	}

	return true, nil
}

// RemoveTransaction removes the transaction with the given hash along
// with any registered transactions that spend its outputs, directly or
// through a chain of spends. Removing an unknown hash is a no-op.
func (w *Wallet) RemoveTransaction(hash chainhash.Hash) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.txIndex[hash]; !ok {
		return
	}

	// dependents go first so that observers never see a spend of an
	// already removed transaction.
	removal := make([]chainhash.Hash, 0, 1)
	w.collectRemovalsLocked(hash, make(map[chainhash.Hash]struct{}), &removal)

	for _, h := range removal {
		delete(w.txIndex, h)
	}
	kept := w.txs[:0]
	for _, tx := range w.txs {
		if _, ok := w.txIndex[tx.Hash]; ok {
			kept = append(kept, tx)
		}
	}
	w.txs = kept

	prevBalance := w.balance
	w.replayLocked()

	log.Debugf("Removed %d transaction(s) rooted at %v, balance %v",
		len(removal), hash, w.balance)

	for _, h := range removal {
		hash := h
		w.enqueue(func(n Notifier) { n.TransactionRemoved(hash) })
	}
	if w.balance != prevBalance {
		w.notifyBalanceLocked()
	}
}

// UpdateTransaction sets the block height and timestamp of a registered
// transaction when its confirmation state changes. Heights above the
// current best advance the wallet chain view even for unknown hashes.
func (w *Wallet) UpdateTransaction(hash chainhash.Hash, blockHeight uint32, timestamp time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if blockHeight != HeightUnconfirmed && blockHeight > w.bestHeight {
		w.bestHeight = blockHeight
	}

	tx, ok := w.txIndex[hash]
	if !ok || (tx.BlockHeight == blockHeight && tx.Timestamp.Equal(timestamp)) {
		return
	}

	tx.BlockHeight = blockHeight
	tx.Timestamp = timestamp

	prevBalance := w.balance
	w.replayLocked()

	w.enqueue(func(n Notifier) { n.TransactionUpdated(hash, blockHeight, timestamp) })
	if w.balance != prevBalance {
		w.notifyBalanceLocked()
	}
}

// SetTxUnconfirmedAfter strips confirmation metadata from transactions
// confirmed above the given height and rewinds the wallet chain view to
// it, used when the chain reorganizes. Returns the affected hashes.
func (w *Wallet) SetTxUnconfirmedAfter(height uint32) []chainhash.Hash {
	w.mu.Lock()
	defer w.mu.Unlock()

	var updated []*Transaction
	for _, tx := range w.txs {
		if tx.BlockHeight == HeightUnconfirmed || tx.BlockHeight <= height {
			continue
		}

		tx.BlockHeight = HeightUnconfirmed
		updated = append(updated, tx)
	}
	w.bestHeight = height

	if len(updated) == 0 {
		return nil
	}

	prevBalance := w.balance
	w.replayLocked()

	log.Infof("Unconfirmed %d transaction(s) above height %d", len(updated), height)

	hashes := make([]chainhash.Hash, 0, len(updated))
	for _, tx := range updated {
		hash, timestamp := tx.Hash, tx.Timestamp
		hashes = append(hashes, hash)
		w.enqueue(func(n Notifier) { n.TransactionUpdated(hash, HeightUnconfirmed, timestamp) })
	}
	if w.balance != prevBalance {
		w.notifyBalanceLocked()
	}

	return hashes
}

// containsTransactionLocked reports whether the transaction pays a wallet
// address or spends an output of a registered wallet transaction.
func (w *Wallet) containsTransactionLocked(tx *Transaction) bool {
	for _, out := range tx.Outputs {
		if out.Address != "" && w.addressBook.ContainsAddress(out.Address) {
			return true
		}
	}
	for _, in := range tx.Inputs {
		funding, ok := w.txIndex[in.PrevOut.Hash]
		if !ok || in.PrevOut.Index >= uint32(len(funding.Outputs)) {
			continue
		}

		addr := funding.Outputs[in.PrevOut.Index].Address
		if addr != "" && w.addressBook.ContainsAddress(addr) {
			return true
		}
	}

	return false
}

// insertTxLocked places the transaction into replay order: before the
// first registered transaction that spends any of its outputs, at the end
// otherwise. Registration order is preserved for independent transactions.
func (w *Wallet) insertTxLocked(tx *Transaction) {
	at := len(w.txs)
	for i, t := range w.txs {
		if t.spends(tx.Hash) {
			at = i
			break
		}
	}

	w.txs = append(w.txs, nil)
	copy(w.txs[at+1:], w.txs[at:])
	w.txs[at] = tx
}

// collectRemovalsLocked appends the given transaction and, ahead of it,
// every registered transaction spending its outputs, to arbitrary depth.
func (w *Wallet) collectRemovalsLocked(hash chainhash.Hash, seen map[chainhash.Hash]struct{}, out *[]chainhash.Hash) {
	if _, done := seen[hash]; done {
		return
	}
	seen[hash] = struct{}{}

	for _, tx := range w.txs {
		if tx.Hash != hash && tx.spends(hash) {
			w.collectRemovalsLocked(tx.Hash, seen, out)
		}
	}

	*out = append(*out, hash)
}

// replayLocked rebuilds all derived ledger state by replaying registered
// transactions in order. An unconfirmed transaction spending an output
// consumed by an earlier one, or funded by an invalid one, is marked
// invalid and has no further effect. A postdated transaction, or one
// funded by a postdated transaction, is marked pending: its inputs stay
// reserved against reuse but neither its inputs nor outputs move the
// balance until it becomes final.
func (w *Wallet) replayLocked() {
	w.utxos = w.utxos[:0]
	w.utxoIndex = make(map[wire.OutPoint]*UTXO, len(w.utxoIndex))
	w.spentOutputs = make(map[wire.OutPoint]chainhash.Hash, len(w.spentOutputs))
	w.invalid = make(map[chainhash.Hash]struct{})
	w.pending = make(map[chainhash.Hash]struct{})
	w.balanceHist = w.balanceHist[:0]
	w.totalSent, w.totalReceived = 0, 0

	var balance btcutil.Amount
	for _, tx := range w.txs {
		if tx.BlockHeight == HeightUnconfirmed && w.conflictsLocked(tx) {
			w.invalid[tx.Hash] = struct{}{}
			w.balanceHist = append(w.balanceHist, balance)
			continue
		}

		// inputs are reserved even when the spend is still pending.
		for _, in := range tx.Inputs {
			w.spentOutputs[in.PrevOut] = tx.Hash
		}

		if tx.BlockHeight == HeightUnconfirmed && w.spendIsPendingLocked(tx) {
			w.pending[tx.Hash] = struct{}{}
			w.balanceHist = append(w.balanceHist, balance)
			continue
		}

		for idx, out := range tx.Outputs {
			if out.Address == "" || !w.addressBook.ContainsAddress(out.Address) {
				continue
			}
			w.markUsedLocked(out.Address)

			op := wire.OutPoint{Hash: tx.Hash, Index: uint32(idx)}
			if _, ok := w.utxoIndex[op]; ok {
				continue
			}

			utxo := &UTXO{OutPoint: op, Amount: out.Amount, PkScript: out.PkScript, Address: out.Address}
			w.utxos = append(w.utxos, utxo)
			w.utxoIndex[op] = utxo
			balance += out.Amount
			w.totalReceived += out.Amount
		}

		// registration order does not guarantee spends come after their
		// funding transactions, so sweep the whole UTXO set against the
		// whole spent output set.
		for i := len(w.utxos) - 1; i >= 0; i-- {
			utxo := w.utxos[i]
			spender, ok := w.spentOutputs[utxo.OutPoint]
			if !ok {
				continue
			}
			if _, stillPending := w.pending[spender]; stillPending {
				continue
			}

			balance -= utxo.Amount
			w.totalSent += utxo.Amount
			delete(w.utxoIndex, utxo.OutPoint)
			w.utxos = append(w.utxos[:i], w.utxos[i+1:]...)
		}

		w.balanceHist = append(w.balanceHist, balance)
	}

	w.balance = balance
}

// conflictsLocked reports whether any input of the transaction is already
// consumed by a previously replayed transaction or funded by an invalid one.
func (w *Wallet) conflictsLocked(tx *Transaction) bool {
	for _, in := range tx.Inputs {
		if _, spent := w.spentOutputs[in.PrevOut]; spent {
			return true
		}
		if _, bad := w.invalid[in.PrevOut.Hash]; bad {
			return true
		}
	}

	return false
}

// spendIsPendingLocked reports whether the transaction is postdated or
// funded by a transaction that is itself still pending.
func (w *Wallet) spendIsPendingLocked(tx *Transaction) bool {
	if w.isPostdatedLocked(tx, w.bestHeight) {
		return true
	}
	for _, in := range tx.Inputs {
		if _, ok := w.pending[in.PrevOut.Hash]; ok {
			return true
		}
	}

	return false
}

// markUsedLocked records an address as used once, advancing the address
// book lookahead on first use.
func (w *Wallet) markUsedLocked(addr string) {
	if _, used := w.usedAddrs[addr]; used {
		return
	}

	w.usedAddrs[addr] = struct{}{}
	w.addressBook.MarkUsed(addr)
}

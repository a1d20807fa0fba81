// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package wallet

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Balance returns the current wallet balance, not including transactions
// known to be invalid or not yet final.
func (w *Wallet) Balance() btcutil.Amount {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.balance
}

// UTXOs returns all unspent wallet outputs in replay order.
func (w *Wallet) UTXOs() []UTXO {
	w.mu.RLock()
	defer w.mu.RUnlock()

	utxos := make([]UTXO, 0, len(w.utxos))
	for _, utxo := range w.utxos {
		utxos = append(utxos, *utxo)
	}

	return utxos
}

// Transactions returns all registered transactions, oldest first.
func (w *Wallet) Transactions() []Transaction {
	w.mu.RLock()
	defer w.mu.RUnlock()

	txs := make([]Transaction, 0, len(w.txs))
	for _, tx := range w.txs {
		txs = append(txs, tx.snapshot())
	}

	return txs
}

// TransactionForHash returns the registered transaction with the given hash.
func (w *Wallet) TransactionForHash(hash chainhash.Hash) (Transaction, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	tx, ok := w.txIndex[hash]
	if !ok {
		return Transaction{}, false
	}

	return tx.snapshot(), true
}

// ContainsTxHash reports whether the given hash is registered in the wallet.
func (w *Wallet) ContainsTxHash(hash chainhash.Hash) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()

	_, ok := w.txIndex[hash]

	return ok
}

// ContainsTransaction reports whether the transaction is associated with
// the wallet, even if it has not been registered.
func (w *Wallet) ContainsTransaction(tx *Transaction) bool {
	if tx == nil {
		return false
	}

	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.containsTransactionLocked(tx)
}

// ContainsAddress reports whether the address is controlled by the wallet.
func (w *Wallet) ContainsAddress(addr string) bool {
	return w.addressBook.ContainsAddress(addr)
}

// AddressIsUsed reports whether the address previously appeared in a
// registered wallet transaction output.
func (w *Wallet) AddressIsUsed(addr string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()

	_, used := w.usedAddrs[addr]

	return used
}

// ReceiveAddress returns the first unused external address.
func (w *Wallet) ReceiveAddress() (btcutil.Address, error) {
	return w.addressBook.ReceiveAddress()
}

// ChangeAddress returns the first unused internal address.
func (w *Wallet) ChangeAddress() (btcutil.Address, error) {
	return w.addressBook.ChangeAddress()
}

// TotalSent returns the total amount ever spent from the wallet,
// including change and fees.
func (w *Wallet) TotalSent() btcutil.Amount {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.totalSent
}

// TotalReceived returns the total amount ever received by wallet addresses.
func (w *Wallet) TotalReceived() btcutil.Amount {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.totalReceived
}

// AmountReceivedFromTx returns the amount the transaction pays to wallet
// addresses.
func (w *Wallet) AmountReceivedFromTx(tx *Transaction) btcutil.Amount {
	if tx == nil {
		return 0
	}

	w.mu.RLock()
	defer w.mu.RUnlock()

	var received btcutil.Amount
	for _, out := range tx.Outputs {
		if out.Address != "" && w.addressBook.ContainsAddress(out.Address) {
			received += out.Amount
		}
	}

	return received
}

// AmountSentByTx returns the amount of wallet-owned outputs the
// transaction consumes, change and fee included.
func (w *Wallet) AmountSentByTx(tx *Transaction) btcutil.Amount {
	if tx == nil {
		return 0
	}

	w.mu.RLock()
	defer w.mu.RUnlock()

	var sent btcutil.Amount
	for _, in := range tx.Inputs {
		funding, ok := w.txIndex[in.PrevOut.Hash]
		if !ok || in.PrevOut.Index >= uint32(len(funding.Outputs)) {
			continue
		}

		out := funding.Outputs[in.PrevOut.Index]
		if out.Address != "" && w.addressBook.ContainsAddress(out.Address) {
			sent += out.Amount
		}
	}

	return sent
}

// BalanceAfterTx returns the historical wallet balance as of immediately
// after the given transaction took effect, replaying registration order,
// or the current balance if the transaction is not registered.
func (w *Wallet) BalanceAfterTx(tx *Transaction) btcutil.Amount {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if tx != nil {
		for i, t := range w.txs {
			if t.Hash == tx.Hash && i < len(w.balanceHist) {
				return w.balanceHist[i]
			}
		}
	}

	return w.balance
}

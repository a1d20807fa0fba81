// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package wallet

import (
	"fmt"
	"math"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcwallet/wallet/txrules"
	"github.com/davecgh/go-spew/spew"

	"github.com/BoostyLabs/walletcore/feebasis"
	"github.com/BoostyLabs/walletcore/internal/sequencereader"
)

const (
	// txVersion defines transaction version for created transactions.
	txVersion int32 = 2

	// Rough per-component virtual sizes of a created transaction,
	// witness program spending inputs and segwit outputs.
	headerSizeVBytes = 11
	inputSizeVBytes  = 68
	outputSizeVBytes = 31

	// p2wpkhPkScriptSize is the size of a pay-to-witness-pubkey-hash
	// script, used to price spending a change output later.
	p2wpkhPkScriptSize = 22
)

// feeEstimateFunc prices a transaction of the given shape.
type feeEstimateFunc func(inputs, outputs int) (btcutil.Amount, error)

// CreateTransaction returns an unsigned transaction sending the given
// amount from the wallet to the address, priced at the wallet fee rate.
//
// Inputs are selected greedily from spendable unspent outputs in replay
// order, oldest funding transaction first, so selection is reproducible
// for a fixed ledger state. The fee is re-estimated after every added
// input until accumulated value covers amount plus fee. Change goes to a
// fresh internal address, change below the dust threshold is absorbed
// into the fee instead.
func (w *Wallet) CreateTransaction(amount btcutil.Amount, addr string) (*Transaction, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	feePerKB := w.feePerKB
	estimate := func(inputs, outputs int) (btcutil.Amount, error) {
		return feeForSize(feePerKB, estimateTxVSize(inputs, outputs)), nil
	}

	return w.createTransactionLocked(amount, addr, estimate)
}

// CreateTransactionWithFeeBasis prices the transaction through the given
// fee basis instead of the wallet fee rate. A size-based basis is resized
// as inputs are added, other kinds price the operation as a whole. The
// basis fee must be denominated in the chain base unit.
func (w *Wallet) CreateTransactionWithFeeBasis(amount btcutil.Amount, addr string, basis *feebasis.FeeBasis) (*Transaction, error) {
	if basis == nil {
		return nil, fmt.Errorf("create transaction: fee basis is nil")
	}

	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.createTransactionLocked(amount, addr, basisEstimator(basis))
}

func (w *Wallet) createTransactionLocked(amount btcutil.Amount, addr string, estimateFee feeEstimateFunc) (*Transaction, error) {
	if amount <= 0 {
		return nil, ErrZeroAmount
	}
	if addr == "" {
		return nil, ErrNoAddress
	}

	destScript, err := w.payToAddrScript(addr)
	if err != nil {
		return nil, fmt.Errorf("destination address: %w", err)
	}

	// destination plus change, estimation always reserves the change slot.
	const outputs = 2

	reader := sequencereader.New(w.spendableUTXOsLocked())

	var (
		selected []*UTXO
		total    btcutil.Amount
		fee      btcutil.Amount
	)
	for {
		fee, err = estimateFee(len(selected), outputs)
		if err != nil {
			return nil, err
		}
		if len(selected) > 0 && total >= amount+fee {
			break
		}
		if !reader.HasNext() {
			return nil, NewInsufficientFundsError(amount+fee, total)
		}

		utxo, err := reader.Next()
		if err != nil {
			return nil, err
		}

		selected = append(selected, utxo)
		total += utxo.Amount
	}

	tx := &Transaction{Version: txVersion}
	msg := wire.NewMsgTx(txVersion)
	for _, utxo := range selected {
		op := utxo.OutPoint
		tx.Inputs = append(tx.Inputs, TxInput{PrevOut: op, Sequence: wire.MaxTxInSequenceNum})
		msg.AddTxIn(wire.NewTxIn(&op, nil, nil))
	}

	tx.Outputs = append(tx.Outputs, TxOutput{Amount: amount, PkScript: destScript, Address: addr})
	msg.AddTxOut(wire.NewTxOut(int64(amount), destScript))

	// dust change is not worth a later spend, absorb it into the fee.
	feePaid := total - amount
	change := total - amount - fee
	if change > 0 && !txrules.IsDustAmount(change, p2wpkhPkScriptSize, w.dustRelayFee) {
		changeAddr, err := w.addressBook.ChangeAddress()
		if err != nil {
			log.Errorf("No change address available: %v", err)
			return nil, ErrNoAddress
		}

		changeScript, err := txscript.PayToAddrScript(changeAddr)
		if err != nil {
			return nil, fmt.Errorf("change address: %w", err)
		}

		tx.Outputs = append(tx.Outputs, TxOutput{
			Amount:   change,
			PkScript: changeScript,
			Address:  changeAddr.EncodeAddress(),
		})
		msg.AddTxOut(wire.NewTxOut(int64(change), changeScript))
		feePaid = fee
	}

	tx.Hash = msg.TxHash()

	log.Debugf("Created transaction %v: %v to %s, fee %v, %d input(s)",
		tx.Hash, amount, addr, feePaid, len(tx.Inputs))
	log.Tracef("Created transaction: %v", newLogClosure(func() string { return spew.Sdump(tx) }))

	return tx, nil
}

// spendableUTXOsLocked returns unspent outputs eligible for selection in
// replay order: not reserved by a pending spend and not leased.
func (w *Wallet) spendableUTXOsLocked() []*UTXO {
	spendable := make([]*UTXO, 0, len(w.utxos))
	for _, utxo := range w.utxos {
		if _, reserved := w.spentOutputs[utxo.OutPoint]; reserved {
			continue
		}
		if w.isLeasedLocked(utxo.OutPoint) {
			continue
		}

		spendable = append(spendable, utxo)
	}

	return spendable
}

// payToAddrScript resolves an address string into its output script.
func (w *Wallet) payToAddrScript(addr string) ([]byte, error) {
	decoded, err := btcutil.DecodeAddress(addr, w.chainParams)
	if err != nil {
		return nil, err
	}

	return txscript.PayToAddrScript(decoded)
}

// basisEstimator adapts a fee basis to shape-driven fee estimation.
func basisEstimator(basis *feebasis.FeeBasis) feeEstimateFunc {
	return func(inputs, outputs int) (btcutil.Amount, error) {
		b := basis
		if basis.Kind() == feebasis.KindSizeBased {
			resized, err := basis.ForSize(uint64(estimateTxVSize(inputs, outputs)))
			if err != nil {
				return 0, err
			}
			b = resized
		}

		fee, err := b.Fee()
		if err != nil {
			return 0, fmt.Errorf("fee basis: %w", err)
		}

		value, err := fee.Uint64()
		if err != nil || value > math.MaxInt64 {
			return 0, fmt.Errorf("fee basis: fee %s exceeds representable amount", fee)
		}

		return btcutil.Amount(value), nil
	}
}

// estimateTxVSize returns the rough virtual size in vBytes of a
// transaction with the given shape.
func estimateTxVSize(inputs, outputs int) int {
	return headerSizeVBytes + inputs*inputSizeVBytes + outputs*outputSizeVBytes
}

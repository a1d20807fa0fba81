// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package wallet

import (
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// HeightUnconfirmed is the block height of a transaction that is not
// included in any block yet.
const HeightUnconfirmed uint32 = 0

// TxInput describes a transaction input spending a previously created output.
type TxInput struct {
	PrevOut         wire.OutPoint
	SignatureScript []byte
	Witness         [][]byte
	Sequence        uint32
}

// TxOutput describes a transaction output.
type TxOutput struct {
	Amount   btcutil.Amount
	PkScript []byte
	Address  string // resolved recipient address, empty for non-standard scripts.
}

// Transaction describes a wallet-visible transaction identified by its
// content hash. Inputs, outputs and lock time never change after
// construction, block height and timestamp are confirmation metadata
// updated as the chain view advances.
type Transaction struct {
	Hash     chainhash.Hash
	Version  int32
	Inputs   []TxInput
	Outputs  []TxOutput
	LockTime uint32

	BlockHeight uint32 // HeightUnconfirmed until included in a block.
	Timestamp   time.Time
}

// UTXO describes an unspent wallet-owned transaction output. Identified
// by the outpoint, no two UTXOs with an equal outpoint coexist.
type UTXO struct {
	OutPoint wire.OutPoint
	Amount   btcutil.Amount
	PkScript []byte
	Address  string // output recipient address.
}

// snapshot returns a shallow copy safe to hand out of the critical
// section. Inputs and outputs are shared, they are immutable by contract.
func (tx *Transaction) snapshot() Transaction {
	return *tx
}

// spends reports whether tx consumes any output of the given transaction.
func (tx *Transaction) spends(hash chainhash.Hash) bool {
	for _, in := range tx.Inputs {
		if in.PrevOut.Hash == hash {
			return true
		}
	}

	return false
}

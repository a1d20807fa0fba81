// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package keyring

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/BoostyLabs/walletcore/wallet"
)

// Signer signs wallet transactions with the private keys matching the
// key ring derivation paths.
type Signer struct {
	keyRing  *KeyRing
	branches [2]*hdkeychain.ExtendedKey
}

// NewSigner is a constructor for Signer. The account key must be the
// private counterpart of the key the ring derives addresses from.
func NewSigner(keyRing *KeyRing, accountKey *hdkeychain.ExtendedKey) (*Signer, error) {
	if keyRing == nil {
		return nil, errors.New("key ring is required")
	}
	if accountKey == nil || !accountKey.IsPrivate() {
		return nil, errors.New("private account key is required")
	}

	signer := &Signer{keyRing: keyRing}
	for branchNo := range signer.branches {
		key, err := accountKey.Derive(uint32(branchNo))
		if err != nil {
			return nil, fmt.Errorf("derive branch %d: %w", branchNo, err)
		}
		signer.branches[branchNo] = key
	}

	return signer, nil
}

// SignTransaction signs and finalizes every input of the packet in
// place. All inputs must spend witness outputs owned by the key ring.
func (signer *Signer) SignTransaction(packet *psbt.Packet) error {
	if packet == nil {
		return errors.New("signing packet is nil")
	}

	tx := packet.UnsignedTx
	if len(packet.Inputs) != len(tx.TxIn) {
		return errors.New("packet inputs do not match the unsigned transaction")
	}

	prevOuts := make(map[wire.OutPoint]*wire.TxOut, len(tx.TxIn))
	for idx := range packet.Inputs {
		witnessUtxo := packet.Inputs[idx].WitnessUtxo
		if witnessUtxo == nil {
			return fmt.Errorf("input %d: missing witness utxo", idx)
		}

		prevOuts[tx.TxIn[idx].PreviousOutPoint] = witnessUtxo
	}

	sigHashes := txscript.NewTxSigHashes(tx, txscript.NewMultiPrevOutFetcher(prevOuts))
	for idx := range packet.Inputs {
		if err := signer.signInput(packet, idx, sigHashes); err != nil {
			return fmt.Errorf("input %d: %w", idx, err)
		}
	}

	return nil
}

// signInput signs a single pay-to-witness-pubkey-hash input.
func (signer *Signer) signInput(packet *psbt.Packet, idx int, sigHashes *txscript.TxSigHashes) error {
	input := &packet.Inputs[idx]

	privKey, err := signer.keyForScript(input.WitnessUtxo.PkScript)
	if err != nil {
		return err
	}

	sigHashType := input.SighashType
	if sigHashType == 0 {
		sigHashType = txscript.SigHashAll
	}

	witness, err := txscript.WitnessSignature(
		packet.UnsignedTx, sigHashes, idx,
		input.WitnessUtxo.Value, input.WitnessUtxo.PkScript,
		sigHashType, privKey, true,
	)
	if err != nil {
		return err
	}

	input.FinalScriptWitness, err = serializeWitness(witness)

	return err
}

// keyForScript resolves the output script to a key ring address and
// derives its private key.
func (signer *Signer) keyForScript(pkScript []byte) (*btcec.PrivateKey, error) {
	_, addrs, _, err := txscript.ExtractPkScriptAddrs(pkScript, signer.keyRing.chainParams)
	if err != nil {
		return nil, err
	}
	if len(addrs) != 1 {
		return nil, errors.New("unsupported output script")
	}

	branchNo, index, ok := signer.keyRing.AddressPath(addrs[0].EncodeAddress())
	if !ok {
		return nil, fmt.Errorf("address %s is not derived by the key ring", addrs[0])
	}

	child, err := signer.branches[branchNo].Derive(index)
	if err != nil {
		return nil, fmt.Errorf("derive child %d: %w", index, err)
	}

	return child.ECPrivKey()
}

// serializeWitness encodes a witness stack in the wire format expected
// by finalized packet inputs.
func serializeWitness(witness wire.TxWitness) ([]byte, error) {
	var buf bytes.Buffer
	if err := wire.WriteVarInt(&buf, 0, uint64(len(witness))); err != nil {
		return nil, err
	}
	for _, item := range witness {
		if err := wire.WriteVarBytes(&buf, 0, item); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

// NewPacket assembles an unsigned signing packet from a wallet
// transaction and the unspent outputs it consumes.
func NewPacket(tx *wallet.Transaction, utxos []wallet.UTXO) (*psbt.Packet, error) {
	if tx == nil {
		return nil, errors.New("transaction is nil")
	}

	prevOuts := make(map[wire.OutPoint]wallet.UTXO, len(utxos))
	for _, utxo := range utxos {
		prevOuts[utxo.OutPoint] = utxo
	}

	msg := wire.NewMsgTx(tx.Version)
	msg.LockTime = tx.LockTime
	for i := range tx.Inputs {
		op := tx.Inputs[i].PrevOut
		txIn := wire.NewTxIn(&op, nil, nil)
		txIn.Sequence = tx.Inputs[i].Sequence
		msg.AddTxIn(txIn)
	}
	for _, out := range tx.Outputs {
		msg.AddTxOut(wire.NewTxOut(int64(out.Amount), out.PkScript))
	}

	packet, err := psbt.NewFromUnsignedTx(msg)
	if err != nil {
		return nil, err
	}

	for idx, in := range tx.Inputs {
		utxo, ok := prevOuts[in.PrevOut]
		if !ok {
			return nil, fmt.Errorf("input %d: unknown previous output %v", idx, in.PrevOut)
		}

		packet.Inputs[idx].WitnessUtxo = wire.NewTxOut(int64(utxo.Amount), utxo.PkScript)
		packet.Inputs[idx].SighashType = txscript.SigHashAll
	}

	return packet, nil
}

// ExtractRawTransaction returns the fully signed transaction in wire
// serialization. Every input of the packet must be finalized.
func ExtractRawTransaction(packet *psbt.Packet) ([]byte, error) {
	signedTx, err := psbt.Extract(packet)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err = signedTx.Serialize(&buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

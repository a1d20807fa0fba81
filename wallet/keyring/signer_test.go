// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package keyring_test

import (
	"bytes"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"

	"github.com/BoostyLabs/walletcore/wallet"
	"github.com/BoostyLabs/walletcore/wallet/keyring"
)

func TestSigner(t *testing.T) {
	account := testAccountKey(t)

	t.Run("requires a private account key", func(t *testing.T) {
		ring := newTestKeyRing(t)

		pub, err := account.Neuter()
		require.NoError(t, err)

		_, err = keyring.NewSigner(ring, pub)
		require.Error(t, err)

		_, err = keyring.NewSigner(nil, account)
		require.Error(t, err)

		_, err = keyring.NewSigner(ring, nil)
		require.Error(t, err)
	})

	t.Run("signs a created wallet transaction", func(t *testing.T) {
		ring := newTestKeyRing(t)
		signer, err := keyring.NewSigner(ring, account)
		require.NoError(t, err)

		w, err := wallet.NewWallet(wallet.Config{AddressBook: ring})
		require.NoError(t, err)

		receive, err := ring.ReceiveAddress()
		require.NoError(t, err)
		script, err := txscript.PayToAddrScript(receive)
		require.NoError(t, err)

		funding := &wallet.Transaction{
			Hash:    chainhash.Hash{0x01},
			Version: 2,
			Inputs: []wallet.TxInput{{
				PrevOut:  wire.OutPoint{Hash: chainhash.Hash{0xf0}},
				Sequence: wire.MaxTxInSequenceNum,
			}},
			Outputs: []wallet.TxOutput{{
				Amount:   100_000,
				PkScript: script,
				Address:  receive.EncodeAddress(),
			}},
		}

		registered, err := w.RegisterTransaction(funding)
		require.NoError(t, err)
		require.True(t, registered)

		dest, err := btcutil.NewAddressWitnessPubKeyHash(bytes.Repeat([]byte{0x11}, 20), &chaincfg.MainNetParams)
		require.NoError(t, err)

		created, err := w.CreateTransaction(40_000, dest.EncodeAddress())
		require.NoError(t, err)

		packet, err := keyring.NewPacket(created, w.UTXOs())
		require.NoError(t, err)
		require.NoError(t, signer.SignTransaction(packet))

		raw, err := keyring.ExtractRawTransaction(packet)
		require.NoError(t, err)

		var signedTx wire.MsgTx
		require.NoError(t, signedTx.Deserialize(bytes.NewReader(raw)))

		// witness data does not alter the transaction hash.
		require.Equal(t, created.Hash, signedTx.TxHash())
		require.Len(t, signedTx.TxIn, len(created.Inputs))
		for _, in := range signedTx.TxIn {
			require.Len(t, in.Witness, 2)
		}
	})

	t.Run("rejects inputs the ring does not own", func(t *testing.T) {
		ring := newTestKeyRing(t)
		signer, err := keyring.NewSigner(ring, account)
		require.NoError(t, err)

		foreign, err := btcutil.NewAddressWitnessPubKeyHash(bytes.Repeat([]byte{0x33}, 20), &chaincfg.MainNetParams)
		require.NoError(t, err)
		foreignScript, err := txscript.PayToAddrScript(foreign)
		require.NoError(t, err)

		tx := &wallet.Transaction{
			Hash:    chainhash.Hash{0x0a},
			Version: 2,
			Inputs: []wallet.TxInput{{
				PrevOut:  wire.OutPoint{Hash: chainhash.Hash{0xaa}},
				Sequence: wire.MaxTxInSequenceNum,
			}},
			Outputs: []wallet.TxOutput{{
				Amount:   10_000,
				PkScript: foreignScript,
				Address:  foreign.EncodeAddress(),
			}},
		}
		utxos := []wallet.UTXO{{
			OutPoint: wire.OutPoint{Hash: chainhash.Hash{0xaa}},
			Amount:   50_000,
			PkScript: foreignScript,
			Address:  foreign.EncodeAddress(),
		}}

		packet, err := keyring.NewPacket(tx, utxos)
		require.NoError(t, err)

		err = signer.SignTransaction(packet)
		require.ErrorContains(t, err, "not derived")
	})

	t.Run("missing witness utxo", func(t *testing.T) {
		ring := newTestKeyRing(t)
		signer, err := keyring.NewSigner(ring, account)
		require.NoError(t, err)

		receive, err := ring.ReceiveAddress()
		require.NoError(t, err)
		script, err := txscript.PayToAddrScript(receive)
		require.NoError(t, err)

		tx := &wallet.Transaction{
			Hash:    chainhash.Hash{0x0b},
			Version: 2,
			Inputs: []wallet.TxInput{{
				PrevOut:  wire.OutPoint{Hash: chainhash.Hash{0xab}},
				Sequence: wire.MaxTxInSequenceNum,
			}},
			Outputs: []wallet.TxOutput{{
				Amount:   10_000,
				PkScript: script,
				Address:  receive.EncodeAddress(),
			}},
		}
		utxos := []wallet.UTXO{{
			OutPoint: wire.OutPoint{Hash: chainhash.Hash{0xab}},
			Amount:   50_000,
			PkScript: script,
			Address:  receive.EncodeAddress(),
		}}

		packet, err := keyring.NewPacket(tx, utxos)
		require.NoError(t, err)
		packet.Inputs[0].WitnessUtxo = nil

		require.ErrorContains(t, signer.SignTransaction(packet), "missing witness utxo")
	})

	t.Run("unknown previous output", func(t *testing.T) {
		tx := &wallet.Transaction{
			Hash:    chainhash.Hash{0x0c},
			Version: 2,
			Inputs: []wallet.TxInput{{
				PrevOut:  wire.OutPoint{Hash: chainhash.Hash{0xac}},
				Sequence: wire.MaxTxInSequenceNum,
			}},
		}

		_, err := keyring.NewPacket(tx, nil)
		require.ErrorContains(t, err, "unknown previous output")

		_, err = keyring.NewPacket(nil, nil)
		require.Error(t, err)
	})

	t.Run("nil packet", func(t *testing.T) {
		ring := newTestKeyRing(t)
		signer, err := keyring.NewSigner(ring, account)
		require.NoError(t, err)

		require.Error(t, signer.SignTransaction(nil))
	})
}

// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package keyring_test

import (
	"bytes"
	"testing"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/require"

	"github.com/BoostyLabs/walletcore/wallet/keyring"
)

func testAccountKey(t *testing.T) *hdkeychain.ExtendedKey {
	t.Helper()

	master, err := hdkeychain.NewMaster(bytes.Repeat([]byte{0x2a}, 32), &chaincfg.MainNetParams)
	require.NoError(t, err)

	return master
}

func newTestKeyRing(t *testing.T) *keyring.KeyRing {
	t.Helper()

	ring, err := keyring.NewKeyRing(keyring.Config{AccountKey: testAccountKey(t)})
	require.NoError(t, err)

	return ring
}

func TestKeyRing(t *testing.T) {
	t.Run("requires an account key", func(t *testing.T) {
		_, err := keyring.NewKeyRing(keyring.Config{})
		require.Error(t, err)
	})

	t.Run("derives addresses from a public account key", func(t *testing.T) {
		pub, err := testAccountKey(t).Neuter()
		require.NoError(t, err)

		ring, err := keyring.NewKeyRing(keyring.Config{AccountKey: pub})
		require.NoError(t, err)

		receive, err := ring.ReceiveAddress()
		require.NoError(t, err)
		change, err := ring.ChangeAddress()
		require.NoError(t, err)

		require.NotEqual(t, receive.EncodeAddress(), change.EncodeAddress())
		require.True(t, ring.ContainsAddress(receive.EncodeAddress()))
		require.True(t, ring.ContainsAddress(change.EncodeAddress()))
		require.False(t, ring.IsInternalAddress(receive.EncodeAddress()))
		require.True(t, ring.IsInternalAddress(change.EncodeAddress()))
		require.False(t, ring.ContainsAddress("bc1q000000000000"))
	})

	t.Run("public and private keys derive the same addresses", func(t *testing.T) {
		pub, err := testAccountKey(t).Neuter()
		require.NoError(t, err)

		privRing := newTestKeyRing(t)
		pubRing, err := keyring.NewKeyRing(keyring.Config{AccountKey: pub})
		require.NoError(t, err)

		privAddr, err := privRing.ReceiveAddress()
		require.NoError(t, err)
		pubAddr, err := pubRing.ReceiveAddress()
		require.NoError(t, err)

		require.Equal(t, privAddr.EncodeAddress(), pubAddr.EncodeAddress())
	})

	t.Run("receive address is stable until used", func(t *testing.T) {
		ring := newTestKeyRing(t)

		first, err := ring.ReceiveAddress()
		require.NoError(t, err)
		again, err := ring.ReceiveAddress()
		require.NoError(t, err)
		require.Equal(t, first.EncodeAddress(), again.EncodeAddress())

		ring.MarkUsed(first.EncodeAddress())

		next, err := ring.ReceiveAddress()
		require.NoError(t, err)
		require.NotEqual(t, first.EncodeAddress(), next.EncodeAddress())

		// used addresses stay recognized.
		require.True(t, ring.ContainsAddress(first.EncodeAddress()))
	})

	t.Run("lookahead advances with use", func(t *testing.T) {
		ring := newTestKeyRing(t)

		// hand out well past the initial gap limit, every address must
		// be fresh and remain recognized.
		seen := make(map[string]struct{})
		for i := 0; i < 25; i++ {
			addr, err := ring.ReceiveAddress()
			require.NoError(t, err)

			_, dup := seen[addr.EncodeAddress()]
			require.False(t, dup, "address %s handed out twice", addr)
			seen[addr.EncodeAddress()] = struct{}{}

			ring.MarkUsed(addr.EncodeAddress())
		}

		for addr := range seen {
			require.True(t, ring.ContainsAddress(addr))
		}
	})

	t.Run("address path", func(t *testing.T) {
		ring := newTestKeyRing(t)

		receive, err := ring.ReceiveAddress()
		require.NoError(t, err)
		change, err := ring.ChangeAddress()
		require.NoError(t, err)

		branchNo, index, ok := ring.AddressPath(receive.EncodeAddress())
		require.True(t, ok)
		require.Equal(t, keyring.ExternalBranch, branchNo)
		require.Zero(t, index)

		branchNo, _, ok = ring.AddressPath(change.EncodeAddress())
		require.True(t, ok)
		require.Equal(t, keyring.InternalBranch, branchNo)

		_, _, ok = ring.AddressPath("unknown")
		require.False(t, ok)
	})

	t.Run("marking a foreign address used is ignored", func(t *testing.T) {
		ring := newTestKeyRing(t)

		before, err := ring.ReceiveAddress()
		require.NoError(t, err)

		ring.MarkUsed("not-ours")

		after, err := ring.ReceiveAddress()
		require.NoError(t, err)
		require.Equal(t, before.EncodeAddress(), after.EncodeAddress())
	})
}

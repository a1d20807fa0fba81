// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package currency_test

import (
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/stretchr/testify/require"

	"github.com/BoostyLabs/walletcore/currency"
)

func TestFiat(t *testing.T) {
	t.Run("LocalAmount", func(t *testing.T) {
		tests := []struct {
			amount btcutil.Amount
			price  float64
			local  int64
		}{
			{btcutil.SatoshiPerBitcoin, 50_000, 50_000},
			{btcutil.SatoshiPerBitcoin / 2, 50_000, 25_000},
			{0, 50_000, 0},
			{1, 50_000, 1}, // never collapses to zero.
			{-btcutil.SatoshiPerBitcoin, 50_000, -50_000},
			{btcutil.SatoshiPerBitcoin, 0, 0},
			{btcutil.SatoshiPerBitcoin, -10, 0},
		}
		for _, test := range tests {
			require.Equal(t, test.local, currency.LocalAmount(test.amount, test.price), test.amount.String())
		}
	})

	t.Run("BitcoinAmount", func(t *testing.T) {
		tests := []struct {
			local  int64
			price  float64
			amount btcutil.Amount
		}{
			{50_000, 50_000, btcutil.SatoshiPerBitcoin},
			{100, 200, btcutil.SatoshiPerBitcoin / 2},
			{-100, 200, -btcutil.SatoshiPerBitcoin / 2},
			{0, 50_000, 0},
			{100, 0, 0},
			{100, -5, 0},
		}
		for _, test := range tests {
			require.Equal(t, test.amount, currency.BitcoinAmount(test.local, test.price), test.local)
		}
	})

	t.Run("round trip", func(t *testing.T) {
		prices := []float64{200, 1_000, 26_500, 50_000, 117_000}
		locals := []int64{1, 20, 100, 12_345, 1_000_000}

		for _, price := range prices {
			for _, local := range locals {
				sats := currency.BitcoinAmount(local, price)
				require.Equal(t, local, currency.LocalAmount(sats, price), "price %v local %v", price, local)
			}
		}
	})

	t.Run("huge local amount clamps to max money", func(t *testing.T) {
		require.Equal(t, btcutil.Amount(btcutil.MaxSatoshi), currency.BitcoinAmount(1<<62, 0.01))
		require.Equal(t, btcutil.Amount(-btcutil.MaxSatoshi), currency.BitcoinAmount(-(1 << 62), 0.01))
	})
}

// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package currency

import (
	"math"

	"github.com/btcsuite/btcd/btcutil"
)

// LocalAmount returns the given amount in local currency units,
// price is local currency units per bitcoin. A non-zero amount never
// collapses to zero, the smallest reported value is one local unit.
func LocalAmount(amount btcutil.Amount, price float64) int64 {
	if price <= 0 {
		return 0
	}

	sats := NewFromUint64(uint64(math.Abs(float64(amount))), UnitSatoshi)
	localAmount := int64(math.Round(sats.Float64In(UnitBitcoin) * price))
	if localAmount == 0 && amount != 0 {
		localAmount = 1
	}
	if amount < 0 {
		localAmount = -localAmount
	}

	return localAmount
}

// BitcoinAmount returns the given local currency amount in satoshis,
// price is local currency units per bitcoin. The result is snapped to the
// lowest decimal precision that still converts back to the same local
// amount, so displayed values stay stable in both currencies.
func BitcoinAmount(localAmount int64, price float64) btcutil.Amount {
	if localAmount == 0 || price <= 0 {
		return 0
	}

	var (
		overflowDigits int
		lamt           = localAmount
	)
	if lamt < 0 {
		lamt = -lamt
	}

	// keep (lamt + 1)*SatoshiPerBitcoin within int64.
	for lamt+1 > math.MaxInt64/int64(btcutil.SatoshiPerBitcoin) {
		lamt /= 10
		overflowDigits++
	}

	minF := float64(lamt) * btcutil.SatoshiPerBitcoin / price
	if minF*math.Pow10(overflowDigits) >= btcutil.MaxSatoshi {
		if localAmount < 0 {
			return -btcutil.MaxSatoshi
		}

		return btcutil.MaxSatoshi
	}

	// minimum and maximum satoshi amounts that round back to lamt,
	// averaged, then restored to the dropped decimal scale.
	minAmount := int64(minF)
	maxAmount := int64(float64(lamt+1)*btcutil.SatoshiPerBitcoin/price) - 1
	amount := (minAmount + maxAmount) / 2

	for ; overflowDigits > 0; overflowDigits-- {
		amount *= 10
		minAmount *= 10
		maxAmount = maxAmount*10 + 9
	}

	if amount >= btcutil.MaxSatoshi {
		if localAmount < 0 {
			return -btcutil.MaxSatoshi
		}

		return btcutil.MaxSatoshi
	}

	// snap to the lowest decimal precision still within [min; max].
	p := int64(10)
	for (amount/p)*p >= minAmount && p <= math.MaxInt64/10 {
		p *= 10
	}
	p /= 10
	amount = (amount / p) * p

	if localAmount < 0 {
		amount = -amount
	}

	return btcutil.Amount(amount)
}

// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package currency

import (
	"math/big"
)

// Unit describes a denomination in which amounts of a currency are expressed.
// Decimals sets how many base units one unit holds, as a power of ten,
// e.g. 0 for satoshi and 8 for bitcoin.
type Unit struct {
	Code     string
	Symbol   string
	Decimals uint8
}

var (
	// UnitSatoshi defines the bitcoin base unit.
	UnitSatoshi = NewUnit("sat", "sat", 0)
	// UnitBitcoin defines the 1e8 satoshi unit.
	UnitBitcoin = NewUnit("BTC", "₿", 8)
	// UnitWei defines the ethereum base unit.
	UnitWei = NewUnit("wei", "wei", 0)
	// UnitGwei defines the 1e9 wei unit, commonly used for gas prices.
	UnitGwei = NewUnit("gwei", "gwei", 9)
)

// NewUnit is a constructor for Unit.
func NewUnit(code, symbol string, decimals uint8) *Unit {
	return &Unit{
		Code:     code,
		Symbol:   symbol,
		Decimals: decimals,
	}
}

// baseFactor returns 10^Decimals, the number of base units per this unit.
func (u *Unit) baseFactor() *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(u.Decimals)), nil)
}

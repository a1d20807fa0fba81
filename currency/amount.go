// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package currency

import (
	"errors"
	"math"
	"math/big"

	"github.com/BoostyLabs/walletcore/internal/numbers"
	"github.com/BoostyLabs/walletcore/internal/reverse"
)

var (
	// ErrAmountOverflow is returned when a result does not fit into uint256 range.
	ErrAmountOverflow = errors.New("amount value overflows uint256")
	// ErrAmountNegative is returned when a value or a result is below zero.
	ErrAmountNegative = errors.New("amount value is negative")
	// ErrUnitMismatch is returned on arithmetic with amounts in different units.
	ErrUnitMismatch = errors.New("amounts are denominated in different units")
	// ErrInvalidFactor is returned when a multiplication factor is NaN or infinite.
	ErrInvalidFactor = errors.New("multiplication factor is not a finite number")
)

// mulFloatPrecision is the mantissa precision for uint256 by float64
// multiplication, enough to hold the exact 256+53 bit product.
const mulFloatPrecision = 512

// Amount holds an exact integer number of units in [0; 2^256 - 1]
// together with the unit it is denominated in. The zero value is
// unusable, construct amounts with New or NewFromUint64.
type Amount struct {
	value *big.Int
	unit  *Unit
}

// New is a constructor for Amount. The value is copied.
func New(value *big.Int, unit *Unit) (Amount, error) {
	if numbers.IsNegative(value) {
		return Amount{}, ErrAmountNegative
	}
	if numbers.IsGreater(value, numbers.MaxUInt256Value) {
		return Amount{}, ErrAmountOverflow
	}

	return Amount{value: new(big.Int).Set(value), unit: unit}, nil
}

// NewFromUint64 constructs Amount from value that is always in range.
func NewFromUint64(value uint64, unit *Unit) Amount {
	return Amount{value: new(big.Int).SetUint64(value), unit: unit}
}

// Zero returns zero Amount in the provided unit.
func Zero(unit *Unit) Amount {
	return Amount{value: new(big.Int), unit: unit}
}

// Value returns a copy of the underlying integer value.
func (a Amount) Value() *big.Int {
	return new(big.Int).Set(a.value)
}

// Unit returns the unit the amount is denominated in.
func (a Amount) Unit() *Unit {
	return a.unit
}

// IsZero returns true if the amount value is zero.
func (a Amount) IsZero() bool {
	return numbers.IsZero(a.value)
}

// Cmp compares amounts of the same unit, the result is -1, 0 or 1.
func (a Amount) Cmp(b Amount) (int, error) {
	if a.unit.Code != b.unit.Code {
		return 0, ErrUnitMismatch
	}

	return a.value.Cmp(b.value), nil
}

// Add returns a + b, failing explicitly on uint256 overflow.
func (a Amount) Add(b Amount) (Amount, error) {
	if a.unit.Code != b.unit.Code {
		return Amount{}, ErrUnitMismatch
	}

	sum := new(big.Int).Add(a.value, b.value)
	if numbers.IsGreater(sum, numbers.MaxUInt256Value) {
		return Amount{}, ErrAmountOverflow
	}

	return Amount{value: sum, unit: a.unit}, nil
}

// Sub returns a - b, failing explicitly when the result is below zero.
func (a Amount) Sub(b Amount) (Amount, error) {
	if a.unit.Code != b.unit.Code {
		return Amount{}, ErrUnitMismatch
	}

	diff := new(big.Int).Sub(a.value, b.value)
	if numbers.IsNegative(diff) {
		return Amount{}, ErrAmountNegative
	}

	return Amount{value: diff, unit: a.unit}, nil
}

// MulFloat multiplies the amount by a floating-point factor. Returns the
// truncated integer product and the lost fractional part in [0; 1).
// Overflow of uint256 range is reported as error, never as a wrapped value.
func (a Amount) MulFloat(factor float64) (Amount, float64, error) {
	if math.IsNaN(factor) || math.IsInf(factor, 0) {
		return Amount{}, 0, ErrInvalidFactor
	}
	if factor < 0 {
		return Amount{}, 0, ErrAmountNegative
	}

	product := new(big.Float).SetPrec(mulFloatPrecision)
	product.Mul(new(big.Float).SetInt(a.value), big.NewFloat(factor))

	integer, _ := product.Int(nil)
	remainder, _ := new(big.Float).Sub(product, new(big.Float).SetInt(integer)).Float64()

	if !numbers.InUInt256Range(integer) {
		return Amount{}, 0, ErrAmountOverflow
	}

	return Amount{value: integer, unit: a.unit}, remainder, nil
}

// Uint64 returns the value as uint64 if it fits.
func (a Amount) Uint64() (uint64, error) {
	if !a.value.IsUint64() {
		return 0, ErrAmountOverflow
	}

	return a.value.Uint64(), nil
}

// Float64In converts the amount to the provided unit of the same currency.
func (a Amount) Float64In(u *Unit) float64 {
	value := new(big.Float).SetInt(a.value)
	value.Mul(value, new(big.Float).SetInt(a.unit.baseFactor()))
	value.Quo(value, new(big.Float).SetInt(u.baseFactor()))

	converted, _ := value.Float64()

	return converted
}

// BytesLE returns the value as little-endian bytes without leading zeroes.
func (a Amount) BytesLE() []byte {
	return reverse.BytesCopy(a.value.Bytes())
}

// String implements fmt.Stringer.
func (a Amount) String() string {
	return a.value.String() + " " + a.unit.Code
}

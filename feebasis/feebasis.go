// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package feebasis

import (
	"errors"
	"fmt"

	"github.com/BoostyLabs/walletcore/currency"
)

var (
	// ErrUnsupportedKind is returned when the queried value is not defined
	// for the fee basis kind, e.g. price per cost factor of a generic basis.
	ErrUnsupportedKind = errors.New("operation is not defined for this fee basis kind")
	// ErrNoPricer is returned when a generic fee basis has no chain pricer to delegate to.
	ErrNoPricer = errors.New("generic fee basis requires a chain pricer")
)

// Kind discriminates fee basis variants over chain cost models.
type Kind byte

const (
	// KindSizeBased prices an operation by its serialized size, bitcoin-like chains.
	KindSizeBased Kind = iota + 1
	// KindGasBased prices an operation by consumed cost units, ethereum-like chains.
	KindGasBased
	// KindGeneric holds an opaque payload priced by the owning chain manager.
	KindGeneric
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindSizeBased:
		return "size-based"
	case KindGasBased:
		return "gas-based"
	case KindGeneric:
		return "generic"
	default:
		return fmt.Sprintf("unknown(%d)", byte(k))
	}
}

// ChainPricer computes fees for generic chain models. Price and cost
// composition of such models is owned by the chain plugin, the fee basis
// only carries the opaque payload to price.
type ChainPricer interface {
	Fee(payload []byte) (currency.Amount, error)
}

// FeeBasis describes how much an operation costs to include, uniformly
// across chain cost models. Values are immutable once constructed and are
// safely shared by reference between any number of holders.
type FeeBasis struct {
	kind Kind

	feePerKB  currency.Amount
	sizeBytes uint64

	gasPrice currency.Amount
	gasLimit uint64

	payload []byte
	pricer  ChainPricer
}

// NewSizeBased is a constructor for FeeBasis of KindSizeBased.
// The fee rate is denominated in currency units per 1000 bytes.
func NewSizeBased(feePerKB currency.Amount, sizeBytes uint64) *FeeBasis {
	return &FeeBasis{
		kind:      KindSizeBased,
		feePerKB:  feePerKB,
		sizeBytes: sizeBytes,
	}
}

// NewGasBased is a constructor for FeeBasis of KindGasBased.
func NewGasBased(gasPrice currency.Amount, gasLimit uint64) *FeeBasis {
	return &FeeBasis{
		kind:     KindGasBased,
		gasPrice: gasPrice,
		gasLimit: gasLimit,
	}
}

// NewGeneric is a constructor for FeeBasis of KindGeneric. The payload is
// opaque to this package and is interpreted by the pricer only.
func NewGeneric(pricer ChainPricer, payload []byte) *FeeBasis {
	return &FeeBasis{
		kind:    KindGeneric,
		pricer:  pricer,
		payload: payload,
	}
}

// Kind returns the fee basis kind.
func (b *FeeBasis) Kind() Kind {
	return b.kind
}

// ForSize derives a basis with the same fee rate for a different operation
// size. Defined for the size-based kind only.
func (b *FeeBasis) ForSize(sizeBytes uint64) (*FeeBasis, error) {
	if b.kind != KindSizeBased {
		return nil, fmt.Errorf("resizing %s basis: %w", b.kind, ErrUnsupportedKind)
	}

	return NewSizeBased(b.feePerKB, sizeBytes), nil
}

// PricePerCostFactor returns the price of one cost factor unit.
// Not defined for the generic kind, composition of generic price and cost
// belongs to the chain plugin and must not be assumed here.
func (b *FeeBasis) PricePerCostFactor() (currency.Amount, error) {
	switch b.kind {
	case KindSizeBased:
		return b.feePerKB, nil
	case KindGasBased:
		return b.gasPrice, nil
	default:
		return currency.Amount{}, fmt.Errorf("price per cost factor of %s basis: %w", b.kind, ErrUnsupportedKind)
	}
}

// CostFactor returns the dimensionless operation cost: fractional
// kilobytes for size-based, gas limit for gas-based. Not defined for the
// generic kind.
func (b *FeeBasis) CostFactor() (float64, error) {
	switch b.kind {
	case KindSizeBased:
		return float64(b.sizeBytes) / 1000.0, nil
	case KindGasBased:
		return float64(b.gasLimit), nil
	default:
		return 0, fmt.Errorf("cost factor of %s basis: %w", b.kind, ErrUnsupportedKind)
	}
}

// Fee returns the concrete fee amount for the operation.
// Size-based fee is rounded to the nearest unit, not truncated, to avoid
// systematic under-collection across many small transactions. Gas-based
// fee fails explicitly on uint256 overflow, an incorrect fee must never
// be produced silently. Generic fee is delegated to the owning pricer.
func (b *FeeBasis) Fee() (currency.Amount, error) {
	switch b.kind {
	case KindSizeBased:
		fee, remainder, err := b.feePerKB.MulFloat(float64(b.sizeBytes) / 1000.0)
		if err != nil {
			return currency.Amount{}, fmt.Errorf("size-based fee: %w", err)
		}
		if remainder >= 0.5 {
			if fee, err = fee.Add(currency.NewFromUint64(1, fee.Unit())); err != nil {
				return currency.Amount{}, fmt.Errorf("size-based fee: %w", err)
			}
		}

		return fee, nil

	case KindGasBased:
		fee, _, err := b.gasPrice.MulFloat(float64(b.gasLimit))
		if err != nil {
			return currency.Amount{}, fmt.Errorf("gas-based fee: %w", err)
		}

		return fee, nil

	default:
		if b.pricer == nil {
			return currency.Amount{}, ErrNoPricer
		}

		return b.pricer.Fee(b.payload)
	}
}

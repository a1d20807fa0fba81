// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package wallet

import (
	"time"

	"github.com/btcsuite/btcd/wire"
	"github.com/google/uuid"
)

// LeaseOutput reserves an unspent output for the given duration, excluding
// it from coin selection until the lease expires or is released. Returns
// the lease id required to release the output early and the expiry time.
func (w *Wallet) LeaseOutput(op wire.OutPoint, duration time.Duration) (uuid.UUID, time.Time, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.utxoIndex[op]; !ok {
		return uuid.Nil, time.Time{}, ErrUnknownOutput
	}
	if w.isLeasedLocked(op) {
		return uuid.Nil, time.Time{}, ErrOutputLeased
	}

	id := uuid.New()
	item := w.leases.Set(op, id, duration)
	log.Debugf("Leased output %v until %v", op, item.ExpiresAt())

	return id, item.ExpiresAt(), nil
}

// ReleaseOutput returns a leased output to the spendable set before its
// lease expires. The id must match the one returned by LeaseOutput.
func (w *Wallet) ReleaseOutput(id uuid.UUID, op wire.OutPoint) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	item := w.leases.Get(op)
	if item == nil || item.IsExpired() || item.Value() != id {
		return ErrUnknownLease
	}

	w.leases.Delete(op)
	log.Debugf("Released output %v", op)

	return nil
}

// isLeasedLocked reports whether an active lease holds the outpoint.
func (w *Wallet) isLeasedLocked(op wire.OutPoint) bool {
	item := w.leases.Get(op)

	return item != nil && !item.IsExpired()
}

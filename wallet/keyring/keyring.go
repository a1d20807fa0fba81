// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package keyring

import (
	"errors"
	"fmt"
	"sync"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
)

const (
	// ExternalBranch is the derivation branch of receiving addresses.
	ExternalBranch uint32 = 0
	// InternalBranch is the derivation branch of change addresses.
	InternalBranch uint32 = 1

	// DefaultExternalGapLimit is how many unused receiving addresses are
	// kept derived ahead of the highest used one, so payments to
	// not-yet-handed-out addresses are still recognized.
	DefaultExternalGapLimit uint32 = 10
	// DefaultInternalGapLimit is the change address lookahead.
	DefaultInternalGapLimit uint32 = 5
)

// Config describes key ring dependencies and tunables.
type Config struct {
	// AccountKey is the BIP32 account level key the external and internal
	// branches are derived from. A public key is enough for address
	// derivation, signing requires the private counterpart.
	AccountKey *hdkeychain.ExtendedKey
	// ChainParams defines the network addresses are encoded for,
	// defaults to mainnet.
	ChainParams *chaincfg.Params
	// ExternalGapLimit overrides DefaultExternalGapLimit when non-zero.
	ExternalGapLimit uint32
	// InternalGapLimit overrides DefaultInternalGapLimit when non-zero.
	InternalGapLimit uint32
}

// KeyRing derives pay-to-witness-pubkey-hash addresses from a BIP32
// account key on the external and internal branches, keeping a gap limit
// of unused addresses derived ahead of the highest used one. It
// implements the wallet address book.
type KeyRing struct {
	chainParams *chaincfg.Params

	mu       sync.Mutex
	branches [2]*branch
}

// branch tracks derived addresses of a single derivation branch.
// Position in addrs equals the derivation index.
type branch struct {
	key      *hdkeychain.ExtendedKey
	gap      uint32
	addrs    []btcutil.Address
	byAddr   map[string]uint32
	used     map[uint32]struct{}
	lastUsed int64 // highest used index, -1 when none.
	cursor   uint32
}

// NewKeyRing is a constructor for KeyRing.
func NewKeyRing(config Config) (*KeyRing, error) {
	if config.AccountKey == nil {
		return nil, errors.New("keyring: account key is required")
	}
	if config.ChainParams == nil {
		config.ChainParams = &chaincfg.MainNetParams
	}
	if config.ExternalGapLimit == 0 {
		config.ExternalGapLimit = DefaultExternalGapLimit
	}
	if config.InternalGapLimit == 0 {
		config.InternalGapLimit = DefaultInternalGapLimit
	}

	keyRing := &KeyRing{chainParams: config.ChainParams}
	for branchNo, gap := range []uint32{
		ExternalBranch: config.ExternalGapLimit,
		InternalBranch: config.InternalGapLimit,
	} {
		key, err := config.AccountKey.Derive(uint32(branchNo))
		if err != nil {
			return nil, fmt.Errorf("keyring: derive branch %d: %w", branchNo, err)
		}

		keyRing.branches[branchNo] = &branch{
			key:      key,
			gap:      gap,
			byAddr:   make(map[string]uint32),
			used:     make(map[uint32]struct{}),
			lastUsed: -1,
		}
		if err = keyRing.branches[branchNo].extend(config.ChainParams); err != nil {
			return nil, fmt.Errorf("keyring: %w", err)
		}
	}

	return keyRing, nil
}

// ContainsAddress reports whether the address was derived by this key
// ring, within the current lookahead window.
func (keyRing *KeyRing) ContainsAddress(addr string) bool {
	keyRing.mu.Lock()
	defer keyRing.mu.Unlock()

	for _, b := range keyRing.branches {
		if _, ok := b.byAddr[addr]; ok {
			return true
		}
	}

	return false
}

// IsInternalAddress reports whether the address belongs to the change
// branch.
func (keyRing *KeyRing) IsInternalAddress(addr string) bool {
	keyRing.mu.Lock()
	defer keyRing.mu.Unlock()

	_, ok := keyRing.branches[InternalBranch].byAddr[addr]

	return ok
}

// ReceiveAddress returns the first unused external address. The same
// address is returned until it is marked used.
func (keyRing *KeyRing) ReceiveAddress() (btcutil.Address, error) {
	keyRing.mu.Lock()
	defer keyRing.mu.Unlock()

	return keyRing.branches[ExternalBranch].unusedAddress(keyRing.chainParams)
}

// ChangeAddress returns the first unused internal address.
func (keyRing *KeyRing) ChangeAddress() (btcutil.Address, error) {
	keyRing.mu.Lock()
	defer keyRing.mu.Unlock()

	return keyRing.branches[InternalBranch].unusedAddress(keyRing.chainParams)
}

// MarkUsed records the address as used and extends the branch lookahead
// past it.
func (keyRing *KeyRing) MarkUsed(addr string) {
	keyRing.mu.Lock()
	defer keyRing.mu.Unlock()

	for branchNo, b := range keyRing.branches {
		index, ok := b.byAddr[addr]
		if !ok {
			continue
		}

		if err := b.markUsed(index, keyRing.chainParams); err != nil {
			log.Errorf("Extending branch %d lookahead: %v", branchNo, err)
		}

		return
	}
}

// AddressPath returns the derivation branch and index of an address
// derived by this key ring.
func (keyRing *KeyRing) AddressPath(addr string) (branchNo, index uint32, ok bool) {
	keyRing.mu.Lock()
	defer keyRing.mu.Unlock()

	for no, b := range keyRing.branches {
		if index, ok := b.byAddr[addr]; ok {
			return uint32(no), index, true
		}
	}

	return 0, 0, false
}

// extend derives addresses until the gap limit of them exists past the
// highest used index.
func (b *branch) extend(params *chaincfg.Params) error {
	target := uint32(b.lastUsed+1) + b.gap
	for uint32(len(b.addrs)) < target {
		index := uint32(len(b.addrs))

		child, err := b.key.Derive(index)
		if err != nil {
			return fmt.Errorf("derive child %d: %w", index, err)
		}
		pubKey, err := child.ECPubKey()
		if err != nil {
			return fmt.Errorf("derive child %d: %w", index, err)
		}

		addr, err := btcutil.NewAddressWitnessPubKeyHash(
			btcutil.Hash160(pubKey.SerializeCompressed()), params)
		if err != nil {
			return fmt.Errorf("encode child %d: %w", index, err)
		}

		b.addrs = append(b.addrs, addr)
		b.byAddr[addr.EncodeAddress()] = index
	}

	return nil
}

// unusedAddress returns the lowest indexed address not marked used.
func (b *branch) unusedAddress(params *chaincfg.Params) (btcutil.Address, error) {
	if err := b.extend(params); err != nil {
		return nil, err
	}

	for {
		if _, used := b.used[b.cursor]; !used {
			break
		}
		b.cursor++
	}

	return b.addrs[b.cursor], nil
}

func (b *branch) markUsed(index uint32, params *chaincfg.Params) error {
	b.used[index] = struct{}{}
	if int64(index) > b.lastUsed {
		b.lastUsed = int64(index)
	}

	return b.extend(params)
}

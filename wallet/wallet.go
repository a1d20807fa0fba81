// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package wallet

import (
	"errors"
	"sync"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcwallet/wallet/txrules"
	"github.com/google/uuid"
	"github.com/jellydator/ttlcache/v3"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/lightningnetwork/lnd/queue"
)

// notificationQueueSize is the in-memory buffer size of the notification queue.
const notificationQueueSize = 20

// AddressBook resolves wallet address ownership and issues fresh
// addresses. Implementations must be safe for concurrent use and must not
// call back into the Wallet.
type AddressBook interface {
	// ContainsAddress reports whether the address is controlled by the wallet.
	ContainsAddress(addr string) bool
	// ReceiveAddress returns the first unused external address.
	ReceiveAddress() (btcutil.Address, error)
	// ChangeAddress returns the first unused internal address.
	ChangeAddress() (btcutil.Address, error)
	// MarkUsed records the address as used, advancing derivation lookahead.
	MarkUsed(addr string)
}

// Notifier receives wallet state change notifications. Calls are
// fire-and-forget, dispatched in order by a background goroutine outside
// the wallet critical section.
type Notifier interface {
	BalanceChanged(balance btcutil.Amount)
	TransactionAdded(tx Transaction)
	TransactionUpdated(hash chainhash.Hash, blockHeight uint32, timestamp time.Time)
	TransactionRemoved(hash chainhash.Hash)
}

// Config describes wallet dependencies and tunables.
type Config struct {
	// AddressBook resolves address ownership, required.
	AddressBook AddressBook
	// Notifier receives state change notifications, optional.
	Notifier Notifier
	// Clock is the time source for lock time checks, defaults to the system clock.
	Clock clock.Clock
	// ChainParams defines the network for address decoding, defaults to mainnet.
	ChainParams *chaincfg.Params
	// FeePerKB is the starting fee rate for created transactions.
	FeePerKB btcutil.Amount
	// DustRelayFeePerKB is the relay rate the dust threshold of change
	// outputs is derived from.
	DustRelayFeePerKB btcutil.Amount
}

// Wallet implements the unspent output and transaction dependency ledger
// of an SPV wallet: it tracks wallet-relevant transactions, derives the
// unspent output set and cached balance, detects double spends and
// constructs new spending transactions.
//
// The ledger is a single unit of shared state guarded by one mutex.
// Derived state is recomputed by replaying transactions in registration
// order on every mutation of the transaction set, so the cached balance
// never drifts from its definition.
type Wallet struct {
	started sync.Once
	stopped sync.Once

	addressBook AddressBook
	notifier    Notifier
	clock       clock.Clock
	chainParams *chaincfg.Params

	mu           sync.RWMutex
	feePerKB     btcutil.Amount
	dustRelayFee btcutil.Amount
	bestHeight   uint32

	txs     []*Transaction // replay order, oldest registered first.
	txIndex map[chainhash.Hash]*Transaction

	utxos        []*UTXO // derived, creation order during replay.
	utxoIndex    map[wire.OutPoint]*UTXO
	spentOutputs map[wire.OutPoint]chainhash.Hash // outpoint to spender hash.
	invalid      map[chainhash.Hash]struct{}
	pending      map[chainhash.Hash]struct{}

	balance       btcutil.Amount
	balanceHist   []btcutil.Amount // balance after each tx in replay order.
	totalSent     btcutil.Amount
	totalReceived btcutil.Amount
	usedAddrs     map[string]struct{}

	leases *ttlcache.Cache[wire.OutPoint, uuid.UUID]

	notifyQueue *queue.ConcurrentQueue
	wg          sync.WaitGroup
	quit        chan struct{}
}

// NewWallet is a constructor for Wallet.
func NewWallet(config Config) (*Wallet, error) {
	if config.AddressBook == nil {
		return nil, errors.New("wallet: address book is required")
	}
	if config.Clock == nil {
		config.Clock = clock.NewDefaultClock()
	}
	if config.ChainParams == nil {
		config.ChainParams = &chaincfg.MainNetParams
	}
	if config.FeePerKB == 0 {
		config.FeePerKB = DefaultFeePerKB
	}
	if config.DustRelayFeePerKB == 0 {
		config.DustRelayFeePerKB = txrules.DefaultRelayFeePerKb
	}

	return &Wallet{
		addressBook:  config.AddressBook,
		notifier:     config.Notifier,
		clock:        config.Clock,
		chainParams:  config.ChainParams,
		feePerKB:     clampFeePerKB(config.FeePerKB),
		dustRelayFee: config.DustRelayFeePerKB,
		txIndex:      make(map[chainhash.Hash]*Transaction),
		utxoIndex:    make(map[wire.OutPoint]*UTXO),
		spentOutputs: make(map[wire.OutPoint]chainhash.Hash),
		invalid:      make(map[chainhash.Hash]struct{}),
		pending:      make(map[chainhash.Hash]struct{}),
		usedAddrs:    make(map[string]struct{}),
		leases: ttlcache.New[wire.OutPoint, uuid.UUID](
			ttlcache.WithDisableTouchOnHit[wire.OutPoint, uuid.UUID](),
		),
		notifyQueue: queue.NewConcurrentQueue(notificationQueueSize),
		quit:        make(chan struct{}),
	}, nil
}

// Start launches the notification dispatcher and the lease janitor. A
// wallet with a notifier configured must be started before mutating it,
// queued notifications are not consumed until then.
func (w *Wallet) Start() {
	w.started.Do(func() {
		log.Info("Wallet ledger starting")

		w.notifyQueue.Start()
		go w.leases.Start()

		w.wg.Add(1)
		go w.notificationDispatcher()
	})
}

// Stop shuts the wallet down, waiting for the pending notifications to be
// handed to the dispatcher.
func (w *Wallet) Stop() {
	w.stopped.Do(func() {
		log.Info("Wallet ledger shutting down")

		close(w.quit)
		w.wg.Wait()
		w.notifyQueue.Stop()
		w.leases.Stop()
	})
}

// notificationDispatcher delivers queued notifications to the notifier
// one by one, preserving the order mutations were applied in.
func (w *Wallet) notificationDispatcher() {
	defer w.wg.Done()

	for {
		select {
		case item := <-w.notifyQueue.ChanOut():
			if notify, ok := item.(func()); ok {
				notify()
			}

		case <-w.quit:
			return
		}
	}
}

// enqueue schedules a notifier call. The queue accepts items without
// blocking the ledger critical section, delivery happens on the
// dispatcher goroutine.
func (w *Wallet) enqueue(notify func(Notifier)) {
	if w.notifier == nil {
		return
	}

	notifier := w.notifier
	select {
	case w.notifyQueue.ChanIn() <- func() { notify(notifier) }:
	case <-w.quit:
	}
}

// notifyBalanceLocked schedules a balance change notification with the
// current balance value.
func (w *Wallet) notifyBalanceLocked() {
	balance := w.balance
	w.enqueue(func(n Notifier) { n.BalanceChanged(balance) })
}

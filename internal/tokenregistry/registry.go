// Package tokenregistry owns the per-contract state of every token tracked
// on the account: sync status, last known balance, and the subscription
// channels used to fan out changes. It performs no I/O; the sync coordinator
// is its only writer, while readers get copy-on-read snapshots.
package tokenregistry

import (
	"errors"
	"math/big"
	"sync"
	"sync/atomic"

	"github.com/gabapcia/tokenwatch/internal/pkg/types"
)

var (
	// ErrAlreadyRegistered is returned when registering a contract address that is already tracked.
	ErrAlreadyRegistered = errors.New("contract already registered")

	// ErrNotRegistered is returned when operating on a contract address that is not tracked.
	ErrNotRegistered = errors.New("contract not registered")

	// ErrSubscriberLagging is returned by the Notify methods when a
	// subscriber's buffer is full and an event had to be dropped.
	ErrSubscriberLagging = errors.New("subscriber channel full, event dropped")
)

// subscriptionChannelBufferSize is the buffer of every subscription channel.
// Notifications never block the coordinator worker; a full buffer surfaces as
// ErrSubscriberLagging instead.
const subscriptionChannelBufferSize = 16

// Registry is the single shared mutable resource of the sync pipeline. It
// maps contract addresses to their tracked state and carries a process-wide
// generation counter used to invalidate in-flight sync completions.
type Registry struct {
	mu     sync.RWMutex
	tokens map[types.Address]*trackedToken

	generation atomic.Uint64
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		tokens: make(map[types.Address]*trackedToken),
	}
}

// Register starts tracking the given contract in state NotSynced. The balance
// position is stored untouched for later hand-off to the balance subsystem.
// It returns ErrAlreadyRegistered if the contract is already tracked.
func (r *Registry) Register(contract types.Address, balancePosition types.Hex, initialBalance *big.Int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tokens[contract]; ok {
		return ErrAlreadyRegistered
	}

	r.tokens[contract] = &trackedToken{
		balancePosition: balancePosition,
		syncState:       SyncStateNotSynced,
		balance:         Balance{Value: initialBalance},
	}
	return nil
}

// Unregister stops tracking the given contract and releases its subscription
// channels. It returns ErrNotRegistered if the contract is not tracked.
func (r *Registry) Unregister(contract types.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	token, ok := r.tokens[contract]
	if !ok {
		return ErrNotRegistered
	}

	token.closeSubscriptions()
	delete(r.tokens, contract)
	return nil
}

// SyncState returns the contract's current sync state.
func (r *Registry) SyncState(contract types.Address) (SyncState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	token, ok := r.tokens[contract]
	if !ok {
		return "", ErrNotRegistered
	}
	return token.syncState, nil
}

// SetSyncState updates the contract's sync state without notifying anyone;
// notification is a separate explicit step owned by the caller. It reports
// whether the state actually changed.
func (r *Registry) SetSyncState(contract types.Address, state SyncState) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	token, ok := r.tokens[contract]
	if !ok {
		return false, ErrNotRegistered
	}

	if token.syncState == state {
		return false, nil
	}
	token.syncState = state
	return true, nil
}

// Balance returns the contract's last known balance snapshot.
func (r *Registry) Balance(contract types.Address) (Balance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	token, ok := r.tokens[contract]
	if !ok {
		return Balance{}, ErrNotRegistered
	}
	return token.balance, nil
}

// SetBalance stores a new balance snapshot for the contract. Balance heights
// never regress: a snapshot older than the stored one is discarded and the
// method reports false. Notification is a separate explicit step.
func (r *Registry) SetBalance(contract types.Address, balance Balance) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	token, ok := r.tokens[contract]
	if !ok {
		return false, ErrNotRegistered
	}

	if balance.Height.Int() < token.balance.Height.Int() {
		return false, nil
	}
	token.balance = balance
	return true, nil
}

// BalancePosition returns the opaque balance locator supplied at registration.
func (r *Registry) BalancePosition(contract types.Address) (types.Hex, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	token, ok := r.tokens[contract]
	if !ok {
		return "", ErrNotRegistered
	}
	return token.balancePosition, nil
}

// ContractAddresses returns a snapshot of every tracked contract address.
// The returned slice is a copy and safe to iterate while the registry mutates.
func (r *Registry) ContractAddresses() []types.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()

	addresses := make([]types.Address, 0, len(r.tokens))
	for contract := range r.tokens {
		addresses = append(addresses, contract)
	}
	return addresses
}

// Clear drops every tracked contract, releases all subscription channels, and
// advances the generation so in-flight sync completions are discarded. It is
// idempotent.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, token := range r.tokens {
		token.closeSubscriptions()
	}
	r.tokens = make(map[types.Address]*trackedToken)
	r.generation.Add(1)
}

// Generation returns the current registry generation. Sync operations are
// tagged with the generation they were triggered under; completions carrying
// a stale generation must be dropped.
func (r *Registry) Generation() uint64 {
	return r.generation.Load()
}

// AdvanceGeneration invalidates every in-flight sync completion and returns
// the new generation.
func (r *Registry) AdvanceGeneration() uint64 {
	return r.generation.Add(1)
}

// SubscribeSyncState registers a subscription for the contract's sync-state
// changes. The channel is closed when the contract is unregistered or the
// registry is cleared.
func (r *Registry) SubscribeSyncState(contract types.Address) (<-chan SyncStateChange, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	token, ok := r.tokens[contract]
	if !ok {
		return nil, ErrNotRegistered
	}

	ch := make(chan SyncStateChange, subscriptionChannelBufferSize)
	token.syncStateSubs = append(token.syncStateSubs, ch)
	return ch, nil
}

// SubscribeBalance registers a subscription for the contract's balance changes.
func (r *Registry) SubscribeBalance(contract types.Address) (<-chan BalanceChange, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	token, ok := r.tokens[contract]
	if !ok {
		return nil, ErrNotRegistered
	}

	ch := make(chan BalanceChange, subscriptionChannelBufferSize)
	token.balanceSubs = append(token.balanceSubs, ch)
	return ch, nil
}

// SubscribeTransactions registers a subscription for the contract's
// transaction-list changes.
func (r *Registry) SubscribeTransactions(contract types.Address) (<-chan TransactionsChange, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	token, ok := r.tokens[contract]
	if !ok {
		return nil, ErrNotRegistered
	}

	ch := make(chan TransactionsChange, subscriptionChannelBufferSize)
	token.transactionsSubs = append(token.transactionsSubs, ch)
	return ch, nil
}

// NotifySyncState fans the contract's current sync state out to its
// subscribers. Full subscriber buffers surface as ErrSubscriberLagging so the
// caller can log the drop; the worker is never blocked.
func (r *Registry) NotifySyncState(contract types.Address) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	token, ok := r.tokens[contract]
	if !ok {
		return ErrNotRegistered
	}

	change := SyncStateChange{Contract: contract, State: token.syncState}

	var errs []error
	for _, ch := range token.syncStateSubs {
		select {
		case ch <- change:
		default:
			errs = append(errs, ErrSubscriberLagging)
		}
	}
	return errors.Join(errs...)
}

// NotifyBalance fans the contract's current balance snapshot out to its
// subscribers.
func (r *Registry) NotifyBalance(contract types.Address) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	token, ok := r.tokens[contract]
	if !ok {
		return ErrNotRegistered
	}

	change := BalanceChange{Contract: contract, Balance: token.balance}

	var errs []error
	for _, ch := range token.balanceSubs {
		select {
		case ch <- change:
		default:
			errs = append(errs, ErrSubscriberLagging)
		}
	}
	return errors.Join(errs...)
}

// NotifyTransactions publishes a batch of newly observed transfers to the
// contract's transaction-list subscribers.
func (r *Registry) NotifyTransactions(contract types.Address, transactions []Transaction) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	token, ok := r.tokens[contract]
	if !ok {
		return ErrNotRegistered
	}

	change := TransactionsChange{Contract: contract, Transactions: transactions}

	var errs []error
	for _, ch := range token.transactionsSubs {
		select {
		case ch <- change:
		default:
			errs = append(errs, ErrSubscriberLagging)
		}
	}
	return errors.Join(errs...)
}

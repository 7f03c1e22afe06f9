package tokenregistry

import (
	"math/big"

	"github.com/gabapcia/tokenwatch/internal/pkg/types"
)

// SyncState describes how trustworthy a tracked contract's locally cached
// data currently is.
type SyncState string

const (
	// SyncStateNotSynced means the cached data cannot be trusted at all.
	SyncStateNotSynced SyncState = "not_synced"

	// SyncStateSyncing means a sync is in progress and the cached data may lag.
	SyncStateSyncing SyncState = "syncing"

	// SyncStateSynced means the cached balance reflects every transaction
	// observed so far.
	SyncStateSynced SyncState = "synced"
)

// Balance is a token balance snapshot: an arbitrary-precision value plus the
// block height at which it was last confirmed. Height is empty if the balance
// was never synced.
type Balance struct {
	Value  *big.Int  // balance value (nil if never synced)
	Height types.Hex // block height the value was confirmed at
}

// Transaction is the registry's view of a token transfer, published to
// transaction-list subscribers.
type Transaction struct {
	Hash     string        // unique transaction hash identifier
	Contract types.Address // token contract the transfer belongs to
	From     string        // sender address
	To       string        // recipient address
	Height   types.Hex     // block height the transfer was included at
}

// SyncStateChange is delivered to sync-state subscribers whenever a tracked
// contract transitions between sync states.
type SyncStateChange struct {
	Contract types.Address
	State    SyncState
}

// BalanceChange is delivered to balance subscribers whenever a tracked
// contract's balance snapshot advances.
type BalanceChange struct {
	Contract types.Address
	Balance  Balance
}

// TransactionsChange is delivered to transaction-list subscribers whenever
// new transfers are observed for a tracked contract.
type TransactionsChange struct {
	Contract     types.Address
	Transactions []Transaction
}

// trackedToken holds the per-contract state owned by the registry. All access
// goes through the Registry's lock.
type trackedToken struct {
	balancePosition types.Hex // opaque locator handed to the balance subsystem
	syncState       SyncState
	balance         Balance

	syncStateSubs    []chan SyncStateChange
	balanceSubs      []chan BalanceChange
	transactionsSubs []chan TransactionsChange
}

// closeSubscriptions releases every subscription channel of the token.
func (t *trackedToken) closeSubscriptions() {
	for _, ch := range t.syncStateSubs {
		close(ch)
	}
	for _, ch := range t.balanceSubs {
		close(ch)
	}
	for _, ch := range t.transactionsSubs {
		close(ch)
	}

	t.syncStateSubs = nil
	t.balanceSubs = nil
	t.transactionsSubs = nil
}

package tokensync

import "github.com/gabapcia/tokenwatch/internal/pkg/types"

// syncEvent is the single message type consumed by the coordinator worker.
// Chain signals, subsystem completions, and balance updates are all funneled
// through one channel, so state-machine transitions are fully serialized: no
// two reconciliation passes ever run concurrently.
type syncEvent interface {
	isSyncEvent()
}

// chainSignalEvent wraps a signal received from the chain client.
type chainSignalEvent struct {
	signal ChainSignal
}

// txSyncDoneEvent reports the completion of a transaction-history sweep.
// generation records the registry generation the sweep was triggered under.
type txSyncDoneEvent struct {
	generation   uint64
	transactions []Transaction
	err          error
}

// balanceSyncDoneEvent reports the completion of a single contract's balance
// sync. generation records the registry generation the sync was triggered
// under.
type balanceSyncDoneEvent struct {
	generation uint64
	contract   types.Address
	err        error
}

// balanceUpdateEvent wraps a fresh balance value pushed by the balance
// subsystem.
type balanceUpdateEvent struct {
	update BalanceUpdate
}

func (chainSignalEvent) isSyncEvent()     {}
func (txSyncDoneEvent) isSyncEvent()      {}
func (balanceSyncDoneEvent) isSyncEvent() {}
func (balanceUpdateEvent) isSyncEvent()   {}

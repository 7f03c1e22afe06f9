package tokensync

import (
	"context"
	"errors"

	"github.com/gabapcia/tokenwatch/internal/pkg/logger"
	"github.com/gabapcia/tokenwatch/internal/pkg/types"
	"github.com/gabapcia/tokenwatch/internal/pkg/x/chflow"
	"github.com/gabapcia/tokenwatch/internal/tokenregistry"
)

// run is the coordinator worker. It consumes events strictly in arrival
// order; every registry mutation in this package happens on this goroutine.
func (s *service) run(ctx context.Context, eventCh chan syncEvent) {
	for {
		event, ok := chflow.Receive(ctx, eventCh)
		if !ok {
			return
		}

		switch e := event.(type) {
		case chainSignalEvent:
			s.handleChainSignal(ctx, eventCh, e.signal)
		case txSyncDoneEvent:
			s.handleTransactionSyncDone(ctx, eventCh, e)
		case balanceSyncDoneEvent:
			s.handleBalanceSyncDone(ctx, e)
		case balanceUpdateEvent:
			s.handleBalanceUpdate(ctx, e.update)
		}
	}
}

// setSyncState applies a state transition to one contract and notifies its
// subscribers, but only when the state actually changed. A contract that was
// unregistered while an operation was in flight is skipped silently.
func (s *service) setSyncState(ctx context.Context, contract types.Address, state tokenregistry.SyncState) {
	changed, err := s.registry.SetSyncState(contract, state)
	if err != nil || !changed {
		return
	}

	if err := s.registry.NotifySyncState(contract); err != nil {
		logger.Warn(ctx, "sync state notification dropped",
			"token.contract", contract,
			"token.state", state,
			"error", err,
		)
	}
}

// setAllSyncStates forces every tracked contract into the given state.
// Each contract's transition is independent and idempotent if repeated.
func (s *service) setAllSyncStates(ctx context.Context, state tokenregistry.SyncState) {
	for _, contract := range s.registry.ContractAddresses() {
		s.setSyncState(ctx, contract, state)
	}
}

// handleChainSignal applies a chain-level signal to every tracked contract.
// A NotSynced signal also advances the registry generation so completions of
// syncs triggered before the reset are discarded instead of resurrecting a
// Synced state.
func (s *service) handleChainSignal(ctx context.Context, eventCh chan syncEvent, signal ChainSignal) {
	switch signal.State {
	case ChainNotSynced:
		s.registry.AdvanceGeneration()
		s.setAllSyncStates(ctx, tokenregistry.SyncStateNotSynced)
	case ChainSyncing:
		s.setAllSyncStates(ctx, tokenregistry.SyncStateSyncing)
	case ChainSynced:
		s.triggerTransactionSync(ctx, eventCh)
	}
}

// triggerTransactionSync schedules a transaction-history sweep for every
// tracked contract. The sweep runs off the worker; its completion is
// marshaled back through eventCh tagged with the current generation.
func (s *service) triggerTransactionSync(ctx context.Context, eventCh chan<- syncEvent) {
	contracts := s.registry.ContractAddresses()
	if len(contracts) == 0 {
		return
	}

	generation := s.registry.Generation()

	go func() {
		transactions, err := s.txSyncer.SyncTransactions(ctx, contracts)
		_ = chflow.Send(ctx, eventCh, syncEvent(txSyncDoneEvent{
			generation:   generation,
			transactions: transactions,
			err:          err,
		}))
	}()
}

// triggerBalanceSync schedules a balance refresh for one contract at the
// given height, passing its opaque balance position through unmodified.
func (s *service) triggerBalanceSync(ctx context.Context, eventCh chan<- syncEvent, contract types.Address, height, balancePosition types.Hex, generation uint64) {
	go func() {
		err := s.balanceSyncer.SyncBalance(ctx, contract, height, balancePosition)
		_ = chflow.Send(ctx, eventCh, syncEvent(balanceSyncDoneEvent{
			generation: generation,
			contract:   contract,
			err:        err,
		}))
	}()
}

// partitionByContract groups a transaction batch by token contract.
func partitionByContract(transactions []Transaction) map[types.Address][]Transaction {
	byContract := types.NewDefaultMap[types.Address](func() []Transaction {
		return make([]Transaction, 0)
	})

	for _, tx := range transactions {
		byContract.Set(tx.Contract, append(byContract.Get(tx.Contract), tx))
	}

	return byContract.ToMap()
}

// toRegistryTransactions maps coordinator transactions into the registry's
// subscriber-facing representation.
func toRegistryTransactions(transactions []Transaction) []tokenregistry.Transaction {
	out := make([]tokenregistry.Transaction, len(transactions))
	for i, tx := range transactions {
		out[i] = tokenregistry.Transaction(tx)
	}
	return out
}

// handleTransactionSyncDone processes the completion of a transaction-history
// sweep. On failure every tracked contract is forced to NotSynced: the feed
// is shared, so partial success cannot be distinguished. On success the batch
// is published per contract, then every tracked contract is re-evaluated
// against the reconciliation rule, not only the contracts present in the
// batch, so a contract with a previously-pending balance gap is re-checked
// opportunistically.
func (s *service) handleTransactionSyncDone(ctx context.Context, eventCh chan syncEvent, e txSyncDoneEvent) {
	if e.generation != s.registry.Generation() {
		logger.Debug(ctx, "dropping stale transaction sync completion", "sync.generation", e.generation)
		return
	}

	if e.err != nil {
		logger.Warn(ctx, "transaction sync failed", "error", e.err)
		s.setAllSyncStates(ctx, tokenregistry.SyncStateNotSynced)
		return
	}

	tracked := types.NewSet(s.registry.ContractAddresses()...)

	for contract, transactions := range partitionByContract(e.transactions) {
		if _, ok := tracked[contract]; !ok {
			continue
		}

		err := s.registry.NotifyTransactions(contract, toRegistryTransactions(transactions))
		switch {
		case errors.Is(err, tokenregistry.ErrNotRegistered):
			// unregistered while the sweep was in flight
		case err != nil:
			logger.Warn(ctx, "transaction notification dropped",
				"token.contract", contract,
				"error", err,
			)
		}
	}

	for contract := range tracked.ToIter() {
		s.reconcile(ctx, eventCh, contract, e.generation)
	}
}

// reconcile compares the highest transaction height ever observed for the
// contract against the height of its stored balance snapshot. Token balances
// change through transaction inclusion, not through new blocks alone, so the
// comparison is against the transaction subsystem's view rather than the
// chain's global head. A contract whose balance snapshot lags its newest
// transfer gets a balance refresh before it may be declared synced.
func (s *service) reconcile(ctx context.Context, eventCh chan<- syncEvent, contract types.Address, generation uint64) {
	lastTxHeight, err := s.txSyncer.LastTransactionHeight(ctx, contract)
	if err != nil {
		logger.Warn(ctx, "last transaction height lookup failed",
			"token.contract", contract,
			"error", err,
		)
		s.setSyncState(ctx, contract, tokenregistry.SyncStateNotSynced)
		return
	}

	balance, err := s.registry.Balance(contract)
	if err != nil {
		return
	}

	if lastTxHeight.Int() > balance.Height.Int() {
		balancePosition, err := s.registry.BalancePosition(contract)
		if err != nil {
			return
		}

		s.setSyncState(ctx, contract, tokenregistry.SyncStateSyncing)
		s.triggerBalanceSync(ctx, eventCh, contract, lastTxHeight, balancePosition, generation)
		return
	}

	s.setSyncState(ctx, contract, tokenregistry.SyncStateSynced)
}

// handleBalanceSyncDone processes the completion of a single contract's
// balance refresh. The balance value itself was already pushed through the
// update stream, so only the sync state transitions here.
func (s *service) handleBalanceSyncDone(ctx context.Context, e balanceSyncDoneEvent) {
	if e.generation != s.registry.Generation() {
		logger.Debug(ctx, "dropping stale balance sync completion",
			"token.contract", e.contract,
			"sync.generation", e.generation,
		)
		return
	}

	if e.err != nil {
		logger.Warn(ctx, "balance sync failed",
			"token.contract", e.contract,
			"error", e.err,
		)
		s.setSyncState(ctx, e.contract, tokenregistry.SyncStateNotSynced)
		return
	}

	s.setSyncState(ctx, e.contract, tokenregistry.SyncStateSynced)
}

// handleBalanceUpdate stores a fresh balance value pushed by the balance
// subsystem and notifies balance subscribers. Updates whose height would
// regress the stored snapshot are discarded by the registry.
func (s *service) handleBalanceUpdate(ctx context.Context, update BalanceUpdate) {
	updated, err := s.registry.SetBalance(update.Contract, tokenregistry.Balance{
		Value:  update.Value,
		Height: update.Height,
	})
	if err != nil || !updated {
		return
	}

	if err := s.registry.NotifyBalance(update.Contract); err != nil {
		logger.Warn(ctx, "balance notification dropped",
			"token.contract", update.Contract,
			"error", err,
		)
	}
}

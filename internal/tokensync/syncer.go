package tokensync

import (
	"context"
	"math/big"

	"github.com/gabapcia/tokenwatch/internal/pkg/types"
)

// Transaction is a token transfer reported by the transaction subsystem,
// carrying just enough to partition a batch by contract and to publish the
// list to subscribers.
type Transaction struct {
	Hash     string        // unique transaction hash identifier
	Contract types.Address // token contract the transfer belongs to
	From     string        // sender address
	To       string        // recipient address
	Height   types.Hex     // block height the transfer was included at
}

// TransactionSyncer is the transaction-history subsystem as seen by the
// coordinator: it fetches and persists transfer history for a set of
// contracts and remembers the highest block height ever observed per
// contract.
type TransactionSyncer interface {
	// SyncTransactions fetches and stores the transaction history for the
	// given contracts, returning the transfers fetched in this pass. The
	// call blocks for the duration of the fetch; the coordinator runs it
	// off its worker.
	SyncTransactions(ctx context.Context, contracts []types.Address) ([]Transaction, error)

	// LastTransactionHeight returns the highest block height among all
	// transactions ever observed for the contract, or an empty height if
	// none was seen yet.
	LastTransactionHeight(ctx context.Context, contract types.Address) (types.Hex, error)
}

// BalanceUpdate is pushed by the balance subsystem whenever it has a fresher
// balance value for a contract, independently of sync success or failure.
type BalanceUpdate struct {
	Contract types.Address
	Value    *big.Int
	Height   types.Hex
}

// BalanceSyncer is the balance subsystem as seen by the coordinator: it
// fetches and persists a contract's balance at a given height and streams
// fresh values as they become known.
type BalanceSyncer interface {
	// SyncBalance fetches and stores the contract's balance at the given
	// height, reading it from the opaque balance position supplied at
	// registration. The call blocks for the duration of the fetch.
	SyncBalance(ctx context.Context, contract types.Address, height, balancePosition types.Hex) error

	// Updates begins streaming fresh balance values. The returned channel
	// is closed when ctx is canceled.
	Updates(ctx context.Context) (<-chan BalanceUpdate, error)
}

package txhistory

import (
	"context"
	"errors"

	"github.com/gabapcia/tokenwatch/internal/pkg/types"
)

var (
	// ErrNoTransactions is returned by LastTransactionHeight when no
	// transfer was ever stored for the contract.
	ErrNoTransactions = errors.New("no transactions stored for contract")

	// ErrNoSyncCheckpoint is returned by LastSyncCheckpoint when no sweep
	// ever completed.
	ErrNoSyncCheckpoint = errors.New("no sync checkpoint stored")
)

// TransactionStorage persists transfer history and the sweep checkpoint.
type TransactionStorage interface {
	// SaveTransactions stores a batch of transfers. Storing the same
	// transfer twice must be a no-op.
	SaveTransactions(ctx context.Context, transactions []Transaction) error

	// LastTransactionHeight returns the highest block height among all
	// transfers stored for the contract, or ErrNoTransactions.
	LastTransactionHeight(ctx context.Context, contract types.Address) (types.Hex, error)

	// SaveSyncCheckpoint records the head height of a completed sweep.
	SaveSyncCheckpoint(ctx context.Context, height types.Hex) error

	// LastSyncCheckpoint returns the head height of the latest completed
	// sweep, or ErrNoSyncCheckpoint.
	LastSyncCheckpoint(ctx context.Context) (types.Hex, error)

	// ListTransactions returns up to limit transfers for the contract in
	// insertion order, resuming strictly after the cursor when one is given.
	ListTransactions(ctx context.Context, contract types.Address, cursor *PageCursor, limit int64) ([]Transaction, error)

	// ClearTransactions drops all stored transfers and the sweep checkpoint.
	ClearTransactions(ctx context.Context) error
}

// Package txhistory is the transaction side of the sync pipeline. It sweeps
// ERC-20 transfer events for the tracked contract set from a chain log
// source, persists them, and serves paginated history and per-contract
// last-seen heights back to the coordinator and the wallet facade.
package txhistory

import (
	"context"
	"errors"
	"fmt"

	"github.com/gabapcia/tokenwatch/internal/pkg/resilience/retry"
	"github.com/gabapcia/tokenwatch/internal/pkg/types"
	"github.com/gabapcia/tokenwatch/internal/tokensync"
)

// Service is the transaction-history subsystem. It satisfies
// tokensync.TransactionSyncer and additionally serves the wallet facade's
// history queries.
type Service interface {
	// SyncTransactions sweeps transfer events for the given contracts from
	// the last checkpoint to the chain head, persists them, and returns the
	// newly fetched batch.
	SyncTransactions(ctx context.Context, contracts []types.Address) ([]tokensync.Transaction, error)

	// LastTransactionHeight returns the highest block height among all
	// transfers ever stored for the contract, or an empty height if none.
	LastTransactionHeight(ctx context.Context, contract types.Address) (types.Hex, error)

	// Transactions returns up to limit stored transfers for the contract,
	// resuming after the cursor when one is given.
	Transactions(ctx context.Context, contract types.Address, cursor *PageCursor, limit int64) ([]Transaction, error)

	// Clear drops all stored history and the sweep checkpoint.
	Clear(ctx context.Context) error
}

type service struct {
	source  LogSource
	storage TransactionStorage
	retrier retry.Retry
}

var (
	_ Service                     = (*service)(nil)
	_ tokensync.TransactionSyncer = (*service)(nil)
)

// New creates a transaction-history service over the given log source and
// storage. Fetches against the source are retried.
func New(source LogSource, storage TransactionStorage) *service {
	return &service{
		source:  source,
		storage: storage,
		retrier: retry.New(),
	}
}

func (s *service) SyncTransactions(ctx context.Context, contracts []types.Address) ([]tokensync.Transaction, error) {
	checkpoint, err := s.storage.LastSyncCheckpoint(ctx)
	if err != nil && !errors.Is(err, ErrNoSyncCheckpoint) {
		return nil, fmt.Errorf("loading sync checkpoint: %w", err)
	}

	var (
		transactions []Transaction
		tip          types.Hex
	)
	if errs := s.retrier.Execute(ctx, func() error {
		var fetchErr error
		transactions, tip, fetchErr = s.source.FetchTransfers(ctx, contracts, checkpoint)
		return fetchErr
	}); len(errs) > 0 {
		return nil, fmt.Errorf("fetching transfers: %w", errors.Join(errs...))
	}

	if len(transactions) > 0 {
		if err := s.storage.SaveTransactions(ctx, transactions); err != nil {
			return nil, fmt.Errorf("saving transactions: %w", err)
		}
	}

	if !tip.IsEmpty() {
		if err := s.storage.SaveSyncCheckpoint(ctx, tip); err != nil {
			return nil, fmt.Errorf("saving sync checkpoint: %w", err)
		}
	}

	return toSyncTransactions(transactions), nil
}

func (s *service) LastTransactionHeight(ctx context.Context, contract types.Address) (types.Hex, error) {
	height, err := s.storage.LastTransactionHeight(ctx, contract)
	switch {
	case errors.Is(err, ErrNoTransactions):
		return "", nil
	case err != nil:
		return "", err
	}
	return height, nil
}

func (s *service) Transactions(ctx context.Context, contract types.Address, cursor *PageCursor, limit int64) ([]Transaction, error) {
	return s.storage.ListTransactions(ctx, contract, cursor, limit)
}

func (s *service) Clear(ctx context.Context) error {
	return s.storage.ClearTransactions(ctx)
}

// toSyncTransactions projects stored transfers into the coordinator's view.
func toSyncTransactions(transactions []Transaction) []tokensync.Transaction {
	out := make([]tokensync.Transaction, len(transactions))
	for i, tx := range transactions {
		out[i] = tokensync.Transaction{
			Hash:     tx.ID,
			Contract: tx.Contract,
			From:     tx.From,
			To:       tx.To,
			Height:   tx.Height,
		}
	}
	return out
}

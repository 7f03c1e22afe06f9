// Package balancesync is the balance side of the sync pipeline. It reads a
// contract's balance from the chain at a requested height, persists it, and
// streams every freshly fetched value to the coordinator independently of
// whether the surrounding sync attempt succeeds.
package balancesync

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/gabapcia/tokenwatch/internal/pkg/logger"
	"github.com/gabapcia/tokenwatch/internal/pkg/resilience/retry"
	"github.com/gabapcia/tokenwatch/internal/pkg/types"
	"github.com/gabapcia/tokenwatch/internal/tokensync"
)

// ErrUpdatesAlreadyStreaming is returned if Updates is called while a
// previous stream is still open.
var ErrUpdatesAlreadyStreaming = errors.New("balance updates already streaming")

// updatesChannelBufferSize bounds the balance-update stream. Pushes never
// block a sync; a full buffer drops the value and logs it, the next sync at
// the same or a higher height carries it again.
const updatesChannelBufferSize = 32

// Service is the balance subsystem. It satisfies tokensync.BalanceSyncer and
// additionally lets the wallet facade discard cached balances.
type Service interface {
	// SyncBalance fetches and stores the contract's balance at the given
	// height. The fetched value is pushed on the updates stream even when
	// persisting it fails.
	SyncBalance(ctx context.Context, contract types.Address, height, balancePosition types.Hex) error

	// Updates begins streaming freshly fetched balance values. The returned
	// channel is closed when ctx is canceled. Only one stream may be open
	// at a time.
	Updates(ctx context.Context) (<-chan tokensync.BalanceUpdate, error)

	// Clear drops every stored balance snapshot.
	Clear(ctx context.Context) error
}

type service struct {
	mu        sync.Mutex
	updatesCh chan tokensync.BalanceUpdate

	source  BalanceSource
	storage BalanceStorage
	retrier retry.Retry
}

var (
	_ Service                 = (*service)(nil)
	_ tokensync.BalanceSyncer = (*service)(nil)
)

// New creates a balance service over the given chain source and storage.
// Fetches against the source are retried.
func New(source BalanceSource, storage BalanceStorage) *service {
	return &service{
		source:  source,
		storage: storage,
		retrier: retry.New(),
	}
}

func (s *service) SyncBalance(ctx context.Context, contract types.Address, height, balancePosition types.Hex) error {
	var value *big.Int
	if errs := s.retrier.Execute(ctx, func() error {
		var fetchErr error
		value, fetchErr = s.source.FetchBalance(ctx, contract, height, balancePosition)
		return fetchErr
	}); len(errs) > 0 {
		return fmt.Errorf("fetching balance: %w", errors.Join(errs...))
	}

	s.pushUpdate(ctx, tokensync.BalanceUpdate{
		Contract: contract,
		Value:    value,
		Height:   height,
	})

	if err := s.storage.SaveBalance(ctx, contract, value, height); err != nil {
		return fmt.Errorf("saving balance: %w", err)
	}
	return nil
}

func (s *service) Updates(ctx context.Context) (<-chan tokensync.BalanceUpdate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.updatesCh != nil {
		return nil, ErrUpdatesAlreadyStreaming
	}

	ch := make(chan tokensync.BalanceUpdate, updatesChannelBufferSize)
	s.updatesCh = ch

	go func() {
		<-ctx.Done()

		s.mu.Lock()
		defer s.mu.Unlock()
		close(ch)
		s.updatesCh = nil
	}()

	return ch, nil
}

func (s *service) Clear(ctx context.Context) error {
	return s.storage.ClearBalances(ctx)
}

// pushUpdate delivers a fresh balance value to the stream without ever
// blocking the sync path. The mutex guarantees the channel is not closed
// mid-send.
func (s *service) pushUpdate(ctx context.Context, update tokensync.BalanceUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.updatesCh == nil {
		return
	}

	select {
	case s.updatesCh <- update:
	default:
		logger.Warn(ctx, "balance update dropped, stream buffer full",
			"token.contract", update.Contract,
			"balance.height", update.Height,
		)
	}
}

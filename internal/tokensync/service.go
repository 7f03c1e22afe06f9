// Package tokensync drives the per-contract synchronization state machine.
// It subscribes to chain-level block-height and sync-state signals, triggers
// the transaction and balance subsystems, consumes their completions, and
// reconciles transaction-derived heights against balance-derived heights to
// decide when a contract may be declared synced.
package tokensync

import (
	"context"
	"errors"
	"sync"

	"github.com/gabapcia/tokenwatch/internal/pkg/x/chflow"
	"github.com/gabapcia/tokenwatch/internal/tokenregistry"
)

// ErrServiceAlreadyStarted is returned if Start is called more than once.
var ErrServiceAlreadyStarted = errors.New("service already started")

// eventChannelBufferSize bounds the coordinator's inbound event queue.
const eventChannelBufferSize = 32

// Service defines the coordinator lifecycle. Between Start and Close it is
// the only writer of the token registry.
type Service interface {
	// Start subscribes to chain signals and balance updates and launches
	// the single worker goroutine that serializes all state transitions.
	//
	// Returns ErrServiceAlreadyStarted if Start is called more than once.
	// Call Close to shut down all background routines.
	Start(ctx context.Context) error

	// Close shuts the coordinator down and cancels all active routines.
	// It is safe to call Close even if the service was never started.
	Close()
}

// closeFunc defines a cleanup routine to stop background goroutines.
type closeFunc func()

type service struct {
	mu        sync.Mutex
	isStarted bool
	closeFunc closeFunc

	registry      *tokenregistry.Registry
	chain         ChainClient
	txSyncer      TransactionSyncer
	balanceSyncer BalanceSyncer
}

var _ Service = (*service)(nil)

func (s *service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isStarted {
		return ErrServiceAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)

	signalCh, err := s.chain.Subscribe(ctx)
	if err != nil {
		cancel()
		return err
	}

	updatesCh, err := s.balanceSyncer.Updates(ctx)
	if err != nil {
		cancel()
		return err
	}

	eventCh := make(chan syncEvent, eventChannelBufferSize)

	go s.forwardChainSignals(ctx, signalCh, eventCh)
	go s.forwardBalanceUpdates(ctx, updatesCh, eventCh)
	go s.run(ctx, eventCh)

	s.closeFunc = closeFunc(cancel)
	s.isStarted = true
	return nil
}

func (s *service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closeFunc != nil {
		s.closeFunc()
	}
	s.closeFunc = nil
	s.isStarted = false
}

// forwardChainSignals marshals chain signals onto the worker queue, keeping
// their emission order.
func (s *service) forwardChainSignals(ctx context.Context, signalCh <-chan ChainSignal, eventCh chan<- syncEvent) {
	for {
		signal, ok := chflow.Receive(ctx, signalCh)
		if !ok {
			return
		}

		if ok := chflow.Send(ctx, eventCh, syncEvent(chainSignalEvent{signal: signal})); !ok {
			return
		}
	}
}

// forwardBalanceUpdates marshals balance subsystem pushes onto the worker
// queue.
func (s *service) forwardBalanceUpdates(ctx context.Context, updatesCh <-chan BalanceUpdate, eventCh chan<- syncEvent) {
	for {
		update, ok := chflow.Receive(ctx, updatesCh)
		if !ok {
			return
		}

		if ok := chflow.Send(ctx, eventCh, syncEvent(balanceUpdateEvent{update: update})); !ok {
			return
		}
	}
}

// New creates a coordinator over the given registry, chain signal source, and
// sync subsystems.
func New(registry *tokenregistry.Registry, chain ChainClient, txSyncer TransactionSyncer, balanceSyncer BalanceSyncer) *service {
	return &service{
		registry:      registry,
		chain:         chain,
		txSyncer:      txSyncer,
		balanceSyncer: balanceSyncer,
	}
}

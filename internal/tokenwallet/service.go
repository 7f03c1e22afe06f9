// Package tokenwallet is the public operation surface of the service. It
// validates caller input, keeps the persisted registration set in step with
// the in-memory registry, and delegates everything else: sync state and
// balances to the registry, history queries to the transaction subsystem,
// transfers to the chain submitter. Subsystem failures never surface here;
// the coordinator absorbs them as sync-state transitions.
package tokenwallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/gabapcia/tokenwatch/internal/pkg/types"
	"github.com/gabapcia/tokenwatch/internal/tokenregistry"
	"github.com/gabapcia/tokenwatch/internal/txhistory"
)

var (
	// ErrInvalidAddress is returned when a contract or account address does
	// not parse as a 20-byte hex address.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrInvalidValue is returned when a numeric input does not parse as a
	// non-negative integer.
	ErrInvalidValue = errors.New("invalid value")
)

// Service is the wallet facade.
type Service interface {
	// Register starts tracking a token contract and persists the
	// registration. The balance position is an opaque hex locator handed
	// through to the balance subsystem unmodified.
	Register(ctx context.Context, contract, balancePosition string) error

	// Unregister stops tracking a token contract and removes its persisted
	// registration.
	Unregister(ctx context.Context, contract string) error

	// Restore reloads persisted registrations into the registry. It is
	// meant to run once at startup, before the coordinator starts.
	Restore(ctx context.Context) error

	// SyncState returns the contract's current sync state.
	SyncState(ctx context.Context, contract string) (tokenregistry.SyncState, error)

	// Balance returns the contract's last known balance as a decimal
	// string. A contract that never synced reports "0".
	Balance(ctx context.Context, contract string) (string, error)

	// Fee quotes the cost of a transfer at the given gas price.
	Fee(gasPrice *big.Int) *big.Int

	// SendTransfer validates the inputs and broadcasts an ERC-20 transfer.
	SendTransfer(ctx context.Context, contract, to, amount string, gasPrice *big.Int) (Transfer, error)

	// Transactions returns up to limit stored transfers for the contract,
	// resuming after the cursor when one is given.
	Transactions(ctx context.Context, contract string, cursor *txhistory.PageCursor, limit int64) ([]txhistory.Transaction, error)

	// SubscribeSyncState streams the contract's sync-state changes.
	SubscribeSyncState(contract string) (<-chan tokenregistry.SyncStateChange, error)

	// SubscribeBalance streams the contract's balance changes.
	SubscribeBalance(contract string) (<-chan tokenregistry.BalanceChange, error)

	// SubscribeTransactions streams the contract's newly observed transfers.
	SubscribeTransactions(contract string) (<-chan tokenregistry.TransactionsChange, error)

	// Clear resets the registry and instructs every subsystem to discard
	// cached state. Meant for account switches.
	Clear(ctx context.Context) error
}

type service struct {
	registry  *tokenregistry.Registry
	store     TokenStore
	history   TransactionHistory
	balances  BalanceCache
	submitter TransferSubmitter
}

var _ Service = (*service)(nil)

// New creates the wallet facade over the registry, the registration store,
// the two sync subsystems, and the transfer submitter.
func New(registry *tokenregistry.Registry, store TokenStore, history TransactionHistory, balances BalanceCache, submitter TransferSubmitter) *service {
	return &service{
		registry:  registry,
		store:     store,
		history:   history,
		balances:  balances,
		submitter: submitter,
	}
}

func (s *service) Restore(ctx context.Context) error {
	registrations, err := s.store.ListRegistrations(ctx)
	if err != nil {
		return fmt.Errorf("listing registrations: %w", err)
	}

	var errs []error
	for _, registration := range registrations {
		err := s.registry.Register(registration.Contract, registration.BalancePosition, big.NewInt(0))
		if err != nil && !errors.Is(err, tokenregistry.ErrAlreadyRegistered) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *service) Clear(ctx context.Context) error {
	s.registry.Clear()

	return errors.Join(
		s.history.Clear(ctx),
		s.balances.Clear(ctx),
		s.store.ClearRegistrations(ctx),
	)
}

// parseAddress converts a caller-supplied hex string into a 20-byte address,
// mapping any parse failure onto ErrInvalidAddress.
func parseAddress(s string) (types.Address, error) {
	address, err := types.AddressFromHex(s)
	if err != nil {
		return types.Address{}, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	return address, nil
}

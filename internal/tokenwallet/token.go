package tokenwallet

import (
	"context"
	"fmt"
	"math/big"

	"github.com/gabapcia/tokenwatch/internal/pkg/types"
	"github.com/gabapcia/tokenwatch/internal/pkg/validator"
	"github.com/gabapcia/tokenwatch/internal/tokenregistry"
	"github.com/gabapcia/tokenwatch/internal/txhistory"
)

// registerInput carries the validation rules of a registration request. The
// balance position is an opaque storage-slot locator, so only its shape is
// checked here; the contract goes through address parsing instead.
type registerInput struct {
	BalancePosition string `validate:"required,hexadecimal"`
}

func (s *service) Register(ctx context.Context, contract, balancePosition string) error {
	address, err := parseAddress(contract)
	if err != nil {
		return err
	}

	if err := validator.Validate(registerInput{BalancePosition: balancePosition}); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}

	if err := s.registry.Register(address, types.Hex(balancePosition), big.NewInt(0)); err != nil {
		return err
	}

	if err := s.store.SaveRegistration(ctx, Registration{
		Contract:        address,
		BalancePosition: types.Hex(balancePosition),
	}); err != nil {
		_ = s.registry.Unregister(address)
		return fmt.Errorf("persisting registration: %w", err)
	}
	return nil
}

func (s *service) Unregister(ctx context.Context, contract string) error {
	address, err := parseAddress(contract)
	if err != nil {
		return err
	}

	if err := s.registry.Unregister(address); err != nil {
		return err
	}

	if err := s.store.DeleteRegistration(ctx, address); err != nil {
		return fmt.Errorf("removing registration: %w", err)
	}
	return nil
}

func (s *service) SyncState(ctx context.Context, contract string) (tokenregistry.SyncState, error) {
	address, err := parseAddress(contract)
	if err != nil {
		return "", err
	}
	return s.registry.SyncState(address)
}

func (s *service) Balance(ctx context.Context, contract string) (string, error) {
	address, err := parseAddress(contract)
	if err != nil {
		return "", err
	}

	balance, err := s.registry.Balance(address)
	if err != nil {
		return "", err
	}

	if balance.Value == nil {
		return "0", nil
	}
	return balance.Value.String(), nil
}

func (s *service) Transactions(ctx context.Context, contract string, cursor *txhistory.PageCursor, limit int64) ([]txhistory.Transaction, error) {
	address, err := parseAddress(contract)
	if err != nil {
		return nil, err
	}
	return s.history.Transactions(ctx, address, cursor, limit)
}

func (s *service) SubscribeSyncState(contract string) (<-chan tokenregistry.SyncStateChange, error) {
	address, err := parseAddress(contract)
	if err != nil {
		return nil, err
	}
	return s.registry.SubscribeSyncState(address)
}

func (s *service) SubscribeBalance(contract string) (<-chan tokenregistry.BalanceChange, error) {
	address, err := parseAddress(contract)
	if err != nil {
		return nil, err
	}
	return s.registry.SubscribeBalance(address)
}

func (s *service) SubscribeTransactions(contract string) (<-chan tokenregistry.TransactionsChange, error) {
	address, err := parseAddress(contract)
	if err != nil {
		return nil, err
	}
	return s.registry.SubscribeTransactions(address)
}

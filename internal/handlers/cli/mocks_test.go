package cli

import (
	"context"
	"math/big"
	"testing"

	"github.com/gabapcia/tokenwatch/internal/tokenregistry"
	"github.com/gabapcia/tokenwatch/internal/tokenwallet"
	"github.com/gabapcia/tokenwatch/internal/txhistory"

	"github.com/stretchr/testify/mock"
)

type walletServiceMock struct {
	mock.Mock
}

var _ tokenwallet.Service = (*walletServiceMock)(nil)

func newWalletServiceMock(t *testing.T) *walletServiceMock {
	m := new(walletServiceMock)
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *walletServiceMock) Register(ctx context.Context, contract, balancePosition string) error {
	args := m.Called(ctx, contract, balancePosition)
	return args.Error(0)
}

func (m *walletServiceMock) Unregister(ctx context.Context, contract string) error {
	args := m.Called(ctx, contract)
	return args.Error(0)
}

func (m *walletServiceMock) Restore(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *walletServiceMock) SyncState(ctx context.Context, contract string) (tokenregistry.SyncState, error) {
	args := m.Called(ctx, contract)
	return args.Get(0).(tokenregistry.SyncState), args.Error(1)
}

func (m *walletServiceMock) Balance(ctx context.Context, contract string) (string, error) {
	args := m.Called(ctx, contract)
	return args.String(0), args.Error(1)
}

func (m *walletServiceMock) Fee(gasPrice *big.Int) *big.Int {
	args := m.Called(gasPrice)

	var fee *big.Int
	if v := args.Get(0); v != nil {
		fee = v.(*big.Int)
	}
	return fee
}

func (m *walletServiceMock) SendTransfer(ctx context.Context, contract, to, amount string, gasPrice *big.Int) (tokenwallet.Transfer, error) {
	args := m.Called(ctx, contract, to, amount, gasPrice)
	return args.Get(0).(tokenwallet.Transfer), args.Error(1)
}

func (m *walletServiceMock) Transactions(ctx context.Context, contract string, cursor *txhistory.PageCursor, limit int64) ([]txhistory.Transaction, error) {
	args := m.Called(ctx, contract, cursor, limit)

	var transactions []txhistory.Transaction
	if v := args.Get(0); v != nil {
		transactions = v.([]txhistory.Transaction)
	}
	return transactions, args.Error(1)
}

func (m *walletServiceMock) SubscribeSyncState(contract string) (<-chan tokenregistry.SyncStateChange, error) {
	args := m.Called(contract)

	var ch <-chan tokenregistry.SyncStateChange
	if v := args.Get(0); v != nil {
		ch = v.(<-chan tokenregistry.SyncStateChange)
	}
	return ch, args.Error(1)
}

func (m *walletServiceMock) SubscribeBalance(contract string) (<-chan tokenregistry.BalanceChange, error) {
	args := m.Called(contract)

	var ch <-chan tokenregistry.BalanceChange
	if v := args.Get(0); v != nil {
		ch = v.(<-chan tokenregistry.BalanceChange)
	}
	return ch, args.Error(1)
}

func (m *walletServiceMock) SubscribeTransactions(contract string) (<-chan tokenregistry.TransactionsChange, error) {
	args := m.Called(contract)

	var ch <-chan tokenregistry.TransactionsChange
	if v := args.Get(0); v != nil {
		ch = v.(<-chan tokenregistry.TransactionsChange)
	}
	return ch, args.Error(1)
}

func (m *walletServiceMock) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

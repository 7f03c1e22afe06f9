package tokensync

import (
	"context"
	"testing"

	"github.com/gabapcia/tokenwatch/internal/pkg/logger"
	"github.com/gabapcia/tokenwatch/internal/pkg/types"

	"github.com/stretchr/testify/mock"
)

func init() {
	_ = logger.Init("error")
}

type chainClientMock struct {
	mock.Mock
}

func newChainClientMock(t *testing.T) *chainClientMock {
	m := new(chainClientMock)
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *chainClientMock) Subscribe(ctx context.Context) (<-chan ChainSignal, error) {
	args := m.Called(ctx)

	var signalCh <-chan ChainSignal
	if v := args.Get(0); v != nil {
		signalCh = v.(<-chan ChainSignal)
	}
	return signalCh, args.Error(1)
}

type transactionSyncerMock struct {
	mock.Mock
}

func newTransactionSyncerMock(t *testing.T) *transactionSyncerMock {
	m := new(transactionSyncerMock)
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *transactionSyncerMock) SyncTransactions(ctx context.Context, contracts []types.Address) ([]Transaction, error) {
	args := m.Called(ctx, contracts)

	var transactions []Transaction
	if v := args.Get(0); v != nil {
		transactions = v.([]Transaction)
	}
	return transactions, args.Error(1)
}

func (m *transactionSyncerMock) LastTransactionHeight(ctx context.Context, contract types.Address) (types.Hex, error) {
	args := m.Called(ctx, contract)
	return args.Get(0).(types.Hex), args.Error(1)
}

type balanceSyncerMock struct {
	mock.Mock
}

func newBalanceSyncerMock(t *testing.T) *balanceSyncerMock {
	m := new(balanceSyncerMock)
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *balanceSyncerMock) SyncBalance(ctx context.Context, contract types.Address, height, balancePosition types.Hex) error {
	args := m.Called(ctx, contract, height, balancePosition)
	return args.Error(0)
}

func (m *balanceSyncerMock) Updates(ctx context.Context) (<-chan BalanceUpdate, error) {
	args := m.Called(ctx)

	var updatesCh <-chan BalanceUpdate
	if v := args.Get(0); v != nil {
		updatesCh = v.(<-chan BalanceUpdate)
	}
	return updatesCh, args.Error(1)
}

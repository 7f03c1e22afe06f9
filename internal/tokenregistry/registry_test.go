package tokenregistry

import (
	"math/big"
	"testing"

	"github.com/gabapcia/tokenwatch/internal/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustAddress(t *testing.T, s string) types.Address {
	t.Helper()

	address, err := types.AddressFromHex(s)
	require.NoError(t, err)
	return address
}

func TestRegistryRegister(t *testing.T) {
	contract := "0xdac17f958d2ee523a2206206994597c13d831ec7"

	t.Run("registers a new contract in state not synced", func(t *testing.T) {
		registry := New()
		address := mustAddress(t, contract)

		err := registry.Register(address, "0x2", big.NewInt(0))
		require.NoError(t, err)

		state, err := registry.SyncState(address)
		require.NoError(t, err)
		assert.Equal(t, SyncStateNotSynced, state)

		position, err := registry.BalancePosition(address)
		require.NoError(t, err)
		assert.Equal(t, types.Hex("0x2"), position)
	})

	t.Run("fails when the contract is already registered", func(t *testing.T) {
		registry := New()
		address := mustAddress(t, contract)

		require.NoError(t, registry.Register(address, "0x2", big.NewInt(0)))

		_, err := registry.SetSyncState(address, SyncStateSyncing)
		require.NoError(t, err)

		err = registry.Register(address, "0x5", big.NewInt(100))
		require.ErrorIs(t, err, ErrAlreadyRegistered)

		// the first registration is untouched
		state, err := registry.SyncState(address)
		require.NoError(t, err)
		assert.Equal(t, SyncStateSyncing, state)

		position, err := registry.BalancePosition(address)
		require.NoError(t, err)
		assert.Equal(t, types.Hex("0x2"), position)
	})

	t.Run("re-registers an unregistered contract with fresh state", func(t *testing.T) {
		registry := New()
		address := mustAddress(t, contract)

		require.NoError(t, registry.Register(address, "0x2", big.NewInt(0)))

		_, err := registry.SetSyncState(address, SyncStateSynced)
		require.NoError(t, err)
		_, err = registry.SetBalance(address, Balance{Value: big.NewInt(750), Height: "0x64"})
		require.NoError(t, err)

		require.NoError(t, registry.Unregister(address))
		require.NoError(t, registry.Register(address, "0x5", big.NewInt(0)))

		state, err := registry.SyncState(address)
		require.NoError(t, err)
		assert.Equal(t, SyncStateNotSynced, state)

		balance, err := registry.Balance(address)
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(0), balance.Value)
		assert.True(t, balance.Height.IsEmpty())

		position, err := registry.BalancePosition(address)
		require.NoError(t, err)
		assert.Equal(t, types.Hex("0x5"), position)
	})
}

func TestRegistryUnregister(t *testing.T) {
	contract := "0xdac17f958d2ee523a2206206994597c13d831ec7"

	t.Run("removes the contract and closes its subscriptions", func(t *testing.T) {
		registry := New()
		address := mustAddress(t, contract)

		require.NoError(t, registry.Register(address, "0x2", big.NewInt(0)))

		stateCh, err := registry.SubscribeSyncState(address)
		require.NoError(t, err)

		require.NoError(t, registry.Unregister(address))

		_, open := <-stateCh
		assert.False(t, open)

		_, err = registry.SyncState(address)
		assert.ErrorIs(t, err, ErrNotRegistered)
	})

	t.Run("fails when the contract is not registered", func(t *testing.T) {
		registry := New()

		err := registry.Unregister(mustAddress(t, contract))
		assert.ErrorIs(t, err, ErrNotRegistered)
	})
}

func TestRegistrySetSyncState(t *testing.T) {
	contract := "0xdac17f958d2ee523a2206206994597c13d831ec7"

	t.Run("reports a change when the state differs", func(t *testing.T) {
		registry := New()
		address := mustAddress(t, contract)

		require.NoError(t, registry.Register(address, "0x2", big.NewInt(0)))

		changed, err := registry.SetSyncState(address, SyncStateSyncing)
		require.NoError(t, err)
		assert.True(t, changed)

		state, err := registry.SyncState(address)
		require.NoError(t, err)
		assert.Equal(t, SyncStateSyncing, state)
	})

	t.Run("reports no change when the state is already set", func(t *testing.T) {
		registry := New()
		address := mustAddress(t, contract)

		require.NoError(t, registry.Register(address, "0x2", big.NewInt(0)))

		changed, err := registry.SetSyncState(address, SyncStateNotSynced)
		require.NoError(t, err)
		assert.False(t, changed)
	})

	t.Run("fails when the contract is not registered", func(t *testing.T) {
		registry := New()

		_, err := registry.SetSyncState(mustAddress(t, contract), SyncStateSynced)
		assert.ErrorIs(t, err, ErrNotRegistered)
	})
}

func TestRegistrySetBalance(t *testing.T) {
	contract := "0xdac17f958d2ee523a2206206994597c13d831ec7"

	t.Run("stores a fresher snapshot", func(t *testing.T) {
		registry := New()
		address := mustAddress(t, contract)

		require.NoError(t, registry.Register(address, "0x2", big.NewInt(0)))

		updated, err := registry.SetBalance(address, Balance{Value: big.NewInt(500), Height: "0x64"})
		require.NoError(t, err)
		assert.True(t, updated)

		balance, err := registry.Balance(address)
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(500), balance.Value)
		assert.Equal(t, types.Hex("0x64"), balance.Height)
	})

	t.Run("discards a snapshot older than the stored one", func(t *testing.T) {
		registry := New()
		address := mustAddress(t, contract)

		require.NoError(t, registry.Register(address, "0x2", big.NewInt(0)))

		updated, err := registry.SetBalance(address, Balance{Value: big.NewInt(500), Height: "0x64"})
		require.NoError(t, err)
		require.True(t, updated)

		updated, err = registry.SetBalance(address, Balance{Value: big.NewInt(400), Height: "0x32"})
		require.NoError(t, err)
		assert.False(t, updated)

		balance, err := registry.Balance(address)
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(500), balance.Value)
		assert.Equal(t, types.Hex("0x64"), balance.Height)
	})

	t.Run("accepts a snapshot at the same height", func(t *testing.T) {
		registry := New()
		address := mustAddress(t, contract)

		require.NoError(t, registry.Register(address, "0x2", big.NewInt(0)))

		updated, err := registry.SetBalance(address, Balance{Value: big.NewInt(500), Height: "0x64"})
		require.NoError(t, err)
		require.True(t, updated)

		updated, err = registry.SetBalance(address, Balance{Value: big.NewInt(501), Height: "0x64"})
		require.NoError(t, err)
		assert.True(t, updated)
	})

	t.Run("fails when the contract is not registered", func(t *testing.T) {
		registry := New()

		_, err := registry.SetBalance(mustAddress(t, contract), Balance{Value: big.NewInt(1)})
		assert.ErrorIs(t, err, ErrNotRegistered)
	})
}

func TestRegistryContractAddresses(t *testing.T) {
	t.Run("returns a snapshot of every tracked contract", func(t *testing.T) {
		registry := New()

		first := mustAddress(t, "0xdac17f958d2ee523a2206206994597c13d831ec7")
		second := mustAddress(t, "0x6b175474e89094c44da98b954eedeac495271d0f")

		require.NoError(t, registry.Register(first, "0x2", big.NewInt(0)))
		require.NoError(t, registry.Register(second, "0x1", big.NewInt(0)))

		assert.ElementsMatch(t, []types.Address{first, second}, registry.ContractAddresses())
	})

	t.Run("returns an empty slice when nothing is tracked", func(t *testing.T) {
		registry := New()
		assert.Empty(t, registry.ContractAddresses())
	})
}

func TestRegistryClear(t *testing.T) {
	contract := "0xdac17f958d2ee523a2206206994597c13d831ec7"

	t.Run("drops every contract, closes channels and advances the generation", func(t *testing.T) {
		registry := New()
		address := mustAddress(t, contract)

		require.NoError(t, registry.Register(address, "0x2", big.NewInt(0)))

		balanceCh, err := registry.SubscribeBalance(address)
		require.NoError(t, err)

		generation := registry.Generation()
		registry.Clear()

		_, open := <-balanceCh
		assert.False(t, open)
		assert.Empty(t, registry.ContractAddresses())
		assert.Equal(t, generation+1, registry.Generation())
	})

	t.Run("is idempotent", func(t *testing.T) {
		registry := New()

		registry.Clear()
		registry.Clear()

		assert.Empty(t, registry.ContractAddresses())
	})
}

func TestRegistryNotify(t *testing.T) {
	contract := "0xdac17f958d2ee523a2206206994597c13d831ec7"

	t.Run("delivers sync state changes to subscribers", func(t *testing.T) {
		registry := New()
		address := mustAddress(t, contract)

		require.NoError(t, registry.Register(address, "0x2", big.NewInt(0)))

		stateCh, err := registry.SubscribeSyncState(address)
		require.NoError(t, err)

		_, err = registry.SetSyncState(address, SyncStateSynced)
		require.NoError(t, err)
		require.NoError(t, registry.NotifySyncState(address))

		change := <-stateCh
		assert.Equal(t, address, change.Contract)
		assert.Equal(t, SyncStateSynced, change.State)
	})

	t.Run("delivers balance changes to subscribers", func(t *testing.T) {
		registry := New()
		address := mustAddress(t, contract)

		require.NoError(t, registry.Register(address, "0x2", big.NewInt(0)))

		balanceCh, err := registry.SubscribeBalance(address)
		require.NoError(t, err)

		_, err = registry.SetBalance(address, Balance{Value: big.NewInt(42), Height: "0xa"})
		require.NoError(t, err)
		require.NoError(t, registry.NotifyBalance(address))

		change := <-balanceCh
		assert.Equal(t, address, change.Contract)
		assert.Equal(t, big.NewInt(42), change.Balance.Value)
	})

	t.Run("delivers transaction batches to subscribers", func(t *testing.T) {
		registry := New()
		address := mustAddress(t, contract)

		require.NoError(t, registry.Register(address, "0x2", big.NewInt(0)))

		txCh, err := registry.SubscribeTransactions(address)
		require.NoError(t, err)

		transactions := []Transaction{{Hash: "0xabc", Contract: address, Height: "0x64"}}
		require.NoError(t, registry.NotifyTransactions(address, transactions))

		change := <-txCh
		assert.Equal(t, address, change.Contract)
		assert.Equal(t, transactions, change.Transactions)
	})

	t.Run("reports a lagging subscriber instead of blocking", func(t *testing.T) {
		registry := New()
		address := mustAddress(t, contract)

		require.NoError(t, registry.Register(address, "0x2", big.NewInt(0)))

		_, err := registry.SubscribeSyncState(address)
		require.NoError(t, err)

		registry.SetSyncState(address, SyncStateSyncing)
		for i := 0; i < subscriptionChannelBufferSize; i++ {
			require.NoError(t, registry.NotifySyncState(address))
		}

		err = registry.NotifySyncState(address)
		assert.ErrorIs(t, err, ErrSubscriberLagging)
	})

	t.Run("fails when the contract is not registered", func(t *testing.T) {
		registry := New()

		err := registry.NotifySyncState(mustAddress(t, contract))
		assert.ErrorIs(t, err, ErrNotRegistered)
	})
}

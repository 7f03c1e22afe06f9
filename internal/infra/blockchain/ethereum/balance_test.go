package ethereum

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"testing"

	"github.com/gabapcia/tokenwatch/internal/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestFetchBalance(t *testing.T) {
	var (
		account  = "0x00000000000000000000000000000000000000aa"
		contract = "0xdac17f958d2ee523a2206206994597c13d831ec7"
	)

	t.Run("reads the balance from the contract storage at a height", func(t *testing.T) {
		conn := newJSONRPCClientMock(t)
		conn.On("Fetch", mock.Anything, "eth_getStorageAt", []any{contract, types.Hex("0x2"), "0x64"}).
			Return(json.RawMessage(`"0x00000000000000000000000000000000000000000000000000000000000003e8"`), nil).
			Once()

		c := NewClient(conn, mustAddress(t, account))

		value, err := c.FetchBalance(context.Background(), mustAddress(t, contract), "0x64", "0x2")
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(1000), value)
	})

	t.Run("reads the latest state without a height", func(t *testing.T) {
		conn := newJSONRPCClientMock(t)
		conn.On("Fetch", mock.Anything, "eth_getStorageAt", []any{contract, types.Hex("0x2"), "latest"}).
			Return(json.RawMessage(`"0x0"`), nil).
			Once()

		c := NewClient(conn, mustAddress(t, account))

		value, err := c.FetchBalance(context.Background(), mustAddress(t, contract), "", "0x2")
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(0), value)
	})

	t.Run("fails when the provider fails", func(t *testing.T) {
		expectedErr := errors.New("provider unavailable")

		conn := newJSONRPCClientMock(t)
		conn.On("Fetch", mock.Anything, "eth_getStorageAt", mock.Anything).
			Return(nil, expectedErr).
			Once()

		c := NewClient(conn, mustAddress(t, account))

		_, err := c.FetchBalance(context.Background(), mustAddress(t, contract), "0x64", "0x2")
		assert.ErrorIs(t, err, expectedErr)
	})
}

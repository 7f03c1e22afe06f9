package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestStartTrackingTokenCommand(t *testing.T) {
	contract := "0xdac17f958d2ee523a2206206994597c13d831ec7"

	t.Run("restores persisted registrations before registering", func(t *testing.T) {
		wallet := newWalletServiceMock(t)
		wallet.On("Restore", mock.Anything).
			Return(nil).
			Once()
		wallet.On("Register", mock.Anything, contract, "0x2").
			Return(nil).
			Once()

		cmd := startTrackingTokenCommand(wallet)

		err := cmd.Run(context.Background(), []string{"track", "--contract", contract, "--balance-position", "0x2"})
		require.NoError(t, err)
	})

	t.Run("does not register when the restore fails", func(t *testing.T) {
		expectedErr := errors.New("storage unavailable")

		wallet := newWalletServiceMock(t)
		wallet.On("Restore", mock.Anything).
			Return(expectedErr).
			Once()

		cmd := startTrackingTokenCommand(wallet)

		err := cmd.Run(context.Background(), []string{"track", "--contract", contract, "--balance-position", "0x2"})
		assert.ErrorIs(t, err, expectedErr)
		wallet.AssertNotCalled(t, "Register", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestStopTrackingTokenCommand(t *testing.T) {
	contract := "0xdac17f958d2ee523a2206206994597c13d831ec7"

	t.Run("restores persisted registrations before unregistering", func(t *testing.T) {
		wallet := newWalletServiceMock(t)
		wallet.On("Restore", mock.Anything).
			Return(nil).
			Once()
		wallet.On("Unregister", mock.Anything, contract).
			Return(nil).
			Once()

		cmd := stopTrackingTokenCommand(wallet)

		err := cmd.Run(context.Background(), []string{"untrack", "--contract", contract})
		require.NoError(t, err)
	})

	t.Run("does not unregister when the restore fails", func(t *testing.T) {
		expectedErr := errors.New("storage unavailable")

		wallet := newWalletServiceMock(t)
		wallet.On("Restore", mock.Anything).
			Return(expectedErr).
			Once()

		cmd := stopTrackingTokenCommand(wallet)

		err := cmd.Run(context.Background(), []string{"untrack", "--contract", contract})
		assert.ErrorIs(t, err, expectedErr)
		wallet.AssertNotCalled(t, "Unregister", mock.Anything, mock.Anything)
	})
}

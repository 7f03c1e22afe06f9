package balancesync

import (
	"context"
	"math/big"

	"github.com/gabapcia/tokenwatch/internal/pkg/types"
)

// BalanceSource reads token balances from the chain.
type BalanceSource interface {
	// FetchBalance returns the account's balance for the contract at the
	// given block height, read from the opaque balance position supplied at
	// registration.
	FetchBalance(ctx context.Context, contract types.Address, height, balancePosition types.Hex) (*big.Int, error)
}

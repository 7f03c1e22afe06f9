package balancesync

import (
	"context"
	"math/big"

	"github.com/gabapcia/tokenwatch/internal/pkg/types"
)

// BalanceStorage persists per-contract balance snapshots.
type BalanceStorage interface {
	// SaveBalance stores the contract's balance at the given height,
	// overwriting any previous snapshot.
	SaveBalance(ctx context.Context, contract types.Address, value *big.Int, height types.Hex) error

	// ClearBalances drops every stored balance snapshot.
	ClearBalances(ctx context.Context) error
}

package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/gabapcia/tokenwatch/internal/balancesync"
	"github.com/gabapcia/tokenwatch/internal/pkg/types"
)

// balanceKeyPrefix is the Redis key namespace used to store balance
// snapshots.
const balanceKeyPrefix = "balance"

// balanceSnapshotsKey is the hash of per-contract balance snapshots.
//
// Format: "balance:snapshots"
const balanceSnapshotsKey = balanceKeyPrefix + ":snapshots"

// storedBalance is the JSON layout of a balance snapshot in Redis.
type storedBalance struct {
	Value  string    `json:"value"`
	Height types.Hex `json:"height"`
}

// SaveBalance implements the balancesync.BalanceStorage interface. The
// snapshot overwrites any previous one for the contract; height ordering is
// the registry's concern, not storage's.
func (c *client) SaveBalance(ctx context.Context, contract types.Address, value *big.Int, height types.Hex) error {
	amount := "0"
	if value != nil {
		amount = value.String()
	}

	payload, err := json.Marshal(storedBalance{
		Value:  amount,
		Height: height,
	})
	if err != nil {
		return fmt.Errorf("encoding balance snapshot: %w", err)
	}

	return c.conn.HSet(ctx, balanceSnapshotsKey, contract.Hex(), string(payload)).Err()
}

// ClearBalances implements the balancesync.BalanceStorage interface.
func (c *client) ClearBalances(ctx context.Context) error {
	return c.deleteByPattern(ctx, balanceKeyPrefix+":*")
}

// Compile-time assertion that the client satisfies the storage interface.
var _ balancesync.BalanceStorage = (*client)(nil)

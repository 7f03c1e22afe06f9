package ethereum

import (
	"context"
	"encoding/json"
	"math/big"

	"github.com/gabapcia/tokenwatch/internal/pkg/types"
)

// FetchBalance implements balancesync.BalanceSource. It reads the account's
// token balance straight out of the contract's storage at the given height,
// using the opaque slot locator supplied at registration. An empty height
// reads the latest state.
func (c *client) FetchBalance(ctx context.Context, contract types.Address, height, balancePosition types.Hex) (*big.Int, error) {
	atBlock := "latest"
	if !height.IsEmpty() {
		atBlock = string(height)
	}

	data, err := c.conn.Fetch(ctx, "eth_getStorageAt", contract.Hex(), balancePosition, atBlock)
	if err != nil {
		return nil, err
	}

	var slot string
	if err := json.Unmarshal(data, &slot); err != nil {
		return nil, err
	}

	return hexToBig(slot)
}

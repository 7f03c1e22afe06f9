package redis

import (
	"context"

	"github.com/gabapcia/tokenwatch/internal/pkg/types"
	"github.com/gabapcia/tokenwatch/internal/tokenwallet"
)

// tokenKeyPrefix is the Redis key namespace used to store contract
// registrations.
const tokenKeyPrefix = "token"

// tokenRegistrationsKey is the hash mapping each registered contract to its
// balance position.
//
// Format: "token:registrations"
const tokenRegistrationsKey = tokenKeyPrefix + ":registrations"

// SaveRegistration implements the tokenwallet.TokenStore interface.
func (c *client) SaveRegistration(ctx context.Context, registration tokenwallet.Registration) error {
	return c.conn.HSet(ctx,
		tokenRegistrationsKey,
		registration.Contract.Hex(),
		string(registration.BalancePosition),
	).Err()
}

// DeleteRegistration implements the tokenwallet.TokenStore interface.
func (c *client) DeleteRegistration(ctx context.Context, contract types.Address) error {
	return c.conn.HDel(ctx, tokenRegistrationsKey, contract.Hex()).Err()
}

// ListRegistrations implements the tokenwallet.TokenStore interface.
func (c *client) ListRegistrations(ctx context.Context) ([]tokenwallet.Registration, error) {
	entries, err := c.conn.HGetAll(ctx, tokenRegistrationsKey).Result()
	if err != nil {
		return nil, err
	}

	registrations := make([]tokenwallet.Registration, 0, len(entries))
	for contract, balancePosition := range entries {
		address, err := types.AddressFromHex(contract)
		if err != nil {
			return nil, err
		}

		registrations = append(registrations, tokenwallet.Registration{
			Contract:        address,
			BalancePosition: types.Hex(balancePosition),
		})
	}

	return registrations, nil
}

// ClearRegistrations implements the tokenwallet.TokenStore interface.
func (c *client) ClearRegistrations(ctx context.Context) error {
	return c.deleteByPattern(ctx, tokenKeyPrefix+":*")
}

// Compile-time assertion that the client satisfies the store interface.
var _ tokenwallet.TokenStore = (*client)(nil)

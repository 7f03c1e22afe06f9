package tokenwallet

import (
	"context"

	"github.com/gabapcia/tokenwatch/internal/pkg/types"
)

// Registration is a tracked contract as persisted across restarts.
type Registration struct {
	Contract        types.Address
	BalancePosition types.Hex
}

// TokenStore persists contract registrations so tracking survives restarts.
type TokenStore interface {
	// SaveRegistration stores the registration, overwriting any previous
	// one for the same contract.
	SaveRegistration(ctx context.Context, registration Registration) error

	// DeleteRegistration removes the contract's registration. Deleting an
	// unknown contract is a no-op.
	DeleteRegistration(ctx context.Context, contract types.Address) error

	// ListRegistrations returns every stored registration.
	ListRegistrations(ctx context.Context) ([]Registration, error)

	// ClearRegistrations drops every stored registration.
	ClearRegistrations(ctx context.Context) error
}

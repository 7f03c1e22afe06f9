package txhistory

import (
	"context"

	"github.com/gabapcia/tokenwatch/internal/pkg/types"
)

// LogSource fetches ERC-20 transfer events from the chain.
type LogSource interface {
	// FetchTransfers returns every transfer emitted by the given contracts
	// from fromHeight (exclusive) up to the chain's current head, together
	// with the head height the fetch was performed at. An empty fromHeight
	// means "from the beginning".
	FetchTransfers(ctx context.Context, contracts []types.Address, fromHeight types.Hex) ([]Transaction, types.Hex, error)
}

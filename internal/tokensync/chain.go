package tokensync

import (
	"context"

	"github.com/gabapcia/tokenwatch/internal/pkg/types"
)

// ChainState mirrors the chain client's own synchronization state. The
// coordinator treats it as a read-only signal: it never writes back.
type ChainState string

const (
	// ChainNotSynced means the node lost sync entirely; local data is stale.
	ChainNotSynced ChainState = "not_synced"

	// ChainSyncing means the node is catching up with the network.
	ChainSyncing ChainState = "syncing"

	// ChainSynced means the node is at the network head.
	ChainSynced ChainState = "synced"
)

// ChainSignal is emitted by the chain client whenever its sync state changes
// or a new block height arrives. Height carries the block height current at
// emission time.
type ChainSignal struct {
	State  ChainState
	Height types.Hex
}

// ChainClient is the source of chain-level block-height and sync-state
// signals the coordinator subscribes to.
type ChainClient interface {
	// Subscribe begins streaming chain signals. The returned channel is
	// closed when ctx is canceled. Signals are delivered in emission order.
	Subscribe(ctx context.Context) (<-chan ChainSignal, error)
}

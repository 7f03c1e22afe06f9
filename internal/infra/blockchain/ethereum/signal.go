package ethereum

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gabapcia/tokenwatch/internal/pkg/types"
	"github.com/gabapcia/tokenwatch/internal/pkg/x/chflow"
	"github.com/gabapcia/tokenwatch/internal/tokensync"
)

const (
	// averageBlockTime defines the expected time between blocks in Ethereum
	// and paces the signal poll loop.
	averageBlockTime = 12 * time.Second

	// signalChannelBufferSize buffers the chain signal stream.
	signalChannelBufferSize = 8
)

// SyncingResponse represents the progress object returned by eth_syncing
// while the node is catching up. A fully synced node returns false instead.
type SyncingResponse struct {
	StartingBlock types.Hex `json:"startingBlock"`
	CurrentBlock  types.Hex `json:"currentBlock"`
	HighestBlock  types.Hex `json:"highestBlock"`
}

// getSyncing reports whether the node is still catching up and, if so, its
// current progress.
func (c *client) getSyncing(ctx context.Context) (bool, SyncingResponse, error) {
	data, err := c.conn.Fetch(ctx, "eth_syncing")
	if err != nil {
		return false, SyncingResponse{}, err
	}

	var done bool
	if err := json.Unmarshal(data, &done); err == nil {
		return !done, SyncingResponse{}, nil
	}

	var progress SyncingResponse
	return true, progress, json.Unmarshal(data, &progress)
}

// getLatestBlockNumber fetches the latest block number from the node.
func (c *client) getLatestBlockNumber(ctx context.Context) (types.Hex, error) {
	data, err := c.conn.Fetch(ctx, "eth_blockNumber")
	if err != nil {
		return "", err
	}

	var blockNumber types.Hex
	return blockNumber, json.Unmarshal(data, &blockNumber)
}

// currentSignal derives one chain signal from the node's sync status and
// head height. Any RPC failure maps to NotSynced; the next poll recovers.
func (c *client) currentSignal(ctx context.Context) tokensync.ChainSignal {
	syncing, progress, err := c.getSyncing(ctx)
	if err != nil {
		return tokensync.ChainSignal{State: tokensync.ChainNotSynced}
	}

	if syncing {
		return tokensync.ChainSignal{
			State:  tokensync.ChainSyncing,
			Height: progress.CurrentBlock,
		}
	}

	head, err := c.getLatestBlockNumber(ctx)
	if err != nil {
		return tokensync.ChainSignal{State: tokensync.ChainNotSynced}
	}

	return tokensync.ChainSignal{
		State:  tokensync.ChainSynced,
		Height: head,
	}
}

// Subscribe implements tokensync.ChainClient. It emits one signal
// immediately and then one per block interval. Repeated Synced signals are
// intentional: each one lets the coordinator sweep for new transfers. The
// returned channel is closed when ctx is canceled.
func (c *client) Subscribe(ctx context.Context) (<-chan tokensync.ChainSignal, error) {
	signalCh := make(chan tokensync.ChainSignal, signalChannelBufferSize)

	go func() {
		defer close(signalCh)

		if ok := chflow.Send(ctx, signalCh, c.currentSignal(ctx)); !ok {
			return
		}

		ticker := time.NewTicker(averageBlockTime)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if ok := chflow.Send(ctx, signalCh, c.currentSignal(ctx)); !ok {
					return
				}
			}
		}
	}()

	return signalCh, nil
}

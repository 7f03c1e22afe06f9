// Package ethereum implements the chain-facing ports of the sync pipeline
// for Ethereum-compatible nodes over a JSON-RPC client: the polling chain
// signal source, the transfer-event log source, the storage-slot balance
// reader, and the ERC-20 transfer submitter.
package ethereum

import (
	"github.com/gabapcia/tokenwatch/internal/balancesync"
	"github.com/gabapcia/tokenwatch/internal/pkg/transport/jsonrpc"
	"github.com/gabapcia/tokenwatch/internal/pkg/types"
	"github.com/gabapcia/tokenwatch/internal/tokensync"
	"github.com/gabapcia/tokenwatch/internal/tokenwallet"
	"github.com/gabapcia/tokenwatch/internal/txhistory"
)

// client talks to an Ethereum node on behalf of a single observed account.
type client struct {
	conn    jsonrpc.Client // Underlying JSON-RPC client used to interact with the Ethereum node
	account types.Address  // The account whose token activity is tracked
}

// Compile-time assertions that client implements every chain-facing port.
var (
	_ tokensync.ChainClient         = (*client)(nil)
	_ txhistory.LogSource           = (*client)(nil)
	_ balancesync.BalanceSource     = (*client)(nil)
	_ tokenwallet.TransferSubmitter = (*client)(nil)
)

// NewClient creates an Ethereum client bound to the given JSON-RPC
// connection and observed account.
func NewClient(conn jsonrpc.Client, account types.Address) *client {
	return &client{
		conn:    conn,
		account: account,
	}
}

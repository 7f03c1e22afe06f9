package txhistory

import (
	"math/big"

	"github.com/gabapcia/tokenwatch/internal/pkg/types"
)

// Transaction is a single ERC-20 transfer as stored and served by the
// history subsystem. ID and Index together identify the transfer uniquely:
// one transaction may carry several transfer events.
type Transaction struct {
	ID       string        // transaction hash
	Contract types.Address // token contract that emitted the transfer
	From     string        // sender address
	To       string        // recipient address
	Amount   *big.Int      // transferred token amount
	Height   types.Hex     // block height the transfer was included at
	Index    uint64        // log index within the block
}

// PageCursor marks a position in a contract's transfer history for keyset
// pagination. Listing resumes strictly after the identified transfer.
type PageCursor struct {
	TxID  string
	Index uint64
}

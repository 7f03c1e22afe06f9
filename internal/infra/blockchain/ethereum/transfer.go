package ethereum

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"math/big"
	"strings"

	"github.com/gabapcia/tokenwatch/internal/pkg/types"
)

const (
	// transferMethodID is the 4-byte selector of transfer(address,uint256).
	transferMethodID = "0xa9059cbb"

	// transferGasLimit is the fixed gas limit every transfer is submitted
	// with. No estimation is performed.
	transferGasLimit = 100_000
)

// TransactionRequest is the transaction object sent to eth_sendTransaction.
type TransactionRequest struct {
	From     string    `json:"from"`
	To       string    `json:"to"`
	Gas      types.Hex `json:"gas"`
	GasPrice string    `json:"gasPrice"`
	Data     string    `json:"data"`
}

// leftPadWord pads a hex string with leading zeros to a full 32-byte word.
func leftPadWord(s string) string {
	return strings.Repeat("0", 64-len(s)) + s
}

// encodeTransferData builds the calldata of transfer(address,uint256): the
// method selector followed by the recipient and amount, each left-padded to
// 32 bytes.
func encodeTransferData(to types.Address, amount *big.Int) string {
	return transferMethodID +
		leftPadWord(hex.EncodeToString(to[:])) +
		leftPadWord(amount.Text(16))
}

// SubmitTransfer implements tokenwallet.TransferSubmitter. It broadcasts an
// ERC-20 transfer from the observed account and returns the transaction hash
// assigned by the node. Signing is the node's concern; the account must be
// unlocked there.
func (c *client) SubmitTransfer(ctx context.Context, contract, to types.Address, amount, gasPrice *big.Int) (types.Hex, error) {
	request := TransactionRequest{
		From:     c.account.Hex(),
		To:       contract.Hex(),
		Gas:      types.HexFromInt(transferGasLimit),
		GasPrice: "0x" + gasPrice.Text(16),
		Data:     encodeTransferData(to, amount),
	}

	data, err := c.conn.Fetch(ctx, "eth_sendTransaction", request)
	if err != nil {
		return "", err
	}

	var hash string
	if err := json.Unmarshal(data, &hash); err != nil {
		return "", err
	}

	return types.Hex(hash), nil
}

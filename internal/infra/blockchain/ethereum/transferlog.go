package ethereum

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/gabapcia/tokenwatch/internal/pkg/types"
	"github.com/gabapcia/tokenwatch/internal/txhistory"
)

// transferEventTopic is keccak256("Transfer(address,address,uint256)"), the
// first topic of every ERC-20 transfer event.
const transferEventTopic = "0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef"

type (
	// LogFilter is the filter object accepted by eth_getLogs.
	LogFilter struct {
		FromBlock types.Hex  `json:"fromBlock"`
		ToBlock   types.Hex  `json:"toBlock"`
		Address   []string   `json:"address"`
		Topics    [][]string `json:"topics"`
	}

	// LogResponse represents a raw log entry returned by eth_getLogs.
	LogResponse struct {
		Address          string    `json:"address"`
		Topics           []string  `json:"topics"`
		Data             string    `json:"data"`
		BlockNumber      types.Hex `json:"blockNumber"`
		TransactionHash  string    `json:"transactionHash"`
		TransactionIndex types.Hex `json:"transactionIndex"`
		LogIndex         types.Hex `json:"logIndex"`
		Removed          bool      `json:"removed"`
	}
)

// topicToAddress recovers the 20-byte address padded into a 32-byte topic.
func topicToAddress(topic string) (types.Address, error) {
	if len(topic) != 66 {
		return types.Address{}, fmt.Errorf("topic %q is not a 32-byte hex value", topic)
	}
	return types.AddressFromHex("0x" + topic[26:])
}

// hexToBig decodes a 0x-prefixed hex quantity of arbitrary size.
func hexToBig(s string) (*big.Int, error) {
	digits := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if digits == "" {
		return big.NewInt(0), nil
	}

	value, ok := new(big.Int).SetString(digits, 16)
	if !ok {
		return nil, fmt.Errorf("invalid hex quantity %q", s)
	}
	return value, nil
}

// toTransaction converts a raw transfer log into a stored transfer.
func (l LogResponse) toTransaction() (txhistory.Transaction, error) {
	if len(l.Topics) != 3 {
		return txhistory.Transaction{}, fmt.Errorf("transfer log of tx %s has %d topics, want 3", l.TransactionHash, len(l.Topics))
	}

	contract, err := types.AddressFromHex(l.Address)
	if err != nil {
		return txhistory.Transaction{}, err
	}

	from, err := topicToAddress(l.Topics[1])
	if err != nil {
		return txhistory.Transaction{}, err
	}

	to, err := topicToAddress(l.Topics[2])
	if err != nil {
		return txhistory.Transaction{}, err
	}

	amount, err := hexToBig(l.Data)
	if err != nil {
		return txhistory.Transaction{}, err
	}

	return txhistory.Transaction{
		ID:       l.TransactionHash,
		Contract: contract,
		From:     from.Hex(),
		To:       to.Hex(),
		Amount:   amount,
		Height:   l.BlockNumber,
		Index:    uint64(l.LogIndex.Int()),
	}, nil
}

// getLogs fetches raw transfer logs for the contract set in a block range.
func (c *client) getLogs(ctx context.Context, filter LogFilter) ([]LogResponse, error) {
	data, err := c.conn.Fetch(ctx, "eth_getLogs", filter)
	if err != nil {
		return nil, err
	}

	var logs []LogResponse
	return logs, json.Unmarshal(data, &logs)
}

// FetchTransfers implements txhistory.LogSource. It returns every transfer
// involving the observed account that the given contracts emitted after
// fromHeight, together with the head height the sweep covered.
func (c *client) FetchTransfers(ctx context.Context, contracts []types.Address, fromHeight types.Hex) ([]txhistory.Transaction, types.Hex, error) {
	if len(contracts) == 0 {
		return nil, "", nil
	}

	head, err := c.getLatestBlockNumber(ctx)
	if err != nil {
		return nil, "", err
	}

	fromBlock := types.HexFromInt(0)
	if !fromHeight.IsEmpty() {
		if fromHeight.Int() >= head.Int() {
			return nil, head, nil
		}
		fromBlock = fromHeight.Add(1)
	}

	addresses := make([]string, len(contracts))
	for i, contract := range contracts {
		addresses[i] = contract.Hex()
	}

	logs, err := c.getLogs(ctx, LogFilter{
		FromBlock: fromBlock,
		ToBlock:   head,
		Address:   addresses,
		Topics:    [][]string{{transferEventTopic}},
	})
	if err != nil {
		return nil, "", err
	}

	account := c.account.Hex()

	transactions := make([]txhistory.Transaction, 0, len(logs))
	for _, log := range logs {
		if log.Removed {
			continue
		}

		tx, err := log.toTransaction()
		if err != nil {
			return nil, "", err
		}

		if tx.From != account && tx.To != account {
			continue
		}
		transactions = append(transactions, tx)
	}

	return transactions, head, nil
}

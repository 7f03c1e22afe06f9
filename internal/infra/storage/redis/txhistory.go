package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/gabapcia/tokenwatch/internal/pkg/types"
	"github.com/gabapcia/tokenwatch/internal/txhistory"

	"github.com/redis/go-redis/v9"
)

// txHistoryKeyPrefix is the Redis key namespace used to store transfer
// history. All history keys are prefixed with this value.
const txHistoryKeyPrefix = "txhistory"

// txHistoryIndexKey holds a contract's transfer members as a sorted set
// scored by insertion sequence, giving stable insertion-order pagination.
//
// Format: "txhistory:index:{contract}"
func txHistoryIndexKey(contract types.Address) string {
	return fmt.Sprintf("%s:index:%s", txHistoryKeyPrefix, contract.Hex())
}

// txHistoryDataKey holds a contract's transfer payloads as a hash keyed by
// transfer member.
//
// Format: "txhistory:data:{contract}"
func txHistoryDataKey(contract types.Address) string {
	return fmt.Sprintf("%s:data:%s", txHistoryKeyPrefix, contract.Hex())
}

// txHistorySequenceKey is the global insertion-sequence counter.
const txHistorySequenceKey = txHistoryKeyPrefix + ":sequence"

// txHistoryLastHeightKey is the hash of per-contract highest observed
// transfer heights.
const txHistoryLastHeightKey = txHistoryKeyPrefix + ":lastheight"

// txHistoryCheckpointKey is the head height of the latest completed sweep.
const txHistoryCheckpointKey = txHistoryKeyPrefix + ":checkpoint"

// transferMember identifies one transfer uniquely within a contract's
// history. One transaction may carry several transfer events, so the log
// index is part of the identity.
func transferMember(txID string, index uint64) string {
	return fmt.Sprintf("%s:%d", txID, index)
}

// storedTransaction is the JSON layout of a transfer payload in Redis.
type storedTransaction struct {
	ID       string    `json:"id"`
	Contract string    `json:"contract"`
	From     string    `json:"from"`
	To       string    `json:"to"`
	Amount   string    `json:"amount"`
	Height   types.Hex `json:"height"`
	Index    uint64    `json:"index"`
}

func toStoredTransaction(tx txhistory.Transaction) storedTransaction {
	amount := "0"
	if tx.Amount != nil {
		amount = tx.Amount.String()
	}

	return storedTransaction{
		ID:       tx.ID,
		Contract: tx.Contract.Hex(),
		From:     tx.From,
		To:       tx.To,
		Amount:   amount,
		Height:   tx.Height,
		Index:    tx.Index,
	}
}

func (s storedTransaction) toTransaction() (txhistory.Transaction, error) {
	contract, err := types.AddressFromHex(s.Contract)
	if err != nil {
		return txhistory.Transaction{}, err
	}

	amount, ok := new(big.Int).SetString(s.Amount, 10)
	if !ok {
		return txhistory.Transaction{}, fmt.Errorf("invalid stored amount %q", s.Amount)
	}

	return txhistory.Transaction{
		ID:       s.ID,
		Contract: contract,
		From:     s.From,
		To:       s.To,
		Amount:   amount,
		Height:   s.Height,
		Index:    s.Index,
	}, nil
}

// SaveTransactions implements the txhistory.TransactionStorage interface.
// Each transfer is stored once; replaying a batch already stored is a no-op.
// The per-contract last observed height is raised alongside.
func (c *client) SaveTransactions(ctx context.Context, transactions []txhistory.Transaction) error {
	maxHeights := make(map[types.Address]types.Hex)

	for _, tx := range transactions {
		member := transferMember(tx.ID, tx.Index)
		indexKey := txHistoryIndexKey(tx.Contract)

		_, err := c.conn.ZScore(ctx, indexKey, member).Result()
		if err == nil {
			continue
		}
		if !errors.Is(err, redis.Nil) {
			return err
		}

		sequence, err := c.conn.Incr(ctx, txHistorySequenceKey).Result()
		if err != nil {
			return err
		}

		payload, err := json.Marshal(toStoredTransaction(tx))
		if err != nil {
			return err
		}

		if err := c.conn.ZAddNX(ctx, indexKey, redis.Z{
			Score:  float64(sequence),
			Member: member,
		}).Err(); err != nil {
			return err
		}

		if err := c.conn.HSet(ctx, txHistoryDataKey(tx.Contract), member, string(payload)).Err(); err != nil {
			return err
		}

		if tx.Height.Int() > maxHeights[tx.Contract].Int() {
			maxHeights[tx.Contract] = tx.Height
		}
	}

	for contract, height := range maxHeights {
		current, err := c.conn.HGet(ctx, txHistoryLastHeightKey, contract.Hex()).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}

		if height.Int() <= types.Hex(current).Int() && current != "" {
			continue
		}

		if err := c.conn.HSet(ctx, txHistoryLastHeightKey, contract.Hex(), string(height)).Err(); err != nil {
			return err
		}
	}

	return nil
}

// LastTransactionHeight implements the txhistory.TransactionStorage interface.
func (c *client) LastTransactionHeight(ctx context.Context, contract types.Address) (types.Hex, error) {
	height, err := c.conn.HGet(ctx, txHistoryLastHeightKey, contract.Hex()).Result()
	if errors.Is(err, redis.Nil) {
		return "", txhistory.ErrNoTransactions
	}
	if err != nil {
		return "", err
	}

	return types.Hex(height), nil
}

// SaveSyncCheckpoint implements the txhistory.TransactionStorage interface.
func (c *client) SaveSyncCheckpoint(ctx context.Context, height types.Hex) error {
	return c.conn.Set(ctx, txHistoryCheckpointKey, string(height), 0).Err()
}

// LastSyncCheckpoint implements the txhistory.TransactionStorage interface.
func (c *client) LastSyncCheckpoint(ctx context.Context) (types.Hex, error) {
	height, err := c.conn.Get(ctx, txHistoryCheckpointKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", txhistory.ErrNoSyncCheckpoint
	}
	if err != nil {
		return "", err
	}

	return types.Hex(height), nil
}

// ListTransactions implements the txhistory.TransactionStorage interface.
// A cursor that no longer exists, for example after a Clear, yields an empty
// page rather than restarting from the beginning.
func (c *client) ListTransactions(ctx context.Context, contract types.Address, cursor *txhistory.PageCursor, limit int64) ([]txhistory.Transaction, error) {
	indexKey := txHistoryIndexKey(contract)

	var start int64
	if cursor != nil {
		rank, err := c.conn.ZRank(ctx, indexKey, transferMember(cursor.TxID, cursor.Index)).Result()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}

		start = rank + 1
	}

	members, err := c.conn.ZRange(ctx, indexKey, start, start+limit-1).Result()
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, nil
	}

	payloads, err := c.conn.HMGet(ctx, txHistoryDataKey(contract), members...).Result()
	if err != nil {
		return nil, err
	}

	transactions := make([]txhistory.Transaction, 0, len(payloads))
	for _, payload := range payloads {
		raw, ok := payload.(string)
		if !ok {
			continue
		}

		var stored storedTransaction
		if err := json.Unmarshal([]byte(raw), &stored); err != nil {
			return nil, err
		}

		tx, err := stored.toTransaction()
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}

	return transactions, nil
}

// ClearTransactions implements the txhistory.TransactionStorage interface.
func (c *client) ClearTransactions(ctx context.Context) error {
	return c.deleteByPattern(ctx, txHistoryKeyPrefix+":*")
}

// Compile-time assertion that the client satisfies the storage interface.
var _ txhistory.TransactionStorage = (*client)(nil)

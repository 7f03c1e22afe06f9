package tokenwallet

import (
	"context"

	"github.com/gabapcia/tokenwatch/internal/pkg/types"
	"github.com/gabapcia/tokenwatch/internal/txhistory"
)

// TransactionHistory is the slice of the transaction subsystem the facade
// needs: paginated history reads and cache invalidation.
type TransactionHistory interface {
	Transactions(ctx context.Context, contract types.Address, cursor *txhistory.PageCursor, limit int64) ([]txhistory.Transaction, error)
	Clear(ctx context.Context) error
}

// BalanceCache is the slice of the balance subsystem the facade needs:
// cache invalidation only.
type BalanceCache interface {
	Clear(ctx context.Context) error
}

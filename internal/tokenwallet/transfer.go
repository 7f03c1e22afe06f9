package tokenwallet

import (
	"context"
	"fmt"
	"math/big"

	"github.com/gabapcia/tokenwatch/internal/pkg/types"
)

// transferGasLimit is the fixed gas limit of an ERC-20 transfer call. Fee
// quoting and submission both use it; no estimation is performed.
const transferGasLimit = 100_000

// Transfer is the metadata of a submitted ERC-20 transfer.
type Transfer struct {
	Hash     types.Hex     // transaction hash assigned by the node
	Contract types.Address // token contract the transfer was sent to
	To       types.Address // recipient address
	Amount   *big.Int      // transferred token amount
	GasPrice *big.Int      // gas price the transfer was submitted with
}

// TransferSubmitter builds and broadcasts ERC-20 transfer transactions.
type TransferSubmitter interface {
	// SubmitTransfer broadcasts a transfer of amount tokens of the given
	// contract to the recipient, returning the transaction hash assigned
	// by the node.
	SubmitTransfer(ctx context.Context, contract, to types.Address, amount, gasPrice *big.Int) (types.Hex, error)
}

// Fee quotes the cost of a transfer at the given gas price. Pure arithmetic,
// no chain interaction.
func (s *service) Fee(gasPrice *big.Int) *big.Int {
	return new(big.Int).Mul(gasPrice, big.NewInt(transferGasLimit))
}

// SendTransfer validates the inputs and delegates the broadcast to the
// transfer submitter. It fails with ErrInvalidAddress or ErrInvalidValue
// before touching the chain.
func (s *service) SendTransfer(ctx context.Context, contract, to, amount string, gasPrice *big.Int) (Transfer, error) {
	contractAddr, err := parseAddress(contract)
	if err != nil {
		return Transfer{}, err
	}

	toAddr, err := parseAddress(to)
	if err != nil {
		return Transfer{}, err
	}

	value, ok := new(big.Int).SetString(amount, 10)
	if !ok || value.Sign() < 0 {
		return Transfer{}, fmt.Errorf("%w: amount %q is not a non-negative integer", ErrInvalidValue, amount)
	}

	// the amount must fit the 256-bit calldata word
	if value.BitLen() > 256 {
		return Transfer{}, fmt.Errorf("%w: amount %q exceeds 256 bits", ErrInvalidValue, amount)
	}

	if gasPrice == nil || gasPrice.Sign() < 0 {
		return Transfer{}, fmt.Errorf("%w: gas price must be a non-negative integer", ErrInvalidValue)
	}

	hash, err := s.submitter.SubmitTransfer(ctx, contractAddr, toAddr, value, gasPrice)
	if err != nil {
		return Transfer{}, fmt.Errorf("submitting transfer: %w", err)
	}

	return Transfer{
		Hash:     hash,
		Contract: contractAddr,
		To:       toAddr,
		Amount:   value,
		GasPrice: gasPrice,
	}, nil
}

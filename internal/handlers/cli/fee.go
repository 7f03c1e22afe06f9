package cli

import (
	"context"
	"fmt"
	"math/big"

	"github.com/gabapcia/tokenwatch/internal/tokenwallet"

	"github.com/urfave/cli/v3"
)

// transferFeeCommand returns a CLI command that quotes the cost of an ERC-20
// transfer at a given gas price. Pure arithmetic, no node interaction.
//
// Usage example:
//
//	tokenwatch fee --gas-price 20
func transferFeeCommand(wallet tokenwallet.Service) *cli.Command {
	return &cli.Command{
		Name:        "fee",
		Description: "Quote the cost of a token transfer at the given gas price.",
		Usage:       "Prints gas price times the fixed transfer gas limit.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "gas-price",
				Usage:    "Gas price in wei, as a decimal integer",
				Required: true,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			gasPrice, ok := new(big.Int).SetString(c.String("gas-price"), 10)
			if !ok {
				return fmt.Errorf("gas price %q is not a decimal integer", c.String("gas-price"))
			}

			fmt.Println(wallet.Fee(gasPrice).String())
			return nil
		},
	}
}

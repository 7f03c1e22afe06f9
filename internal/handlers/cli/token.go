package cli

import (
	"context"

	"github.com/gabapcia/tokenwatch/internal/tokenwallet"

	"github.com/urfave/cli/v3"
)

// startTrackingTokenCommand returns a CLI command that registers a token
// contract for sync tracking on the observed account.
//
// Usage example:
//
//	tokenwatch track --contract 0xABC123... --balance-position 0x0
func startTrackingTokenCommand(wallet tokenwallet.Service) *cli.Command {
	return &cli.Command{
		Name:        "track",
		Description: "Register a token contract to have its transfers and balance kept in sync.",
		Usage:       "Registers a token contract for tracking. Must provide both contract and balance position.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "contract",
				Usage:    "Token contract address (e.g., 0xdac17f958d2ee523a2206206994597c13d831ec7)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "balance-position",
				Usage:    "Storage slot the account's balance lives at, passed through to the node unmodified",
				Required: true,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			// each invocation is a fresh process; the persisted
			// registrations must be loaded before mutating them
			if err := wallet.Restore(ctx); err != nil {
				return err
			}

			var (
				contract        = c.String("contract")
				balancePosition = c.String("balance-position")
			)

			return wallet.Register(ctx, contract, balancePosition)
		},
	}
}

// stopTrackingTokenCommand returns a CLI command that unregisters a token
// contract from sync tracking.
//
// Usage example:
//
//	tokenwatch untrack --contract 0xABC123...
func stopTrackingTokenCommand(wallet tokenwallet.Service) *cli.Command {
	return &cli.Command{
		Name:        "untrack",
		Description: "Unregister a token contract from sync tracking.",
		Usage:       "Stops tracking a token contract. Must provide the contract address.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "contract",
				Usage:    "Token contract address to stop tracking",
				Required: true,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := wallet.Restore(ctx); err != nil {
				return err
			}

			return wallet.Unregister(ctx, c.String("contract"))
		},
	}
}

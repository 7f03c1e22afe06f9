package cli

import (
	"context"
	"os"

	"github.com/gabapcia/tokenwatch/internal/tokensync"
	"github.com/gabapcia/tokenwatch/internal/tokenwallet"

	"github.com/urfave/cli/v3"
)

// Run initializes and executes the tokenwatch CLI application.
//
// It registers all available commands, including:
//
//   - `start`: Starts the full token sync pipeline.
//   - `track`: Registers a token contract for tracking.
//   - `untrack`: Unregisters a token contract from tracking.
//   - `fee`: Quotes the cost of a transfer at a given gas price.
//
// Parameters:
//   - ctx: Context used to control the lifecycle of the CLI application.
//   - wallet: The tokenwallet service implementation used by token commands.
//   - coordinator: The tokensync service implementation used by the pipeline command.
func Run(ctx context.Context, wallet tokenwallet.Service, coordinator tokensync.Service) error {
	app := &cli.Command{
		EnableShellCompletion: true,
		Name:                  "tokenwatch",
		Description:           "Command-line interface for managing and running the tokenwatch sync pipeline.",
		Usage:                 "tokenwatch [command] [flags]",
		Commands: []*cli.Command{
			startPipelineCommand(wallet, coordinator),
			startTrackingTokenCommand(wallet),
			stopTrackingTokenCommand(wallet),
			transferFeeCommand(wallet),
		},
	}

	return app.Run(ctx, os.Args)
}

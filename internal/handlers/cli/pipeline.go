package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gabapcia/tokenwatch/internal/tokensync"
	"github.com/gabapcia/tokenwatch/internal/tokenwallet"

	"github.com/urfave/cli/v3"
)

// startPipelineCommand returns a CLI command that starts the full token sync
// pipeline: persisted registrations are restored into the registry, then the
// coordinator begins consuming chain signals.
//
// Usage example:
//
//	tokenwatch start
//
// The process runs indefinitely until it receives an interrupt (SIGINT or SIGTERM).
func startPipelineCommand(wallet tokenwallet.Service, coordinator tokensync.Service) *cli.Command {
	return &cli.Command{
		Name:        "start",
		Description: "Starts the token sync pipeline including chain signal ingestion and balance reconciliation.",
		Usage:       "Initializes and runs the full pipeline. Terminates gracefully on Ctrl+C or termination signals.",
		Action: func(ctx context.Context, c *cli.Command) error {
			quit := make(chan os.Signal, 1)
			defer close(quit)

			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			if err := wallet.Restore(ctx); err != nil {
				return err
			}

			if err := coordinator.Start(ctx); err != nil {
				return err
			}
			defer coordinator.Close()

			<-quit
			return nil
		},
	}
}

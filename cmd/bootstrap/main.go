// Command bootstrap prepares a deployment: it creates the user indexes,
// makes sure the media bucket exists, and can seed accounts.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/connectro/backend/internal/config"
	"github.com/connectro/backend/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:          "bootstrap",
	Short:        "One-off setup tasks for the profile API",
	SilenceUsage: true,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// env loads configuration and a logger for a subcommand.
func env(cmd *cobra.Command) (*config.Config, logging.Logger) {
	cfg := config.Load()
	return cfg, logging.New(cmd.ErrOrStderr(), cfg.Env)
}

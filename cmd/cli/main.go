package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tixeats/walletsettle/internal/infrastructure/config"
	"github.com/tixeats/walletsettle/internal/infrastructure/logger"
)

// cli carries state shared by every command.
type cli struct {
	cfg    *config.Config
	logger zerolog.Logger
	out    io.Writer
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &cli{out: out}

	rootCmd := &cobra.Command{
		Use:           "walletsettle-cli",
		Short:         "walletsettle operations tool",
		Long:          `Operational commands for the walletsettle ledger: migrations, reconciliation, event replay and cleanup.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			c.cfg = cfg
			c.logger = logger.New(logger.Config{
				Level:   cfg.LogLevel,
				Format:  "console",
				Service: "walletsettle-cli",
				Output:  cmd.ErrOrStderr(),
			})
			return nil
		},
	}

	rootCmd.AddCommand(
		c.migrateCmd(),
		c.reconcileCmd(),
		c.replayCmd(),
		c.cleanupCmd(),
	)

	return rootCmd
}

func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "budgetfetch",
		Short: "Run sequences of HTTP calls under one shared time budget",
		Long: `budgetfetch fetches a list of URLs in order, giving the whole
sequence a single wall-clock budget. Each call's timeout is whatever
is left of the budget when it starts; once the budget is spent, the
remaining calls fail immediately without touching the network.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	flagConfig string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
}

// Execute runs the CLI until completion or SIGINT/SIGTERM.
func Execute(version string) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd.Version = version
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

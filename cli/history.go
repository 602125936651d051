package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var (
	flagScope string
	flagLimit int
)

func init() {
	historyCmd.Flags().StringVar(&flagScope, "scope", "", "show the calls of one recorded scope")
	historyCmd.Flags().IntVar(&flagLimit, "limit", 20, "number of runs to list")
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded budgeted runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := buildApp(ctx)
		if err != nil {
			return err
		}
		defer a.shutdown()

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

		if flagScope != "" {
			calls, err := a.store.ListCallsByScope(ctx, flagScope)
			if err != nil {
				return err
			}
			if len(calls) == 0 {
				return fmt.Errorf("no calls recorded for scope %s", flagScope)
			}
			fmt.Fprintln(tw, "SEQ\tURL\tOUTCOME\tSTATUS\tASSIGNED\tELAPSED")
			for _, call := range calls {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\n",
					call.Seq, call.URL, call.Outcome, call.StatusCode,
					call.AssignedTimeout.Round(time.Millisecond),
					call.Elapsed.Round(time.Millisecond))
			}
			return tw.Flush()
		}

		scopes, err := a.store.ListScopes(ctx, flagLimit)
		if err != nil {
			return err
		}
		fmt.Fprintln(tw, "SCOPE\tSTARTED\tBUDGET\tSPENT\tCALLS\tCOMPLETED")
		for _, s := range scopes {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\n",
				s.ScopeID, s.StartedAt,
				s.Budget,
				s.Spent.Round(time.Millisecond),
				s.CallCount, s.Completed)
		}
		return tw.Flush()
	},
}

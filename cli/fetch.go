package cli

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/tnicklin/timebudget/budget"
	"github.com/tnicklin/timebudget/clock"
	"github.com/tnicklin/timebudget/fetch"
	"github.com/tnicklin/timebudget/models"
)

var flagBudget time.Duration

func init() {
	fetchCmd.Flags().DurationVar(&flagBudget, "budget", 0,
		"total time budget for the whole sequence (default: fetch.total_budget from config)")
	rootCmd.AddCommand(fetchCmd)
}

var fetchCmd = &cobra.Command{
	Use:   "fetch [urls...]",
	Short: "Fetch URLs sequentially under one shared budget",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := buildApp(ctx)
		if err != nil {
			return err
		}
		defer a.shutdown()

		urls := args
		if len(urls) == 0 {
			urls = a.cfg.Targets
		}
		if len(urls) == 0 {
			return errors.New("no urls given and no targets configured")
		}

		total := flagBudget
		if !cmd.Flags().Changed("budget") {
			total = a.cfg.Fetch.TotalBudget
		}

		f := fetch.New(fetch.Params{
			Config:    a.cfg.Fetch,
			Store:     a.store,
			Logger:    a.logger,
			Clock:     clock.System(),
			WallClock: a.wall,
		})

		report, fetchErr := f.FetchAll(ctx, total, urls)
		if fetchErr != nil && !errors.Is(fetchErr, budget.ErrExpired) {
			return fetchErr
		}

		printReport(report)

		if fetchErr != nil {
			return fmt.Errorf("budget of %v ran out after %d of %d calls",
				total, report.Completed(), len(report.Calls))
		}
		return nil
	},
}

func printReport(report models.Report) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tURL\tOUTCOME\tSTATUS\tASSIGNED\tELAPSED")
	for _, call := range report.Calls {
		status := "-"
		if call.StatusCode != 0 {
			status = fmt.Sprintf("%d", call.StatusCode)
		}
		assigned := "-"
		if call.Realized() {
			assigned = call.AssignedTimeout.Round(time.Millisecond).String()
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			call.Seq, call.URL, call.Outcome, status, assigned,
			call.Elapsed.Round(time.Millisecond))
	}
	tw.Flush()

	fmt.Printf("\nscope %s: budget %v, spent %v, %d completed, %d refused\n",
		report.ScopeID,
		report.TotalBudget,
		report.Spent.Round(time.Millisecond),
		report.Completed(),
		report.Refused(),
	)
}

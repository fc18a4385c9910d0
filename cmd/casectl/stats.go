package main

import (
	"fmt"
	"net/url"

	"github.com/sangamsetu/casedesk/internal/errors"
	"github.com/sangamsetu/casedesk/internal/models"
	"github.com/spf13/cobra"
)

func newStatsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "stats",
		GroupID: reviewGroup.ID,
		Short:   "Show case statistics, admins only",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if _, err := c.requireSession(ctx); err != nil {
				return err
			}
			dashboard, err := c.api.Stats().Dashboard(ctx)
			if err != nil {
				return errors.Wrap(err, "load dashboard stats")
			}
			var query url.Values
			if period, _ := cmd.Flags().GetString("period"); period != "" && period != "all" {
				query = url.Values{"period": {period}}
			}
			reports, err := c.api.Stats().Reports(ctx, query)
			if err != nil {
				return errors.Wrap(err, "load reports")
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, "Overview")
			writeEntries(cmd, dashboard.Entries())
			_, _ = fmt.Fprintln(out, "\nReports")
			writeEntries(cmd, reports.Entries())
			return nil
		},
	}
	cmd.Flags().String("period", "all", "all, week, month or year")
	return cmd
}

func writeEntries(cmd *cobra.Command, entries []models.StatEntry) {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{"  " + e.Label, e.Value})
	}
	writeTable(cmd.OutOrStdout(), nil, rows)
}

package main

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/sangamsetu/casedesk/internal/api"
	"github.com/sangamsetu/casedesk/internal/errors"
	"github.com/sangamsetu/casedesk/internal/matchreview"
	"github.com/sangamsetu/casedesk/internal/models"
	"github.com/spf13/cobra"
)

var reviewGroup = &cobra.Group{
	ID:    "review",
	Title: "Review",
}

var errAborted = errors.NewSentinel("aborted")

const alreadyReviewedText = "This match has already been reviewed."

func newMatchesCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "matches",
		GroupID: reviewGroup.ID,
		Short:   "List and review match suggestions",
	}
	cmd.AddCommand(
		newMatchesListCmd(c),
		newMatchActionCmd(c, matchreview.ActionConfirm),
		newMatchActionCmd(c, matchreview.ActionReject),
	)
	return cmd
}

func (c *cli) screen() *matchreview.Screen {
	return matchreview.NewScreen(c.api.Matches(), c.logger)
}

func newMatchesListCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List match suggestions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			sess, err := c.requireSession(ctx)
			if err != nil {
				return err
			}
			status, _ := cmd.Flags().GetString("status")
			view := c.screen().Load(ctx, &sess.User, models.ParseMatchFilter(strings.ToUpper(status)))
			if view.Error != "" {
				// The session may have expired while loading.
				if _, err = c.requireSession(ctx); err != nil {
					return errSessionExpired
				}
				return errors.New(view.Error)
			}
			if len(view.Rows) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No match suggestions found")
				return nil
			}
			rows := make([][]string, 0, len(view.Rows))
			for _, row := range view.Rows {
				missing, found := "N/A", "N/A"
				if row.MissingPerson != nil {
					missing = models.OrNA(row.MissingPerson.Name)
				}
				if row.FoundPerson != nil {
					found = models.OrNA(row.FoundPerson.FoundLocation)
				}
				rows = append(rows, []string{
					strconv.FormatInt(row.ID, 10),
					fmt.Sprintf("%d%% %s", row.Confidence, row.Tier().Label()),
					string(row.Status),
					missing,
					found,
				})
			}
			writeTable(cmd.OutOrStdout(), []string{"ID", "CONFIDENCE", "STATUS", "MISSING", "FOUND AT"}, rows)
			return nil
		},
	}
	cmd.Flags().String("status", string(models.FilterPending), "ALL, PENDING, CONFIRMED or REJECTED")
	return cmd
}

func newMatchActionCmd(c *cli, action matchreview.Action) *cobra.Command {
	cmd := &cobra.Command{
		Use:   string(action) + " <id>",
		Short: strings.ToUpper(string(action[:1])) + string(action[1:]) + " a match suggestion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := c.requireSession(ctx)
			if err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if yes, _ := cmd.Flags().GetBool("yes"); !yes {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", action.Prompt())
				answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
					return errAborted
				}
			}

			view, err := c.screen().Act(ctx, &sess.User, id, models.FilterPending, action)
			if err != nil {
				var actionErr *matchreview.ActionError
				switch {
				case errors.Is(err, api.ErrSessionExpired):
					return err
				case errors.Is(err, matchreview.ErrNotPermitted):
					return errors.New("Your role " + string(sess.User.Role) + " may not review matches.")
				case errors.As(err, &actionErr):
					detail := api.UserMessage(err, "try again later")
					if errors.Is(err, matchreview.ErrAlreadyReviewed) {
						detail = alreadyReviewedText
					}
					return errors.New(actionErr.Message + ": " + detail)
				}
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), view.Notice)
			return nil
		},
	}
	cmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
	return cmd
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/sangamsetu/casedesk/internal/api"
	"github.com/sangamsetu/casedesk/internal/errors"
	"github.com/sangamsetu/casedesk/internal/forms"
	"github.com/sangamsetu/casedesk/internal/models"
	"github.com/sangamsetu/casedesk/internal/navigation"
	"github.com/spf13/cobra"
)

var casesGroup = &cobra.Group{
	ID:    "cases",
	Title: "Cases",
}

// caseKind describes one resource of the case service for the generic case commands.
type caseKind[T any] struct {
	use     string
	noun    string
	cases   func(c *cli) api.Cases[T]
	newForm func() *forms.Form[T]
	id      func(T) int64
	header  []string
	row     func(T) []string
}

var missingKind = caseKind[models.MissingPersonCase]{
	use:     "missing",
	noun:    "missing person",
	cases:   func(c *cli) api.Cases[models.MissingPersonCase] { return c.api.MissingCases() },
	newForm: forms.NewMissingPersonForm,
	id:      func(m models.MissingPersonCase) int64 { return m.ID },
	header:  []string{"ID", "NAME", "AGE", "GENDER", "LAST SEEN"},
	row: func(m models.MissingPersonCase) []string {
		return []string{strconv.FormatInt(m.ID, 10), models.OrNA(m.Name), models.OrNA(m.ApproxAge),
			models.OrNA(m.Gender), models.OrNA(m.LastSeenLocation)}
	},
}

var foundKind = caseKind[models.FoundPersonCase]{
	use:     "found",
	noun:    "found person",
	cases:   func(c *cli) api.Cases[models.FoundPersonCase] { return c.api.FoundCases() },
	newForm: forms.NewFoundPersonForm,
	id:      func(f models.FoundPersonCase) int64 { return f.ID },
	header:  []string{"ID", "AGE", "GENDER", "FOUND AT", "CURRENT LOCATION"},
	row: func(f models.FoundPersonCase) []string {
		return []string{strconv.FormatInt(f.ID, 10), models.OrNA(f.Age()), models.OrNA(f.Gender),
			models.OrNA(f.FoundLocation), models.OrNA(f.CurrentLocation)}
	},
}

func newMissingCmd(c *cli) *cobra.Command {
	return newCaseCmd(c, missingKind)
}

func newFoundCmd(c *cli) *cobra.Command {
	return newCaseCmd(c, foundKind)
}

func newCaseCmd[T any](c *cli, k caseKind[T]) *cobra.Command {
	cmd := &cobra.Command{
		Use:     k.use,
		GroupID: casesGroup.ID,
		Short:   "Register and look up " + k.noun + " cases",
	}
	cmd.AddCommand(newCaseCreateCmd(c, k), newCaseListCmd(c, k), newCaseGetCmd(c, k), newCaseDeleteCmd(c, k))
	return cmd
}

func newCaseCreateCmd[T any](c *cli, k caseKind[T]) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a " + k.noun,
		Long: "Register a " + k.noun + ". Fields are given as --field name=value.\n\nFields:\n" +
			fieldHelp(k.newForm().Fields()),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if _, err := c.requireSession(ctx); err != nil {
				return err
			}
			values, _ := cmd.Flags().GetStringToString("field")
			f := k.newForm()
			for _, name := range slices.Sorted(maps.Keys(values)) {
				if err := f.Set(name, values[name]); err != nil {
					return errors.Wrap(err, "set field", slog.String("field", name))
				}
			}

			submitter := forms.Submitter[T]{
				Creator:   k.cases(c),
				Navigator: navigation.Timer{OnNavigate: func(string) {}},
				Logger:    c.logger,
			}
			outcome := submitter.Submit(ctx, f)
			if outcome.Redirect != nil {
				// There is no dashboard to return to.
				outcome.Redirect.Cancel()
			}
			if outcome.Err != nil {
				if errors.Is(outcome.Err, api.ErrSessionExpired) {
					return outcome.Err
				}
				for _, name := range slices.Sorted(maps.Keys(f.FieldErrors)) {
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %s\n", name, f.FieldErrors[name])
				}
				return errors.New(f.Error)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Registered %s %d\n", k.noun, k.id(outcome.Created))
			return nil
		},
	}
	cmd.Flags().StringToStringP("field", "f", nil, "form field as name=value, repeatable")
	return cmd
}

func fieldHelp(fields []forms.Field) string {
	var b strings.Builder
	for _, field := range fields {
		required := ""
		if field.Required {
			required = " (required)"
		}
		_, _ = fmt.Fprintf(&b, "  %-22s %s%s\n", field.Name, field.Label, required)
	}
	return b.String()
}

func newCaseListCmd[T any](c *cli, k caseKind[T]) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List " + k.noun + " cases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if _, err := c.requireSession(ctx); err != nil {
				return err
			}
			var query url.Values
			if page, _ := cmd.Flags().GetInt("page"); page > 1 {
				query = url.Values{"page": {strconv.Itoa(page)}}
			}
			page, err := k.cases(c).List(ctx, query)
			if err != nil {
				return errors.Wrap(err, "list cases")
			}
			rows := make([][]string, 0, len(page.Results))
			for _, item := range page.Results {
				rows = append(rows, k.row(item))
			}
			writeTable(cmd.OutOrStdout(), k.header, rows)
			if page.Next != nil {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d cases in total, more with --page\n", page.Count)
			}
			return nil
		},
	}
	cmd.Flags().Int("page", 1, "page of the results")
	return cmd
}

func newCaseGetCmd[T any](c *cli, k caseKind[T]) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a " + k.noun + " case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := c.requireSession(ctx); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			item, err := k.cases(c).Get(ctx, id)
			if err != nil {
				return errors.Wrap(err, "get case", slog.Int64("id", id))
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err = enc.Encode(item); err != nil {
				return errors.Wrap(err, "encode case")
			}
			return nil
		},
	}
}

func newCaseDeleteCmd[T any](c *cli, k caseKind[T]) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a " + k.noun + " case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := c.requireSession(ctx); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err = k.cases(c).Delete(ctx, id); err != nil {
				return errors.Wrap(err, "delete case", slog.Int64("id", id))
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s %d\n", k.noun, id)
			return nil
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("id must be a positive number", slog.String("id", s))
	}
	return id, nil
}

func writeTable(out io.Writer, header []string, rows [][]string) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0) //nolint:mnd // two spaces between columns
	if header != nil {
		_, _ = fmt.Fprintln(tw, strings.Join(header, "\t"))
	}
	for _, row := range rows {
		_, _ = fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	_ = tw.Flush()
}

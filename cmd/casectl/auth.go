package main

import (
	"fmt"

	"github.com/sangamsetu/casedesk/internal/errors"
	"github.com/sangamsetu/casedesk/internal/session"
	"github.com/spf13/cobra"
)

var authGroup = &cobra.Group{
	ID:    "auth",
	Title: "Session",
}

func newLoginCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "login",
		GroupID: authGroup.ID,
		Short:   "Log in and keep the session for later commands",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			username, _ := cmd.Flags().GetString("username")
			password := c.v.GetString(keyPassword)
			if username == "" || password == "" {
				return errors.New("Please enter your username and password.")
			}
			sess, err := c.store.Login(cmd.Context(), username, password)
			if err != nil {
				var authErr *session.AuthenticationError
				if errors.As(err, &authErr) {
					return errors.New(authErr.Message())
				}
				return errors.Wrap(err, "login")
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", sess.User.DisplayName(), sess.User.Role)
			return nil
		},
	}
	cmd.Flags().StringP("username", "u", "", "username")
	cmd.Flags().StringP(keyPassword, "p", "", "password, or set CASECTL_PASSWORD")
	_ = c.v.BindPFlag(keyPassword, cmd.Flags().Lookup(keyPassword))
	return cmd
}

func newLogoutCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "logout",
		GroupID: authGroup.ID,
		Short:   "Forget the stored session",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.store.Logout(cmd.Context()); err != nil {
				return errors.Wrap(err, "logout")
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "whoami",
		GroupID: authGroup.ID,
		Short:   "Show the user of the stored session",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := c.requireSession(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) role %s\n",
				sess.User.DisplayName(), sess.User.Username, sess.User.Role)
			return nil
		},
	}
}

package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sangamsetu/casedesk/internal/api"
	"github.com/sangamsetu/casedesk/internal/errors"
	"github.com/sangamsetu/casedesk/internal/logging"
	"github.com/sangamsetu/casedesk/internal/models"
	"github.com/sangamsetu/casedesk/internal/session"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	keyAPIURL      = "api-url"
	keySessionFile = "session-file"
	keyTimeout     = "timeout"
	keyLogLevel    = "log-level"
	keyPassword    = "password"
)

var (
	errNotLoggedIn    = errors.NewSentinel("not logged in, run casectl login")
	errSessionExpired = errors.NewSentinel("session expired, run casectl login")
)

// cli holds what every command needs. It is filled in by the persistent pre-run of the root command.
type cli struct {
	v       *viper.Viper
	logger  *slog.Logger
	storage *session.FileStorage
	store   *session.Store
	api     *api.Client
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	c := &cli{v: v} //nolint:exhaustruct // filled in before every command
	root := &cobra.Command{
		Use:   "casectl",
		Short: "Command line client for the Sangamsetu case desk",
		Long: `casectl registers missing and found persons, reviews match suggestions and reads statistics.

Configuration is read from flags, CASECTL_* environment variables and ~/.config/casectl/config.yaml.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.String(keyAPIURL, "http://localhost:8000/api", "base URL of the case service")
	flags.String(keySessionFile, defaultSessionFile(), "file the session is kept in between commands")
	flags.Duration(keyTimeout, 10*time.Second, "timeout of every call to the case service") //nolint:mnd // 10 seconds
	flags.String(keyLogLevel, "warn", "log level written to stderr")
	_ = v.BindPFlags(flags)

	root.AddGroup(authGroup, casesGroup, reviewGroup)
	root.AddCommand(newLoginCmd(c), newLogoutCmd(c), newWhoamiCmd(c))
	root.AddCommand(newMissingCmd(c), newFoundCmd(c))
	root.AddCommand(newMatchesCmd(c), newStatsCmd(c))
	return root
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".casectl-session.json"
	}
	return filepath.Join(dir, "casectl", "session.json")
}

func (c *cli) setup(cmd *cobra.Command) error {
	c.v.SetEnvPrefix("CASECTL")
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()
	if dir, err := os.UserConfigDir(); err == nil {
		c.v.SetConfigName("config")
		c.v.SetConfigType("yaml")
		c.v.AddConfigPath(filepath.Join(dir, "casectl"))
		var notFound viper.ConfigFileNotFoundError
		if err = c.v.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
			return errors.Wrap(err, "read config")
		}
	}

	c.logger = slog.New(logging.NewContextHandler(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		AddSource:   false,
		Level:       logging.ParseLevel(c.v.GetString(keyLogLevel)),
		ReplaceAttr: nil,
	})))
	c.storage = session.NewFileStorage(c.v.GetString(keySessionFile))

	var err error
	if c.api, err = api.NewClient(api.Config{
		BaseURL:        c.v.GetString(keyAPIURL),
		Timeout:        c.v.GetDuration(keyTimeout),
		Tokens:         c.token,
		OnUnauthorized: c.sessionExpired,
		Logger:         c.logger,
		Metrics:        nil,
		Transport:      nil,
	}); err != nil {
		return errors.Wrap(err, "create api client")
	}
	c.store = session.NewStore(c.storage, c.api.Auth(), c.logger)
	return nil
}

func (c *cli) token(ctx context.Context) string {
	return c.store.Token(ctx)
}

func (c *cli) sessionExpired(ctx context.Context) {
	if err := c.store.Logout(ctx); err != nil {
		c.logger.LogAttrs(ctx, slog.LevelError, "clear expired session", errors.SlogError(err))
	}
}

// requireSession returns the stored session, or errNotLoggedIn.
func (c *cli) requireSession(ctx context.Context) (models.Session, error) {
	sess, ok := c.store.Rehydrate(ctx)
	if !ok {
		return models.Session{}, errNotLoggedIn
	}
	return sess, nil
}

// userFacing turns the errors of the case service into the message printed to the user.
func userFacing(err error) string {
	switch {
	case errors.Is(err, api.ErrSessionExpired), errors.Is(err, errSessionExpired):
		return errSessionExpired.Error()
	case errors.Is(err, errNotLoggedIn):
		return errNotLoggedIn.Error()
	default:
		return "Error: " + api.UserMessage(err, err.Error())
	}
}

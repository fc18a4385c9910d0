package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/donseba/go-htmx"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sangamsetu/casedesk/internal/api"
	"github.com/sangamsetu/casedesk/internal/envstruct"
	"github.com/sangamsetu/casedesk/internal/errors"
	"github.com/sangamsetu/casedesk/internal/logging"
	"github.com/sangamsetu/casedesk/internal/matchreview"
	"github.com/sangamsetu/casedesk/internal/opsserver"
	"github.com/sangamsetu/casedesk/internal/session"
	"github.com/sangamsetu/casedesk/internal/sqlite"
)

type application struct {
	logger         *slog.Logger
	cfg            config
	sessionManager *scs.SessionManager
	sessions       *session.Store
	api            *api.Client
	matches        *matchreview.Screen
	htmx           *htmx.HTMX
	templates      map[string]*pageTemplate
}

type config struct {
	// Addr is the address the web server listens on. Use "localhost:0" for a random port.
	Addr            string        `env:"SANGAMSETU_ADDR" envDefault:"localhost:4000"`
	APIBaseURL      string        `env:"SANGAMSETU_API_BASE_URL" envDefault:"http://localhost:8000/api"`
	APITimeout      time.Duration `env:"SANGAMSETU_API_TIMEOUT" envDefault:"10s"`
	SqliteURL       string        `env:"SANGAMSETU_SQLITE_URL" envDefault:"./sangamsetu.sqlite"`
	SessionLifetime time.Duration `env:"SANGAMSETU_SESSION_LIFETIME" envDefault:"12h"`
	SecureCookies   bool          `env:"SANGAMSETU_SECURE_COOKIES" envDefault:"true"`
	// OpsAddr serves pprof and metrics. Empty disables it.
	OpsAddr string `env:"SANGAMSETU_OPS_ADDR" envDefault:"localhost:6060"`
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var (
		cfg config
		err error
	)
	if err = envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}

	var db *sqlite.Database
	if db, err = sqlite.NewDatabase(ctx, cfg.SqliteURL, logger); err != nil {
		return errors.Wrap(err, "open db", slog.String("url", cfg.SqliteURL))
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.LogAttrs(ctx, slog.LevelError, "close db", errors.SlogError(closeErr))
		}
	}()
	logger.LogAttrs(ctx, slog.LevelInfo, "connected to db", slog.String("url", cfg.SqliteURL))
	go db.StartDatabaseOptimizer(ctx, time.Hour)

	store := sqlite3store.NewWithCleanupInterval(db.ReadWrite.DB, 30*time.Minute) //nolint:mnd // 30 minutes
	defer store.StopCleanup()
	sessionManager := scs.New()
	sessionManager.Store = store
	sessionManager.Lifetime = cfg.SessionLifetime
	sessionManager.Cookie.Name = "casedesk_session"
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.Secure = cfg.SecureCookies
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}), //nolint:exhaustruct // defaults
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{ //nolint:exhaustruct // no labels
			Namespace: "casedesk",
			Name:      "active_sessions",
			Help:      "Number of unexpired sessions in the session store.",
		}, func() float64 {
			n, countErr := db.ActiveSessions(context.Background())
			if countErr != nil {
				logger.LogAttrs(ctx, slog.LevelError, "count active sessions", errors.SlogError(countErr))
				return 0
			}
			return float64(n)
		}),
	)

	app := &application{ //nolint:exhaustruct // wired below
		logger:         logger,
		cfg:            cfg,
		sessionManager: sessionManager,
		htmx:           htmx.New(),
	}
	if app.templates, err = parseTemplates(); err != nil {
		return errors.Wrap(err, "parse templates")
	}
	if app.api, err = api.NewClient(api.Config{
		BaseURL:        cfg.APIBaseURL,
		Timeout:        cfg.APITimeout,
		Tokens:         app.accessToken,
		OnUnauthorized: app.sessionExpired,
		Logger:         logger,
		Metrics:        api.NewMetrics(registry),
		Transport:      nil,
	}); err != nil {
		return errors.Wrap(err, "new api client")
	}
	app.sessions = session.NewStore(session.ScsStorage{Manager: sessionManager}, app.api.Auth(), logger)
	app.matches = matchreview.NewScreen(app.api.Matches(), logger)

	if cfg.OpsAddr != "" {
		if err = opsserver.Launch(ctx, cfg.OpsAddr, registry, logger); err != nil {
			return errors.Wrap(err, "launch ops server")
		}
	}

	if err = app.configureAndStartServer(ctx, cfg.Addr); err != nil {
		return errors.Wrap(err, "start server")
	}
	return nil
}

func main() {
	ctx := context.Background()
	// A missing .env is fine, the environment is used as is.
	envErr := godotenv.Load()

	level, _ := os.LookupEnv("SANGAMSETU_LOG_LEVEL")
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   true,
		Level:       logging.ParseLevel(level),
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	if envErr != nil {
		logger.LogAttrs(ctx, slog.LevelDebug, "no .env loaded", errors.SlogError(envErr))
	}

	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1)
	}
}

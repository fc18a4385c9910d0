// Command devapi serves an in-memory stand-in of the case service for local development.
//
// Seeded accounts are volunteer, officer and admin, each with the username as password.
package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sangamsetu/casedesk/internal/devapi"
	"github.com/sangamsetu/casedesk/internal/envstruct"
	"github.com/sangamsetu/casedesk/internal/errors"
	"github.com/sangamsetu/casedesk/internal/logging"
)

type config struct {
	Addr      string        `env:"DEVAPI_ADDR" envDefault:"localhost:8000"`
	AccessTTL time.Duration `env:"DEVAPI_ACCESS_TTL" envDefault:"30m"`
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var cfg config
	if err := envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}

	dev := devapi.New(logger, devapi.WithAccessTTL(cfg.AccessTTL))
	srv := &http.Server{ //nolint:exhaustruct // defaults are fine
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
		Handler:           dev.Handler(),
		ReadHeaderTimeout: time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownContext, cancel := context.WithTimeout(context.Background(), 5*time.Second) //nolint:mnd // 5 seconds
		defer cancel()
		if err := srv.Shutdown(shutdownContext); err != nil { //nolint:contextcheck // ctx is done
			logger.LogAttrs(ctx, slog.LevelError, "shutdown dev api", errors.SlogError(err))
		}
	}()

	listener, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return errors.Wrap(err, "TCP listen", slog.String("addr", cfg.Addr))
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "serving dev api",
		slog.String("addr", listener.Addr().String()),
		slog.String("accounts", devapi.VolunteerUsername+", "+devapi.PoliceUsername+", "+devapi.AdminUsername))
	if err = srv.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "serve")
	}
	return nil
}

func main() {
	ctx := context.Background()
	_ = godotenv.Load()
	level, _ := os.LookupEnv("DEVAPI_LOG_LEVEL")
	logger := slog.New(logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       logging.ParseLevel(level),
		ReplaceAttr: nil,
	})))
	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "dev api failed", errors.SlogError(err))
		os.Exit(1)
	}
}

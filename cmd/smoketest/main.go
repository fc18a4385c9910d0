package main

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sangamsetu/casedesk/internal/e2etest"
	"github.com/sangamsetu/casedesk/internal/errors"
	"github.com/sangamsetu/casedesk/internal/logging"
)

// TestLogin logs in with the smoke test account, checks the dashboard and logs out again.
func TestLogin(ctx context.Context, client *e2etest.Client, username, password string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second) //nolint:mnd // 10 seconds
	defer cancel()
	var (
		doc *goquery.Document
		err error
	)

	if err = client.WaitForReady(ctx, e2etest.HealthPath); err != nil {
		return errors.Wrap(err, "wait for ready")
	}
	if doc, err = client.Login(ctx, username, password); err != nil {
		return errors.Wrap(err, "login")
	}
	if welcome := doc.Find("h1").Text(); !strings.HasPrefix(welcome, "Welcome, ") {
		return errors.New("dashboard not shown after login", slog.String("h1", welcome))
	}
	if doc, err = client.Logout(ctx); err != nil {
		return errors.Wrap(err, "logout")
	}
	if doc.Find("form[action='/login']").Length() == 0 {
		return errors.New("login form not shown after logout")
	}
	return nil
}

func main() {
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	ctx := context.Background()

	if len(os.Args) != 2 { //nolint:mnd // we expect only hostname to be passed as argument.
		logger.LogAttrs(ctx, slog.LevelError, "usage: smoketest <hostname>")
		os.Exit(1)
	}
	username, okUser := os.LookupEnv("SMOKETEST_USERNAME")
	password, okPassword := os.LookupEnv("SMOKETEST_PASSWORD")
	if !okUser || !okPassword {
		logger.LogAttrs(ctx, slog.LevelError, "SMOKETEST_USERNAME and SMOKETEST_PASSWORD must be set")
		os.Exit(1)
	}

	var (
		hostname = os.Args[1]
		url      = "https://" + hostname
		client   *e2etest.Client
		err      error
	)
	ctx = logging.WithAttrs(ctx, slog.String("hostname", url))

	if client, err = e2etest.NewClient(url); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating client", errors.SlogError(err))
		os.Exit(1)
	}
	if err = TestLogin(ctx, client, username, password); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error testing login", errors.SlogError(err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Smoke test successful 🙌")
	os.Exit(0)
}

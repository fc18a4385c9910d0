// Command migratetest applies the session store migrations to a copy of a production database and
// checks that the sessions survive.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/sangamsetu/casedesk/internal/errors"
	"github.com/sangamsetu/casedesk/internal/sqlite"
	"github.com/sangamsetu/casedesk/internal/testhelpers"
)

func main() {
	logger := testhelpers.NewLogger(os.Stdout)
	var (
		err       error
		start     = time.Now()
		ctx       context.Context
		sqliteURL string
		ok        bool
		cancel    context.CancelFunc
	)
	ctx = context.Background()
	ctx, cancel = context.WithTimeout(ctx, 5*time.Second) //nolint:mnd // 5 seconds
	defer cancel()

	if sqliteURL, ok = os.LookupEnv("SANGAMSETU_SQLITE_URL"); !ok {
		logger.LogAttrs(ctx, slog.LevelError, "SANGAMSETU_SQLITE_URL not set")
		os.Exit(1) //nolint:gocritic // nothing to clean up yet
	}

	var db *sqlite.Database
	if db, err = sqlite.NewDatabase(ctx, sqliteURL, logger); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error opening database",
			slog.String("url", sqliteURL), errors.SlogError(err))
		os.Exit(1)
	}
	defer db.Close()

	version, err := db.SchemaVersion(ctx)
	if err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error reading schema version", errors.SlogError(err))
		os.Exit(1)
	}
	sessions, err := db.ActiveSessions(ctx)
	if err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error counting sessions", errors.SlogError(err))
		os.Exit(1)
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "migrated",
		slog.Int("schema_version", version), slog.Int("active_sessions", sessions))

	logger.LogAttrs(ctx, slog.LevelInfo, "Migration test successful 🙌", slog.Duration("duration", time.Since(start)))
}

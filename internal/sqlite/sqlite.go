// Package sqlite stores the server-side sessions of the web app.
package sqlite

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // Enable sqlite3 driver
	"github.com/sangamsetu/casedesk/internal/errors"
	"github.com/sangamsetu/casedesk/internal/random"
)

type Database struct {
	ReadWrite *sqlx.DB
	ReadOnly  *sqlx.DB
	logger    *slog.Logger
}

// NewDatabase connects to the database and applies pending migrations.
//
// It establishes two database connections, one for read/write operations and one for read-only operations.
// See https://github.com/mattn/go-sqlite3/issues/1179#issuecomment-1638083995.
//
// The url parameter is the path to the SQLite database file or ":memory:" for an in-memory database.
func NewDatabase(ctx context.Context, url string, logger *slog.Logger) (*Database, error) {
	var (
		err         error
		readWriteDB *sqlx.DB
		readDB      *sqlx.DB
	)

	// In-memory databases need shared cache mode so that both connections see the same data. Each call gets
	// its own name so that parallel tests do not share sessions. See https://www.sqlite.org/inmemorydb.html.
	isInMemory := strings.Contains(url, ":memory:")
	if isInMemory {
		var (
			randomID     string
			dbNameLength uint = 20
		)
		if randomID, err = random.Letters(dbNameLength); err != nil {
			return nil, errors.Wrap(err, "generate random ID")
		}
		url = randomID
	}
	commonConfig := strings.Join([]string{
		// Write-ahead logging enables concurrent readers.
		"_journal_mode=wal",
		// Avoids SQLITE_BUSY errors when database is under load.
		"_busy_timeout=5000",
		// https://www.sqlite.org/pragma.html#pragma_synchronous
		"_synchronous=normal",
		"_foreign_keys=on",
		"_temp_store=memory",
		// See https://www.sqlite.org/pragma.html#pragma_optimize.
		"_optimize=0x10002",
	}, "&")

	// The options prefixed with underscore '_' are SQLite pragmas documented at https://www.sqlite.org/pragma.html.
	// The options without leading underscore are SQLite URI parameters documented at https://www.sqlite.org/uri.html.
	readMode, readWriteMode := "mode=ro", "mode=rwc"
	if isInMemory {
		readMode = "mode=memory&cache=shared"
		readWriteMode = readMode
	}
	readConfig := fmt.Sprintf("file:%s?%s&_txlock=deferred&_query_only=true&%s", url, readMode, commonConfig)
	readWriteConfig := fmt.Sprintf("file:%s?%s&_txlock=immediate&%s", url, readWriteMode, commonConfig)

	if readWriteDB, err = sqlx.Open("sqlite3", readWriteConfig); err != nil {
		return nil, errors.Wrap(err, "open read-write database")
	}
	readWriteDB.SetMaxOpenConns(1)
	readWriteDB.SetMaxIdleConns(1)
	readWriteDB.SetConnMaxLifetime(time.Hour)
	readWriteDB.SetConnMaxIdleTime(time.Hour)

	db := Database{
		ReadWrite: readWriteDB,
		ReadOnly:  nil,
		logger:    logger,
	}
	// Migrate before the read connection opens so that a fresh file exists for mode=ro.
	if err = db.migrate(ctx, migrations); err != nil {
		return nil, errors.Wrap(err, "migrate")
	}

	if readDB, err = sqlx.Open("sqlite3", readConfig); err != nil {
		return nil, errors.Wrap(err, "open read database")
	}
	maxReadConns := 10
	readDB.SetMaxOpenConns(maxReadConns)
	readDB.SetMaxIdleConns(maxReadConns)
	readDB.SetConnMaxLifetime(time.Hour)
	readDB.SetConnMaxIdleTime(time.Hour)
	db.ReadOnly = readDB

	return &db, nil
}

// Close closes both connection pools.
func (db *Database) Close() error {
	return errors.Join(db.ReadOnly.Close(), db.ReadWrite.Close())
}

// ActiveSessions counts the sessions that have not expired yet.
func (db *Database) ActiveSessions(ctx context.Context) (int, error) {
	var count int
	// The session store writes expiry as a julian day number.
	if err := db.ReadOnly.GetContext(ctx, &count, "SELECT COUNT(*) FROM sessions WHERE julianday('now') < expiry"); err != nil {
		return 0, errors.Wrap(err, "count active sessions")
	}
	return count, nil
}

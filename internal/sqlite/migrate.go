package sqlite

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/sangamsetu/casedesk/internal/errors"
)

// migrations are applied in order. The index of the last applied migration plus one is kept in
// PRAGMA user_version, so existing entries must never change.
var migrations = []string{
	// The table layout expected by github.com/alexedwards/scs/sqlite3store.
	`CREATE TABLE sessions (
		token  TEXT PRIMARY KEY,
		data   BLOB NOT NULL,
		expiry REAL NOT NULL
	);
	CREATE INDEX sessions_expiry_idx ON sessions (expiry);`,
}

// SchemaVersion returns the number of applied migrations.
func (db *Database) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := db.ReadWrite.GetContext(ctx, &version, "PRAGMA user_version"); err != nil {
		return 0, errors.Wrap(err, "read user_version")
	}
	return version, nil
}

func (db *Database) migrate(ctx context.Context, steps []string) error {
	var (
		err     error
		version int
		tx      *sqlx.Tx
	)
	if version, err = db.SchemaVersion(ctx); err != nil {
		return err
	}
	if version > len(steps) {
		return errors.New("database is newer than this binary",
			slog.Int("version", version), slog.Int("known", len(steps)))
	}
	if version == len(steps) {
		return nil
	}

	if tx, err = db.ReadWrite.BeginTxx(ctx, nil); err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()
	for i := version; i < len(steps); i++ {
		if _, err = tx.ExecContext(ctx, steps[i]); err != nil {
			return errors.Wrap(err, "apply migration", slog.Int("migration", i+1))
		}
	}
	// PRAGMA does not accept bound parameters.
	if _, err = tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", len(steps))); err != nil {
		return errors.Wrap(err, "set user_version")
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit migrations")
	}
	db.logger.LogAttrs(ctx, slog.LevelInfo, "migrated database",
		slog.Int("from", version), slog.Int("to", len(steps)))
	return nil
}

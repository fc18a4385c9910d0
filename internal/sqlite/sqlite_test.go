package sqlite_test

import (
	"io"
	"testing"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/sangamsetu/casedesk/internal/sqlite"
	"github.com/sangamsetu/casedesk/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

func TestNewDatabase(t *testing.T) {
	ctx := t.Context()
	db, err := sqlite.NewDatabase(ctx, ":memory:", testhelpers.NewLogger(io.Discard))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})

	version, err := db.SchemaVersion(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, version)

	var tables []string
	require.NoError(t, db.ReadOnly.SelectContext(ctx, &tables,
		"SELECT name FROM sqlite_schema WHERE type = 'table' ORDER BY name"))
	require.Equal(t, []string{"sessions"}, tables)
}

func TestActiveSessions(t *testing.T) {
	ctx := t.Context()
	db, err := sqlite.NewDatabase(ctx, ":memory:", testhelpers.NewLogger(io.Discard))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})

	store := sqlite3store.NewWithCleanupInterval(db.ReadWrite.DB, 0)
	require.NoError(t, store.Commit("live", []byte("data"), time.Now().Add(time.Hour)))
	require.NoError(t, store.Commit("expired", []byte("data"), time.Now().Add(-time.Hour)))

	count, err := db.ActiveSessions(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestNewDatabaseOnFileIsIdempotent(t *testing.T) {
	ctx := t.Context()
	path := t.TempDir() + "/sessions.sqlite"
	logger := testhelpers.NewLogger(io.Discard)

	first, err := sqlite.NewDatabase(ctx, path, logger)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := sqlite.NewDatabase(ctx, path, logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = second.Close()
	})
	version, err := second.SchemaVersion(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, version)
}

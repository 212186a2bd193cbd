// Package dbtest hands out migrated in-memory stores for tests in other
// packages.
package dbtest

import (
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/marcus-crane/curator/db"
	"github.com/marcus-crane/curator/migrations"

	_ "github.com/mattn/go-sqlite3"
)

// NewStore returns an empty store backed by an in-memory database. The clock
// is pinned to now so tests can move it around.
func NewStore(t *testing.T, now time.Time) *db.SqliteStore {
	t.Helper()

	conn, err := sqlx.Connect("sqlite3", ":memory:")
	require.NoError(t, err)
	// every new connection would get its own empty database
	conn.SetMaxOpenConns(1)

	store := db.NewStore(conn)
	store.Now = func() time.Time { return now }

	err = store.ApplyMigrations(migrations.GetMigrations())
	require.NoError(t, err)

	t.Cleanup(func() {
		store.Close()
	})
	return store
}

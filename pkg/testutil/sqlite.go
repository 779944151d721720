package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"checkin/internal/platform/config"
	"checkin/internal/platform/database"
)

// OpenSQLite opens a migrated SQLite database in a per-test temp dir.
// The database is closed when the test finishes.
func OpenSQLite(t *testing.T) *database.DB {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, config.Database{
		Driver: "sqlite3",
		DSN:    filepath.Join(t.TempDir(), "checkin.db"),
	})
	require.NoError(t, err, "open sqlite")
	t.Cleanup(func() { _ = db.Close() })

	_, err = database.Migrate(ctx, db)
	require.NoError(t, err, "migrate sqlite")
	return db
}

package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_CreatesSchemaAndReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daybook.db")

	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// Reopen must be a no-op for an up-to-date schema.
	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()

	var n int
	err = db.SQL().QueryRow(`SELECT COUNT(*) FROM tasks;`).Scan(&n)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestOpen_EmptyPathRejected(t *testing.T) {
	_, err := Open("  ")
	assert.Error(t, err)
}

func TestEnsureRoutineColumns_AddsModeToLegacySchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.db")

	db, err := Open(path)
	require.NoError(t, err)
	defer db.Close()

	// Simulate a pre-mode data file: drop the column by rebuilding the table.
	_, err = db.SQL().Exec(`
		DROP TABLE routines;
		CREATE TABLE routines (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			project_id TEXT DEFAULT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			days TEXT NOT NULL DEFAULT '[]',
			interval_days INTEGER NOT NULL DEFAULT 0,
			start_date TEXT DEFAULT NULL,
			time TEXT NOT NULL DEFAULT '08:00',
			active INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL
		);`)
	require.NoError(t, err)

	require.NoError(t, db.ensureRoutineColumns())

	_, err = db.SQL().Exec(`SELECT mode FROM routines;`)
	assert.NoError(t, err)
}

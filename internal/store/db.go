// Package store owns the SQLite database: connection setup, schema, and
// the column migrations that keep old data files loadable.
package store

import (
	"database/sql"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

type DB struct {
	sql *sql.DB
}

func Open(dbPath string) (*DB, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, errors.New("db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, err
	}
	db, err := sql.Open("sqlite", sqliteDSN(dbPath))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	d := &DB{sql: db}
	if err := d.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

func (d *DB) Close() error {
	if d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

// SQL exposes the underlying handle for the per-domain repositories.
func (d *DB) SQL() *sql.DB { return d.sql }

func (d *DB) ensureSchema() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	token_hash TEXT NOT NULL UNIQUE,
	created_at TEXT NOT NULL,
	last_seen TEXT NOT NULL,
	expires_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS otp_challenges (
	email TEXT PRIMARY KEY,
	code_hash TEXT NOT NULL,
	expires_at TEXT NOT NULL,
	requested_at TEXT NOT NULL,
	attempts INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS projects (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	name TEXT NOT NULL,
	emoji TEXT NOT NULL DEFAULT '',
	color TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS tasks (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	project_id TEXT DEFAULT NULL,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	completed INTEGER NOT NULL DEFAULT 0,
	priority TEXT NOT NULL DEFAULT 'medium',
	due_date TEXT DEFAULT NULL,
	tags TEXT NOT NULL DEFAULT '[]',
	routine_generated INTEGER NOT NULL DEFAULT 0,
	routine_id TEXT DEFAULT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS routines (
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
);
CREATE INDEX IF NOT EXISTS idx_tasks_scope ON tasks(user_id, project_id);
CREATE INDEX IF NOT EXISTS idx_routines_scope ON routines(user_id, project_id);
CREATE INDEX IF NOT EXISTS idx_sessions_token ON sessions(token_hash);`
	if _, err := d.sql.Exec(ddl); err != nil {
		return err
	}
	return d.ensureRoutineColumns()
}

// ensureRoutineColumns adds columns introduced after the first release.
// The mode column postdates the original days/interval_days pair; rows
// without it keep loading through the legacy inference path.
func (d *DB) ensureRoutineColumns() error {
	required := map[string]string{
		"mode": `ALTER TABLE routines ADD COLUMN mode TEXT NOT NULL DEFAULT '';`,
	}
	existing := map[string]struct{}{}
	rows, err := d.sql.Query(`PRAGMA table_info(routines);`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return err
		}
		existing[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for col, alter := range required {
		if _, ok := existing[col]; ok {
			continue
		}
		if _, err := d.sql.Exec(alter); err != nil {
			return err
		}
	}
	return nil
}

func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	u := url.URL{
		Scheme: "file",
		Path:   path,
	}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Set("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String()
}

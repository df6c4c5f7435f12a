// Package metrics records per-tool usage counters in a local SQLite
// database. The counters feed the /status endpoint; losing them is
// harmless, so recording failures are logged and swallowed rather than
// failing the tool call they decorate.
package metrics

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// Store persists tool usage counters.
type Store struct {
	db *sql.DB
}

// ToolUsage is one tool's accumulated counters.
type ToolUsage struct {
	Tool       string `json:"tool"`
	Calls      int64  `json:"calls"`
	Errors     int64  `json:"errors"`
	LastCallAt string `json:"last_call_at"`
}

// Snapshot is the aggregate usage view served by /status.
type Snapshot struct {
	TotalCalls  int64       `json:"total_calls"`
	TotalErrors int64       `json:"total_errors"`
	Tools       []ToolUsage `json:"tools"`
}

// New opens (creating if needed) the usage database under dataDir and
// runs migrations.
func New(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("metrics: create data dir: %w", err)
	}

	db, err := openDB("sqlite", filepath.Join(dataDir, "usage.db"))
	if err != nil {
		return nil, fmt.Errorf("metrics: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, fmt.Errorf("metrics: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("metrics: migration: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS tool_usage (
			tool         TEXT PRIMARY KEY,
			calls        INTEGER NOT NULL DEFAULT 0,
			errors       INTEGER NOT NULL DEFAULT 0,
			last_call_at TEXT NOT NULL
		);`
	_, err := s.db.Exec(schema)
	return err
}

// Record bumps the counters for one tool call.
func (s *Store) Record(tool string, isError bool) error {
	errInc := 0
	if isError {
		errInc = 1
	}
	_, err := s.db.Exec(`
		INSERT INTO tool_usage (tool, calls, errors, last_call_at)
		VALUES (?, 1, ?, ?)
		ON CONFLICT(tool) DO UPDATE SET
			calls = calls + 1,
			errors = errors + excluded.errors,
			last_call_at = excluded.last_call_at`,
		tool, errInc, time.Now().UTC().Format(time.RFC3339))
	return err
}

// Snapshot returns the accumulated counters, busiest tool first.
func (s *Store) Snapshot() (*Snapshot, error) {
	rows, err := s.db.Query(`
		SELECT tool, calls, errors, last_call_at
		FROM tool_usage
		ORDER BY calls DESC, tool ASC`)
	if err != nil {
		return nil, fmt.Errorf("metrics: snapshot: %w", err)
	}
	defer rows.Close()

	snap := &Snapshot{Tools: []ToolUsage{}}
	for rows.Next() {
		var u ToolUsage
		if err := rows.Scan(&u.Tool, &u.Calls, &u.Errors, &u.LastCallAt); err != nil {
			return nil, fmt.Errorf("metrics: scan: %w", err)
		}
		snap.TotalCalls += u.Calls
		snap.TotalErrors += u.Errors
		snap.Tools = append(snap.Tools, u)
	}
	return snap, rows.Err()
}

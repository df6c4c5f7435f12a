package metrics

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNew_CreatesDatabaseFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	s, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(filepath.Join(dir, "usage.db")); err != nil {
		t.Errorf("usage.db not created: %v", err)
	}
}

func TestRecord_Accumulates(t *testing.T) {
	s := newStore(t)

	for i := 0; i < 3; i++ {
		if err := s.Record("browse_graph", false); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	if err := s.Record("browse_graph", true); err != nil {
		t.Fatalf("Record: %v", err)
	}

	snap, err := s.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(snap.Tools) != 1 {
		t.Fatalf("tools = %+v", snap.Tools)
	}
	u := snap.Tools[0]
	if u.Tool != "browse_graph" || u.Calls != 4 || u.Errors != 1 {
		t.Errorf("usage = %+v", u)
	}
	if u.LastCallAt == "" {
		t.Error("last call timestamp missing")
	}
}

func TestSnapshot_TotalsAndOrdering(t *testing.T) {
	s := newStore(t)

	for i := 0; i < 5; i++ {
		if err := s.Record("create_node", false); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	if err := s.Record("graph_health", true); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := s.Record("update_priorities", false); err != nil {
		t.Fatalf("Record: %v", err)
	}

	snap, err := s.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.TotalCalls != 7 || snap.TotalErrors != 1 {
		t.Errorf("totals = %d calls / %d errors", snap.TotalCalls, snap.TotalErrors)
	}
	if snap.Tools[0].Tool != "create_node" {
		t.Errorf("busiest tool first, got %q", snap.Tools[0].Tool)
	}
	// Equal call counts order alphabetically.
	if snap.Tools[1].Tool != "graph_health" || snap.Tools[2].Tool != "update_priorities" {
		t.Errorf("tie order = %q, %q", snap.Tools[1].Tool, snap.Tools[2].Tool)
	}
}

func TestSnapshot_Empty(t *testing.T) {
	s := newStore(t)

	snap, err := s.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.TotalCalls != 0 || len(snap.Tools) != 0 {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestNew_OpenFailure(t *testing.T) {
	orig := openDB
	openDB = func(driver, dsn string) (*sql.DB, error) { return nil, errors.New("boom") }
	defer func() { openDB = orig }()

	if _, err := New(t.TempDir()); err == nil {
		t.Fatal("New should surface the open failure")
	}
}

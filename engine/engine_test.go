package engine_test

import (
	"path/filepath"
	"testing"

	"github.com/viant/embedstore/engine"
)

// TestOpenInMemory verifies that we can open an in-memory SQLite database
// using the modernc.org/sqlite driver and execute a trivial statement.
func TestOpenInMemory(t *testing.T) {
	db, err := engine.Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec("CREATE TABLE t(x INTEGER)"); err != nil {
		t.Fatalf("CREATE TABLE failed: %v", err)
	}
	if _, err := db.Exec("INSERT INTO t(x) VALUES (1),(2),(3)"); err != nil {
		t.Fatalf("INSERT failed: %v", err)
	}
}

func TestOpenFile_PersistsAcrossHandles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kb.db")
	db, err := engine.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	if _, err := db.Exec("CREATE TABLE t(x INTEGER)"); err != nil {
		t.Fatalf("CREATE TABLE failed: %v", err)
	}
	if _, err := db.Exec("INSERT INTO t(x) VALUES (7)"); err != nil {
		t.Fatalf("INSERT failed: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	db, err = engine.OpenFile(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer db.Close()
	var x int
	if err := db.QueryRow("SELECT x FROM t").Scan(&x); err != nil {
		t.Fatalf("SELECT failed: %v", err)
	}
	if x != 7 {
		t.Fatalf("x = %d, want 7", x)
	}
	var mode string
	if err := db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("journal_mode failed: %v", err)
	}
	if mode != "wal" {
		t.Fatalf("journal_mode = %q, want wal", mode)
	}
}

func TestOpenFile_MemoryKeepsState(t *testing.T) {
	db, err := engine.OpenFile(engine.MemoryDSN)
	if err != nil {
		t.Fatalf("OpenFile(:memory:) failed: %v", err)
	}
	defer db.Close()
	if _, err := db.Exec("CREATE TABLE t(x INTEGER)"); err != nil {
		t.Fatalf("CREATE TABLE failed: %v", err)
	}
	// A second statement must see the table on the same single connection.
	if _, err := db.Exec("INSERT INTO t(x) VALUES (1)"); err != nil {
		t.Fatalf("INSERT failed: %v", err)
	}
}

package vecsync_test

import (
	"context"
	"strings"
	"testing"

	"github.com/viant/embedstore/engine"
	"github.com/viant/embedstore/vecsync"
)

func TestSQLiteLogTriggers(t *testing.T) {
	trigs := vecsync.SQLiteLogTriggers("main.documents", "")
	if len(trigs) != 2 {
		t.Fatalf("expected 2 triggers, got %d", len(trigs))
	}
	if !strings.Contains(trigs[0], "CREATE TRIGGER IF NOT EXISTS main_documents_ai AFTER INSERT") {
		t.Fatalf("unexpected insert trigger: %s", trigs[0])
	}
	if !strings.Contains(trigs[0], "'upsert', NEW.id") {
		t.Fatalf("insert trigger missing op: %s", trigs[0])
	}
	if !strings.Contains(trigs[1], "'delete', OLD.id") {
		t.Fatalf("delete trigger missing OLD reference: %s", trigs[1])
	}
	if !strings.Contains(trigs[1], "INSERT INTO documents_log") {
		t.Fatalf("delete trigger must target default log table: %s", trigs[1])
	}
}

func TestInstallAndReadLog(t *testing.T) {
	ctx := context.Background()
	db, err := engine.OpenFile(engine.MemoryDSN)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE documents (id TEXT PRIMARY KEY, text TEXT NOT NULL, embedding TEXT NOT NULL)`); err != nil {
		t.Fatalf("create documents failed: %v", err)
	}
	if err := vecsync.Install(ctx, db, "documents", ""); err != nil {
		t.Fatalf("Install failed: %v", err)
	}
	// Install is idempotent.
	if err := vecsync.Install(ctx, db, "documents", ""); err != nil {
		t.Fatalf("second Install failed: %v", err)
	}

	stmts := []string{
		`INSERT OR REPLACE INTO documents VALUES ('a', 'cat', '1.000000')`,
		`INSERT OR REPLACE INTO documents VALUES ('b', 'dog', '1.000000')`,
		`INSERT OR REPLACE INTO documents VALUES ('a', 'kitten', '1.000000')`,
		`DELETE FROM documents WHERE id = 'b'`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("%s failed: %v", stmt, err)
		}
	}

	entries, err := vecsync.ReadLog(ctx, db, "", 0, 0)
	if err != nil {
		t.Fatalf("ReadLog failed: %v", err)
	}
	want := []struct{ op, id string }{
		{vecsync.OpUpsert, "a"},
		{vecsync.OpUpsert, "b"},
		{vecsync.OpUpsert, "a"},
		{vecsync.OpDelete, "b"},
	}
	if len(entries) != len(want) {
		t.Fatalf("ReadLog returned %d entries, want %d: %+v", len(entries), len(want), entries)
	}
	for i, w := range want {
		if entries[i].Op != w.op || entries[i].DocumentID != w.id {
			t.Fatalf("entry[%d] = %s %s, want %s %s", i, entries[i].Op, entries[i].DocumentID, w.op, w.id)
		}
		if entries[i].CreatedAt.IsZero() {
			t.Fatalf("entry[%d] has zero CreatedAt", i)
		}
	}

	tail, err := vecsync.ReadLog(ctx, db, "", entries[1].Seq, 1)
	if err != nil {
		t.Fatalf("ReadLog(after) failed: %v", err)
	}
	if len(tail) != 1 || tail[0].Seq != entries[2].Seq {
		t.Fatalf("ReadLog(after=%d, limit=1) = %+v, want seq %d", entries[1].Seq, tail, entries[2].Seq)
	}
}

package vecsync

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// DefaultLogTable is the change-log table populated by the document triggers.
const DefaultLogTable = "documents_log"

// LogTableDDL returns the DDL for the change-log table. seq doubles as the
// resume cursor for ReadLog.
func LogTableDDL(logTable string) string {
	if logTable == "" {
		logTable = DefaultLogTable
	}
	return `CREATE TABLE IF NOT EXISTS ` + logTable + ` (
    seq         INTEGER PRIMARY KEY AUTOINCREMENT,
    op          TEXT NOT NULL,
    document_id TEXT NOT NULL,
    created_at  INTEGER NOT NULL DEFAULT (CAST(strftime('%s', 'now') AS INTEGER))
);`
}

// SQLiteLogTriggers returns the trigger DDL capturing inserts and deletes on
// table into logTable. INSERT OR REPLACE only fires the insert trigger while
// recursive triggers are off, so a replacement is logged as a single upsert.
func SQLiteLogTriggers(table, logTable string) []string {
	if logTable == "" {
		logTable = DefaultLogTable
	}
	base := sanitizeIdentifier(table)

	insertTrig := fmt.Sprintf(`CREATE TRIGGER IF NOT EXISTS %s_ai AFTER INSERT ON %s
BEGIN
    INSERT INTO %s(op, document_id) VALUES ('%s', NEW.id);
END;`, base, table, logTable, OpUpsert)

	deleteTrig := fmt.Sprintf(`CREATE TRIGGER IF NOT EXISTS %s_ad AFTER DELETE ON %s
BEGIN
    INSERT INTO %s(op, document_id) VALUES ('%s', OLD.id);
END;`, base, table, logTable, OpDelete)

	return []string{insertTrig, deleteTrig}
}

// Install creates the log table and triggers for table.
func Install(ctx context.Context, db *sql.DB, table, logTable string) error {
	stmts := append([]string{LogTableDDL(logTable)}, SQLiteLogTriggers(table, logTable)...)
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("vecsync: install change log: %w", err)
		}
	}
	return nil
}

// ReadLog returns up to limit entries with seq greater than afterSeq in
// sequence order. A non-positive limit reads to the end of the log.
func ReadLog(ctx context.Context, db *sql.DB, logTable string, afterSeq int64, limit int) ([]LogEntry, error) {
	if logTable == "" {
		logTable = DefaultLogTable
	}
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.QueryContext(ctx, `SELECT seq, op, document_id, created_at FROM `+logTable+`
WHERE seq > ? ORDER BY seq LIMIT ?`, afterSeq, limit)
	if err != nil {
		return nil, fmt.Errorf("vecsync: read log: %w", err)
	}
	defer rows.Close()

	var out []LogEntry
	for rows.Next() {
		var entry LogEntry
		var created int64
		if err := rows.Scan(&entry.Seq, &entry.Op, &entry.DocumentID, &created); err != nil {
			return nil, fmt.Errorf("vecsync: scan log: %w", err)
		}
		entry.CreatedAt = time.Unix(created, 0).UTC()
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("vecsync: read log: %w", err)
	}
	return out, nil
}

func sanitizeIdentifier(name string) string {
	if name == "" {
		return ""
	}
	replacer := strings.NewReplacer(".", "_", "-", "_")
	return replacer.Replace(name)
}

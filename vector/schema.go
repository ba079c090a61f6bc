package vector

import (
	"context"
	"database/sql"
	"fmt"
)

// TableName is the single table holding document records.
const TableName = "documents"

// Dialect carries the statements a SQLStore issues against one database
// engine.
type Dialect struct {
	Name   string
	Driver string
	Schema []string
	Upsert string
	Get    string
	Scan   string
	Delete string
	Count  string
	Clear  string
	// Compact must run outside a transaction.
	Compact string
	// Nearest scores and orders readable rows in the database. It takes the
	// encoded query, the dimension and the limit. Empty when the engine has
	// no vector functions.
	Nearest string
	// ChangeLog reports whether the vecsync trigger log can be installed.
	ChangeLog bool
}

// SQLite stores documents in a local SQLite file through modernc.org/sqlite.
var SQLite = Dialect{
	Name:   "sqlite",
	Driver: "sqlite",
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS documents (
    id TEXT PRIMARY KEY,
    text TEXT NOT NULL,
    embedding TEXT NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_id ON documents(id)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_text ON documents(text)`,
	},
	Upsert:  `INSERT OR REPLACE INTO documents(id, text, embedding) VALUES(?, ?, ?)`,
	Get:     `SELECT id, text, embedding FROM documents WHERE id = ?`,
	Scan:    `SELECT id, text, embedding FROM documents ORDER BY rowid`,
	Delete:  `DELETE FROM documents WHERE id = ?`,
	Count:   `SELECT COUNT(*) FROM documents`,
	Clear:   `DELETE FROM documents`,
	Compact: `VACUUM`,
	Nearest: `SELECT id, text, vec_cosine(embedding, ?) AS score FROM documents
WHERE vec_dim(embedding) = ? ORDER BY score DESC, rowid LIMIT ?`,
	ChangeLog: true,
}

// Postgres stores documents in a shared Postgres database through pgx.
var Postgres = Dialect{
	Name:   "postgres",
	Driver: "pgx",
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS documents (
    id TEXT PRIMARY KEY,
    text TEXT NOT NULL,
    embedding TEXT NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_id ON documents(id)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_text ON documents(text)`,
	},
	Upsert: `INSERT INTO documents(id, text, embedding) VALUES($1, $2, $3)
ON CONFLICT (id) DO UPDATE SET text = EXCLUDED.text, embedding = EXCLUDED.embedding`,
	Get:     `SELECT id, text, embedding FROM documents WHERE id = $1`,
	Scan:    `SELECT id, text, embedding FROM documents ORDER BY id`,
	Delete:  `DELETE FROM documents WHERE id = $1`,
	Count:   `SELECT COUNT(*) FROM documents`,
	Clear:   `DELETE FROM documents`,
	Compact: `VACUUM documents`,
}

// EnsureSchema creates the documents table and its secondary indexes if they
// do not already exist.
func EnsureSchema(ctx context.Context, db *sql.DB, dialect Dialect) error {
	for _, stmt := range dialect.Schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("vector: %s schema: %w", dialect.Name, err)
		}
	}
	return nil
}

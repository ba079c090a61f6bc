package vecsync

import "time"

// Change log operations.
const (
	OpUpsert = "upsert"
	OpDelete = "delete"
)

// LogEntry mirrors a single row of the change log table.
type LogEntry struct {
	Seq        int64
	Op         string
	DocumentID string
	CreatedAt  time.Time
}

// Package vecsync maintains an append-only change log for a document table.
// SQLite triggers record every upsert and delete with a monotonically
// increasing sequence number so that downstream consumers (replicas, search
// caches, auditors) can follow a store incrementally with ReadLog.
package vecsync

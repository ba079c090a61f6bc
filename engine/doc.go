// Package engine wraps the modernc.org/sqlite driver: opening database
// handles tuned for a single-writer document store.
package engine

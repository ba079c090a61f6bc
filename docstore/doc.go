// Package docstore composes an embedder, a record store and a ranker into
// the document store API: add documents by text, search them by text, and
// maintain the underlying storage.
package docstore

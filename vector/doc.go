// Package vector defines the document record model and the durable record
// store behind the embedding-indexed document store. It includes:
//   - Document and SearchResult models and the RecordStore interface
//   - SQLStore: dimension-gated storage over SQLite or Postgres
//   - Schema dialects for the documents table
//   - Embedding text encoding, cosine similarity and the vec_cosine/vec_dim
//     SQL functions
package vector

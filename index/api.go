package index

import "github.com/viant/embedstore/vector"

// ErrDimensionMismatch reports a query whose length differs from the ranker
// dimension.
var ErrDimensionMismatch = vector.ErrDimensionMismatch

// Ranker orders documents by similarity to a query vector.
type Ranker interface {
	// Rank scores every document against query and returns at most k results
	// ordered by descending score. Equal scores keep the input order. k <= 0
	// yields an empty result.
	Rank(query []float32, docs []vector.Document, k int) ([]vector.SearchResult, error)
}

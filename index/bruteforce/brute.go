package bruteforce

import (
	"fmt"
	"sort"

	"github.com/viant/embedstore/index"
	"github.com/viant/embedstore/vector"
)

// Ranker is a linear-scan cosine ranker for vectors of a fixed dimension.
type Ranker struct {
	dim int
}

// New returns a ranker accepting queries of length dim.
func New(dim int) *Ranker { return &Ranker{dim: dim} }

// Dimension returns the accepted query length.
func (r *Ranker) Dimension() int { return r.dim }

// Rank implements index.Ranker.
func (r *Ranker) Rank(query []float32, docs []vector.Document, k int) ([]vector.SearchResult, error) {
	if len(query) != r.dim {
		return nil, fmt.Errorf("%w: query dim %d != ranker dim %d", index.ErrDimensionMismatch, len(query), r.dim)
	}
	if k <= 0 || len(docs) == 0 {
		return []vector.SearchResult{}, nil
	}
	scored := make([]vector.SearchResult, len(docs))
	for i, doc := range docs {
		scored[i] = vector.SearchResult{
			ID:    doc.ID,
			Text:  doc.Text,
			Score: vector.CosineSimilarity(query, doc.Embedding),
		}
	}
	sort.SliceStable(scored, func(a, b int) bool { return scored[a].Score > scored[b].Score })
	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k], nil
}

var _ index.Ranker = (*Ranker)(nil)

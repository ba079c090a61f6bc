package vector

import "math"

// CosineSimilarity returns dot(a,b) / (|a|*|b|) clamped to [-1, 1]. Vectors
// of different length, empty vectors, zero-magnitude vectors and vectors
// holding NaN or Inf score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na2, nb2 float64
	for i := range a {
		va := float64(a[i])
		vb := float64(b[i])
		dot += va * vb
		na2 += va * va
		nb2 += vb * vb
	}
	if na2 == 0 || nb2 == 0 {
		return 0
	}
	score := dot / (math.Sqrt(na2) * math.Sqrt(nb2))
	switch {
	case math.IsNaN(score):
		return 0
	case score > 1:
		return 1
	case score < -1:
		return -1
	}
	return score
}

package vector

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// EmbeddingPrecision is the number of fractional digits kept per component
// in the stored text form.
const EmbeddingPrecision = 6

// EncodeEmbedding renders vec as comma separated decimals with
// EmbeddingPrecision fractional digits, for example "0.500000,-1.250000".
// An empty vector encodes to the empty string.
func EncodeEmbedding(vec []float32) string {
	if len(vec) == 0 {
		return ""
	}
	var b strings.Builder
	b.Grow(len(vec) * 10)
	for i, v := range vec {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(v), 'f', EmbeddingPrecision, 64))
	}
	return b.String()
}

// encodeQuery renders vec with the shortest digits that parse back to the
// same float32 values, so in-database scoring sees the exact query.
func encodeQuery(vec []float32) string {
	parts := make([]string, len(vec))
	for i, v := range vec {
		parts[i] = strconv.FormatFloat(float64(v), 'g', -1, 32)
	}
	return strings.Join(parts, ",")
}

// DecodeEmbedding parses text produced by EncodeEmbedding. A non-numeric
// or non-finite token ("nan", "inf") fails the whole value with
// ErrSerialization.
func DecodeEmbedding(text string) ([]float32, error) {
	if text == "" {
		return nil, nil
	}
	parts := strings.Split(text, ",")
	vec := make([]float32, len(parts))
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 32)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid value %q at position %d", ErrSerialization, part, i)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%w: non-finite value %q at position %d", ErrSerialization, part, i)
		}
		vec[i] = float32(f)
	}
	return vec, nil
}

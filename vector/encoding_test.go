package vector

import (
	"errors"
	"math"
	"testing"
)

func TestEncodeEmbedding_Format(t *testing.T) {
	got := EncodeEmbedding([]float32{0.5, -1.25, 0, 1})
	want := "0.500000,-1.250000,0.000000,1.000000"
	if got != want {
		t.Fatalf("EncodeEmbedding = %q, want %q", got, want)
	}
}

func TestEncodeDecodeEmbedding_RoundTrip(t *testing.T) {
	orig := []float32{0.0, 1.5, -2.25, 3.75, 0.1234567, -0.9999994}

	decoded, err := DecodeEmbedding(EncodeEmbedding(orig))
	if err != nil {
		t.Fatalf("DecodeEmbedding failed: %v", err)
	}
	if len(decoded) != len(orig) {
		t.Fatalf("decoded length = %d, want %d", len(decoded), len(orig))
	}
	for i := range orig {
		if diff := math.Abs(float64(decoded[i] - orig[i])); diff > 1e-6 {
			t.Fatalf("decoded[%d] = %v, want %v (diff %v)", i, decoded[i], orig[i], diff)
		}
	}
}

func TestEncodeDecodeEmbedding_Empty(t *testing.T) {
	if s := EncodeEmbedding(nil); s != "" {
		t.Fatalf("expected empty text for nil slice, got %q", s)
	}
	vec, err := DecodeEmbedding("")
	if err != nil {
		t.Fatalf("DecodeEmbedding(\"\") failed: %v", err)
	}
	if len(vec) != 0 {
		t.Fatalf("expected empty slice for empty text, got len=%d", len(vec))
	}
}

func TestDecodeEmbedding_Malformed(t *testing.T) {
	for _, text := range []string{"0.1,abc,0.3", "0.1,,0.3", "1.0,", "nan,0.1", "0.1,NaN", "inf,0", "0,-Infinity", "1e39,0"} {
		if _, err := DecodeEmbedding(text); !errors.Is(err, ErrSerialization) {
			t.Fatalf("DecodeEmbedding(%q) error = %v, want ErrSerialization", text, err)
		}
	}
}

func TestEncodeQuery_Exact(t *testing.T) {
	orig := []float32{0.1234567, -1e-9, 3.4028235e38, 0}
	decoded, err := DecodeEmbedding(encodeQuery(orig))
	if err != nil {
		t.Fatalf("DecodeEmbedding failed: %v", err)
	}
	for i := range orig {
		if decoded[i] != orig[i] {
			t.Fatalf("decoded[%d] = %v, want %v", i, decoded[i], orig[i])
		}
	}
}

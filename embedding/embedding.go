package embedding

import (
	"math"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
)

const DefaultDimension = 384

type Embedder interface {
	Embed(text string) []float64
	Dimension() int
}

// HashingEmbedder maps text onto a fixed size vector by feature hashing its
// words and adjacent word pairs. The same text always yields the same
// vector, across processes too, so vectors never need to be stored.
type HashingEmbedder struct {
	Dim int
}

func NewHashingEmbedder() *HashingEmbedder {
	return &HashingEmbedder{Dim: DefaultDimension}
}

func (h *HashingEmbedder) Dimension() int {
	if h.Dim <= 0 {
		return DefaultDimension
	}
	return h.Dim
}

// Embed returns an L2 normalised vector, or all zeroes for text without any
// words in it
func (h *HashingEmbedder) Embed(text string) []float64 {
	dim := h.Dimension()
	vec := make([]float64, dim)

	tokens := Tokenize(text)
	for i, token := range tokens {
		h.add(vec, token, 1)
		if i > 0 {
			h.add(vec, tokens[i-1]+" "+token, 0.5)
		}
	}

	Normalize(vec)
	return vec
}

func (h *HashingEmbedder) add(vec []float64, feature string, weight float64) {
	sum := xxhash.Sum64String(feature)
	idx := sum % uint64(len(vec))
	// top bit picks the sign so collisions tend to cancel out
	if sum>>63 == 1 {
		weight = -weight
	}
	vec[idx] += weight
}

// Tokenize lowercases text and splits it on anything that isn't a letter or
// a digit
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

func Dot(a, b []float64) float64 {
	n := min(len(a), len(b))
	var sum float64
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

func Norm(vec []float64) float64 {
	return math.Sqrt(Dot(vec, vec))
}

// Normalize scales vec to unit length in place. A zero vector is left alone.
func Normalize(vec []float64) {
	norm := Norm(vec)
	if norm == 0 {
		return
	}
	for i := range vec {
		vec[i] /= norm
	}
}

package embedding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"funny", "cat", "1962", "café"}, Tokenize("Funny CAT (1962) -- Café!"))
	assert.Empty(t, Tokenize("  ... "))
}

func TestHashingEmbedder_Deterministic(t *testing.T) {
	e := NewHashingEmbedder()
	a := e.Embed("A crazy skateboarding dog")
	b := NewHashingEmbedder().Embed("A crazy skateboarding dog")

	require.Len(t, a, DefaultDimension)
	assert.Equal(t, a, b)
	assert.InDelta(t, 1.0, Norm(a), 1e-9)
}

func TestHashingEmbedder_EmptyTextIsZero(t *testing.T) {
	e := NewHashingEmbedder()
	vec := e.Embed("   ")

	require.Len(t, vec, DefaultDimension)
	assert.Equal(t, 0.0, Norm(vec))
}

func TestHashingEmbedder_SimilarTextScoresHigher(t *testing.T) {
	e := NewHashingEmbedder()
	base := e.Embed("funny cat video compilation")
	near := e.Embed("funny cat compilation")
	far := e.Embed("lecture on medieval tax law")

	assert.Greater(t, Dot(base, near), Dot(base, far))
}

func TestHashingEmbedder_CustomDimension(t *testing.T) {
	e := &HashingEmbedder{Dim: 16}
	assert.Equal(t, 16, e.Dimension())
	assert.Len(t, e.Embed("hello world"), 16)
}

func TestNormalize(t *testing.T) {
	vec := []float64{3, 4}
	Normalize(vec)
	assert.InDeltaSlice(t, []float64{0.6, 0.8}, vec, 1e-9)

	zero := []float64{0, 0}
	Normalize(zero)
	assert.Equal(t, []float64{0, 0}, zero)
}

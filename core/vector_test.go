package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineSimilarity_SelfIsOne(t *testing.T) {
	v := []float32{0.3, -0.7, 0.2, 0.9}
	assert.InDelta(t, 1.0, CosineSimilarity(v, v), 1e-6)
}

func TestCosineSimilarity_Symmetric(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{-4, 0.5, 2}
	assert.InDelta(t, CosineSimilarity(a, b), CosineSimilarity(b, a), 1e-6)
}

func TestCosineSimilarity_Orthogonal(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{0, 1}
	assert.InDelta(t, 0.0, CosineSimilarity(a, b), 1e-6)
}

func TestCosineSimilarity_UnequalLengthUsesSharedPrefix(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{1, 0, 5}

	// The trailing component of b lies outside the shared prefix and must
	// not deflate the score.
	assert.InDelta(t, 1.0, CosineSimilarity(a, b), 1e-6)
	assert.InDelta(t, 1.0, CosineSimilarity(b, a), 1e-6)
}

func TestCosineSimilarity_ZeroVector(t *testing.T) {
	zero := []float32{0, 0, 0}
	v := []float32{1, 2, 3}

	assert.Zero(t, CosineSimilarity(zero, v))
	assert.Zero(t, CosineSimilarity(v, zero))
	assert.Zero(t, CosineSimilarity(zero, zero))
}

func TestNormalizeVector(t *testing.T) {
	v := NormalizeVector([]float32{3, 4})
	assert.InDelta(t, 0.6, v[0], 1e-6)
	assert.InDelta(t, 0.8, v[1], 1e-6)

	zero := NormalizeVector([]float32{0, 0})
	assert.Equal(t, []float32{0, 0}, zero)

	assert.Empty(t, NormalizeVector(nil))
}

func TestFitDimension(t *testing.T) {
	t.Run("exact length unchanged", func(t *testing.T) {
		v := []float32{1, 2, 3}
		assert.Equal(t, v, FitDimension(v, 3))
	})

	t.Run("truncates long vectors", func(t *testing.T) {
		v := []float32{1, 2, 3, 4, 5}
		assert.Equal(t, []float32{1, 2, 3}, FitDimension(v, 3))
	})

	t.Run("zero pads short vectors", func(t *testing.T) {
		v := []float32{1, 2}
		assert.Equal(t, []float32{1, 2, 0, 0}, FitDimension(v, 4))
	})

	t.Run("truncation does not alias the input", func(t *testing.T) {
		v := []float32{1, 2, 3, 4, 5}
		out := FitDimension(v, 3)
		out[0] = 99
		assert.Equal(t, []float32{1, 2, 3, 4, 5}, v)
	})

	t.Run("non positive dimension is passthrough", func(t *testing.T) {
		v := []float32{1, 2}
		assert.Equal(t, v, FitDimension(v, 0))
	})
}

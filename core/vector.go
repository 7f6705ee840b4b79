package core

import "math"

// DefaultDimension is the embedding dimensionality assumed when a caller
// does not configure one. It matches common text-embedding model output.
const DefaultDimension = 1536

// CosineSimilarity computes the normalized dot product of two vectors.
// Returns 0 (not an error) when either vector has zero magnitude.
// Vectors of unequal length are compared over the shorter prefix; the
// trailing components of the longer vector do not contribute to either
// the dot product or the magnitudes.
func CosineSimilarity(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

// NormalizeVector normalizes a vector to unit length.
// Returns a new vector. If the input is a zero vector, returns a zero vector.
func NormalizeVector(v []float32) []float32 {
	if len(v) == 0 {
		return v
	}

	var magnitude float32
	for _, val := range v {
		magnitude += val * val
	}
	magnitude = float32(math.Sqrt(float64(magnitude)))

	// Can't normalize zero vector
	if magnitude == 0 {
		result := make([]float32, len(v))
		return result
	}

	result := make([]float32, len(v))
	for i, val := range v {
		result[i] = val / magnitude
	}
	return result
}

// FitDimension coerces a vector to exactly dim components, truncating a
// longer vector and zero-padding a shorter one. Vectors that already match
// are returned unchanged, so round-trips through storage stay bit-for-bit
// identical. The correction is deterministic: the same input always yields
// the same output.
func FitDimension(v []float32, dim int) []float32 {
	if dim <= 0 || len(v) == dim {
		return v
	}
	if len(v) > dim {
		truncated := make([]float32, dim)
		copy(truncated, v)
		return truncated
	}
	padded := make([]float32, dim)
	copy(padded, v)
	return padded
}

// Package clustering groups stored asset embeddings into similarity
// clusters with a density-based pass over cosine distance.
package clustering

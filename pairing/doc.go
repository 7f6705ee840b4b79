// Package pairing matches source assets to generated candidates by a
// weighted combination of embedding similarity, filename similarity, and
// metadata correlation.
package pairing

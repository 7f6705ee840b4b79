package ai

import "errors"

var (
	// ErrDescribeFailed indicates the description provider returned an error.
	// Retryable by the caller.
	ErrDescribeFailed = errors.New("describe failed")

	// ErrEmbedFailed indicates the embedding provider returned an error.
	// Retryable by the caller.
	ErrEmbedFailed = errors.New("embed failed")
)

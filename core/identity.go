package core

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/go-crypt/x/blake2b"
	"github.com/google/uuid"
)

// ContentIDFromURI derives a stable content identifier from an asset URI.
// The URI is trimmed and hashed with SHA-256; the first 16 bytes of the
// digest are rendered as a UUID so backends that require UUID-shaped point
// ids accept it directly. The derivation is pure: the same URI produces the
// same ContentID across processes and restarts.
func ContentIDFromURI(uri string) (ContentID, error) {
	key := strings.TrimSpace(uri)
	if key == "" {
		return "", fmt.Errorf("%w: %w", ErrInvalidInput, ErrEmptyURI)
	}
	sum := sha256.Sum256([]byte(key))
	return ContentID(uuid.Must(uuid.FromBytes(sum[:16])).String()), nil
}

// LegacyContentID reproduces the retired BLAKE2b identifier scheme.
// It exists only so callers can read records written before the SHA-256
// derivation landed; new records are never written under legacy ids.
func LegacyContentID(uri string) ContentID {
	h, _ := blake2b.New(16, nil)
	h.Write([]byte(strings.TrimSpace(uri)))
	sum := h.Sum(nil)
	return ContentID(uuid.Must(uuid.FromBytes(sum)).String())
}

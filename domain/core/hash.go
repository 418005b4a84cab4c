package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// ComputeRunFingerprint derives a deterministic fingerprint for an analysis
// run from everything that determines its output. Two runs with the same
// fingerprint inputs must produce identical results.
func ComputeRunFingerprint(kind, method string, replications int, alpha float64, seed int64, sampleSize int) Hash {
	var data strings.Builder
	data.WriteString(kind)
	data.WriteString("|")
	data.WriteString(method)
	data.WriteString(fmt.Sprintf("|%d|%.17g|%d|%d", replications, alpha, seed, sampleSize))
	return NewHash([]byte(data.String()))
}

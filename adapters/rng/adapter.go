package rng

import (
	"context"
	"fmt"
	"math/rand"

	"bootstat/domain/core"
)

// Adapter implements the RNGPort interface with deterministic seeded streams
type Adapter struct{}

// NewAdapter creates a new RNG adapter
func NewAdapter() *Adapter {
	return &Adapter{}
}

// SeededStream creates a deterministic random number generator for a named operation
func (a *Adapter) SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error) {
	return rand.New(rand.NewSource(seed)), nil
}

// Stream creates a deterministic RNG stream for a specific run/stage/pair.
// The seed is derived by hashing the non-empty key parts onto the base seed,
// so the same keys and base seed always reproduce the same index vectors.
// Callers that need cross-run reproducibility pass an empty runID.
func (a *Adapter) Stream(ctx context.Context, runID, stageName, pairKey string, baseSeed int64) (*rand.Rand, error) {
	seed := baseSeed
	if runID != "" {
		seed = int64(hashString(runID)) + seed
	}
	if stageName != "" {
		seed = int64(hashString(stageName)) + seed
	}
	if pairKey != "" {
		seed = int64(hashString(pairKey)) + seed
	}
	return rand.New(rand.NewSource(seed)), nil
}

// ValidateSeed ensures the seed produces expected deterministic results
func (a *Adapter) ValidateSeed(ctx context.Context, name string, seed int64, expected []float64) error {
	stream := rand.New(rand.NewSource(seed))
	for i, want := range expected {
		if got := stream.Float64(); got != want {
			return fmt.Errorf("stream %q diverged at position %d (got %v, want %v): %w",
				name, i, got, want, core.ErrSeedMismatch)
		}
	}
	return nil
}

// hashString creates a simple hash for deterministic seeding
func hashString(s string) uint32 {
	var hash uint32 = 5381
	for _, c := range s {
		hash = ((hash << 5) + hash) + uint32(c) // djb2 algorithm
	}
	return hash
}

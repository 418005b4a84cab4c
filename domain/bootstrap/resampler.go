package bootstrap

import (
	"math/rand"

	"bootstat/domain/core"
)

// SampleBootstrap draws `draws` bootstrap replications jointly across all
// input arrays. One index vector is sampled per draw (uniform over [0, n)
// with replacement) and applied to every array, so row i of every returned
// matrix was built from the same index vector and cross-array pairing
// survives resampling. The return has one Matrix per input array, in input
// order.
//
// The RNG is consumed sequentially: a fixed seed reproduces the exact same
// matrices regardless of how the caller later evaluates them.
func SampleBootstrap(rng *rand.Rand, draws int, arrays ...[]float64) ([]Matrix, error) {
	if rng == nil {
		return nil, core.ErrNilRNG
	}
	if draws <= 0 {
		return nil, core.ErrInvalidDrawCount
	}
	n, err := validateAligned(arrays...)
	if err != nil {
		return nil, err
	}

	matrices := make([]Matrix, len(arrays))
	for a := range matrices {
		matrices[a] = make(Matrix, draws)
	}

	indices := make([]int, n)
	for d := 0; d < draws; d++ {
		for i := range indices {
			indices[i] = rng.Intn(n)
		}
		for a, arr := range arrays {
			row := make([]float64, n)
			for i, idx := range indices {
				row[i] = arr[idx]
			}
			matrices[a][d] = row
		}
	}

	return matrices, nil
}

// SamplePair is the common two-array case of SampleBootstrap.
func SamplePair(rng *rand.Rand, draws int, x, y []float64) (Matrix, Matrix, error) {
	ms, err := SampleBootstrap(rng, draws, x, y)
	if err != nil {
		return nil, nil, err
	}
	return ms[0], ms[1], nil
}

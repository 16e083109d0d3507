package synth

import (
	"errors"
	"fmt"
	"hash/fnv"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Common errors.
var (
	ErrInvalidConfig       = errors.New("invalid generator configuration")
	ErrNotPositiveDefinite = errors.New("covariance matrix is not positive definite")
	ErrDegenerateFeature   = errors.New("feature has zero empirical variance")
)

// NewSource returns a PCG source for one named stream of a base seed.
// Distinct stream names yield independent sequences for the same seed.
func NewSource(seed uint64, stream string) *rand.PCG {
	h := fnv.New64a()
	_, _ = h.Write([]byte(stream))
	return rand.NewPCG(seed, h.Sum64())
}

// normals draws n values from N(0, sigma²).
func normals(src rand.Source, n int, sigma float64) []float64 {
	dist := distuv.Normal{Mu: 0, Sigma: sigma, Src: src}
	out := make([]float64, n)
	for i := range out {
		out[i] = dist.Rand()
	}
	return out
}

func checkScale(name string, v float64) error {
	if v < 0 {
		return fmt.Errorf("%w: %s must be >= 0, got %g", ErrInvalidConfig, name, v)
	}
	return nil
}

func checkPositive(name string, v int) error {
	if v <= 0 {
		return fmt.Errorf("%w: %s must be > 0, got %d", ErrInvalidConfig, name, v)
	}
	return nil
}

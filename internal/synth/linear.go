package synth

import (
	"fmt"
	"math/rand/v2"

	"github.com/born-ml/dataprep/internal/tensor"
	"gonum.org/v1/gonum/mat"
)

// LinearConfig configures the linear-with-noise regression generator.
type LinearConfig struct {
	Samples    int       // Number of rows to draw
	Weights    []float64 // True weight vector w; its length is the feature count
	InputScale float64   // Standard deviation of every input
	NoiseScale float64   // Standard deviation of the additive noise
}

// Regression is a generated (X, y) sample of a linear model.
type Regression struct {
	X     *tensor.Float64Array // [Samples, Features]
	Y     *tensor.Float64Array // [Samples, 1]
	Noise []float64            // The ε drawn for each row
}

func (c LinearConfig) validate() error {
	if err := checkPositive("samples", c.Samples); err != nil {
		return err
	}
	if len(c.Weights) == 0 {
		return fmt.Errorf("%w: weights are empty", ErrInvalidConfig)
	}
	if err := checkScale("input scale", c.InputScale); err != nil {
		return err
	}
	return checkScale("noise scale", c.NoiseScale)
}

// Linear draws X with i.i.d. N(0, InputScale²) entries, then ε with i.i.d. N(0, NoiseScale²)
// entries, and returns y = Xw + ε.
func Linear(src rand.Source, cfg LinearConfig) (*Regression, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	n, d := cfg.Samples, len(cfg.Weights)
	x, err := tensor.New(tensor.Shape{n, d}, normals(src, n*d, cfg.InputScale))
	if err != nil {
		return nil, err
	}
	noise := normals(src, n, cfg.NoiseScale)

	y, err := tensor.New(tensor.Shape{n, 1}, Predict(x, cfg.Weights, noise))
	if err != nil {
		return nil, err
	}

	return &Regression{X: x, Y: y, Noise: noise}, nil
}

// Predict returns Xw + noise. A nil noise slice adds nothing.
// It panics if len(w) differs from the column count of x.
func Predict(x *tensor.Float64Array, w []float64, noise []float64) []float64 {
	xm := mat.NewDense(x.Rows(), x.Cols(), x.Data())
	y := mat.NewVecDense(x.Rows(), nil)
	y.MulVec(xm, mat.NewVecDense(len(w), w))

	out := y.RawVector().Data
	for i := range noise {
		out[i] += noise[i]
	}
	return out
}

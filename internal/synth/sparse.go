package synth

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/born-ml/dataprep/internal/tensor"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/sampleuv"
)

// SparseConfig configures the sparse, correlated regression generator.
type SparseConfig struct {
	Samples     int     // Number of rows to draw
	Features    int     // Number of inputs
	Active      int     // Number of features with a non-zero true weight
	Variance    float64 // Diagonal of the input covariance
	Correlation float64 // Every off-diagonal entry of the input covariance
	NoiseScale  float64 // Standard deviation of the additive noise
	WeightScale float64 // Standard deviation of each active weight
}

// SparseRegression is a generated sample of a sparse linear model with standardized inputs.
type SparseRegression struct {
	X          *tensor.Float64Array // [Samples, Features], standardized per feature
	Y          *tensor.Float64Array // [Samples, 1], X·w + noise using the standardized X
	Weights    []float64            // True weight vector; zero outside Active
	Active     []int                // Indices of the active features, ascending
	Covariance *tensor.Float64Array // [Features, Features]
	Noise      []float64            // The ε drawn for each row
	RawY       []float64            // Outputs computed from the inputs before standardization
}

func (c SparseConfig) validate() error {
	if err := checkPositive("samples", c.Samples); err != nil {
		return err
	}
	if err := checkPositive("features", c.Features); err != nil {
		return err
	}
	if err := checkPositive("active features", c.Active); err != nil {
		return err
	}
	if c.Active > c.Features {
		return fmt.Errorf("%w: %d active features exceed %d features", ErrInvalidConfig, c.Active, c.Features)
	}
	if c.Samples < 2 {
		return fmt.Errorf("%w: standardization needs at least 2 samples", ErrInvalidConfig)
	}
	if err := checkScale("noise scale", c.NoiseScale); err != nil {
		return err
	}
	return checkScale("weight scale", c.WeightScale)
}

// EquicorrelatedCovariance returns a d × d covariance with variance on the diagonal and
// corr everywhere else.
func EquicorrelatedCovariance(d int, variance, corr float64) *mat.SymDense {
	cov := mat.NewSymDense(d, nil)
	for i := 0; i < d; i++ {
		for j := i; j < d; j++ {
			if i == j {
				cov.SetSym(i, j, variance)
			} else {
				cov.SetSym(i, j, corr)
			}
		}
	}
	return cov
}

// SparseWeights returns a length-d weight vector that is zero except at active randomly
// chosen indices, which receive independent N(0, scale²) draws. The chosen indices are
// returned in ascending order.
func SparseWeights(src rand.Source, d, active int, scale float64) ([]float64, []int) {
	idx := make([]int, active)
	sampleuv.WithoutReplacement(idx, d, src)

	w := make([]float64, d)
	for i, v := range normals(src, active, scale) {
		w[idx[i]] = v
	}

	slices.Sort(idx)
	return w, idx
}

// Standardize rescales every column of x in place to zero empirical mean and unit
// empirical (population) variance.
func Standardize(x *tensor.Float64Array) error {
	n, d := x.Rows(), x.Cols()
	col := make([]float64, n)
	for j := 0; j < d; j++ {
		for i := 0; i < n; i++ {
			col[i] = x.At(i, j)
		}
		mean, variance := stat.PopMeanVariance(col, nil)
		if variance == 0 {
			return fmt.Errorf("%w: feature %d", ErrDegenerateFeature, j)
		}
		sd := math.Sqrt(variance)
		for i := 0; i < n; i++ {
			x.Set(i, j, (col[i]-mean)/sd)
		}
	}
	return nil
}

// SparseCorrelated draws a sparse true weight vector, then inputs from N(0, Σ) with an
// equicorrelated Σ, then noise, and computes y = Xw + ε. The inputs are then standardized in
// place and the outputs recomputed from the standardized inputs with the same noise.
func SparseCorrelated(src rand.Source, cfg SparseConfig) (*SparseRegression, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	n, d := cfg.Samples, cfg.Features
	cov := EquicorrelatedCovariance(d, cfg.Variance, cfg.Correlation)
	w, active := SparseWeights(src, d, cfg.Active, cfg.WeightScale)

	dist, ok := distmv.NewNormal(make([]float64, d), cov, src)
	if !ok {
		return nil, fmt.Errorf("%w: variance %g, correlation %g", ErrNotPositiveDefinite, cfg.Variance, cfg.Correlation)
	}
	x := tensor.MustZeros[float64](tensor.Shape{n, d})
	for i := 0; i < n; i++ {
		dist.Rand(x.Row(i))
	}
	noise := normals(src, n, cfg.NoiseScale)
	rawY := Predict(x, w, noise)

	if err := Standardize(x); err != nil {
		return nil, err
	}
	y, err := tensor.New(tensor.Shape{n, 1}, Predict(x, w, noise))
	if err != nil {
		return nil, err
	}

	covArr, err := tensor.New(tensor.Shape{d, d}, denseCopy(cov))
	if err != nil {
		return nil, err
	}

	return &SparseRegression{
		X:          x,
		Y:          y,
		Weights:    w,
		Active:     active,
		Covariance: covArr,
		Noise:      noise,
		RawY:       rawY,
	}, nil
}

// denseCopy flattens a symmetric matrix into a row-major slice.
func denseCopy(m mat.Symmetric) []float64 {
	d := m.SymmetricDim()
	out := make([]float64, 0, d*d)
	for i := 0; i < d; i++ {
		for j := 0; j < d; j++ {
			out = append(out, m.At(i, j))
		}
	}
	return out
}

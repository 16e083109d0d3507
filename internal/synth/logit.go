package synth

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/born-ml/dataprep/internal/tensor"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// MaxClasses is the largest class count whose labels fit in uint8.
const MaxClasses = 256

// LogitConfig configures the multinomial-logit classification generator.
type LogitConfig struct {
	Samples int // Number of rows to draw
	// ClassWeights holds one weight vector per class except the last, whose logit is
	// fixed at zero. All vectors share the feature count.
	ClassWeights [][]float64
	InputScale   float64 // Standard deviation of every input
}

// Classes returns the number of classes, including the pinned last class.
func (c LogitConfig) Classes() int {
	return len(c.ClassWeights) + 1
}

// Classification is a generated (X, y) sample of a multinomial-logit model.
type Classification struct {
	X             *tensor.Float64Array // [Samples, Features]
	Y             *tensor.Uint8Array   // [Samples, 1]
	Probabilities *tensor.Float64Array // [Samples, Classes], the distribution each label was drawn from
}

func (c LogitConfig) validate() error {
	if err := checkPositive("samples", c.Samples); err != nil {
		return err
	}
	if len(c.ClassWeights) == 0 {
		return fmt.Errorf("%w: need weights for at least one class", ErrInvalidConfig)
	}
	if c.Classes() > MaxClasses {
		return fmt.Errorf("%w: %d classes do not fit in uint8 labels", ErrInvalidConfig, c.Classes())
	}
	d := len(c.ClassWeights[0])
	if d == 0 {
		return fmt.Errorf("%w: class weights are empty", ErrInvalidConfig)
	}
	for k, w := range c.ClassWeights {
		if len(w) != d {
			return fmt.Errorf("%w: class %d has %d weights, class 0 has %d", ErrInvalidConfig, k, len(w), d)
		}
	}
	return checkScale("input scale", c.InputScale)
}

// WeightMatrix stacks the class weight vectors into a (classes-1) × features matrix.
func (c LogitConfig) WeightMatrix() *mat.Dense {
	d := len(c.ClassWeights[0])
	w := mat.NewDense(len(c.ClassWeights), d, nil)
	for k, row := range c.ClassWeights {
		w.SetRow(k, row)
	}
	return w
}

// Logits returns the class logits Wx followed by a final logit of exactly zero.
func Logits(w mat.Matrix, x []float64) []float64 {
	rows, _ := w.Dims()
	out := make([]float64, rows+1)
	a := mat.NewVecDense(rows, out[:rows])
	a.MulVec(w, mat.NewVecDense(len(x), x))
	return out
}

// Softmax exponentiates and normalizes logits into a probability vector.
// The maximum logit is subtracted first; the result is the same distribution.
func Softmax(logits []float64) []float64 {
	m := math.Inf(-1)
	for _, v := range logits {
		m = math.Max(m, v)
	}

	probs := make([]float64, len(logits))
	var sum float64
	for i, v := range logits {
		probs[i] = math.Exp(v - m)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}

// Probabilities returns the class distribution of a single sample x under weights w.
func Probabilities(w mat.Matrix, x []float64) []float64 {
	return Softmax(Logits(w, x))
}

// Logit draws X with i.i.d. N(0, InputScale²) entries and then, for each row independently,
// a label sampled from that row's own class distribution.
func Logit(src rand.Source, cfg LogitConfig) (*Classification, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	n, d, classes := cfg.Samples, len(cfg.ClassWeights[0]), cfg.Classes()
	x, err := tensor.New(tensor.Shape{n, d}, normals(src, n*d, cfg.InputScale))
	if err != nil {
		return nil, err
	}

	w := cfg.WeightMatrix()
	y := tensor.MustZeros[uint8](tensor.Shape{n, 1})
	probs := tensor.MustZeros[float64](tensor.Shape{n, classes})
	for i := 0; i < n; i++ {
		p := Probabilities(w, x.Row(i))
		copy(probs.Row(i), p)
		y.Set(i, 0, uint8(distuv.NewCategorical(p, src).Rand()))
	}

	return &Classification{X: x, Y: y, Probabilities: probs}, nil
}

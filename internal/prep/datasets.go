package prep

import (
	"context"
	"fmt"
	"math"

	"github.com/born-ml/dataprep/internal/descriptor"
	"github.com/born-ml/dataprep/internal/idx"
	"github.com/born-ml/dataprep/internal/synth"
	"github.com/born-ml/dataprep/internal/table"
	"github.com/born-ml/dataprep/internal/tensor"
)

// Model family tags.
const (
	ModelLinReg   = "LinReg"
	ModelLgstReg  = "LgstReg"
	ModelNoisyOpt = "NoisyOpt"
)

// DefaultRegistry returns a registry holding every built-in dataset.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.MustRegister(
		ToyRegression(),
		ToyClassification(),
		MNIST(),
		Quantum(),
		NoisyOptIsoBig(),
		NoisyOptIsoSmall(),
		NoisyOptSmallSparse(),
	)
	return r
}

type splitArray struct {
	split string
	array tensor.Array
}

func writeSplits(ctx context.Context, ws *Workspace, d *descriptor.Descriptor, splits ...splitArray) error {
	for _, s := range splits {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := ws.WriteSplit(d, s.split, s.array); err != nil {
			return err
		}
	}
	return nil
}

// LinearDataset is a train/test pair drawn from one linear model.
type LinearDataset struct {
	DatasetName string
	Model       string
	TrainSize   int
	TestSize    int
	Weights     []float64
	InputScale  float64
	NoiseScale  float64
}

// ToyRegression is the small linear regression set "toyReg".
func ToyRegression() *LinearDataset {
	return &LinearDataset{
		DatasetName: "toyReg",
		Model:       ModelLinReg,
		TrainSize:   15,
		TestSize:    10,
		Weights:     []float64{3.1415, 1.414214, 2.718282},
		InputScale:  0.5,
		NoiseScale:  1,
	}
}

// Name implements Preparer.
func (p *LinearDataset) Name() string { return p.DatasetName }

// ModelName implements Preparer.
func (p *LinearDataset) ModelName() string { return p.Model }

// Prepare draws the training sample, then the test sample, from one source.
func (p *LinearDataset) Prepare(ctx context.Context, ws *Workspace) (*descriptor.Descriptor, error) {
	src := ws.Rand()
	cfg := synth.LinearConfig{Weights: p.Weights, InputScale: p.InputScale, NoiseScale: p.NoiseScale}

	cfg.Samples = p.TrainSize
	train, err := synth.Linear(src, cfg)
	if err != nil {
		return nil, err
	}
	cfg.Samples = p.TestSize
	test, err := synth.Linear(src, cfg)
	if err != nil {
		return nil, err
	}

	d := descriptor.New(p.DatasetName, p.Model)
	d.SetExtra("w_true", descriptor.Column(p.Weights))
	err = writeSplits(ctx, ws, d,
		splitArray{descriptor.TrainInputs, train.X},
		splitArray{descriptor.TestInputs, test.X},
		splitArray{descriptor.TrainOutputs, train.Y},
		splitArray{descriptor.TestOutputs, test.Y},
	)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// LogitDataset is a train/test pair drawn from one multinomial-logit model.
type LogitDataset struct {
	DatasetName  string
	Model        string
	TrainSize    int
	TestSize     int
	ClassWeights [][]float64
	InputScale   float64
}

// ToyClassification is the four-class logistic regression set "toyClass".
func ToyClassification() *LogitDataset {
	return &LogitDataset{
		DatasetName: "toyClass",
		Model:       ModelLgstReg,
		TrainSize:   25,
		TestSize:    20,
		ClassWeights: [][]float64{
			{3.1415, 1.4142, 2.7182},
			{3.1415, -1.4142, 2.7182},
			{-3.1415, 1.4142, -2.7182},
		},
		InputScale: 1,
	}
}

// Name implements Preparer.
func (p *LogitDataset) Name() string { return p.DatasetName }

// ModelName implements Preparer.
func (p *LogitDataset) ModelName() string { return p.Model }

// Prepare draws the training sample, then the test sample, from one source.
func (p *LogitDataset) Prepare(ctx context.Context, ws *Workspace) (*descriptor.Descriptor, error) {
	src := ws.Rand()
	cfg := synth.LogitConfig{ClassWeights: p.ClassWeights, InputScale: p.InputScale}

	cfg.Samples = p.TrainSize
	train, err := synth.Logit(src, cfg)
	if err != nil {
		return nil, err
	}
	cfg.Samples = p.TestSize
	test, err := synth.Logit(src, cfg)
	if err != nil {
		return nil, err
	}

	d := descriptor.New(p.DatasetName, p.Model)
	d.SetExtra("w_true", weightColumns(p.ClassWeights))
	err = writeSplits(ctx, ws, d,
		splitArray{descriptor.TrainInputs, train.X},
		splitArray{descriptor.TestInputs, test.X},
		splitArray{descriptor.TrainOutputs, train.Y},
		splitArray{descriptor.TestOutputs, test.Y},
	)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// weightColumns lays class weight vectors out as the columns of a features x (classes-1)
// matrix.
func weightColumns(ws [][]float64) descriptor.Value {
	rows, cols := len(ws[0]), len(ws)
	data := make([]float64, rows*cols)
	for c, w := range ws {
		for r, v := range w {
			data[r*cols+c] = v
		}
	}
	return descriptor.Matrix(rows, cols, data)
}

// IDXDataset converts four IDX files (train/test images and labels) to raw uint8 splits.
type IDXDataset struct {
	DatasetName string
	Model       string
	TrainImages string
	TestImages  string
	TrainLabels string
	TestLabels  string
}

// MNIST is the handwritten digits set read from <source>/MNIST.
func MNIST() *IDXDataset {
	return &IDXDataset{
		DatasetName: "MNIST",
		Model:       ModelLgstReg,
		TrainImages: "train-images-idx3-ubyte",
		TestImages:  "t10k-images-idx3-ubyte",
		TrainLabels: "train-labels-idx1-ubyte",
		TestLabels:  "t10k-labels-idx1-ubyte",
	}
}

// Name implements Preparer.
func (p *IDXDataset) Name() string { return p.DatasetName }

// ModelName implements Preparer.
func (p *IDXDataset) ModelName() string { return p.Model }

// Prepare reads and writes one file at a time so at most one split is held in memory.
func (p *IDXDataset) Prepare(ctx context.Context, ws *Workspace) (*descriptor.Descriptor, error) {
	d := descriptor.New(p.DatasetName, p.Model)
	steps := []struct {
		split string
		file  string
		read  func(string) (*tensor.Uint8Array, error)
	}{
		{descriptor.TrainInputs, p.TrainImages, idx.ReadImagesFile},
		{descriptor.TestInputs, p.TestImages, idx.ReadImagesFile},
		{descriptor.TrainOutputs, p.TrainLabels, idx.ReadLabelsFile},
		{descriptor.TestOutputs, p.TestLabels, idx.ReadLabelsFile},
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := ws.SourcePath(step.file)
		ws.Logger().Debug("reading idx file", "path", path)
		a, err := step.read(path)
		if err != nil {
			return nil, err
		}
		if err := ws.WriteSplit(d, step.split, a); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// TableDataset splits one delimited table into halves for training and testing.
type TableDataset struct {
	DatasetName string
	Model       string
	File        string
	Rows        int
	Features    int
	Delimiter   rune
}

// Quantum is the KDD Cup 2004 particle physics set read from <source>/quantum.
func Quantum() *TableDataset {
	return &TableDataset{
		DatasetName: "quantum",
		Model:       ModelLgstReg,
		File:        "phy_train.dat",
		Rows:        50000,
		Features:    78,
		Delimiter:   '\t',
	}
}

// Name implements Preparer.
func (p *TableDataset) Name() string { return p.DatasetName }

// ModelName implements Preparer.
func (p *TableDataset) ModelName() string { return p.Model }

// Prepare reads the table and writes its four splits.
func (p *TableDataset) Prepare(ctx context.Context, ws *Workspace) (*descriptor.Descriptor, error) {
	path := ws.SourcePath(p.File)
	ws.Logger().Debug("reading table", "path", path, "rows", p.Rows, "features", p.Features)
	t, err := table.ReadFile(path, table.Options{Rows: p.Rows, Features: p.Features, Delimiter: p.Delimiter})
	if err != nil {
		return nil, err
	}

	d := descriptor.New(p.DatasetName, p.Model)
	err = writeSplits(ctx, ws, d,
		splitArray{descriptor.TrainInputs, t.TrainX},
		splitArray{descriptor.TestInputs, t.TestX},
		splitArray{descriptor.TrainOutputs, t.TrainY},
		splitArray{descriptor.TestOutputs, t.TestY},
	)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// NoisyOptDataset is a training-only linear sample whose risk is known in closed form,
// with isotropic inputs.
type NoisyOptDataset struct {
	DatasetName string
	Samples     int
	Subsample   int // nsub recorded for the optimizer
	Weights     []float64
	InputScale  float64
	NoiseScale  float64
	InitOffset  float64 // w_init = w_true + InitOffset
}

// NoisyOptIsoBig has 50 samples meant to be sub-sampled five at a time.
func NoisyOptIsoBig() *NoisyOptDataset {
	return &NoisyOptDataset{
		DatasetName: "NoisyOpt_isoBig",
		Samples:     50,
		Subsample:   5,
		Weights:     []float64{3.141592, 1.414214},
		InputScale:  1,
		NoiseScale:  3,
		InitOffset:  15,
	}
}

// NoisyOptIsoSmall has 15 samples used as a single batch.
func NoisyOptIsoSmall() *NoisyOptDataset {
	p := NoisyOptIsoBig()
	p.DatasetName = "NoisyOpt_isoSmall"
	p.Samples = 15
	p.Subsample = 15
	return p
}

// Name implements Preparer.
func (p *NoisyOptDataset) Name() string { return p.DatasetName }

// ModelName implements Preparer.
func (p *NoisyOptDataset) ModelName() string { return ModelNoisyOpt }

// Prepare draws the sample and records the risk parameters.
func (p *NoisyOptDataset) Prepare(ctx context.Context, ws *Workspace) (*descriptor.Descriptor, error) {
	reg, err := synth.Linear(ws.Rand(), synth.LinearConfig{
		Samples:    p.Samples,
		Weights:    p.Weights,
		InputScale: p.InputScale,
		NoiseScale: p.NoiseScale,
	})
	if err != nil {
		return nil, err
	}

	dim := len(p.Weights)
	cov := make([]float64, dim*dim)
	for i := range dim {
		cov[i*dim+i] = p.InputScale * p.InputScale
	}

	d := descriptor.New(p.DatasetName, ModelNoisyOpt)
	d.SetExtra("cov_X", descriptor.Matrix(dim, dim, cov))
	d.SetExtra("sigma_noise", descriptor.Float(p.NoiseScale))
	d.SetExtra("nsub", descriptor.Int(p.Subsample))
	d.SetExtra("w_true", descriptor.Column(p.Weights))
	d.SetExtra("w_init", descriptor.Column(offset(p.Weights, p.InitOffset)))

	err = writeSplits(ctx, ws, d,
		splitArray{descriptor.TrainInputs, reg.X},
		splitArray{descriptor.TrainOutputs, reg.Y},
	)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// SparseDataset is a training-only sample of a sparse linear model with equicorrelated,
// standardized inputs.
type SparseDataset struct {
	DatasetName string
	Config      synth.SparseConfig
	InitOffset  float64
}

// NoisyOptSmallSparse follows the simulation of Hastie, Tibshirani and Friedman (ESL2,
// figure 3.16): 100 samples, 31 inputs with pairwise correlation 0.85, 10 active.
func NoisyOptSmallSparse() *SparseDataset {
	noise := math.Sqrt(6.25)
	return &SparseDataset{
		DatasetName: "NoisyOpt_SmallSparse",
		Config: synth.SparseConfig{
			Samples:     100,
			Features:    31,
			Active:      10,
			Variance:    1,
			Correlation: 0.85,
			NoiseScale:  noise,
			WeightScale: math.Sqrt(0.4),
		},
		InitOffset: noise,
	}
}

// Name implements Preparer.
func (p *SparseDataset) Name() string { return p.DatasetName }

// ModelName implements Preparer.
func (p *SparseDataset) ModelName() string { return ModelNoisyOpt }

// Prepare draws the sample and records the risk parameters.
func (p *SparseDataset) Prepare(ctx context.Context, ws *Workspace) (*descriptor.Descriptor, error) {
	reg, err := synth.SparseCorrelated(ws.Rand(), p.Config)
	if err != nil {
		return nil, err
	}
	ws.Logger().Debug("sparse model drawn", "active", fmt.Sprint(reg.Active))

	d := descriptor.New(p.DatasetName, ModelNoisyOpt)
	d.SetExtra("cov_X", descriptor.FromArray(reg.Covariance))
	d.SetExtra("sigma_noise", descriptor.Float(p.Config.NoiseScale))
	d.SetExtra("nsub", descriptor.Int(p.Config.Samples))
	d.SetExtra("w_true", descriptor.Column(reg.Weights))
	d.SetExtra("w_init", descriptor.Column(offset(reg.Weights, p.InitOffset)))

	err = writeSplits(ctx, ws, d,
		splitArray{descriptor.TrainInputs, reg.X},
		splitArray{descriptor.TrainOutputs, reg.Y},
	)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func offset(w []float64, delta float64) []float64 {
	out := make([]float64, len(w))
	for i, v := range w {
		out[i] = v + delta
	}
	return out
}

package prep

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/dataprep/internal/cache"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(ToyRegression()))
	require.NoError(t, r.Register(MNIST()))

	err := r.Register(ToyRegression())
	require.ErrorIs(t, err, ErrDuplicateDataset)

	err = r.Register(funcPreparer{name: "../x"})
	require.ErrorIs(t, err, cache.ErrInvalidName)

	p, err := r.Lookup("toyReg")
	require.NoError(t, err)
	assert.Equal(t, ModelLinReg, p.ModelName())

	_, err = r.Lookup("toyreg")
	require.ErrorIs(t, err, ErrUnknownDataset)

	assert.Equal(t, []string{"MNIST", "toyReg"}, r.Names())
}

func TestMustRegisterPanics(t *testing.T) {
	r := NewRegistry()
	assert.Panics(t, func() { r.MustRegister(MNIST(), MNIST()) })
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, []string{
		"MNIST",
		"NoisyOpt_SmallSparse",
		"NoisyOpt_isoBig",
		"NoisyOpt_isoSmall",
		"quantum",
		"toyClass",
		"toyReg",
	}, r.Names())

	models := map[string]string{
		"MNIST":                ModelLgstReg,
		"NoisyOpt_SmallSparse": ModelNoisyOpt,
		"NoisyOpt_isoBig":      ModelNoisyOpt,
		"NoisyOpt_isoSmall":    ModelNoisyOpt,
		"quantum":              ModelLgstReg,
		"toyClass":             ModelLgstReg,
		"toyReg":               ModelLinReg,
	}
	for name, model := range models {
		p, err := r.Lookup(name)
		require.NoError(t, err)
		assert.Equal(t, model, p.ModelName(), name)
	}
}

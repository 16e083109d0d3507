package descriptor

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/dataprep/internal/tensor"
)

func sampleDescriptor() *Descriptor {
	d := New("NoisyOpt_isoSmall", "NoisyOpt")
	d.RunID = "3f1c2a9e-0000-4000-8000-000000000000"
	d.PreparedAt = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	d.Seed = 42
	d.TrainInputs = &Split{Path: "X_tr.dat", Shape: tensor.Shape{15, 2}, DType: tensor.Float64, Checksum: "abc"}
	d.TrainOutputs = &Split{Path: "y_tr.dat", Shape: tensor.Shape{15, 1}, DType: tensor.Float64}
	d.SetExtra("sigma_noise", Float(3))
	d.SetExtra("nsub", Int(15))
	d.SetExtra("w_true", Column([]float64{3.141592, 1.414214}))
	d.SetExtra("cov_X", Matrix(2, 2, []float64{1, 0, 0, 1}))
	return d
}

func TestJSONRoundTrip(t *testing.T) {
	d := sampleDescriptor()

	data, err := Marshal(d)
	require.NoError(t, err)

	got, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, d, got)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, d))
	got, err = Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, d, got)
}

func TestJSONNullSplits(t *testing.T) {
	data, err := Marshal(sampleDescriptor())
	require.NoError(t, err)

	s := string(data)
	assert.Contains(t, s, `"test_inputs": null`)
	assert.Contains(t, s, `"test_outputs": null`)
	assert.Contains(t, s, `"dtype": "float64"`)
}

func TestDecodeVersion(t *testing.T) {
	_, err := Unmarshal([]byte(`{"format_version": 7, "dataset": "x", "model_name": "y"}`))
	require.ErrorIs(t, err, ErrUnsupportedVersion)

	_, err = Decode(strings.NewReader("{"))
	require.Error(t, err)
}

func TestDecodeRejectsInvalid(t *testing.T) {
	doc := `{"format_version": 1, "dataset": "x", "model_name": "y",
		"train_inputs": {"path": "../X_tr.dat", "shape": [2, 2], "dtype": "float64"}}`
	_, err := Unmarshal([]byte(doc))
	require.ErrorIs(t, err, ErrInvalidDescriptor)

	doc = `{"format_version": 1, "dataset": "x", "model_name": "y",
		"train_inputs": {"path": "X_tr.dat", "shape": [2, 2], "dtype": "complex128"}}`
	_, err = Unmarshal([]byte(doc))
	require.Error(t, err)
}

func TestSplits(t *testing.T) {
	d := sampleDescriptor()
	splits := d.Splits()
	require.Len(t, splits, 2)
	assert.Equal(t, TrainInputs, splits[0].Name)
	assert.Equal(t, TrainOutputs, splits[1].Name)
	assert.False(t, d.HasTestSplit())
	assert.Equal(t, int64(15*2*8+15*8), d.TotalBytes())

	require.NoError(t, d.SetSplit(TestOutputs, &Split{Path: "y_te.dat", Shape: tensor.Shape{3, 1}, DType: tensor.Uint8}))
	assert.True(t, d.HasTestSplit())
	assert.Len(t, d.Splits(), 3)
	require.Error(t, d.SetSplit("validation", nil))
}

func TestExtraAccessors(t *testing.T) {
	d := sampleDescriptor()

	f, err := d.ExtraFloat("sigma_noise")
	require.NoError(t, err)
	assert.Equal(t, 3.0, f)

	f, err = d.ExtraFloat("nsub")
	require.NoError(t, err)
	assert.Equal(t, 15.0, f)

	n, err := d.ExtraInt("nsub")
	require.NoError(t, err)
	assert.Equal(t, 15, n)

	_, err = d.ExtraInt("sigma_noise")
	require.Error(t, err)

	w, err := d.ExtraArray("w_true")
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 1}, w.Shape())
	assert.Equal(t, []float64{3.141592, 1.414214}, w.Data())

	_, err = d.ExtraFloat("w_init")
	require.ErrorIs(t, err, ErrMissingExtra)
	_, err = d.ExtraArray("sigma_noise")
	require.Error(t, err)

	assert.Equal(t, []string{"cov_X", "nsub", "sigma_noise", "w_true"}, d.ExtraKeys())
}

func TestValueConstructors(t *testing.T) {
	data := []float64{1, 2, 3}
	v := Vector(data)
	data[0] = 99
	assert.Equal(t, tensor.Shape{3}, v.Shape)
	assert.Equal(t, []float64{1, 2, 3}, v.Data, "constructor must copy")

	a := tensor.MustZeros[float64](tensor.Shape{2, 3})
	a.Set(1, 2, 5)
	fa := FromArray(a)
	assert.Equal(t, KindTensor, fa.Kind)
	assert.Equal(t, 5.0, fa.Data[5])

	assert.Equal(t, "3", Int(3).String())
	assert.Equal(t, "0.5", Float(0.5).String())
	assert.Contains(t, Vector(make([]float64, 20)).String(), "...")

	_, ok := Float(1).AsArray()
	assert.False(t, ok)
	_, ok = Float(1).AsInt()
	assert.False(t, ok)
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"plain", "X_tr.dat", false},
		{"empty", "", true},
		{"traversal", "..", true},
		{"absolute", "/etc/passwd", true},
		{"separator", "sub/X_tr.dat", true},
		{"backslash", `sub\X_tr.dat`, true},
		{"null byte", "X\x00.dat", true},
		{"too long", strings.Repeat("x", MaxPathLen+1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.path)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidDescriptor)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Descriptor)
		wantType string
	}{
		{"valid", func(*Descriptor) {}, ""},
		{"no dataset", func(d *Descriptor) { d.Dataset = "" }, "missing_field"},
		{"no model", func(d *Descriptor) { d.ModelName = "" }, "missing_field"},
		{"duplicate path", func(d *Descriptor) { d.TrainOutputs.Path = "X_tr.dat" }, "duplicate_path"},
		{"bad shape", func(d *Descriptor) { d.TrainInputs.Shape = tensor.Shape{15, 0} }, "invalid_shape"},
		{"bad dtype", func(d *Descriptor) { d.TrainInputs.DType = tensor.DataType(42) }, "invalid_dtype"},
		{"absolute path", func(d *Descriptor) { d.TrainInputs.Path = "/tmp/X_tr.dat" }, "invalid_path"},
		{"bad extra", func(d *Descriptor) {
			d.SetExtra("w_true", Value{Kind: KindTensor, Shape: tensor.Shape{3, 1}, Data: []float64{1}})
		}, "invalid_extra"},
		{"unknown kind", func(d *Descriptor) { d.SetExtra("x", Value{Kind: "string"}) }, "invalid_extra"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := sampleDescriptor()
			tt.mutate(d)
			err := d.Validate("")
			if tt.wantType == "" {
				require.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.wantType, ve.Type)
		})
	}
}

func TestValidateFiles(t *testing.T) {
	dir := t.TempDir()
	d := sampleDescriptor()

	var ve *ValidationError
	err := d.Validate(dir)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "missing_payload", ve.Type)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "X_tr.dat"), make([]byte, 15*2*8), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "y_tr.dat"), make([]byte, 15*8-1), 0o600))
	err = d.Validate(dir)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "size_mismatch", ve.Type)
	assert.Equal(t, TrainOutputs, ve.Field)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "y_tr.dat"), make([]byte, 15*8), 0o600))
	require.NoError(t, d.Validate(dir))
}

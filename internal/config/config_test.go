package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dataprep.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "learnml", "data"), cfg.SourceDir)
	assert.Equal(t, "data", cfg.OutputDir)
	assert.Equal(t, filepath.Join("data", ".catalog"), cfg.Cache.BadgerDir)
	assert.Equal(t, "file", cfg.Cache.Backend)
	assert.Equal(t, 1, cfg.Parallelism)
	assert.Zero(t, cfg.Seed)
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "data", cfg.OutputDir)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
source_dir: /srv/raw
output_dir: /srv/prepared
seed: 42
parallelism: 4
cache:
  backend: badger
log:
  level: debug
  json: true
metrics_file: /srv/prepared/metrics.prom
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/raw", cfg.SourceDir)
	assert.Equal(t, "/srv/prepared", cfg.OutputDir)
	assert.Equal(t, uint64(42), cfg.Seed)
	assert.Equal(t, 4, cfg.Parallelism)
	assert.Equal(t, "badger", cfg.Cache.Backend)
	assert.Equal(t, "/srv/prepared/.catalog", cfg.Cache.BadgerDir)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.JSON)
	assert.Equal(t, "/srv/prepared/metrics.prom", cfg.MetricsFile)
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default().OutputDir, cfg.OutputDir)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DATAPREP_OUTPUT_DIR", "/tmp/out")
	t.Setenv("DATAPREP_SEED", "7")
	t.Setenv("DATAPREP_LOG_LEVEL", "WARN")

	cfg, err := Load(writeConfig(t, "output_dir: ignored\n"))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/out", cfg.OutputDir)
	assert.Equal(t, uint64(7), cfg.Seed)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown field", "sauce_dir: /x\n"},
		{"bad backend", "cache:\n  backend: redis\n"},
		{"bad level", "log:\n  level: chatty\n"},
		{"zero parallelism", "parallelism: 0\n"},
		{"empty output", "output_dir: \"\"\n"},
		{"malformed", "source_dir: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
		})
	}
}

func TestMarshal(t *testing.T) {
	cfg := Default()
	data, err := cfg.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), "output_dir: data")
	assert.Contains(t, string(data), "backend: file")
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, home, expandHome("~"))
	assert.Equal(t, filepath.Join(home, "x"), expandHome("~/x"))
	assert.Equal(t, "~user/x", expandHome("~user/x"))
	assert.Equal(t, "rel", expandHome("rel"))
}

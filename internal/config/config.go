// Package config loads dataprep settings from YAML with environment overrides.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable holding the config file path.
const EnvConfigPath = "DATAPREP_CONFIG"

// Config is the complete dataprep configuration.
type Config struct {
	// SourceDir holds raw inputs (IDX files, delimited tables).
	SourceDir string `yaml:"source_dir" validate:"required"`

	// OutputDir holds one subdirectory per prepared dataset.
	OutputDir string `yaml:"output_dir" validate:"required"`

	// Seed drives synthetic generation. Zero derives a seed from the clock.
	Seed uint64 `yaml:"seed"`

	// Parallelism bounds how many datasets are prepared at once.
	Parallelism int `yaml:"parallelism" validate:"gte=1,lte=64"`

	Cache CacheConfig `yaml:"cache"`
	Log   LogConfig   `yaml:"log"`

	// MetricsFile, if set, receives a Prometheus text exposition after each run.
	MetricsFile string `yaml:"metrics_file"`
}

// CacheConfig selects the descriptor cache backend.
type CacheConfig struct {
	Backend   string `yaml:"backend" validate:"oneof=file badger"`
	BadgerDir string `yaml:"badger_dir"`
}

// LogConfig controls the logger.
type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn warning error"`
	JSON  bool   `yaml:"json"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		SourceDir:   "~/learnml/data",
		OutputDir:   "data",
		Parallelism: 1,
		Cache: CacheConfig{
			Backend: "file",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads path over the defaults, applies environment overrides, expands ~ and
// validates. An empty path or a missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(expandHome(path), &cfg); err != nil {
			return cfg, err
		}
	}

	loadFromEnv(&cfg)
	cfg.resolve()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	f, err := os.Open(path) //nolint:gosec // G304: user-supplied config path
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

func loadFromEnv(cfg *Config) {
	if v := os.Getenv("DATAPREP_SOURCE_DIR"); v != "" {
		cfg.SourceDir = v
	}
	if v := os.Getenv("DATAPREP_OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv("DATAPREP_SEED"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.Seed = n
		}
	}
	if v := os.Getenv("DATAPREP_LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
}

func (c *Config) resolve() {
	c.SourceDir = expandHome(c.SourceDir)
	c.OutputDir = expandHome(c.OutputDir)
	c.MetricsFile = expandHome(c.MetricsFile)
	if c.Cache.BadgerDir == "" {
		c.Cache.BadgerDir = filepath.Join(c.OutputDir, ".catalog")
	}
	c.Cache.BadgerDir = expandHome(c.Cache.BadgerDir)
}

// Validate checks struct constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

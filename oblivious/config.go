package oblivious

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/symforest/pkg/errors"
	"github.com/YuminosukeSato/symforest/pkg/log"
)

// Environment variables overriding file settings.
const (
	EnvBlockSize   = "SYMFOREST_BLOCK_SIZE"
	EnvWorkers     = "SYMFOREST_WORKERS"
	EnvLogLevel    = "SYMFOREST_LOG_LEVEL"
	EnvCacheBudget = "SYMFOREST_CACHE_BUDGET_BYTES"
)

// Config is the file form of the evaluator options.
type Config struct {
	BlockSize        int    `yaml:"blockSize"`
	Workers          int    `yaml:"workers"`
	LogLevel         string `yaml:"logLevel"`
	CacheBudgetBytes int64  `yaml:"cacheBudgetBytes"`
}

// DefaultConfig returns the settings NewEvaluator uses without options.
func DefaultConfig() Config {
	return Config{
		BlockSize: DefaultBlockSize,
		Workers:   1,
		LogLevel:  "info",
	}
}

// LoadConfig reads a YAML config from path, applies SYMFOREST_* environment
// overrides and validates the result. An empty path yields the defaults plus
// overrides. Fields missing from the file keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrapf(err, "failed to read config file %s", path)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, errors.Wrap(err, "failed to parse config file")
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvBlockSize); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrapf(err, "invalid %s", EnvBlockSize)
		}
		c.BlockSize = n
	}
	if v := os.Getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrapf(err, "invalid %s", EnvWorkers)
		}
		c.Workers = n
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvCacheBudget); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return errors.Wrapf(err, "invalid %s", EnvCacheBudget)
		}
		c.CacheBudgetBytes = n
	}
	return nil
}

// Validate checks the value ranges.
func (c Config) Validate() error {
	if c.BlockSize < 1 {
		return errors.NewValidationError("blockSize", "must be at least 1", c.BlockSize)
	}
	if c.Workers < -1 {
		return errors.NewValidationError("workers", "must not be below -1", c.Workers)
	}
	if c.CacheBudgetBytes < 0 {
		return errors.NewValidationError("cacheBudgetBytes", "must not be negative", c.CacheBudgetBytes)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return errors.NewValidationError("logLevel", err.Error(), c.LogLevel)
	}
	return nil
}

// Options converts the config into evaluator options. The logger writes JSON
// records to stderr at LogLevel.
func (c Config) Options() []Option {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		level = log.LevelInfo
	}
	return []Option{
		WithBlockSize(c.BlockSize),
		WithWorkers(c.Workers),
		WithCacheBudget(c.CacheBudgetBytes),
		WithLogger(log.NewZerologLogger(os.Stderr, level)),
	}
}

package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the settings of the analyze command. Every key can be set in a
// YAML file, through ANALYZE_* environment variables (ANALYZE_FOREST_NTREES)
// or by command-line flags bound onto the same viper instance.
type Config struct {
	Log        LogConfig        `mapstructure:"log"`
	Seed       int64            `mapstructure:"seed"`
	Output     string           `mapstructure:"output"`
	Impute     string           `mapstructure:"impute"`
	Clustering ClusteringConfig `mapstructure:"clustering"`
	Forest     ForestConfig     `mapstructure:"forest"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type ClusteringConfig struct {
	Method        string  `mapstructure:"method"`
	NClusters     int     `mapstructure:"nclusters"`
	MaxIterations int     `mapstructure:"maxiterations"`
	Tolerance     float64 `mapstructure:"tolerance"`
	Eps           float64 `mapstructure:"eps"`
	MinPts        int     `mapstructure:"minpts"`
	Standardize   bool    `mapstructure:"standardize"`
}

type ForestConfig struct {
	NTrees    int     `mapstructure:"ntrees"`
	MaxDepth  int     `mapstructure:"maxdepth"`
	Task      string  `mapstructure:"task"`
	Workers   int     `mapstructure:"workers"`
	TestRatio float64 `mapstructure:"testratio"`
	Folds     int     `mapstructure:"folds"`
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("seed", 0)
	v.SetDefault("output", "json")
	v.SetDefault("impute", "none")

	v.SetDefault("clustering.method", "kmeans")
	v.SetDefault("clustering.nclusters", 3)
	v.SetDefault("clustering.maxiterations", 100)
	v.SetDefault("clustering.tolerance", 0.001)
	v.SetDefault("clustering.eps", 0.5)
	v.SetDefault("clustering.minpts", 3)
	v.SetDefault("clustering.standardize", false)

	v.SetDefault("forest.ntrees", 100)
	v.SetDefault("forest.maxdepth", 10)
	v.SetDefault("forest.task", "classification")
	v.SetDefault("forest.workers", 0)
	v.SetDefault("forest.testratio", 0.0)
	v.SetDefault("forest.folds", 0)
}

// New returns a viper instance with defaults and environment binding set up.
// If path is not empty the file is read as configuration.
func New(path string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix("ANALYZE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
	}
	return v, nil
}

// Decode unmarshals v into a Config and validates it.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load is New followed by Decode.
func Load(path string) (*Config, error) {
	v, err := New(path)
	if err != nil {
		return nil, err
	}
	return Decode(v)
}

// Validate checks the values that do not depend on a dataset.
func (c *Config) Validate() error {
	switch c.Output {
	case "json", "yaml":
	default:
		return fmt.Errorf("config: output must be json or yaml, got %q", c.Output)
	}
	if c.Forest.TestRatio < 0 || c.Forest.TestRatio >= 1 {
		return fmt.Errorf("config: forest.testratio must be in [0, 1), got %v", c.Forest.TestRatio)
	}
	if c.Forest.Folds < 0 || c.Forest.Folds == 1 {
		return fmt.Errorf("config: forest.folds must be 0 or at least 2, got %d", c.Forest.Folds)
	}
	return nil
}

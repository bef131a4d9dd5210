package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/tdarei/starisdons-sub013/pkg/config"
	"github.com/tdarei/starisdons-sub013/pkg/data"
	"github.com/tdarei/starisdons-sub013/pkg/dataprep"
	"github.com/tdarei/starisdons-sub013/pkg/dataset"
	"github.com/tdarei/starisdons-sub013/pkg/logging"
)

// app is the state shared by every subcommand of one invocation.
type app struct {
	out     io.Writer
	cfgFile string

	v        *viper.Viper
	cfg      *config.Config
	logger   *zap.Logger
	registry *dataset.Registry
}

// flagKeys maps command-line flags onto configuration keys.
var flagKeys = map[string]string{
	"log-level":   "log.level",
	"seed":        "seed",
	"output":      "output",
	"impute":      "impute",
	"method":      "clustering.method",
	"clusters":    "clustering.nclusters",
	"max-iter":    "clustering.maxiterations",
	"tolerance":   "clustering.tolerance",
	"eps":         "clustering.eps",
	"min-pts":     "clustering.minpts",
	"standardize": "clustering.standardize",
	"trees":       "forest.ntrees",
	"depth":       "forest.maxdepth",
	"task":        "forest.task",
	"workers":     "forest.workers",
	"test-ratio":  "forest.testratio",
	"folds":       "forest.folds",
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}

	rootCmd := &cobra.Command{
		Use:   "analyze",
		Short: "Cluster tabular data and grow random forests over it",
		Long: `analyze loads a CSV, JSON or YAML dataset and runs one analysis on it:

  describe   infer the schema and summarize every field
  cluster    k-means, hierarchical or DBSCAN clustering over numeric fields
  forest     grow a random forest, score it and optionally predict a record

Settings come from flags, ANALYZE_* environment variables and an optional
YAML config file, in that order of precedence.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "Path to a YAML configuration file")
	pf.String("log-level", "info", "Log level (debug, info, warn, error)")
	pf.Int64("seed", 0, "Random seed; 0 seeds from the clock")
	pf.StringP("output", "o", "json", "Output format (json, yaml)")

	rootCmd.AddCommand(newDescribeCmd(a), newClusterCmd(a), newForestCmd(a))
	return rootCmd
}

// setup loads configuration, binding whichever mapped flags the running
// command defines, and builds the logger and dataset registry.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	v, err := config.New(a.cfgFile)
	if err != nil {
		return err
	}
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}
	cfg, err := config.Decode(v)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log.Level)
	if err != nil {
		return err
	}

	a.v, a.cfg, a.logger = v, cfg, logger
	a.registry = dataset.NewRegistry(dataset.WithLogger(logger))
	return nil
}

// seed returns the configured seed, or a clock-derived one when it is 0.
func (a *app) seed() int64 {
	if a.cfg.Seed != 0 {
		return a.cfg.Seed
	}
	return time.Now().UnixNano()
}

func (a *app) rng(seed int64) *rand.Rand { return rand.New(rand.NewSource(seed)) }

// load reads path and registers its records under the file's base name.
func (a *app) load(path string) (*dataset.Dataset, error) {
	records, err := data.LoadFile(path, a.logger)
	if err != nil {
		return nil, err
	}
	id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	ds := a.registry.AddDataset(id, records)
	a.logger.Info("dataset loaded", zap.String("path", path), zap.String("dataset", id), zap.Int("records", ds.Len()))
	return ds, nil
}

// impute fills missing values of fields with the configured strategy and
// re-registers the result under the same id.
func (a *app) impute(ds *dataset.Dataset, fields []string) (*dataset.Dataset, error) {
	strategy, err := dataprep.ParseStrategy(a.cfg.Impute)
	if err != nil {
		return nil, err
	}
	if strategy == dataprep.StrategyNone {
		return ds, nil
	}
	a.logger.Debug("imputing missing values", zap.String("strategy", string(strategy)), zap.Strings("fields", fields))
	return a.registry.AddDataset(ds.ID, dataprep.Impute(ds.Records, fields, strategy)), nil
}

// print writes v in the configured output format.
func (a *app) print(v any) error {
	if a.cfg.Output == "yaml" {
		enc := yaml.NewEncoder(a.out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	}
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

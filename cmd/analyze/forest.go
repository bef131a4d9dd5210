package main

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tdarei/starisdons-sub013/pkg/dataset"
	"github.com/tdarei/starisdons-sub013/pkg/loader"
	"github.com/tdarei/starisdons-sub013/pkg/model"
)

type forestReport struct {
	ForestID   string        `json:"forestId" yaml:"forestId"`
	DatasetID  string        `json:"datasetId" yaml:"datasetId"`
	Target     string        `json:"target" yaml:"target"`
	Task       model.Task    `json:"task" yaml:"task"`
	NTrees     int           `json:"nTrees" yaml:"nTrees"`
	MaxDepth   int           `json:"maxDepth" yaml:"maxDepth"`
	Features   []string      `json:"features" yaml:"features"`
	Train      int           `json:"train" yaml:"train"`
	Test       int           `json:"test" yaml:"test"`
	Score      model.Score   `json:"score" yaml:"score"`
	Folds      []model.Score `json:"folds,omitempty" yaml:"folds,omitempty"`
	Prediction any           `json:"prediction,omitempty" yaml:"prediction,omitempty"`
}

func newForestCmd(a *app) *cobra.Command {
	var (
		file     string
		target   string
		features []string
		predict  []string
	)
	cmd := &cobra.Command{
		Use:   "forest",
		Short: "Grow a random forest over a dataset and score it",
		Long: `forest grows a random forest predicting --target from --features (default:
every other field). With --test-ratio the records are split first and the
forest is scored on the held-out part; otherwise it is scored on the
training records. --folds runs k-fold cross-validation in addition.`,
		Example: `  analyze forest -f iris.csv --target species --trees 50
  analyze forest -f houses.json --target price --task regression --predict rooms=3 --predict area=80`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			input, err := parseRecord(predict)
			if err != nil {
				return err
			}
			task, err := model.ParseTask(a.cfg.Forest.Task)
			if err != nil {
				return err
			}
			ds, err := a.load(file)
			if err != nil {
				return err
			}

			fields := features
			if len(fields) == 0 {
				fields = dataset.InferSchema(ds.Records).Features(target)
			}
			if ds, err = a.impute(ds, fields); err != nil {
				return err
			}

			fc := a.cfg.Forest
			seed := a.seed()
			engine := model.NewForestEngine(a.registry,
				model.WithSeed(seed),
				model.WithLogger(a.logger),
				model.WithWorkers(fc.Workers),
			)
			build := []model.BuildOption{model.WithNTrees(fc.NTrees), model.WithMaxDepth(fc.MaxDepth)}
			rng := a.rng(seed)

			var folds []model.Score
			if fc.Folds > 0 {
				folds, err = crossValidate(a.registry, engine, ds, fc.Folds, target, features, task, build, rng)
				if err != nil {
					return err
				}
			}

			trainID, testID := ds.ID, ds.ID
			train, test := ds.Records, ds.Records
			if fc.TestRatio > 0 {
				train, test = loader.TrainTestSplit(ds.Records, fc.TestRatio, rng)
				trainID, testID = ds.ID+"/train", ds.ID+"/test"
				a.registry.AddDataset(trainID, train)
				a.registry.AddDataset(testID, test)
				if len(test) == 0 {
					testID, test = trainID, train
				}
			}

			f, err := engine.BuildForest(trainID, target, features, task, build...)
			if err != nil {
				return err
			}
			score, err := engine.Evaluate(f.ID, testID)
			if err != nil {
				return err
			}
			a.logger.Info("forest scored",
				zap.String("forest", f.ID),
				zap.Int("test", len(test)),
				zap.Float64("accuracy", score.Accuracy),
				zap.Float64("rmse", score.RMSE),
			)

			report := forestReport{
				ForestID:  f.ID,
				DatasetID: ds.ID,
				Target:    f.TargetVariable,
				Task:      f.Task,
				NTrees:    f.NTrees,
				MaxDepth:  f.MaxDepth,
				Features:  f.Features,
				Train:     len(train),
				Test:      len(test),
				Score:     score,
				Folds:     folds,
			}
			if input != nil {
				if report.Prediction, err = engine.Predict(f.ID, input); err != nil {
					return err
				}
			}
			return a.print(report)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&file, "file", "f", "", "Dataset file (.csv, .json, .yaml)")
	fl.StringVar(&target, "target", "", "Target variable")
	fl.StringSliceVar(&features, "features", nil, "Feature variables (default: every field but the target)")
	fl.StringArrayVar(&predict, "predict", nil, "Predict a record given as field=value; repeatable")
	fl.String("task", "classification", "Forest task (classification, regression)")
	fl.Int("trees", 100, "Number of trees")
	fl.Int("depth", 10, "Maximum tree depth")
	fl.Int("workers", 0, "Trees grown concurrently (default GOMAXPROCS)")
	fl.Float64("test-ratio", 0, "Fraction of records held out for scoring")
	fl.String("impute", "none", "Fill missing feature values first (none, mean, median, mode)")
	fl.Int("folds", 0, "Run k-fold cross-validation with this many folds")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}

// crossValidate builds one forest per fold, trained on the other folds, and
// scores it on the fold itself.
func crossValidate(reg *dataset.Registry, engine *model.ForestEngine, ds *dataset.Dataset, k int,
	target string, features []string, task model.Task, build []model.BuildOption, rng *rand.Rand,
) ([]model.Score, error) {
	n := ds.Len()
	if k > n {
		return nil, fmt.Errorf("%d folds requested for %d records", k, n)
	}
	folds := loader.KFoldSplit(n, k, rng)
	scores := make([]model.Score, 0, k)
	for i, fold := range folds {
		inFold := make(map[int]bool, len(fold))
		for _, idx := range fold {
			inFold[idx] = true
		}
		var train, test []dataset.Record
		for idx, rec := range ds.Records {
			if inFold[idx] {
				test = append(test, rec)
			} else {
				train = append(train, rec)
			}
		}
		trainID := fmt.Sprintf("%s/fold-%d/train", ds.ID, i)
		testID := fmt.Sprintf("%s/fold-%d/test", ds.ID, i)
		reg.AddDataset(trainID, train)
		reg.AddDataset(testID, test)

		f, err := engine.BuildForest(trainID, target, features, task, build...)
		if err != nil {
			return nil, fmt.Errorf("fold %d: %w", i, err)
		}
		score, err := engine.Evaluate(f.ID, testID)
		if err != nil {
			return nil, fmt.Errorf("fold %d: %w", i, err)
		}
		scores = append(scores, score)
	}
	return scores, nil
}

// parseRecord turns field=value pairs into a record. Values that parse as
// floats become numbers; "true" and "false" become booleans.
func parseRecord(pairs []string) (dataset.Record, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	rec := make(dataset.Record, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --predict value %q, want field=value", p)
		}
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			rec[k] = f
		} else if b, err := strconv.ParseBool(v); err == nil && (v == "true" || v == "false") {
			rec[k] = b
		} else {
			rec[k] = v
		}
	}
	return rec, nil
}

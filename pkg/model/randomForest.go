package model

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/tdarei/starisdons-sub013/pkg/dataset"
)

// Task declares how a forest aggregates the predictions of its trees.
type Task int

const (
	// TaskClassification returns the most frequent tree prediction.
	TaskClassification Task = iota + 1
	// TaskRegression returns the mean of the tree predictions.
	TaskRegression
)

func (t Task) String() string {
	switch t {
	case TaskClassification:
		return "classification"
	case TaskRegression:
		return "regression"
	}
	return fmt.Sprintf("Task(%d)", int(t))
}

// MarshalText implements encoding.TextMarshaler.
func (t Task) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// ParseTask accepts "classification" or "regression", case-insensitively.
func ParseTask(s string) (Task, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "classification":
		return TaskClassification, nil
	case "regression":
		return TaskRegression, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidTask, s)
}

// Defaults for BuildForest.
const (
	DefaultNTrees   = 100
	DefaultMaxDepth = 10
)

// Forest is an ensemble of decision trees built by one BuildForest call. It is
// never mutated after it is returned.
type Forest struct {
	ID             string          `json:"id" yaml:"id"`
	DatasetID      string          `json:"datasetId" yaml:"datasetId"`
	Trees          []*DecisionTree `json:"trees" yaml:"trees"`
	NTrees         int             `json:"nTrees" yaml:"nTrees"`
	TargetVariable string          `json:"targetVariable" yaml:"targetVariable"`
	Features       []string        `json:"features" yaml:"features"`
	MaxDepth       int             `json:"maxDepth" yaml:"maxDepth"`
	Task           Task            `json:"task" yaml:"task"`
	CreatedAt      time.Time       `json:"createdAt" yaml:"createdAt"`
}

// Predict aggregates the tree predictions for input according to f.Task.
func (f *Forest) Predict(input dataset.Record) any {
	preds := make([]any, len(f.Trees))
	for i, t := range f.Trees {
		preds[i] = t.Predict(input)
	}
	if f.Task == TaskRegression {
		vals := make([]float64, 0, len(preds))
		for _, p := range preds {
			if v, ok := p.(float64); ok {
				vals = append(vals, v)
			}
		}
		if len(vals) == 0 {
			return math.NaN()
		}
		return stat.Mean(vals, nil)
	}
	return majorityValue(preds)
}

// clone deep copies f, trees included.
func (f *Forest) clone() *Forest {
	cp := *f
	cp.Features = append([]string(nil), f.Features...)
	cp.Trees = make([]*DecisionTree, len(f.Trees))
	for i, t := range f.Trees {
		cp.Trees[i] = t.clone()
	}
	return &cp
}

// BuildOption configures a single BuildForest call.
type BuildOption func(*buildParams)

type buildParams struct {
	nTrees   int
	maxDepth int
}

// WithNTrees sets the number of trees (default 100).
func WithNTrees(n int) BuildOption { return func(p *buildParams) { p.nTrees = n } }

// WithMaxDepth sets the maximum tree depth (default 10). Depth 0 yields
// single-leaf trees.
func WithMaxDepth(d int) BuildOption { return func(p *buildParams) { p.maxDepth = d } }

// ForestEngine builds random forests over datasets held in a Registry and
// keeps every forest, keyed by a generated id, for the lifetime of the engine.
type ForestEngine struct {
	datasets *dataset.Registry
	cfg      engineConfig

	mu      sync.RWMutex // guards forests and cfg.rnd
	forests map[string]*Forest
}

// NewForestEngine returns an engine reading datasets from reg.
func NewForestEngine(reg *dataset.Registry, opts ...Option) *ForestEngine {
	return &ForestEngine{
		datasets: reg,
		cfg:      newEngineConfig(opts...),
		forests:  make(map[string]*Forest),
	}
}

// treeJob is the random part of one tree, drawn up front so that the result
// does not depend on how trees are scheduled across workers.
type treeJob struct {
	index    int
	rows     []int
	features []string
}

// BuildForest grows nTrees CART trees, each over a bootstrap resample of the
// dataset rows and a random subset of ceil(sqrt(len(features))) features.
// An empty features list means every field of the dataset except target.
func (e *ForestEngine) BuildForest(datasetID, target string, features []string, task Task, opts ...BuildOption) (*Forest, error) {
	params := buildParams{nTrees: DefaultNTrees, maxDepth: DefaultMaxDepth}
	for _, o := range opts {
		o(&params)
	}

	ds, err := e.datasets.Lookup(datasetID)
	if err != nil {
		return nil, err
	}
	if target == "" {
		return nil, ErrEmptyTarget
	}
	if task != TaskClassification && task != TaskRegression {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTask, task)
	}
	if params.nTrees <= 0 {
		return nil, ErrInvalidTreeCount
	}
	if params.maxDepth < 0 {
		return nil, ErrInvalidDepth
	}
	if ds.Len() == 0 {
		return nil, fmt.Errorf("%w: %q", ErrEmptyDataset, datasetID)
	}
	if len(features) == 0 {
		features = dataset.InferSchema(ds.Records).Features(target)
	}
	if len(features) == 0 {
		return nil, ErrNoFeatures
	}

	targets := ds.Column(target)
	if task == TaskRegression {
		for i, v := range targets {
			if _, ok := v.(float64); !ok {
				return nil, fmt.Errorf("%w: record %d has %v", ErrNonNumericTarget, i, v)
			}
		}
	}

	jobs := e.drawJobs(ds.Len(), features, params.nTrees)
	log := e.cfg.logger.With(zap.String("dataset", datasetID), zap.String("target", target))
	log.Debug("growing forest",
		zap.Int("trees", params.nTrees),
		zap.Int("maxDepth", params.maxDepth),
		zap.Int("subset", len(jobs[0].features)),
		zap.Int("workers", e.cfg.workers),
	)

	trees := make([]*DecisionTree, params.nTrees)
	jobCh := make(chan treeJob)
	var wg sync.WaitGroup
	for w := 0; w < min(e.cfg.workers, params.nTrees); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobCh {
				b := &treeBuilder{
					records:  ds.Records,
					targets:  targets,
					features: job.features,
					maxDepth: params.maxDepth,
				}
				// each index is written by exactly one worker
				trees[job.index] = b.build(job.rows)
			}
		}()
	}
	for _, job := range jobs {
		jobCh <- job
	}
	close(jobCh)
	wg.Wait()

	f := &Forest{
		ID:             uuid.NewString(),
		DatasetID:      datasetID,
		Trees:          trees,
		NTrees:         params.nTrees,
		TargetVariable: target,
		Features:       append([]string(nil), features...),
		MaxDepth:       params.maxDepth,
		Task:           task,
		CreatedAt:      e.cfg.now(),
	}

	e.mu.Lock()
	e.forests[f.ID] = f.clone()
	e.mu.Unlock()

	log.Info("forest stored", zap.String("id", f.ID), zap.Int("trees", f.NTrees), zap.Stringer("task", task))
	return f, nil
}

// drawJobs draws the bootstrap rows and feature subset of every tree, in tree
// order, from the engine's random source.
func (e *ForestEngine) drawJobs(n int, features []string, nTrees int) []treeJob {
	subset := int(math.Ceil(math.Sqrt(float64(len(features)))))

	e.mu.Lock()
	defer e.mu.Unlock()
	rnd := e.cfg.rnd

	jobs := make([]treeJob, nTrees)
	for t := range jobs {
		rows := make([]int, n)
		for j := range rows {
			rows[j] = rnd.Intn(n)
		}

		// partial Fisher-Yates: the first `subset` entries are a sample without replacement
		pool := append([]string(nil), features...)
		for i := 0; i < subset; i++ {
			j := i + rnd.Intn(len(pool)-i)
			pool[i], pool[j] = pool[j], pool[i]
		}
		jobs[t] = treeJob{index: t, rows: rows, features: pool[:subset]}
	}
	return jobs
}

// Predict routes input through every tree of the forest and aggregates the
// results: majority vote for classification, mean for regression.
func (e *ForestEngine) Predict(forestID string, input dataset.Record) (any, error) {
	f, ok := e.stored(forestID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrForestNotFound, forestID)
	}
	return f.Predict(input), nil
}

// GetForest returns a copy of a stored forest.
func (e *ForestEngine) GetForest(id string) (*Forest, bool) {
	f, ok := e.stored(id)
	if !ok {
		return nil, false
	}
	return f.clone(), true
}

// stored returns the engine's own copy; callers must not let it escape.
func (e *ForestEngine) stored(id string) (*Forest, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	f, ok := e.forests[id]
	return f, ok
}

// Evaluate predicts every record of datasetID with the forest and scores the
// predictions against the forest's target variable.
func (e *ForestEngine) Evaluate(forestID, datasetID string) (Score, error) {
	f, ok := e.stored(forestID)
	if !ok {
		return Score{}, fmt.Errorf("%w: %q", ErrForestNotFound, forestID)
	}
	ds, err := e.datasets.Lookup(datasetID)
	if err != nil {
		return Score{}, err
	}
	if ds.Len() == 0 {
		return Score{}, fmt.Errorf("%w: %q", ErrEmptyDataset, datasetID)
	}

	truth := ds.Column(f.TargetVariable)
	preds := make([]any, ds.Len())
	for i, rec := range ds.Records {
		preds[i] = f.Predict(rec)
	}

	score := Score{Task: f.Task, N: len(preds)}
	if f.Task == TaskClassification {
		score.Accuracy = Accuracy(truth, preds)
		return score, nil
	}

	yTrue := make([]float64, len(truth))
	yPred := make([]float64, len(preds))
	for i := range truth {
		v, ok := truth[i].(float64)
		if !ok {
			return Score{}, fmt.Errorf("%w: record %d has %v", ErrNonNumericTarget, i, truth[i])
		}
		yTrue[i] = v
		yPred[i], _ = preds[i].(float64)
	}
	score.MSE = MSE(yTrue, yPred)
	score.RMSE = math.Sqrt(score.MSE)
	score.R2 = R2(yTrue, yPred)
	return score, nil
}

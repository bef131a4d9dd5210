package model

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/tdarei/starisdons-sub013/pkg/dataset"
)

func newTestForestEngine(t *testing.T, opts ...Option) (*dataset.Registry, *ForestEngine) {
	t.Helper()
	reg := dataset.NewRegistry()
	opts = append([]Option{WithSeed(42), WithLogger(zaptest.NewLogger(t))}, opts...)
	return reg, NewForestEngine(reg, opts...)
}

// thresholdRecords labels x <= 10 "low" and everything above "high".
func thresholdRecords() []dataset.Record {
	records := make([]dataset.Record, 0, 20)
	for x := 1; x <= 20; x++ {
		label := "low"
		if x > 10 {
			label = "high"
		}
		records = append(records, dataset.Record{"x": x, "noise": x % 3, "label": label})
	}
	return records
}

func TestBuildForest_ConstantTarget(t *testing.T) {
	reg, eng := newTestForestEngine(t)
	reg.AddDataset("const", []dataset.Record{
		{"f1": 1, "f2": "u", "target": "A"},
		{"f1": 2, "f2": "v", "target": "A"},
		{"f1": 3, "f2": "u", "target": "A"},
		{"f1": 4, "f2": "w", "target": "A"},
	})

	f, err := eng.BuildForest("const", "target", []string{"f1", "f2"}, TaskClassification, WithNTrees(5))
	require.NoError(t, err)
	require.Len(t, f.Trees, 5)
	assert.Equal(t, 5, f.NTrees)
	for _, tree := range f.Trees {
		assert.Equal(t, &Leaf{Value: "A"}, tree.Root)
	}

	for _, in := range []dataset.Record{{}, {"f1": 100}, {"f2": "zzz", "other": true}} {
		got, err := eng.Predict(f.ID, in)
		require.NoError(t, err)
		assert.Equal(t, "A", got)
	}
}

func TestBuildForest_Threshold(t *testing.T) {
	reg, eng := newTestForestEngine(t)
	reg.AddDataset("t", thresholdRecords())

	f, err := eng.BuildForest("t", "label", []string{"x"}, TaskClassification, WithNTrees(25))
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxDepth, f.MaxDepth)
	assert.Equal(t, TaskClassification, f.Task)
	assert.Equal(t, "label", f.TargetVariable)

	low, err := eng.Predict(f.ID, dataset.Record{"x": 2})
	require.NoError(t, err)
	assert.Equal(t, "low", low)

	high, err := eng.Predict(f.ID, dataset.Record{"x": 19})
	require.NoError(t, err)
	assert.Equal(t, "high", high)

	score, err := eng.Evaluate(f.ID, "t")
	require.NoError(t, err)
	assert.Equal(t, 20, score.N)
	assert.GreaterOrEqual(t, score.Accuracy, 0.9)
}

func TestBuildForest_FeatureSubsets(t *testing.T) {
	reg, eng := newTestForestEngine(t)
	reg.AddDataset("t", []dataset.Record{
		{"a": 1, "b": 2, "c": 3, "d": 4, "e": 5, "y": "p"},
		{"a": 2, "b": 1, "c": 0, "d": 1, "e": 0, "y": "q"},
	})

	f, err := eng.BuildForest("t", "y", []string{"a", "b", "c", "d", "e"}, TaskClassification, WithNTrees(10))
	require.NoError(t, err)
	for _, tree := range f.Trees {
		require.Len(t, tree.Features, 3) // ceil(sqrt(5))
		seen := map[string]bool{}
		for _, name := range tree.Features {
			assert.False(t, seen[name], "feature %q drawn twice", name)
			seen[name] = true
			assert.Contains(t, f.Features, name)
		}
	}
}

func TestBuildForest_DefaultFeaturesFromSchema(t *testing.T) {
	reg, eng := newTestForestEngine(t)
	reg.AddDataset("t", thresholdRecords())

	f, err := eng.BuildForest("t", "label", nil, TaskClassification, WithNTrees(3))
	require.NoError(t, err)
	assert.Equal(t, []string{"noise", "x"}, f.Features)
}

func TestBuildForest_ReproducibleAcrossWorkerCounts(t *testing.T) {
	build := func(workers int) []*DecisionTree {
		reg, eng := newTestForestEngine(t, WithSeed(7), WithWorkers(workers))
		reg.AddDataset("t", thresholdRecords())
		f, err := eng.BuildForest("t", "label", []string{"x", "noise"}, TaskClassification, WithNTrees(12), WithMaxDepth(4))
		require.NoError(t, err)
		return f.Trees
	}
	serial := build(1)
	assert.Equal(t, serial, build(4))
	assert.Equal(t, serial, build(32))
}

func TestBuildForest_Regression(t *testing.T) {
	reg, eng := newTestForestEngine(t)
	reg.AddDataset("r", []dataset.Record{
		{"x": 1, "y": 2.5},
		{"x": 2, "y": 2.5},
		{"x": 3, "y": 2.5},
	})

	f, err := eng.BuildForest("r", "y", []string{"x"}, TaskRegression, WithNTrees(4))
	require.NoError(t, err)
	got, err := eng.Predict(f.ID, dataset.Record{"x": 10})
	require.NoError(t, err)
	assert.InDelta(t, 2.5, got.(float64), 1e-12)

	score, err := eng.Evaluate(f.ID, "r")
	require.NoError(t, err)
	assert.Equal(t, TaskRegression, score.Task)
	assert.Zero(t, score.MSE)
	assert.Zero(t, score.RMSE)
}

func TestForest_Aggregation(t *testing.T) {
	leaf := func(v any) *DecisionTree { return &DecisionTree{Root: &Leaf{Value: v}} }

	cls := &Forest{Task: TaskClassification, Trees: []*DecisionTree{leaf("A"), leaf("B"), leaf("B")}}
	assert.Equal(t, "B", cls.Predict(dataset.Record{}))

	reg := &Forest{Task: TaskRegression, Trees: []*DecisionTree{leaf(1.0), leaf(2.0), leaf(6.0)}}
	assert.InDelta(t, 3.0, reg.Predict(dataset.Record{}).(float64), 1e-12)

	// a numeric first prediction does not switch a classification forest to averaging
	numCls := &Forest{Task: TaskClassification, Trees: []*DecisionTree{leaf(1.0), leaf(2.0), leaf(2.0)}}
	assert.Equal(t, 2.0, numCls.Predict(dataset.Record{}))

	empty := &Forest{Task: TaskRegression}
	assert.True(t, math.IsNaN(empty.Predict(dataset.Record{}).(float64)))
}

func TestForestEngine_RoundTrip(t *testing.T) {
	reg, eng := newTestForestEngine(t)
	reg.AddDataset("t", thresholdRecords())

	f, err := eng.BuildForest("t", "label", []string{"x"}, TaskClassification, WithNTrees(2))
	require.NoError(t, err)

	got, ok := eng.GetForest(f.ID)
	require.True(t, ok)
	assert.Equal(t, f, got)

	_, ok = eng.GetForest("missing")
	assert.False(t, ok)
}

func TestForestEngine_Errors(t *testing.T) {
	reg, eng := newTestForestEngine(t)
	reg.AddDataset("t", thresholdRecords())
	reg.AddDataset("empty", nil)
	reg.AddDataset("only-target", []dataset.Record{{"label": "a"}})
	reg.AddDataset("words", []dataset.Record{{"x": 1, "y": "big"}})

	_, err := eng.BuildForest("nope", "label", nil, TaskClassification)
	assert.True(t, errors.Is(err, dataset.ErrDatasetNotFound))

	_, err = eng.BuildForest("t", "", nil, TaskClassification)
	assert.ErrorIs(t, err, ErrEmptyTarget)

	_, err = eng.BuildForest("t", "label", nil, Task(9))
	assert.ErrorIs(t, err, ErrInvalidTask)

	_, err = eng.BuildForest("t", "label", nil, TaskClassification, WithNTrees(0))
	assert.ErrorIs(t, err, ErrInvalidTreeCount)

	_, err = eng.BuildForest("t", "label", nil, TaskClassification, WithMaxDepth(-1))
	assert.ErrorIs(t, err, ErrInvalidDepth)

	_, err = eng.BuildForest("empty", "label", nil, TaskClassification)
	assert.ErrorIs(t, err, ErrEmptyDataset)

	_, err = eng.BuildForest("only-target", "label", nil, TaskClassification)
	assert.ErrorIs(t, err, ErrNoFeatures)

	_, err = eng.BuildForest("words", "y", []string{"x"}, TaskRegression)
	assert.ErrorIs(t, err, ErrNonNumericTarget)

	_, err = eng.Predict("missing", dataset.Record{})
	assert.ErrorIs(t, err, ErrForestNotFound)

	_, err = eng.Evaluate("missing", "t")
	assert.ErrorIs(t, err, ErrForestNotFound)
}

func TestParseTask(t *testing.T) {
	task, err := ParseTask("Regression")
	require.NoError(t, err)
	assert.Equal(t, TaskRegression, task)
	assert.Equal(t, "regression", task.String())

	task, err = ParseTask("classification")
	require.NoError(t, err)
	assert.Equal(t, TaskClassification, task)

	_, err = ParseTask("ranking")
	assert.ErrorIs(t, err, ErrInvalidTask)
}

func BenchmarkBuildForest(b *testing.B) {
	reg := dataset.NewRegistry()
	records := make([]dataset.Record, 0, 500)
	for i, p := range randomPoints(500, 4, 2) {
		label := "n"
		if p[0] > p[1] {
			label = "p"
		}
		records = append(records, dataset.Record{"a": p[0], "b": p[1], "c": p[2], "d": p[3], "i": i % 5, "y": label})
	}
	reg.AddDataset("bench", records)
	eng := NewForestEngine(reg, WithSeed(1))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := eng.BuildForest("bench", "y", nil, TaskClassification, WithNTrees(20)); err != nil {
			b.Fatal(err)
		}
	}
}

func TestForestEngine_ResultIsolated(t *testing.T) {
	reg, eng := newTestForestEngine(t)
	reg.AddDataset("t", thresholdRecords())

	f, err := eng.BuildForest("t", "label", []string{"x"}, TaskClassification, WithNTrees(3))
	require.NoError(t, err)
	want, ok := eng.GetForest(f.ID)
	require.True(t, ok)
	want = want.clone()

	f.Features[0] = "changed"
	f.Trees[0].Root = &Leaf{Value: "high"}
	f.Trees[1].Features[0] = "changed"
	f.Trees = nil

	got, ok := eng.GetForest(f.ID)
	require.True(t, ok)
	assert.Equal(t, want, got)

	got.Trees[2].Root = &Leaf{Value: "high"}
	pred, err := eng.Predict(f.ID, dataset.Record{"x": 1})
	require.NoError(t, err)
	assert.Equal(t, "low", pred)
}

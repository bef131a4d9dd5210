package model

import (
	"errors"
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/tdarei/starisdons-sub013/pkg/dataset"
)

func newTestClusteringEngine(t *testing.T, opts ...Option) (*dataset.Registry, *ClusteringEngine) {
	t.Helper()
	reg := dataset.NewRegistry()
	opts = append([]Option{WithSeed(42), WithLogger(zaptest.NewLogger(t))}, opts...)
	return reg, NewClusteringEngine(reg, opts...)
}

func TestPerformClustering_KMeansExample(t *testing.T) {
	reg, eng := newTestClusteringEngine(t)
	reg.AddDataset("xy", []dataset.Record{
		{"x": 0, "y": 0},
		{"x": 0, "y": 1},
		{"x": 10, "y": 10},
		{"x": 10, "y": 11},
	})

	c, err := eng.PerformClustering("xy", []string{"x", "y"}, 2, MethodKMeans)
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "xy", c.DatasetID)
	assert.Equal(t, MethodKMeans, c.Method)
	assert.Equal(t, 2, c.NClusters)
	require.Len(t, c.Clusters, 2)

	groups := [][]int{c.Clusters[0].PointIndices, c.Clusters[1].PointIndices}
	sort.Slice(groups, func(a, b int) bool { return groups[a][0] < groups[b][0] })
	assert.Equal(t, [][]int{{0, 1}, {2, 3}}, groups)

	assign := c.Assignments(4)
	assert.Equal(t, assign[0], assign[1])
	assert.Equal(t, assign[2], assign[3])
	assert.NotEqual(t, assign[0], assign[2])
}

func TestPerformClustering_MissingFieldsAreZero(t *testing.T) {
	reg, eng := newTestClusteringEngine(t)
	reg.AddDataset("sparse", []dataset.Record{{"x": 0}, {"y": 0}, {"x": 50, "y": 50}})

	c, err := eng.PerformClustering("sparse", []string{"x", "y"}, 2, MethodHierarchical)
	require.NoError(t, err)
	require.Len(t, c.Clusters, 2)
	// records 0 and 1 both extract to (0,0)
	assert.Equal(t, []int{2}, c.Clusters[0].PointIndices)
	assert.Equal(t, []int{0, 1}, c.Clusters[1].PointIndices)
}

func TestPerformClustering_DBSCANUsesEngineParams(t *testing.T) {
	reg, eng := newTestClusteringEngine(t, WithDBSCAN(1.5, 2))
	reg.AddDataset("line", []dataset.Record{
		{"v": 0}, {"v": 1}, {"v": 2}, {"v": 10}, {"v": 11}, {"v": 40},
	})

	// nClusters is ignored by DBSCAN
	c, err := eng.PerformClustering("line", []string{"v"}, 99, MethodDBSCAN)
	require.NoError(t, err)
	require.Equal(t, 2, c.NClusters)
	assert.Equal(t, []int{0, 1, 2}, c.Clusters[0].PointIndices)
	assert.Equal(t, []int{3, 4}, c.Clusters[1].PointIndices)
	assert.Equal(t, []int{0, 0, 0, 1, 1, -1}, c.Assignments(6))
}

func TestPerformClustering_RoundTrip(t *testing.T) {
	stamp := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	reg, eng := newTestClusteringEngine(t, WithClock(func() time.Time { return stamp }))
	reg.AddDataset("d", []dataset.Record{{"a": 1}, {"a": 2}, {"a": 9}})

	c, err := eng.PerformClustering("d", []string{"a"}, 2, MethodHierarchical)
	require.NoError(t, err)
	assert.Equal(t, stamp, c.CreatedAt)

	got, ok := eng.GetClustering(c.ID)
	require.True(t, ok)
	assert.Equal(t, c, got)

	_, ok = eng.GetClustering("unknown")
	assert.False(t, ok)
}

func TestPerformClustering_Reproducible(t *testing.T) {
	records := make([]dataset.Record, 0, 60)
	for _, p := range randomPoints(60, 2, 8) {
		records = append(records, dataset.Record{"x": p[0], "y": p[1]})
	}

	run := func() []Cluster {
		reg, eng := newTestClusteringEngine(t, WithSeed(99))
		reg.AddDataset("r", records)
		c, err := eng.PerformClustering("r", []string{"x", "y"}, 4, MethodKMeans)
		require.NoError(t, err)
		return c.Clusters
	}
	assert.Equal(t, run(), run())
}

func TestPerformClustering_Errors(t *testing.T) {
	reg, eng := newTestClusteringEngine(t)
	reg.AddDataset("d", []dataset.Record{{"a": 1}})
	reg.AddDataset("empty", nil)

	_, err := eng.PerformClustering("nope", []string{"a"}, 2, MethodKMeans)
	assert.True(t, errors.Is(err, dataset.ErrDatasetNotFound))

	_, err = eng.PerformClustering("d", nil, 2, MethodKMeans)
	assert.ErrorIs(t, err, ErrNoVariables)

	_, err = eng.PerformClustering("d", []string{"a"}, 2, Method("spectral"))
	assert.ErrorIs(t, err, ErrUnknownMethod)

	_, err = eng.PerformClustering("d", []string{"a"}, 0, MethodKMeans)
	assert.ErrorIs(t, err, ErrInvalidClusterCount)

	_, err = eng.PerformClustering("empty", []string{"a"}, 2, MethodKMeans)
	assert.ErrorIs(t, err, ErrNoPoints)
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod(" KMeans ")
	require.NoError(t, err)
	assert.Equal(t, MethodKMeans, m)

	m, err = ParseMethod("dbscan")
	require.NoError(t, err)
	assert.Equal(t, MethodDBSCAN, m)

	_, err = ParseMethod("spectral")
	assert.ErrorIs(t, err, ErrUnknownMethod)
}

func TestPerformClustering_SharedRandSource(t *testing.T) {
	run := func() []Cluster {
		_, eng := newTestClusteringEngine(t, WithRand(rand.New(rand.NewSource(11))), WithMaxIterations(5), WithTolerance(0))
		eng.datasets.AddDataset("p", []dataset.Record{{"v": 1}, {"v": 2}, {"v": 8}, {"v": 9}, {"v": 30}})
		c, err := eng.PerformClustering("p", []string{"v"}, 3, MethodKMeans)
		require.NoError(t, err)
		return c.Clusters
	}
	assert.Equal(t, run(), run())
}

func TestPerformClustering_ResultIsolated(t *testing.T) {
	reg, eng := newTestClusteringEngine(t)
	reg.AddDataset("d", []dataset.Record{{"a": 1}, {"a": 2}, {"a": 9}})

	c, err := eng.PerformClustering("d", []string{"a"}, 2, MethodKMeans)
	require.NoError(t, err)
	want, ok := eng.GetClustering(c.ID)
	require.True(t, ok)
	want = want.clone()

	for i := range c.Clusters {
		for j := range c.Clusters[i].PointIndices {
			c.Clusters[i].PointIndices[j] = 99
		}
		for j := range c.Clusters[i].Centroid {
			c.Clusters[i].Centroid[j] = -1
		}
	}
	c.Variables[0] = "changed"
	c.Clusters = nil

	got, ok := eng.GetClustering(c.ID)
	require.True(t, ok)
	assert.Equal(t, want, got)

	got.Clusters[0].Size = 1000
	again, _ := eng.GetClustering(c.ID)
	assert.Equal(t, want, again)
}

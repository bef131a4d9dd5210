package model

import (
	"math"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/tdarei/starisdons-sub013/pkg/core"
)

// Defaults for Lloyd's algorithm.
const (
	DefaultMaxIterations = 100
	DefaultTolerance     = 0.001
)

// KMeans partitions points into K clusters with Lloyd's algorithm.
//
// Centroids are seeded by sampling K points uniformly with replacement, so two
// centroids may start on the same point and a cluster may end up empty.
type KMeans struct {
	K         int
	MaxIter   int
	Tolerance float64    // stop once every centroid moves less than this
	Rand      *rand.Rand // nil => seeded from the clock

	// Filled by Cluster.
	Centroids  []core.Point
	Iterations int
	Inertia    float64 // sum of squared distances to the assigned centroid
}

// NewKMeans creates a KMeans with the default iteration limit and tolerance.
func NewKMeans(k int, rnd *rand.Rand) *KMeans {
	return &KMeans{
		K:         k,
		MaxIter:   DefaultMaxIterations,
		Tolerance: DefaultTolerance,
		Rand:      rnd,
	}
}

// Cluster runs k-means over X and returns one cluster per centroid, in
// centroid order. Empty clusters keep their last centroid.
func (m *KMeans) Cluster(X []core.Point) ([]Cluster, error) {
	if m.K <= 0 {
		return nil, ErrInvalidClusterCount
	}
	if len(X) == 0 {
		return nil, ErrNoPoints
	}
	p, err := core.CheckDims(X)
	if err != nil {
		return nil, err
	}
	rnd := m.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	maxIter := m.MaxIter
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}

	n := len(X)
	m.Centroids = m.initCenters(X, rnd)
	assign := make([]int, n)
	m.Iterations = 0

	for it := 0; it < maxIter; it++ {
		m.Iterations = it + 1
		m.assign(X, assign)

		// === Update Step ===
		sums := make([]core.Point, m.K)
		counts := make([]int, m.K)
		for k := range sums {
			sums[k] = make(core.Point, p)
		}
		for i := 0; i < n; i++ {
			k := assign[i]
			counts[k]++
			for j := 0; j < p; j++ {
				sums[k][j] += X[i][j]
			}
		}

		next := make([]core.Point, m.K)
		for k := 0; k < m.K; k++ {
			if counts[k] == 0 {
				next[k] = m.Centroids[k]
				continue
			}
			c := make(core.Point, p)
			for j := 0; j < p; j++ {
				c[j] = sums[k][j] / float64(counts[k])
			}
			next[k] = c
		}

		shift := core.MaxShift(m.Centroids, next)
		m.Centroids = next
		if shift < m.Tolerance {
			break
		}
	}

	members := make([][]int, m.K)
	m.Inertia = 0
	for i, k := range assign {
		members[k] = append(members[k], i)
		d := core.MustEuclidean(X[i], m.Centroids[k])
		m.Inertia += d * d
	}

	clusters := make([]Cluster, m.K)
	for k := range clusters {
		clusters[k] = Cluster{
			ID:           k,
			PointIndices: members[k],
			Centroid:     core.Clone(m.Centroids[k]),
			Size:         len(members[k]),
		}
		if clusters[k].PointIndices == nil {
			clusters[k].PointIndices = []int{}
		}
	}
	return clusters, nil
}

// assign writes the index of the nearest centroid for every row of X.
// Ties go to the lower centroid index. Rows are split into GOMAXPROCS chunks;
// each row is written by exactly one goroutine.
func (m *KMeans) assign(X []core.Point, assign []int) {
	n := len(X)
	workers := runtime.GOMAXPROCS(0)
	rowsPerWorker := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * rowsPerWorker
		end := min(start+rowsPerWorker, n)
		if start >= end {
			continue
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				best, bestDist := 0, math.MaxFloat64
				for k, c := range m.Centroids {
					if d := core.MustEuclidean(X[i], c); d < bestDist {
						best, bestDist = k, d
					}
				}
				assign[i] = best
			}
		}(start, end)
	}
	wg.Wait()
}

// initCenters samples K points uniformly with replacement.
func (m *KMeans) initCenters(X []core.Point, rnd *rand.Rand) []core.Point {
	centroids := make([]core.Point, m.K)
	for k := range centroids {
		centroids[k] = core.Clone(X[rnd.Intn(len(X))])
	}
	return centroids
}

package model

import (
	"math/rand"
	"runtime"
	"time"

	"go.uber.org/zap"
)

// engineConfig is shared by ClusteringEngine and ForestEngine; each engine
// reads only the fields it needs.
type engineConfig struct {
	rnd     *rand.Rand
	logger  *zap.Logger
	now     func() time.Time
	workers int

	maxIter   int
	tolerance float64
	eps       float64
	minPts    int
}

// Option configures an engine.
type Option func(*engineConfig)

func newEngineConfig(opts ...Option) engineConfig {
	cfg := engineConfig{
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:    zap.NewNop(),
		now:       time.Now,
		workers:   runtime.GOMAXPROCS(0),
		maxIter:   DefaultMaxIterations,
		tolerance: DefaultTolerance,
		eps:       DefaultEps,
		minPts:    DefaultMinPts,
	}
	for _, o := range opts {
		o(&cfg)
	}
	return cfg
}

// WithRand sets the random source behind k-means seeding, bootstrap sampling
// and feature subsets. Nil is ignored.
func WithRand(r *rand.Rand) Option {
	return func(c *engineConfig) {
		if r != nil {
			c.rnd = r
		}
	}
}

// WithSeed makes every random choice of the engine reproducible.
func WithSeed(seed int64) Option {
	return func(c *engineConfig) { c.rnd = rand.New(rand.NewSource(seed)) }
}

// WithLogger sets the engine logger. Nil is ignored.
func WithLogger(l *zap.Logger) Option {
	return func(c *engineConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock overrides time.Now for CreatedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(c *engineConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// WithWorkers bounds the number of trees grown concurrently.
func WithWorkers(n int) Option {
	return func(c *engineConfig) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithMaxIterations caps Lloyd iterations.
func WithMaxIterations(n int) Option {
	return func(c *engineConfig) {
		if n > 0 {
			c.maxIter = n
		}
	}
}

// WithTolerance sets the k-means convergence threshold.
func WithTolerance(tol float64) Option {
	return func(c *engineConfig) {
		if tol >= 0 {
			c.tolerance = tol
		}
	}
}

// WithDBSCAN sets eps and minPts for DBSCAN runs started by PerformClustering.
func WithDBSCAN(eps float64, minPts int) Option {
	return func(c *engineConfig) {
		c.eps = eps
		c.minPts = minPts
	}
}

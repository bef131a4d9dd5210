package model

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tdarei/starisdons-sub013/pkg/dataset"
)

// ClusteringEngine runs clustering algorithms against datasets held in a
// Registry and keeps every result, keyed by a generated id, for the lifetime
// of the engine.
type ClusteringEngine struct {
	datasets *dataset.Registry
	cfg      engineConfig

	mu          sync.RWMutex // guards clusterings and cfg.rnd
	clusterings map[string]*Clustering
}

// NewClusteringEngine returns an engine reading datasets from reg.
func NewClusteringEngine(reg *dataset.Registry, opts ...Option) *ClusteringEngine {
	return &ClusteringEngine{
		datasets:    reg,
		cfg:         newEngineConfig(opts...),
		clusterings: make(map[string]*Clustering),
	}
}

// PerformClustering extracts one point per record from the given variables
// (missing values count as 0), clusters the points with method and stores the
// result. nClusters is ignored by DBSCAN.
func (e *ClusteringEngine) PerformClustering(datasetID string, variables []string, nClusters int, method Method) (*Clustering, error) {
	ds, err := e.datasets.Lookup(datasetID)
	if err != nil {
		return nil, err
	}
	if len(variables) == 0 {
		return nil, ErrNoVariables
	}

	points := ds.Points(variables)
	log := e.cfg.logger.With(
		zap.String("dataset", datasetID),
		zap.String("method", string(method)),
		zap.Int("points", len(points)),
	)

	var (
		alg Clusterer
		km  *KMeans
	)
	switch method {
	case MethodKMeans:
		e.mu.Lock()
		seed := e.cfg.rnd.Int63()
		e.mu.Unlock()
		km = &KMeans{
			K:         nClusters,
			MaxIter:   e.cfg.maxIter,
			Tolerance: e.cfg.tolerance,
			Rand:      rand.New(rand.NewSource(seed)),
		}
		alg = km
	case MethodHierarchical:
		alg = &Hierarchical{K: nClusters}
	case MethodDBSCAN:
		alg = &DBSCAN{Eps: e.cfg.eps, MinPts: e.cfg.minPts}
	default:
		return nil, fmt.Errorf("clustering %q: %w: %q", datasetID, ErrUnknownMethod, method)
	}

	clusters, err := alg.Cluster(points)
	if err == nil && km != nil {
		log.Debug("kmeans finished", zap.Int("iterations", km.Iterations), zap.Float64("inertia", km.Inertia))
	}
	if err != nil {
		return nil, fmt.Errorf("clustering %q: %w", datasetID, err)
	}

	c := &Clustering{
		ID:        uuid.NewString(),
		DatasetID: datasetID,
		Method:    method,
		Variables: append([]string(nil), variables...),
		Clusters:  clusters,
		NClusters: len(clusters),
		CreatedAt: e.cfg.now(),
	}

	e.mu.Lock()
	e.clusterings[c.ID] = c.clone()
	e.mu.Unlock()

	log.Info("clustering stored", zap.String("id", c.ID), zap.Int("clusters", c.NClusters))
	return c, nil
}

// GetClustering returns a copy of a stored clustering.
func (e *ClusteringEngine) GetClustering(id string) (*Clustering, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	c, ok := e.clusterings[id]
	if !ok {
		return nil, false
	}
	return c.clone(), true
}

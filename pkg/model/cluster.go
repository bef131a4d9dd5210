package model

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tdarei/starisdons-sub013/pkg/core"
)

// Method selects a clustering algorithm.
type Method string

const (
	MethodKMeans       Method = "kmeans"
	MethodHierarchical Method = "hierarchical"
	MethodDBSCAN       Method = "dbscan"
)

// ParseMethod accepts a method name case-insensitively.
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(s))); m {
	case MethodKMeans, MethodHierarchical, MethodDBSCAN:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

// Cluster is one group of a clustering result. PointIndices are positions in
// the source dataset, ascending.
type Cluster struct {
	ID           int        `json:"id" yaml:"id"`
	PointIndices []int      `json:"pointIndices" yaml:"pointIndices"`
	Centroid     core.Point `json:"centroid,omitempty" yaml:"centroid,omitempty"`
	Size         int        `json:"size" yaml:"size"`
}

// Clustering is the stored result of one PerformClustering call. It is never
// mutated after it is returned.
type Clustering struct {
	ID        string    `json:"id" yaml:"id"`
	DatasetID string    `json:"datasetId" yaml:"datasetId"`
	Method    Method    `json:"method" yaml:"method"`
	Variables []string  `json:"variables" yaml:"variables"`
	Clusters  []Cluster `json:"clusters" yaml:"clusters"`
	NClusters int       `json:"nClusters" yaml:"nClusters"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

// Assignments returns, for every point index in [0, n), the id of the cluster
// containing it, or -1 when the point belongs to no cluster (DBSCAN noise).
func (c *Clustering) Assignments(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = -1
	}
	for _, cl := range c.Clusters {
		for _, idx := range cl.PointIndices {
			if idx < n {
				out[idx] = cl.ID
			}
		}
	}
	return out
}

// clone deep copies c so the engine's stored result cannot be reached through
// a value handed to a caller.
func (c *Clustering) clone() *Clustering {
	cp := *c
	cp.Variables = append([]string(nil), c.Variables...)
	cp.Clusters = make([]Cluster, len(c.Clusters))
	for i, cl := range c.Clusters {
		if cl.PointIndices != nil {
			cl.PointIndices = append([]int{}, cl.PointIndices...)
		}
		cl.Centroid = core.Clone(cl.Centroid)
		cp.Clusters[i] = cl
	}
	return &cp
}

// newCluster builds a Cluster over members, sorting them and computing the centroid.
func newCluster(id int, points []core.Point, members []int) Cluster {
	idx := append([]int(nil), members...)
	sort.Ints(idx)
	return Cluster{
		ID:           id,
		PointIndices: idx,
		Centroid:     core.Centroid(points, idx),
		Size:         len(idx),
	}
}

package model

import (
	"math"

	"github.com/tdarei/starisdons-sub013/pkg/core"
)

// Hierarchical performs agglomerative clustering with centroid linkage.
//
// Every point starts as its own cluster. Each round scans all pairs of current
// clusters, merges the pair whose centroids are closest (first pair found wins
// ties) and appends the merged cluster to the end of the list. Merging stops
// when K clusters remain.
//
// Complexity: O(n²) pair scans per merge and O(n) merges, so O(n³) overall.
// Intended for small datasets only.
type Hierarchical struct {
	K int
}

type agglomerate struct {
	members  []int
	centroid core.Point
}

// Cluster returns K clusters, or one cluster per point when len(X) <= K.
func (h *Hierarchical) Cluster(X []core.Point) ([]Cluster, error) {
	if h.K <= 0 {
		return nil, ErrInvalidClusterCount
	}
	if _, err := core.CheckDims(X); err != nil {
		return nil, err
	}

	groups := make([]agglomerate, len(X))
	for i := range X {
		groups[i] = agglomerate{members: []int{i}, centroid: core.Clone(X[i])}
	}

	for len(groups) > h.K {
		bi, bj, best := 0, 1, math.Inf(1)
		for i := 0; i < len(groups); i++ {
			for j := i + 1; j < len(groups); j++ {
				if d := core.MustEuclidean(groups[i].centroid, groups[j].centroid); d < best {
					bi, bj, best = i, j, d
				}
			}
		}

		members := make([]int, 0, len(groups[bi].members)+len(groups[bj].members))
		members = append(members, groups[bi].members...)
		members = append(members, groups[bj].members...)
		merged := agglomerate{members: members, centroid: core.Centroid(X, members)}

		// bj > bi, so removing bj first keeps bi valid.
		groups = append(groups[:bj], groups[bj+1:]...)
		groups = append(groups[:bi], groups[bi+1:]...)
		groups = append(groups, merged)
	}

	clusters := make([]Cluster, len(groups))
	for i, g := range groups {
		clusters[i] = newCluster(i, X, g.members)
	}
	return clusters, nil
}

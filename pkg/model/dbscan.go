package model

import "github.com/tdarei/starisdons-sub013/pkg/core"

// Defaults for DBSCAN.
const (
	DefaultEps    = 0.5
	DefaultMinPts = 3
)

// DBSCAN groups points by density reachability.
//
// The eps-neighborhood of a point includes the point itself and every point at
// Euclidean distance <= Eps. A point with fewer than MinPts neighbors is noise
// unless a later expansion reaches it from a core point. Noise points are not
// part of any returned cluster. No randomness is involved: visiting order is
// index order, so equal input yields equal output.
type DBSCAN struct {
	Eps    float64
	MinPts int
}

// point labels used while clustering; positive labels are cluster numbers
const (
	unvisited = 0
	noise     = -1
)

// Cluster returns the density-connected clusters of X in discovery order.
func (d *DBSCAN) Cluster(X []core.Point) ([]Cluster, error) {
	if d.Eps < 0 || d.MinPts < 1 {
		return nil, ErrInvalidDBSCANParams
	}
	if _, err := core.CheckDims(X); err != nil {
		return nil, err
	}

	labels := make([]int, len(X))
	found := 0
	for i := range X {
		if labels[i] != unvisited {
			continue
		}
		neighbors := d.rangeQuery(X, i)
		if len(neighbors) < d.MinPts {
			// may still be claimed as a border point by a later cluster
			labels[i] = noise
			continue
		}
		found++
		d.grow(X, labels, i, neighbors, found)
	}

	members := make([][]int, found)
	for i, l := range labels {
		if l > 0 {
			members[l-1] = append(members[l-1], i)
		}
	}
	clusters := make([]Cluster, found)
	for k := range members {
		clusters[k] = newCluster(k, X, members[k])
	}
	return clusters, nil
}

// grow labels the core point and everything density-reachable from it with
// label. The frontier is processed in FIFO order. Border points (previously
// noise, or not core) join the cluster without extending the frontier.
func (d *DBSCAN) grow(X []core.Point, labels []int, seed int, neighbors []int, label int) {
	labels[seed] = label
	frontier := neighbors
	for head := 0; head < len(frontier); head++ {
		q := frontier[head]
		switch labels[q] {
		case noise:
			labels[q] = label
			continue
		case unvisited:
			labels[q] = label
		default:
			continue
		}
		if qn := d.rangeQuery(X, q); len(qn) >= d.MinPts {
			frontier = append(frontier, qn...)
		}
	}
}

// rangeQuery returns the indices of all points within Eps of X[idx], idx included.
func (d *DBSCAN) rangeQuery(X []core.Point, idx int) []int {
	var result []int
	for i, p := range X {
		if core.MustEuclidean(X[idx], p) <= d.Eps {
			result = append(result, i)
		}
	}
	return result
}

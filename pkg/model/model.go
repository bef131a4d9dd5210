package model

import (
	"github.com/tdarei/starisdons-sub013/pkg/core"
	"github.com/tdarei/starisdons-sub013/pkg/dataset"
)

// Clusterer partitions points into clusters. Cluster.PointIndices index into
// the points slice passed to Cluster.
type Clusterer interface {
	Cluster(points []core.Point) ([]Cluster, error)
}

// Predictor routes a single record to a prediction.
type Predictor interface {
	Predict(input dataset.Record) any
}

var (
	_ Clusterer = (*KMeans)(nil)
	_ Clusterer = (*Hierarchical)(nil)
	_ Clusterer = (*DBSCAN)(nil)

	_ Predictor = (*DecisionTree)(nil)
	_ Predictor = (*Forest)(nil)
)

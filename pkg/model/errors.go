package model

import "errors"

// Sentinel errors returned by the clustering and forest engines.
var (
	// ErrNoVariables indicates an empty variable list for clustering.
	ErrNoVariables = errors.New("model: at least one variable is required")
	// ErrInvalidClusterCount indicates k <= 0 for k-means or hierarchical clustering.
	ErrInvalidClusterCount = errors.New("model: cluster count must be positive")
	// ErrUnknownMethod indicates a clustering method other than kmeans, hierarchical or dbscan.
	ErrUnknownMethod = errors.New("model: unknown clustering method")
	// ErrNoPoints indicates k-means was asked to seed centroids from an empty point set.
	ErrNoPoints = errors.New("model: no points to cluster")
	// ErrInvalidDBSCANParams indicates eps < 0 or minPts < 1.
	ErrInvalidDBSCANParams = errors.New("model: invalid dbscan parameters")

	// ErrForestNotFound indicates that no forest is stored under the requested id.
	ErrForestNotFound = errors.New("model: forest not found")
	// ErrEmptyDataset indicates a forest was requested over a dataset with no records.
	ErrEmptyDataset = errors.New("model: dataset has no records")
	// ErrEmptyTarget indicates a missing target variable name.
	ErrEmptyTarget = errors.New("model: target variable is required")
	// ErrNoFeatures indicates that no feature remains after excluding the target.
	ErrNoFeatures = errors.New("model: at least one feature is required")
	// ErrInvalidTreeCount indicates nTrees <= 0.
	ErrInvalidTreeCount = errors.New("model: tree count must be positive")
	// ErrInvalidDepth indicates a negative max depth.
	ErrInvalidDepth = errors.New("model: max depth must not be negative")
	// ErrInvalidTask indicates a task other than classification or regression.
	ErrInvalidTask = errors.New("model: unknown task")
	// ErrNonNumericTarget indicates a regression target value that is not numeric.
	ErrNonNumericTarget = errors.New("model: regression target must be numeric")
)

package dataset

import "errors"

// ErrDatasetNotFound indicates that no dataset is registered under the requested id.
var ErrDatasetNotFound = errors.New("dataset: dataset not found")

package dataset

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Dataset is an ordered list of records. Records are addressed by position;
// results computed from a dataset hold indices into Records, so callers must
// not reorder them after registration.
type Dataset struct {
	ID      string
	Records []Record
}

// Registry holds named datasets. It performs no validation of record shape;
// shape problems surface when an algorithm extracts points.
type Registry struct {
	mu       sync.RWMutex
	datasets map[string]*Dataset
	logger   *zap.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the registry logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		datasets: make(map[string]*Dataset),
		logger:   zap.NewNop(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// AddDataset stores records under id, replacing any previous dataset with the
// same id. A nil slice is stored as an empty one.
func (r *Registry) AddDataset(id string, records []Record) *Dataset {
	if records == nil {
		records = []Record{}
	}
	ds := &Dataset{ID: id, Records: records}

	r.mu.Lock()
	r.datasets[id] = ds
	r.mu.Unlock()

	r.logger.Debug("dataset registered", zap.String("dataset", id), zap.Int("records", len(records)))
	return ds
}

// GetDataset returns the dataset registered under id.
func (r *Registry) GetDataset(id string) (*Dataset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ds, ok := r.datasets[id]
	return ds, ok
}

// Lookup is GetDataset with an ErrDatasetNotFound error for unknown ids.
func (r *Registry) Lookup(id string) (*Dataset, error) {
	ds, ok := r.GetDataset(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrDatasetNotFound, id)
	}
	return ds, nil
}

// IDs returns the registered dataset ids in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.datasets))
	for id := range r.datasets {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// Len returns the number of registered datasets.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.datasets)
}

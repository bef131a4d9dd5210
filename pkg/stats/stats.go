package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/tdarei/starisdons-sub013/pkg/core"
	"github.com/tdarei/starisdons-sub013/pkg/dataset"
)

// Summary describes one field of a dataset. The numeric fields are only set
// for values that normalize to float64.
type Summary struct {
	Field    string  `json:"field" yaml:"field"`
	Type     string  `json:"type" yaml:"type"`
	Count    int     `json:"count" yaml:"count"`
	Missing  int     `json:"missing" yaml:"missing"`
	Distinct int     `json:"distinct" yaml:"distinct"`
	Mean     float64 `json:"mean,omitempty" yaml:"mean,omitempty"`
	Std      float64 `json:"std,omitempty" yaml:"std,omitempty"`
	Min      float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max      float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Median   float64 `json:"median,omitempty" yaml:"median,omitempty"`
}

// Describe summarizes every field of ds, in schema order.
func Describe(ds *dataset.Dataset) []Summary {
	schema := dataset.InferSchema(ds.Records)
	out := make([]Summary, len(schema.FeatureNames))
	for i, field := range schema.FeatureNames {
		s := Summary{Field: field, Type: schema.Types[i]}
		distinct := map[any]struct{}{}
		var nums []float64
		for _, v := range ds.Column(field) {
			if v == nil {
				s.Missing++
				continue
			}
			s.Count++
			distinct[v] = struct{}{}
			if f, ok := v.(float64); ok {
				nums = append(nums, f)
			}
		}
		s.Distinct = len(distinct)
		if len(nums) > 0 {
			s.Mean, s.Std = MeanStd(nums)
			s.Min, s.Max = floats.Min(nums), floats.Max(nums)
			s.Median = Median(nums)
		}
		out[i] = s
	}
	return out
}

// MeanStd returns the mean and population standard deviation of x.
func MeanStd(x []float64) (float64, float64) {
	if len(x) == 0 {
		return 0, 0
	}
	mean, variance := stat.PopMeanVariance(x, nil)
	return mean, math.Sqrt(variance)
}

// Median returns the median value of the slice (allocates a copy).
func Median(x []float64) float64 {
	n := len(x)
	if n == 0 {
		return 0
	}
	cp := make([]float64, n)
	copy(cp, x)
	sort.Float64s(cp)
	mid := n >> 1
	if n&1 == 0 {
		return (cp[mid-1] + cp[mid]) * 0.5
	}
	return cp[mid]
}

// Standardize returns a copy of points with each column scaled to zero mean
// and unit variance. Constant columns become 0.
func Standardize(points []core.Point) []core.Point {
	if len(points) == 0 {
		return nil
	}
	cols := len(points[0])
	means := make([]float64, cols)
	stds := make([]float64, cols)
	col := make([]float64, len(points))
	for j := 0; j < cols; j++ {
		for i, p := range points {
			col[i] = p[j]
		}
		means[j], stds[j] = MeanStd(col)
	}

	out := make([]core.Point, len(points))
	for i, p := range points {
		row := make(core.Point, cols)
		for j := range row {
			if stds[j] != 0 {
				row[j] = (p[j] - means[j]) / stds[j]
			}
		}
		out[i] = row
	}
	return out
}

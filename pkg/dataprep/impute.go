package dataprep

import (
	"fmt"
	"strings"

	"github.com/tdarei/starisdons-sub013/pkg/dataset"
	"github.com/tdarei/starisdons-sub013/pkg/stats"
)

// Strategy selects how Impute fills a missing value.
type Strategy string

const (
	StrategyNone   Strategy = "none"
	StrategyMean   Strategy = "mean"
	StrategyMedian Strategy = "median"
	StrategyMode   Strategy = "mode"
)

// ParseStrategy accepts a strategy name case-insensitively; "" means none.
func ParseStrategy(s string) (Strategy, error) {
	switch st := Strategy(strings.ToLower(strings.TrimSpace(s))); st {
	case "":
		return StrategyNone, nil
	case StrategyNone, StrategyMean, StrategyMedian, StrategyMode:
		return st, nil
	}
	return "", fmt.Errorf("dataprep: unknown impute strategy %q", s)
}

// Impute returns copies of records with missing (absent or nil) values of
// fields filled in. Mean and median apply to numeric fields; categorical and
// mixed fields always use the mode. Fields with no observed value are left
// alone. The input records are not modified.
func Impute(records []dataset.Record, fields []string, strategy Strategy) []dataset.Record {
	out := make([]dataset.Record, len(records))
	for i, rec := range records {
		cp := make(dataset.Record, len(rec))
		for k, v := range rec {
			cp[k] = v
		}
		out[i] = cp
	}
	if strategy == StrategyNone || strategy == "" {
		return out
	}

	schema := dataset.InferSchema(records)
	ds := &dataset.Dataset{Records: records}
	for _, field := range fields {
		fill, ok := fillValue(ds.Column(field), schema.TypeOf(field), strategy)
		if !ok {
			continue
		}
		for _, rec := range out {
			if rec.Get(field) == nil {
				rec[field] = fill
			}
		}
	}
	return out
}

// ImputeMean replaces missing numeric values of field with the column mean.
func ImputeMean(records []dataset.Record, field string) []dataset.Record {
	return Impute(records, []string{field}, StrategyMean)
}

// ImputeMedian replaces missing numeric values of field with the column median.
func ImputeMedian(records []dataset.Record, field string) []dataset.Record {
	return Impute(records, []string{field}, StrategyMedian)
}

// ImputeMode replaces missing values of field with its most frequent value.
func ImputeMode(records []dataset.Record, field string) []dataset.Record {
	return Impute(records, []string{field}, StrategyMode)
}

func fillValue(col []any, kind string, strategy Strategy) (any, bool) {
	if kind == dataset.TypeNumeric && strategy != StrategyMode {
		var nums []float64
		for _, v := range col {
			if f, ok := v.(float64); ok {
				nums = append(nums, f)
			}
		}
		if len(nums) == 0 {
			return nil, false
		}
		if strategy == StrategyMedian {
			return stats.Median(nums), true
		}
		mean, _ := stats.MeanStd(nums)
		return mean, true
	}

	counts := map[any]int{}
	var best any
	for _, v := range col {
		if v == nil {
			continue
		}
		counts[v]++
		if best == nil || counts[v] > counts[best] {
			best = v
		}
	}
	return best, best != nil
}

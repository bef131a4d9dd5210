package dataset

import "sort"

// Field kinds reported by InferSchema.
const (
	TypeNumeric     = "numeric"
	TypeCategorical = "categorical"
	TypeMixed       = "mixed"
)

// Schema describes the fields observed across a set of records.
type Schema struct {
	FeatureNames []string
	Types        []string // aligned with FeatureNames
}

// InferSchema collects every field name seen in records and classifies it.
// Nil values do not affect the kind of a field.
func InferSchema(records []Record) Schema {
	numeric := map[string]bool{}
	categorical := map[string]bool{}
	seen := map[string]struct{}{}
	for _, rec := range records {
		for k, v := range rec {
			seen[k] = struct{}{}
			switch Normalize(v).(type) {
			case nil:
			case float64:
				numeric[k] = true
			default:
				categorical[k] = true
			}
		}
	}

	s := Schema{FeatureNames: make([]string, 0, len(seen))}
	for k := range seen {
		s.FeatureNames = append(s.FeatureNames, k)
	}
	sort.Strings(s.FeatureNames)
	s.Types = make([]string, len(s.FeatureNames))
	for i, k := range s.FeatureNames {
		switch {
		case numeric[k] && categorical[k]:
			s.Types[i] = TypeMixed
		case categorical[k]:
			s.Types[i] = TypeCategorical
		default:
			s.Types[i] = TypeNumeric
		}
	}
	return s
}

// Features returns the field names minus the excluded ones, in schema order.
func (s Schema) Features(exclude ...string) []string {
	skip := make(map[string]struct{}, len(exclude))
	for _, e := range exclude {
		skip[e] = struct{}{}
	}
	out := make([]string, 0, len(s.FeatureNames))
	for _, name := range s.FeatureNames {
		if _, ok := skip[name]; !ok {
			out = append(out, name)
		}
	}
	return out
}

// TypeOf returns the kind of field, or "" if the field was never seen.
func (s Schema) TypeOf(field string) string {
	i := sort.SearchStrings(s.FeatureNames, field)
	if i < len(s.FeatureNames) && s.FeatureNames[i] == field {
		return s.Types[i]
	}
	return ""
}

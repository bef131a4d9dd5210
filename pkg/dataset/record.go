package dataset

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"

	"github.com/tdarei/starisdons-sub013/pkg/core"
)

// Record maps a field name to a numeric or categorical value.
type Record map[string]any

// Normalize maps v onto the small set of value types the algorithms compare:
// float64 for every numeric kind, string, bool, or nil. NaN and infinities
// become nil, so they count as missing. Anything else is rendered with
// fmt.Sprint and treated as categorical.
func Normalize(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case float64:
		return finite(x)
	case string, bool:
		return x
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return finite(f)
		}
		return x.String()
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return finite(rv.Float())
	case reflect.Bool:
		return rv.Bool()
	case reflect.String:
		return rv.String()
	}
	return fmt.Sprint(v)
}

func finite(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}

// Numeric reports v as a float64 if it is numeric after normalization.
func Numeric(v any) (float64, bool) {
	f, ok := Normalize(v).(float64)
	return f, ok
}

// Get returns the normalized value of field, or nil when the field is absent.
func (r Record) Get(field string) any {
	v, ok := r[field]
	if !ok {
		return nil
	}
	return Normalize(v)
}

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.Records) }

// Points extracts one point per record for the given variables, in record order.
// Missing or non-numeric fields become 0.
func (d *Dataset) Points(variables []string) []core.Point {
	points := make([]core.Point, len(d.Records))
	for i, rec := range d.Records {
		p := make(core.Point, len(variables))
		for j, v := range variables {
			if f, ok := Numeric(rec[v]); ok {
				p[j] = f
			}
		}
		points[i] = p
	}
	return points
}

// Column returns the normalized values of field across all records.
func (d *Dataset) Column(field string) []any {
	col := make([]any, len(d.Records))
	for i, rec := range d.Records {
		col[i] = rec.Get(field)
	}
	return col
}

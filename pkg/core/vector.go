package core

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// ErrDimensionMismatch is returned when two points of different length are compared.
var ErrDimensionMismatch = errors.New("core: dimension mismatch")

// Point is a fixed-length tuple of numeric values extracted from a record.
type Point = []float64

// Euclidean returns the L2 distance between a and b.
func Euclidean(a, b Point) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}
	if len(a) == 0 {
		return 0, nil
	}
	return floats.Distance(a, b, 2), nil
}

// MustEuclidean is Euclidean for callers that already ran CheckDims.
// A mismatch here is a programming error and panics.
func MustEuclidean(a, b Point) float64 {
	d, err := Euclidean(a, b)
	if err != nil {
		panic(err)
	}
	return d
}

// CheckDims verifies that every point has the same length and returns it.
// An empty slice has dimension 0.
func CheckDims(points []Point) (int, error) {
	if len(points) == 0 {
		return 0, nil
	}
	dim := len(points[0])
	for i, p := range points {
		if len(p) != dim {
			return 0, fmt.Errorf("%w: point %d has %d values, want %d", ErrDimensionMismatch, i, len(p), dim)
		}
	}
	return dim, nil
}

// Centroid returns the componentwise mean of points[idx...].
// It returns nil when idx is empty.
func Centroid(points []Point, idx []int) Point {
	if len(idx) == 0 {
		return nil
	}
	c := make(Point, len(points[idx[0]]))
	for _, i := range idx {
		floats.Add(c, points[i])
	}
	floats.Scale(1/float64(len(idx)), c)
	return c
}

// Clone deep copies p.
func Clone(p Point) Point {
	if p == nil {
		return nil
	}
	out := make(Point, len(p))
	copy(out, p)
	return out
}

// MaxShift returns the largest distance moved between paired centroids.
func MaxShift(prev, next []Point) float64 {
	shift := 0.0
	for k := range prev {
		shift = math.Max(shift, MustEuclidean(prev[k], next[k]))
	}
	return shift
}

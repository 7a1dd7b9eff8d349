// Package displacement measures how far a correction moved each point of a
// frame.
//
// Points are paired by row index: the i-th original point corresponds to the
// i-th corrected point. Nothing beyond the point counts is checked, so the
// caller is responsible for passing two versions of the same frame.
package displacement

import (
	"errors"
	"fmt"
	"sort"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/framediff/internal/frame"
	"github.com/banshee-data/framediff/internal/monitoring"
)

// NearZeroThreshold is the mean displacement (meters) below which a
// correction is considered suspiciously small.
const NearZeroThreshold = 0.001

// ErrEmptyInput is returned when there are no point pairs to compare.
var ErrEmptyInput = errors.New("no point pairs to compare")

// LengthMismatch records a point count disagreement between the two sets.
// It is a warning: both sets are truncated to Compared points.
type LengthMismatch struct {
	Original  int
	Corrected int
	Compared  int
}

func (m LengthMismatch) String() string {
	return fmt.Sprintf("point count mismatch: original=%d corrected=%d, truncated to %d",
		m.Original, m.Corrected, m.Compared)
}

// Result holds per-point displacements (meters) and their summary.
type Result struct {
	Distances []float64
	Count     int
	Mean      float64
	Max       float64
	Min       float64
	StdDev    float64 // Population standard deviation
	Median    float64
	P95       float64

	// Mismatch is non-nil when the inputs differed in length.
	Mismatch *LengthMismatch
}

// NearZero reports whether the mean displacement is below threshold.
func (r Result) NearZero(threshold float64) bool {
	return r.Mean < threshold
}

// Analyze pairs original and corrected by index and measures the Euclidean
// distance between each pair. When the sets differ in length the longer one
// is truncated to the shorter, keeping prefixes.
func Analyze(original, corrected frame.PointSet) (Result, error) {
	var res Result

	n := min(len(original), len(corrected))
	if len(original) != len(corrected) {
		m := LengthMismatch{Original: len(original), Corrected: len(corrected), Compared: n}
		res.Mismatch = &m
		monitoring.Opsf("displacement: %s", m)
	}
	if n == 0 {
		return Result{}, ErrEmptyInput
	}

	res.Distances = Distances(original[:n].Vectors(), corrected[:n].Vectors())
	res.Count = n
	res.Mean, res.StdDev = stat.PopMeanStdDev(res.Distances, nil)
	res.Max = floats.Max(res.Distances)
	res.Min = floats.Min(res.Distances)

	sorted := make([]float64, n)
	copy(sorted, res.Distances)
	sort.Float64s(sorted)
	res.Median = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	res.P95 = stat.Quantile(0.95, stat.Empirical, sorted, nil)

	monitoring.Diagf("displacement: %d pairs mean=%.6fm max=%.6fm", res.Count, res.Mean, res.Max)
	return res, nil
}

// Distances returns |corrected[i] - original[i]| for each index. Both
// slices must have the same length.
func Distances(original, corrected []r3.Vector) []float64 {
	out := make([]float64, len(original))
	for i := range original {
		out[i] = corrected[i].Sub(original[i]).Norm()
	}
	return out
}

// Package render draws a frame comparison: two point-cloud scatter panels
// coloured by intensity and a histogram of per-point displacement.
//
// FigurePNG produces a static three-panel image with gonum/plot. The point
// clouds are shown top-down (X/Y) since gonum/plot has no 3D axes.
// PageHTML produces an interactive go-echarts page with true 3D scatters.
package render

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/framediff/internal/displacement"
	"github.com/banshee-data/framediff/internal/frame"
	"github.com/banshee-data/framediff/internal/units"
)

// Options controls both renderers.
type Options struct {
	Step  int    // Draw every Step-th point of each cloud
	Bins  int    // Histogram bins
	Units string // Display unit for displacement
}

// DefaultOptions matches the defaults of the run configuration.
func DefaultOptions() Options {
	return Options{Step: 5, Bins: 50, Units: units.CM}
}

func (o Options) normalised() Options {
	if o.Step <= 0 {
		o.Step = 1
	}
	if o.Bins <= 0 {
		o.Bins = 50
	}
	if !units.IsValid(o.Units) {
		o.Units = units.CM
	}
	return o
}

// Input bundles what the renderers draw.
type Input struct {
	Original  frame.PointSet
	Corrected frame.PointSet
	Result    displacement.Result
}

func (in Input) validate() error {
	if len(in.Result.Distances) == 0 {
		return fmt.Errorf("render: no displacements to plot")
	}
	return nil
}

// decimate keeps every step-th point, starting with the first.
func decimate(ps frame.PointSet, step int) frame.PointSet {
	if step <= 1 {
		return ps
	}
	out := make(frame.PointSet, 0, len(ps)/step+1)
	for i := 0; i < len(ps); i += step {
		out = append(out, ps[i])
	}
	return out
}

// intensityRange returns the min and max intensity of ps, widened so that
// max > min.
func intensityRange(ps frame.PointSet) (lo, hi float64) {
	if len(ps) == 0 {
		return 0, 1
	}
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, p := range ps {
		lo = math.Min(lo, p.Intensity)
		hi = math.Max(hi, p.Intensity)
	}
	if hi <= lo {
		hi = lo + 1
	}
	return lo, hi
}

// Histogram bins values into n equal-width bins spanning [min, max]. It
// returns the n+1 bin edges and the n counts. The maximum value falls in
// the last bin.
func Histogram(values []float64, n int) (edges, counts []float64) {
	if len(values) == 0 || n <= 0 {
		return nil, nil
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	lo, hi := sorted[0], sorted[len(sorted)-1]
	if hi <= lo {
		hi = lo + 1
	}
	edges = floats.Span(make([]float64, n+1), lo, hi)
	// stat.Histogram treats the upper edge as exclusive.
	dividers := make([]float64, len(edges))
	copy(dividers, edges)
	dividers[n] = math.Nextafter(hi, math.Inf(1))

	counts = stat.Histogram(make([]float64, n), dividers, sorted, nil)
	return edges, counts
}

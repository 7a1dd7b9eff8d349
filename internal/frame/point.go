package frame

import (
	"fmt"
	"time"

	"github.com/golang/geo/r3"
)

// Point is a single LiDAR return in sensor Cartesian coordinates.
type Point struct {
	TimestampNs int64   // Acquisition time, nanoseconds since an arbitrary epoch
	X, Y, Z     float64 // Position (meters)
	Intensity   float64 // Sensor-reported reflectivity
}

// Vector returns the point position.
func (p Point) Vector() r3.Vector {
	return r3.Vector{X: p.X, Y: p.Y, Z: p.Z}
}

// PointSet is an ordered sequence of points read from one source.
type PointSet []Point

// Vectors returns the positions of ps in row order.
func (ps PointSet) Vectors() []r3.Vector {
	out := make([]r3.Vector, len(ps))
	for i, p := range ps {
		out[i] = p.Vector()
	}
	return out
}

// TimeRange returns the first and last timestamp of ps.
// Both are zero for an empty set.
func (ps PointSet) TimeRange() (first, last int64) {
	if len(ps) == 0 {
		return 0, 0
	}
	return ps[0].TimestampNs, ps[len(ps)-1].TimestampNs
}

// Window is a closed timestamp interval [Start, End] in nanoseconds.
type Window struct {
	Start int64
	End   int64
}

// Contains reports whether ts lies inside the window, bounds included.
func (w Window) Contains(ts int64) bool {
	return ts >= w.Start && ts <= w.End
}

// Duration returns the window length.
func (w Window) Duration() time.Duration {
	return time.Duration(w.End - w.Start)
}

// Validate rejects inverted windows.
func (w Window) Validate() error {
	if w.Start > w.End {
		return fmt.Errorf("%w: start %d is after end %d", ErrInvalidWindow, w.Start, w.End)
	}
	return nil
}

func (w Window) String() string {
	return fmt.Sprintf("[%d, %d]", w.Start, w.End)
}

// Package testutil provides shared point-cloud fixtures for tests.
package testutil

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"testing"

	"github.com/banshee-data/framediff/internal/frame"
	"github.com/banshee-data/framediff/internal/fsutil"
)

// SortedPoints returns n points with timestamps start, start+step, ...
// Positions follow a deterministic spiral; intensity cycles through 0..255.
func SortedPoints(n int, start, step int64) frame.PointSet {
	ps := make(frame.PointSet, n)
	for i := range ps {
		f := float64(i)
		ps[i] = frame.Point{
			TimestampNs: start + int64(i)*step,
			X:           0.01 * f,
			Y:           -0.02 * f,
			Z:           0.5 + 0.001*f,
			Intensity:   float64(i % 256),
		}
	}
	return ps
}

// Shifted returns a copy of ps with every point moved by (dx, dy, dz).
func Shifted(ps frame.PointSet, dx, dy, dz float64) frame.PointSet {
	out := make(frame.PointSet, len(ps))
	for i, p := range ps {
		p.X += dx
		p.Y += dy
		p.Z += dz
		out[i] = p
	}
	return out
}

// CSV encodes ps with the standard point header.
func CSV(ps frame.PointSet) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(frame.RequiredColumns)
	for _, p := range ps {
		_ = w.Write([]string{
			strconv.FormatInt(p.TimestampNs, 10),
			strconv.FormatFloat(p.X, 'g', -1, 64),
			strconv.FormatFloat(p.Y, 'g', -1, 64),
			strconv.FormatFloat(p.Z, 'g', -1, 64),
			strconv.FormatFloat(p.Intensity, 'g', -1, 64),
		})
	}
	w.Flush()
	return buf.Bytes()
}

// WriteCSV writes ps as CSV to name on fsys, failing the test on error.
func WriteCSV(t *testing.T, fsys fsutil.FileSystem, name string, ps frame.PointSet) {
	t.Helper()
	w, err := fsutil.CreateOutput(fsys, name)
	if err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	if _, err := w.Write(CSV(ps)); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close %s: %v", name, err)
	}
}


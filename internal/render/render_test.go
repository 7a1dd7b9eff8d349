package render

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/framediff/internal/displacement"
	"github.com/banshee-data/framediff/internal/frame"
)

func makeInput(t *testing.T, n int) Input {
	t.Helper()
	orig := make(frame.PointSet, n)
	corr := make(frame.PointSet, n)
	for i := range n {
		f := float64(i)
		orig[i] = frame.Point{TimestampNs: int64(i), X: f, Y: -f, Z: 0.1 * f, Intensity: float64(i % 17)}
		corr[i] = frame.Point{TimestampNs: int64(i), X: f + 0.01*f, Y: -f, Z: 0.1 * f, Intensity: float64(i % 17)}
	}
	res, err := displacement.Analyze(orig, corr)
	require.NoError(t, err)
	return Input{Original: orig, Corrected: corr, Result: res}
}

func TestDecimate(t *testing.T) {
	ps := make(frame.PointSet, 11)
	for i := range ps {
		ps[i].TimestampNs = int64(i)
	}

	got := decimate(ps, 5)
	require.Len(t, got, 3)
	assert.Equal(t, int64(0), got[0].TimestampNs)
	assert.Equal(t, int64(5), got[1].TimestampNs)
	assert.Equal(t, int64(10), got[2].TimestampNs)

	assert.Len(t, decimate(ps, 1), 11)
	assert.Len(t, decimate(ps, 0), 11)
	assert.Empty(t, decimate(nil, 3))
}

func TestIntensityRange(t *testing.T) {
	lo, hi := intensityRange(frame.PointSet{{Intensity: 4}, {Intensity: -2}, {Intensity: 9}})
	assert.Equal(t, -2.0, lo)
	assert.Equal(t, 9.0, hi)

	lo, hi = intensityRange(frame.PointSet{{Intensity: 3}, {Intensity: 3}})
	assert.Equal(t, 3.0, lo)
	assert.Equal(t, 4.0, hi)

	lo, hi = intensityRange(nil)
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 1.0, hi)
}

func TestHistogram(t *testing.T) {
	vals := []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	edges, counts := Histogram(vals, 5)
	require.Len(t, edges, 6)
	require.Len(t, counts, 5)
	assert.Equal(t, 0.0, edges[0])
	assert.Equal(t, 10.0, edges[5])

	// Maximum lands in the last bin.
	assert.Equal(t, []float64{2, 2, 2, 2, 3}, counts)

	var total float64
	for _, c := range counts {
		total += c
	}
	assert.Equal(t, float64(len(vals)), total)

	// Input order is untouched.
	shuffled := []float64{3, 1, 2}
	_, _ = Histogram(shuffled, 2)
	assert.Equal(t, []float64{3, 1, 2}, shuffled)
}

func TestHistogramDegenerate(t *testing.T) {
	edges, counts := Histogram([]float64{0, 0, 0}, 4)
	require.Len(t, edges, 5)
	assert.Equal(t, 3.0, counts[0])

	edges, counts = Histogram(nil, 4)
	assert.Nil(t, edges)
	assert.Nil(t, counts)

	edges, counts = Histogram([]float64{1}, 0)
	assert.Nil(t, edges)
	assert.Nil(t, counts)
}

func TestOptionsNormalised(t *testing.T) {
	o := Options{Step: -1, Bins: 0, Units: "furlong"}.normalised()
	assert.Equal(t, Options{Step: 1, Bins: 50, Units: "cm"}, o)

	assert.Equal(t, DefaultOptions(), DefaultOptions().normalised())
}

func TestFigurePNG(t *testing.T) {
	in := makeInput(t, 200)

	var buf bytes.Buffer
	require.NoError(t, FigurePNG(&buf, in, DefaultOptions()))
	require.Greater(t, buf.Len(), 8)
	assert.Equal(t, []byte("\x89PNG\r\n\x1a\n"), buf.Bytes()[:8])
}

func TestFigurePNGToFile(t *testing.T) {
	in := makeInput(t, 50)
	path := filepath.Join(t.TempDir(), "out.png")

	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, FigurePNG(f, in, Options{Step: 1, Bins: 10, Units: "mm"}))
	require.NoError(t, f.Close())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestPageHTML(t *testing.T) {
	in := makeInput(t, 100)

	var buf bytes.Buffer
	require.NoError(t, PageHTML(&buf, in, DefaultOptions()))

	out := buf.String()
	assert.True(t, strings.Contains(out, "echarts"))
	assert.Contains(t, out, "Corrected (FPGA)")
	assert.Contains(t, out, "Correction distribution")
}

func TestRenderEmptyInput(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, FigurePNG(&buf, Input{}, DefaultOptions()))
	assert.Error(t, PageHTML(&buf, Input{}, DefaultOptions()))
	assert.Zero(t, buf.Len())
}

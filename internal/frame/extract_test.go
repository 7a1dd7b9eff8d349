package frame

import (
	"errors"
	"io"
	"math/rand"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pointsAt(ts ...int64) PointSet {
	out := make(PointSet, len(ts))
	for i, t := range ts {
		out[i] = Point{TimestampNs: t, X: float64(i), Y: float64(2 * i), Z: 0.5, Intensity: float64(i % 256)}
	}
	return out
}

func timestamps(ps PointSet) []int64 {
	out := make([]int64, len(ps))
	for i, p := range ps {
		out[i] = p.TimestampNs
	}
	return out
}

// countingReader records how many chunks were pulled from the wrapped reader.
type countingReader struct {
	ChunkReader
	calls int
}

func (c *countingReader) NextChunk() ([]Point, error) {
	c.calls++
	return c.ChunkReader.NextChunk()
}

type failingReader struct {
	first []Point
	sent  bool
	err   error
}

func (f *failingReader) NextChunk() ([]Point, error) {
	if !f.sent {
		f.sent = true
		return f.first, nil
	}
	return nil, f.err
}

func TestExtract_Basic(t *testing.T) {
	src := pointsAt(100, 200, 300, 400, 500)

	got, err := Extract(NewSliceReader(src, 2), Window{Start: 200, End: 400})
	require.NoError(t, err)
	assert.Equal(t, []int64{200, 300, 400}, timestamps(got))
	assert.Len(t, got, 3)
}

func TestExtract_NotFound(t *testing.T) {
	src := pointsAt(100, 200, 300, 400, 500)

	tests := []struct {
		name string
		w    Window
	}{
		{"before source", Window{Start: 0, End: 99}},
		{"after source", Window{Start: 501, End: 900}},
		{"between rows", Window{Start: 201, End: 299}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(NewSliceReader(src, 2), tt.w)
			assert.Nil(t, got)
			assert.ErrorIs(t, err, ErrWindowNotFound)
		})
	}
}

func TestExtract_EmptySource(t *testing.T) {
	_, err := Extract(NewSliceReader(nil, 10), Window{Start: 0, End: 10})
	assert.ErrorIs(t, err, ErrWindowNotFound)
}

func TestExtract_InvalidWindow(t *testing.T) {
	r := &countingReader{ChunkReader: NewSliceReader(pointsAt(1, 2, 3), 1)}

	_, err := Extract(r, Window{Start: 10, End: 5})
	assert.ErrorIs(t, err, ErrInvalidWindow)
	assert.Zero(t, r.calls, "no chunk should be read for an inverted window")
}

func TestExtract_SinglePointWindow(t *testing.T) {
	got, err := Extract(NewSliceReader(pointsAt(100, 200, 300), 1), Window{Start: 200, End: 200})
	require.NoError(t, err)
	assert.Equal(t, []int64{200}, timestamps(got))
}

func TestExtract_DuplicateTimestampsAcrossChunks(t *testing.T) {
	src := pointsAt(100, 200, 200, 200, 200, 300)

	got, err := Extract(NewSliceReader(src, 2), Window{Start: 200, End: 200})
	require.NoError(t, err)
	assert.Equal(t, []int64{200, 200, 200, 200}, timestamps(got))
}

func TestExtract_StopsAfterWindow(t *testing.T) {
	// 10 chunks of one row; the window covers rows 3 and 4.
	src := pointsAt(0, 10, 20, 30, 40, 50, 60, 70, 80, 90)
	r := &countingReader{ChunkReader: NewSliceReader(src, 1)}

	got, stats, err := ExtractWithStats(r, Window{Start: 30, End: 40})
	require.NoError(t, err)
	assert.Equal(t, []int64{30, 40}, timestamps(got))
	assert.True(t, stats.StoppedEarly)
	assert.Equal(t, 6, stats.Chunks)
	assert.Equal(t, int64(6), stats.RowsScanned)
	assert.Equal(t, 2, stats.Matched)
	assert.Equal(t, 6, r.calls, "the scan must not read past the first empty chunk after the window")
}

func TestExtract_WindowAtEndOfSource(t *testing.T) {
	src := pointsAt(0, 10, 20, 30)

	got, stats, err := ExtractWithStats(NewSliceReader(src, 3), Window{Start: 20, End: 1000})
	require.NoError(t, err)
	assert.Equal(t, []int64{20, 30}, timestamps(got))
	assert.False(t, stats.StoppedEarly)
	assert.Equal(t, 2, stats.Chunks)
}

func TestExtract_ReaderError(t *testing.T) {
	boom := errors.New("disk on fire")
	r := &failingReader{first: pointsAt(1, 2), err: boom}

	_, err := Extract(r, Window{Start: 0, End: 100})
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "read chunk 2")
}

func TestExtract_ResultIndependentOfReaderBuffer(t *testing.T) {
	// CSVReader reuses its chunk buffer; extracted points must survive that.
	data := "timestamp_ns,x,y,z,intensity\n1,1,0,0,1\n2,2,0,0,2\n3,3,0,0,3\n4,4,0,0,4\n"
	r := mustCSVReader(t, data, 1)

	got, err := Extract(r, Window{Start: 1, End: 3})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, []float64{got[0].X, got[1].X, got[2].X})
}

func TestExtract_ChunkSizeInvariance(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 20; trial++ {
		n := 1 + rng.Intn(60)
		ts := make([]int64, n)
		for i := range ts {
			ts[i] = int64(rng.Intn(200))
		}
		sort.Slice(ts, func(i, j int) bool { return ts[i] < ts[j] })
		src := pointsAt(ts...)

		start := int64(rng.Intn(220)) - 10
		end := start + int64(rng.Intn(80))
		w := Window{Start: start, End: end}

		var want PointSet
		for _, p := range src {
			if p.TimestampNs >= start && p.TimestampNs <= end {
				want = append(want, p)
			}
		}

		for chunk := 1; chunk <= n+1; chunk++ {
			got, err := Extract(NewSliceReader(src, chunk), w)
			if len(want) == 0 {
				if !errors.Is(err, ErrWindowNotFound) {
					t.Fatalf("trial %d chunk %d: err = %v, want ErrWindowNotFound", trial, chunk, err)
				}
				continue
			}
			if err != nil {
				t.Fatalf("trial %d chunk %d: unexpected error: %v", trial, chunk, err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("trial %d chunk %d window %s mismatch (-want +got):\n%s", trial, chunk, w, diff)
			}
		}
	}
}

func TestChunks_StopsOnBreak(t *testing.T) {
	r := &countingReader{ChunkReader: NewSliceReader(pointsAt(1, 2, 3, 4), 1)}
	for range Chunks(r) {
		break
	}
	assert.Equal(t, 1, r.calls)
}

func TestReadAll(t *testing.T) {
	src := pointsAt(5, 6, 7, 8, 9)
	got, err := ReadAll(NewSliceReader(src, 2))
	require.NoError(t, err)
	if diff := cmp.Diff(src, got); diff != "" {
		t.Errorf("ReadAll mismatch (-want +got):\n%s", diff)
	}

	_, err = ReadAll(&failingReader{err: io.ErrUnexpectedEOF})
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

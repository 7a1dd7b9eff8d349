package frame

import (
	"errors"
	"fmt"
	"io"
	"iter"
)

// DefaultChunkRows is the number of rows a reader returns per chunk unless
// configured otherwise. It bounds memory, not correctness.
const DefaultChunkRows = 100_000

// ChunkReader yields consecutive chunks of a timestamp-ordered point source.
//
// NextChunk returns the next non-empty chunk in source order, or io.EOF once
// the source is exhausted. A chunk is only valid until the following call;
// callers that keep points must copy them.
type ChunkReader interface {
	NextChunk() ([]Point, error)
}

// Chunks adapts r into a lazy sequence. Iteration ends cleanly at io.EOF;
// any other error is yielded once and ends the sequence.
func Chunks(r ChunkReader) iter.Seq2[[]Point, error] {
	return func(yield func([]Point, error) bool) {
		for {
			chunk, err := r.NextChunk()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(chunk, nil) {
				return
			}
		}
	}
}

// ReadAll drains r into a single PointSet.
func ReadAll(r ChunkReader) (PointSet, error) {
	var out PointSet
	for chunk, err := range Chunks(r) {
		if err != nil {
			return nil, err
		}
		out = append(out, chunk...)
	}
	return out, nil
}

// SliceReader serves an in-memory PointSet in fixed-size chunks.
type SliceReader struct {
	points    PointSet
	chunkRows int
	pos       int
}

// NewSliceReader returns a reader over points. chunkRows <= 0 selects
// DefaultChunkRows.
func NewSliceReader(points PointSet, chunkRows int) *SliceReader {
	if chunkRows <= 0 {
		chunkRows = DefaultChunkRows
	}
	return &SliceReader{points: points, chunkRows: chunkRows}
}

// NextChunk implements ChunkReader.
func (s *SliceReader) NextChunk() ([]Point, error) {
	if s.pos >= len(s.points) {
		return nil, io.EOF
	}
	end := min(s.pos+s.chunkRows, len(s.points))
	chunk := s.points[s.pos:end]
	s.pos = end
	return chunk, nil
}

func validateChunkRows(n int) error {
	if n < 0 {
		return fmt.Errorf("chunk rows must be non-negative, got %d", n)
	}
	return nil
}

package framestore

import (
	"fmt"
	"io"

	"github.com/banshee-data/framediff/internal/frame"
)

// Reader pages through one import in source order. It implements
// frame.ChunkReader.
type Reader struct {
	s         *Store
	importID  string
	chunkRows int
	lastSeq   int64
	buf       []frame.Point
	done      bool
}

// NewReader returns a chunked reader over importID. chunkRows <= 0 selects
// frame.DefaultChunkRows.
func (s *Store) NewReader(importID string, chunkRows int) *Reader {
	if chunkRows <= 0 {
		chunkRows = frame.DefaultChunkRows
	}
	return &Reader{s: s, importID: importID, chunkRows: chunkRows}
}

// NextChunk implements frame.ChunkReader.
func (r *Reader) NextChunk() ([]frame.Point, error) {
	if r.done {
		return nil, io.EOF
	}
	rows, err := r.s.db.Query(`
		SELECT seq, timestamp_ns, x, y, z, intensity FROM points
		WHERE import_id = ? AND seq > ?
		ORDER BY seq
		LIMIT ?`, r.importID, r.lastSeq, r.chunkRows)
	if err != nil {
		return nil, fmt.Errorf("query points: %w", err)
	}
	defer rows.Close()

	r.buf = r.buf[:0]
	for rows.Next() {
		var p frame.Point
		if err := rows.Scan(&r.lastSeq, &p.TimestampNs, &p.X, &p.Y, &p.Z, &p.Intensity); err != nil {
			return nil, fmt.Errorf("scan point: %w", err)
		}
		r.buf = append(r.buf, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate points: %w", err)
	}

	if len(r.buf) < r.chunkRows {
		r.done = true
	}
	if len(r.buf) == 0 {
		return nil, io.EOF
	}
	return r.buf, nil
}

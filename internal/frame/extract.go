package frame

import (
	"fmt"

	"github.com/banshee-data/framediff/internal/monitoring"
)

// ExtractStats describes one extraction scan.
type ExtractStats struct {
	Chunks       int   `json:"chunks"`        // Chunks read from the source
	RowsScanned  int64 `json:"rows_scanned"`  // Rows inspected across all chunks
	Matched      int   `json:"matched"`       // Rows inside the window
	StoppedEarly bool  `json:"stopped_early"` // Scan ended on the first empty chunk after the window
}

// Extract returns the rows of r whose timestamp lies in w, in source order.
// It returns ErrWindowNotFound if no row matches.
func Extract(r ChunkReader, w Window) (PointSet, error) {
	points, _, err := ExtractWithStats(r, w)
	return points, err
}

// ExtractWithStats is Extract plus scan statistics.
//
// Chunks are filtered one at a time. Once a chunk has contributed rows the
// window has started, and the first later chunk contributing none ends the
// scan without reading the remainder of the source. This relies on the
// source being sorted by timestamp.
func ExtractWithStats(r ChunkReader, w Window) (PointSet, ExtractStats, error) {
	var stats ExtractStats
	if err := w.Validate(); err != nil {
		return nil, stats, err
	}

	var out PointSet
	started := false
	for chunk, err := range Chunks(r) {
		if err != nil {
			return nil, stats, fmt.Errorf("read chunk %d: %w", stats.Chunks+1, err)
		}
		stats.Chunks++
		stats.RowsScanned += int64(len(chunk))

		before := len(out)
		for _, p := range chunk {
			if w.Contains(p.TimestampNs) {
				out = append(out, p)
			}
		}
		selected := len(out) - before
		monitoring.Tracef("extract: chunk=%d rows=%d selected=%d", stats.Chunks, len(chunk), selected)

		if selected > 0 {
			started = true
			continue
		}
		if started {
			stats.StoppedEarly = true
			break
		}
	}

	stats.Matched = len(out)
	if len(out) == 0 {
		monitoring.Diagf("extract: window %s not found after %d chunks (%d rows)", w, stats.Chunks, stats.RowsScanned)
		return nil, stats, fmt.Errorf("%w %s", ErrWindowNotFound, w)
	}
	monitoring.Diagf("extract: window %s matched %d rows in %d chunks (%d rows scanned, early stop=%v)",
		w, stats.Matched, stats.Chunks, stats.RowsScanned, stats.StoppedEarly)
	return out, stats, nil
}

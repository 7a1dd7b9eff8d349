// Package report renders the numeric outcome of a frame comparison as text
// or JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/framediff/internal/displacement"
	"github.com/banshee-data/framediff/internal/frame"
	"github.com/banshee-data/framediff/internal/units"
)

// Stats is a displacement summary in meters.
type Stats struct {
	Mean   float64 `json:"mean_m"`
	Max    float64 `json:"max_m"`
	Min    float64 `json:"min_m"`
	Median float64 `json:"median_m"`
	P95    float64 `json:"p95_m"`
	StdDev float64 `json:"stddev_m"`
}

// Report is the summary of one comparison run.
type Report struct {
	RunID           string                       `json:"run_id"`
	RawSource       string                       `json:"raw_source"`
	CorrectedSource string                       `json:"corrected_source"`
	StartNs         int64                        `json:"start_ns"`
	EndNs           int64                        `json:"end_ns"`
	Scan            frame.ExtractStats           `json:"scan"`
	OriginalPoints  int                          `json:"original_points"`
	CorrectedPoints int                          `json:"corrected_points"`
	ComparedPoints  int                          `json:"compared_points"`
	Mismatch        *displacement.LengthMismatch `json:"length_mismatch,omitempty"`
	Displacement    Stats                        `json:"displacement"`
	NearZero        bool                         `json:"near_zero"`
	Units           string                       `json:"units"`
	ElapsedMs       int64                        `json:"elapsed_ms"`
}

// New builds a report with a fresh run ID.
func New(w frame.Window, scan frame.ExtractStats, original, corrected frame.PointSet, res displacement.Result, unit string) *Report {
	return &Report{
		RunID:           uuid.NewString(),
		StartNs:         w.Start,
		EndNs:           w.End,
		Scan:            scan,
		OriginalPoints:  len(original),
		CorrectedPoints: len(corrected),
		ComparedPoints:  res.Count,
		Mismatch:        res.Mismatch,
		Displacement: Stats{
			Mean:   res.Mean,
			Max:    res.Max,
			Min:    res.Min,
			Median: res.Median,
			P95:    res.P95,
			StdDev: res.StdDev,
		},
		NearZero: res.NearZero(displacement.NearZeroThreshold),
		Units:    unit,
	}
}

// SetElapsed records the wall time of the run.
func (r *Report) SetElapsed(d time.Duration) {
	r.ElapsedMs = d.Milliseconds()
}

// WriteText writes the human-readable summary.
func (r *Report) WriteText(w io.Writer) error {
	window := frame.Window{Start: r.StartNs, End: r.EndNs}
	ew := &errWriter{w: w}

	ew.printf("--- LiDAR frame comparison ---\n")
	ew.printf("Run ID:             %s\n", r.RunID)
	if r.RawSource != "" {
		ew.printf("Raw source:         %s\n", r.RawSource)
	}
	if r.CorrectedSource != "" {
		ew.printf("Corrected source:   %s\n", r.CorrectedSource)
	}
	ew.printf("Window:             %s (%s)\n", window, window.Duration())
	ew.printf("Chunks read:        %d (%d rows scanned, early stop: %t)\n",
		r.Scan.Chunks, r.Scan.RowsScanned, r.Scan.StoppedEarly)
	ew.printf("Original points:    %d\n", r.OriginalPoints)
	ew.printf("Corrected points:   %d\n", r.CorrectedPoints)
	if r.Mismatch != nil {
		ew.printf("WARNING: %s\n", r.Mismatch)
	}

	ew.printf("\n--- Displacement statistics ---\n")
	ew.printf("Points compared:    %d\n", r.ComparedPoints)
	r.printStat(ew, "Mean displacement:  ", r.Displacement.Mean)
	r.printStat(ew, "Max displacement:   ", r.Displacement.Max)
	r.printStat(ew, "Median:             ", r.Displacement.Median)
	r.printStat(ew, "95th percentile:    ", r.Displacement.P95)
	r.printStat(ew, "Std deviation:      ", r.Displacement.StdDev)
	ew.printf("-------------------------------\n")
	if r.NearZero {
		ew.printf("NOTE: mean correction is below %.1f mm. Check that the IMU transforms are not close to identity.\n",
			units.ConvertLength(displacement.NearZeroThreshold, units.MM))
	}
	return ew.err
}

func (r *Report) printStat(ew *errWriter, label string, meters float64) {
	unit := r.Units
	if unit == "" {
		unit = units.M
	}
	ew.printf("%s%.4f m (%.2f %s)\n", label, meters, units.ConvertLength(meters, unit), unit)
}

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// Write dispatches on format ("text" or "json").
func (r *Report) Write(w io.Writer, format string) error {
	switch format {
	case "json":
		return r.WriteJSON(w)
	case "text", "":
		return r.WriteText(w)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

// errWriter keeps the first write error so the text layout reads linearly.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...interface{}) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}

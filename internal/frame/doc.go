// Package frame owns the point model and windowed frame extraction.
//
// Responsibilities: reading timestamp-ordered point tables in bounded
// chunks (ChunkReader, CSVReader) and cutting a single time window out of
// them (Extract).
// Key types: Point, PointSet, Window, ChunkReader.
//
// Every reader assumes its source is sorted ascending by timestamp_ns.
// Duplicate timestamps are fine; an unsorted source produces an
// unspecified subset and is not detected.
package frame

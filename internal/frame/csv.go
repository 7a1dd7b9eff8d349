package frame

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Column names every point table must carry. Extra columns are ignored.
const (
	ColTimestamp = "timestamp_ns"
	ColX         = "x"
	ColY         = "y"
	ColZ         = "z"
	ColIntensity = "intensity"
)

// RequiredColumns lists the point table columns in canonical order.
var RequiredColumns = []string{ColTimestamp, ColX, ColY, ColZ, ColIntensity}

type columnIndex struct {
	ts, x, y, z, intensity int
}

// CSVReader reads a headed point CSV in fixed-size chunks. The chunk
// buffer is reused between calls.
type CSVReader struct {
	r         *csv.Reader
	cols      columnIndex
	chunkRows int
	buf       []Point
	rows      int64
	done      bool
}

// NewCSVReader consumes the header line of r and returns a chunked reader.
// chunkRows <= 0 selects DefaultChunkRows.
func NewCSVReader(r io.Reader, chunkRows int) (*CSVReader, error) {
	if err := validateChunkRows(chunkRows); err != nil {
		return nil, err
	}
	if chunkRows == 0 {
		chunkRows = DefaultChunkRows
	}

	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read csv header: empty input")
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	cols, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	return &CSVReader{
		r:         cr,
		cols:      cols,
		chunkRows: chunkRows,
		buf:       make([]Point, 0, min(chunkRows, 4096)),
	}, nil
}

func mapColumns(header []string) (columnIndex, error) {
	pos := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := pos[name]; !dup {
			pos[name] = i
		}
	}

	var missing []string
	lookup := func(name string) int {
		i, ok := pos[name]
		if !ok {
			missing = append(missing, name)
		}
		return i
	}
	cols := columnIndex{
		ts:        lookup(ColTimestamp),
		x:         lookup(ColX),
		y:         lookup(ColY),
		z:         lookup(ColZ),
		intensity: lookup(ColIntensity),
	}
	if len(missing) > 0 {
		return columnIndex{}, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return cols, nil
}

// RowsRead returns the number of data rows consumed so far.
func (c *CSVReader) RowsRead() int64 {
	return c.rows
}

// NextChunk implements ChunkReader.
func (c *CSVReader) NextChunk() ([]Point, error) {
	if c.done {
		return nil, io.EOF
	}
	c.buf = c.buf[:0]
	for len(c.buf) < c.chunkRows {
		rec, err := c.r.Read()
		if errors.Is(err, io.EOF) {
			c.done = true
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		p, err := c.parse(rec)
		if err != nil {
			line, _ := c.r.FieldPos(0)
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		c.rows++
		c.buf = append(c.buf, p)
	}
	if len(c.buf) == 0 {
		return nil, io.EOF
	}
	return c.buf, nil
}

func (c *CSVReader) parse(rec []string) (Point, error) {
	var (
		p   Point
		err error
	)
	if p.TimestampNs, err = strconv.ParseInt(strings.TrimSpace(rec[c.cols.ts]), 10, 64); err != nil {
		return Point{}, fmt.Errorf("parse %s: %w", ColTimestamp, err)
	}
	if p.X, err = parseFloat(rec[c.cols.x], ColX); err != nil {
		return Point{}, err
	}
	if p.Y, err = parseFloat(rec[c.cols.y], ColY); err != nil {
		return Point{}, err
	}
	if p.Z, err = parseFloat(rec[c.cols.z], ColZ); err != nil {
		return Point{}, err
	}
	if p.Intensity, err = parseFloat(rec[c.cols.intensity], ColIntensity); err != nil {
		return Point{}, err
	}
	return p, nil
}

func parseFloat(s, col string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", col, err)
	}
	return v, nil
}

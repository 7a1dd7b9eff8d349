package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/banshee-data/framediff/internal/frame"
	"github.com/banshee-data/framediff/internal/framestore"
	"github.com/banshee-data/framediff/internal/fsutil"
	"github.com/banshee-data/framediff/internal/monitoring"
)

// isFrameStore reports whether path names a frame store database rather
// than a CSV file.
func isFrameStore(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}

// rawSource is an open chunked point source plus its cleanup.
type rawSource struct {
	frame.ChunkReader
	name  string
	close func() error
}

func (s *rawSource) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// openRawSource opens path as a CSV file or, for frame stores, the import
// named by importID (latest when empty).
func openRawSource(fsys fsutil.FileSystem, path, importID string, chunkRows int) (*rawSource, error) {
	if path == "" {
		return nil, errors.New("raw source path is required")
	}
	if !isFrameStore(path) {
		return openCSVSource(fsys, path, chunkRows)
	}

	// framestore.Open creates missing databases; a typo should not.
	if !fsys.Exists(path) {
		return nil, fmt.Errorf("frame store %s does not exist", path)
	}
	store, err := framestore.Open(path)
	if err != nil {
		return nil, err
	}

	var imp *framestore.Import
	if importID == "" {
		imp, err = store.LatestImport()
	} else {
		imp, err = store.GetImport(importID)
	}
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if imp.UnsortedRows > 0 {
		monitoring.Opsf("%s: import %s has %d unsorted rows; the extracted window may be incomplete",
			path, imp.ImportID, imp.UnsortedRows)
	}
	monitoring.Diagf("reading import %s (%d rows) from %s", imp.ImportID, imp.RowCount, path)

	return &rawSource{
		ChunkReader: store.NewReader(imp.ImportID, chunkRows),
		name:        fmt.Sprintf("%s#%s", path, imp.ImportID),
		close:       store.Close,
	}, nil
}

func openCSVSource(fsys fsutil.FileSystem, path string, chunkRows int) (*rawSource, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	r, err := frame.NewCSVReader(f, chunkRows)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &rawSource{ChunkReader: r, name: path, close: f.Close}, nil
}

// readCSV loads a whole CSV point table.
func readCSV(fsys fsutil.FileSystem, path string, chunkRows int) (frame.PointSet, error) {
	src, err := openCSVSource(fsys, path, chunkRows)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	ps, err := frame.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ps, nil
}

package framestore

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/banshee-data/framediff/internal/frame"
	"github.com/banshee-data/framediff/internal/monitoring"
)

// Import describes one point table ingested into the store.
type Import struct {
	ImportID         string `json:"import_id"`
	Source           string `json:"source"`
	RowCount         int64  `json:"row_count"`
	FirstTimestampNs int64  `json:"first_ts_ns"`
	LastTimestampNs  int64  `json:"last_ts_ns"`
	UnsortedRows     int64  `json:"unsorted_rows"` // Rows with a timestamp below their predecessor
	CreatedAt        int64  `json:"created_at"`
}

// Import copies every chunk of r into a new import. Each chunk is written in
// its own transaction; on failure the partial import is removed.
//
// Rows are stored in the order they are read. A timestamp lower than the
// previous row is counted in UnsortedRows and reported on the ops stream,
// but the row is kept as-is.
func (s *Store) Import(r frame.ChunkReader, source string) (*Import, error) {
	imp := &Import{
		ImportID:  uuid.New().String(),
		Source:    source,
		CreatedAt: s.clock.Now().UnixNano(),
	}
	if _, err := s.db.Exec(`INSERT INTO imports (import_id, source, created_at) VALUES (?, ?, ?)`,
		imp.ImportID, imp.Source, imp.CreatedAt); err != nil {
		return nil, fmt.Errorf("create import: %w", err)
	}

	var prev int64
	for chunk, err := range frame.Chunks(r) {
		if err == nil {
			err = s.insertChunk(imp, chunk, &prev)
		}
		if err != nil {
			if derr := s.DeleteImport(imp.ImportID); derr != nil {
				monitoring.Opsf("framestore: failed to remove partial import %s: %v", imp.ImportID, derr)
			}
			return nil, fmt.Errorf("import %s: %w", source, err)
		}
		monitoring.Tracef("framestore: import %s stored %d rows", imp.ImportID, imp.RowCount)
	}

	if _, err := s.db.Exec(`
		UPDATE imports SET row_count = ?, first_ts_ns = ?, last_ts_ns = ?, unsorted_rows = ?
		WHERE import_id = ?`,
		imp.RowCount, imp.FirstTimestampNs, imp.LastTimestampNs, imp.UnsortedRows, imp.ImportID); err != nil {
		return nil, fmt.Errorf("finalise import: %w", err)
	}

	if imp.UnsortedRows > 0 {
		monitoring.Opsf("framestore: import %s from %s has %d rows out of timestamp order; window extraction assumes sorted input",
			imp.ImportID, source, imp.UnsortedRows)
	}
	monitoring.Diagf("framestore: imported %d rows from %s as %s", imp.RowCount, source, imp.ImportID)
	return imp, nil
}

func (s *Store) insertChunk(imp *Import, chunk []frame.Point, prev *int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO points (import_id, seq, timestamp_ns, x, y, z, intensity) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range chunk {
		if imp.RowCount == 0 {
			imp.FirstTimestampNs = p.TimestampNs
		} else if p.TimestampNs < *prev {
			imp.UnsortedRows++
		}
		if _, err := stmt.Exec(imp.ImportID, imp.RowCount+1, p.TimestampNs, p.X, p.Y, p.Z, p.Intensity); err != nil {
			return fmt.Errorf("insert row %d: %w", imp.RowCount+1, err)
		}
		imp.RowCount++
		imp.LastTimestampNs = p.TimestampNs
		*prev = p.TimestampNs
	}
	return tx.Commit()
}

// DeleteImport removes an import and its points.
func (s *Store) DeleteImport(importID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM points WHERE import_id = ?`, importID); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM imports WHERE import_id = ?`, importID); err != nil {
		return err
	}
	return tx.Commit()
}

// Imports lists all imports, newest first.
func (s *Store) Imports() ([]*Import, error) {
	rows, err := s.db.Query(`
		SELECT import_id, source, row_count, COALESCE(first_ts_ns, 0), COALESCE(last_ts_ns, 0), unsorted_rows, created_at
		FROM imports ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Import
	for rows.Next() {
		imp, err := scanImport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, imp)
	}
	return out, rows.Err()
}

// GetImport returns the import with the given ID.
func (s *Store) GetImport(importID string) (*Import, error) {
	row := s.db.QueryRow(`
		SELECT import_id, source, row_count, COALESCE(first_ts_ns, 0), COALESCE(last_ts_ns, 0), unsorted_rows, created_at
		FROM imports WHERE import_id = ?`, importID)
	imp, err := scanImport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("import %s not found", importID)
	}
	return imp, err
}

// LatestImport returns the most recent import, or ErrNoImports.
func (s *Store) LatestImport() (*Import, error) {
	imps, err := s.Imports()
	if err != nil {
		return nil, err
	}
	if len(imps) == 0 {
		return nil, ErrNoImports
	}
	return imps[0], nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanImport(sc scanner) (*Import, error) {
	var imp Import
	if err := sc.Scan(&imp.ImportID, &imp.Source, &imp.RowCount, &imp.FirstTimestampNs,
		&imp.LastTimestampNs, &imp.UnsortedRows, &imp.CreatedAt); err != nil {
		return nil, err
	}
	return &imp, nil
}

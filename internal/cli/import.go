package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/banshee-data/framediff/internal/frame"
	"github.com/banshee-data/framediff/internal/framestore"
)

type importFlags struct {
	csv       string
	db        string
	chunkRows int
	list      bool
	jsonOut   bool
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	f := &importFlags{}

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Ingest a raw CSV point table into a frame store",
		Long: `Copy a raw CSV point table into a SQLite frame store so that repeated
window extractions do not re-parse the CSV. The store schema is created or
migrated on open. Use --list to show the imports a store holds.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.db == "" {
				return errors.New("--db is required")
			}
			if f.list {
				return runListImports(rootOpts, f, cmd.OutOrStdout())
			}
			return runImport(rootOpts, f, cmd.OutOrStdout())
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.csv, "csv", "", "raw CSV point table to import")
	fl.StringVar(&f.db, "db", "", "frame store database (created if missing)")
	fl.IntVar(&f.chunkRows, "chunk-rows", frame.DefaultChunkRows, "rows per insert transaction")
	fl.BoolVar(&f.list, "list", false, "list the imports in --db instead of importing")
	fl.BoolVar(&f.jsonOut, "json", false, "print results as JSON")

	return cmd
}

func runImport(opts *RootOptions, f *importFlags, out io.Writer) error {
	if f.csv == "" {
		return errors.New("--csv is required")
	}
	if !isFrameStore(f.db) {
		return fmt.Errorf("frame store %s must have a .db, .sqlite or .sqlite3 extension", f.db)
	}

	src, err := openCSVSource(opts.FS, f.csv, f.chunkRows)
	if err != nil {
		return err
	}
	defer src.Close()

	store, err := framestore.Open(f.db)
	if err != nil {
		return err
	}
	defer store.Close()

	imp, err := store.Import(src, f.csv)
	if err != nil {
		return err
	}
	if f.jsonOut {
		return writeJSON(out, imp)
	}
	fmt.Fprintf(out, "Imported %d rows from %s as %s\n", imp.RowCount, imp.Source, imp.ImportID)
	fmt.Fprintf(out, "Timestamps: [%d, %d]\n", imp.FirstTimestampNs, imp.LastTimestampNs)
	if imp.UnsortedRows > 0 {
		fmt.Fprintf(out, "WARNING: %d rows are out of timestamp order\n", imp.UnsortedRows)
	}
	return nil
}

func runListImports(opts *RootOptions, f *importFlags, out io.Writer) error {
	if !opts.FS.Exists(f.db) {
		return fmt.Errorf("frame store %s does not exist", f.db)
	}
	store, err := framestore.Open(f.db)
	if err != nil {
		return err
	}
	defer store.Close()

	imps, err := store.Imports()
	if err != nil {
		return err
	}
	if f.jsonOut {
		return writeJSON(out, imps)
	}
	if len(imps) == 0 {
		fmt.Fprintln(out, "No imports.")
		return nil
	}
	for _, imp := range imps {
		fmt.Fprintf(out, "%s  %s  rows=%d  ts=[%d, %d]  %s\n",
			imp.ImportID, time.Unix(0, imp.CreatedAt).UTC().Format(time.RFC3339),
			imp.RowCount, imp.FirstTimestampNs, imp.LastTimestampNs, imp.Source)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

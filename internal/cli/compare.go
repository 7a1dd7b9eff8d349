package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/banshee-data/framediff/internal/config"
	"github.com/banshee-data/framediff/internal/displacement"
	"github.com/banshee-data/framediff/internal/frame"
	"github.com/banshee-data/framediff/internal/fsutil"
	"github.com/banshee-data/framediff/internal/monitoring"
	"github.com/banshee-data/framediff/internal/render"
	"github.com/banshee-data/framediff/internal/report"
	"github.com/banshee-data/framediff/internal/units"
)

// runFlags are the command-line values that map onto config.RunConfig.
type runFlags struct {
	configPath string

	raw       string
	corrected string
	importID  string
	start     int64
	end       int64
	chunkRows int
	step      int
	bins      int
	units     string
	format    string
	png       string
	html      string
}

// NewCompareCommand creates the compare command.
func NewCompareCommand(rootOpts *RootOptions) *cobra.Command {
	f := &runFlags{}

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Extract a window and measure per-point displacement",
		Long: `Extract the points of the raw source whose timestamp lies in [start, end],
pair them with the corrected frame by row index and report displacement
statistics.

The raw source may be a CSV file or a frame store (.db/.sqlite) created with
"framediff import". The corrected source is always a CSV file. Both tables
need the columns timestamp_ns, x, y, z and intensity and must be sorted by
timestamp_ns.

Flags override values from --config.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.resolve(cmd)
			if err != nil {
				return err
			}
			return runCompare(rootOpts, cfg, cmd.OutOrStdout())
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.configPath, "config", "", "run configuration file (.json, .yaml or .yml)")
	fl.StringVar(&f.raw, "raw", "", "raw point table (CSV or frame store)")
	fl.StringVar(&f.corrected, "corrected", "", "corrected point table (CSV)")
	fl.StringVar(&f.importID, "import-id", "", "frame store import to read (default latest)")
	fl.Int64Var(&f.start, "start", 0, "window start timestamp (ns, inclusive)")
	fl.Int64Var(&f.end, "end", 0, "window end timestamp (ns, inclusive)")
	fl.IntVar(&f.chunkRows, "chunk-rows", config.DefaultChunkRows, "rows read per chunk")
	fl.IntVar(&f.step, "step", config.DefaultPlotStep, "plot every n-th point")
	fl.IntVar(&f.bins, "bins", config.DefaultHistBins, "histogram bins")
	fl.StringVar(&f.units, "units", config.DefaultUnits, "display unit ("+units.GetValidUnitsString()+")")
	fl.StringVar(&f.format, "format", config.DefaultFormat, "report format (text|json)")
	fl.StringVar(&f.png, "png", "", "write the comparison figure to this PNG file")
	fl.StringVar(&f.html, "html", "", "write an interactive HTML page to this file")

	return cmd
}

// resolve layers defaults, the config file and explicitly set flags, in
// that order, and validates the result.
func (f *runFlags) resolve(cmd *cobra.Command) (*config.RunConfig, error) {
	cfg := config.DefaultRunConfig()
	if f.configPath != "" {
		loaded, err := config.LoadRunConfig(f.configPath)
		if err != nil {
			return nil, err
		}
		cfg.Merge(loaded)
	}
	cfg.Merge(f.overrides(cmd))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// overrides returns a config holding only the flags the user set.
func (f *runFlags) overrides(cmd *cobra.Command) *config.RunConfig {
	o := config.EmptyRunConfig()
	set := func(name string) bool {
		fl := cmd.Flags().Lookup(name)
		return fl != nil && fl.Changed
	}
	if set("raw") {
		o.RawPath = &f.raw
	}
	if set("corrected") {
		o.CorrectedPath = &f.corrected
	}
	if set("import-id") {
		o.ImportID = &f.importID
	}
	if set("start") {
		o.StartNs = &f.start
	}
	if set("end") {
		o.EndNs = &f.end
	}
	if set("chunk-rows") {
		o.ChunkRows = &f.chunkRows
	}
	if set("step") {
		o.PlotStep = &f.step
	}
	if set("bins") {
		o.HistBins = &f.bins
	}
	if set("units") {
		o.Units = &f.units
	}
	if set("format") {
		o.Format = &f.format
	}
	if set("png") {
		o.OutputPNG = &f.png
	}
	if set("html") {
		o.OutputHTML = &f.html
	}
	return o
}

func runCompare(opts *RootOptions, cfg *config.RunConfig, out io.Writer) error {
	started := opts.Clock.Now()

	window, err := cfg.Window()
	if err != nil {
		return err
	}
	if cfg.GetCorrectedPath() == "" {
		return errors.New("corrected source path is required")
	}

	original, scan, err := extractWindow(opts.FS, cfg, window)
	if err != nil {
		return err
	}

	corrected, err := readCSV(opts.FS, cfg.GetCorrectedPath(), cfg.GetChunkRows())
	if err != nil {
		return err
	}
	monitoring.Diagf("loaded %d corrected points from %s", len(corrected), cfg.GetCorrectedPath())

	res, err := displacement.Analyze(original, corrected)
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	rep := report.New(window, scan, original, corrected, res, cfg.GetUnits())
	rep.RawSource = cfg.GetRawPath()
	rep.CorrectedSource = cfg.GetCorrectedPath()
	rep.SetElapsed(opts.Clock.Since(started))
	if err := rep.Write(out, cfg.GetFormat()); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	in := render.Input{Original: original, Corrected: corrected, Result: res}
	ro := render.Options{Step: cfg.GetPlotStep(), Bins: cfg.GetHistBins(), Units: cfg.GetUnits()}
	if path := cfg.GetOutputPNG(); path != "" {
		if err := writeOutput(opts.FS, path, func(w io.Writer) error { return render.FigurePNG(w, in, ro) }); err != nil {
			return err
		}
	}
	if path := cfg.GetOutputHTML(); path != "" {
		if err := writeOutput(opts.FS, path, func(w io.Writer) error { return render.PageHTML(w, in, ro) }); err != nil {
			return err
		}
	}
	return nil
}

// extractWindow scans the configured raw source for window.
func extractWindow(fsys fsutil.FileSystem, cfg *config.RunConfig, window frame.Window) (frame.PointSet, frame.ExtractStats, error) {
	src, err := openRawSource(fsys, cfg.GetRawPath(), cfg.GetImportID(), cfg.GetChunkRows())
	if err != nil {
		return nil, frame.ExtractStats{}, err
	}
	defer src.Close()

	ps, stats, err := frame.ExtractWithStats(src, window)
	if err != nil {
		return nil, stats, fmt.Errorf("%s: %w", src.name, err)
	}
	monitoring.Diagf("extracted %d points from %s", len(ps), src.name)
	return ps, stats, nil
}

// writeOutput creates path and streams fn into it.
func writeOutput(fsys fsutil.FileSystem, path string, fn func(io.Writer) error) error {
	w, err := fsutil.CreateOutput(fsys, path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := fn(w); err != nil {
		w.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	monitoring.Opsf("wrote %s", path)
	return nil
}

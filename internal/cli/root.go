// Package cli implements the framediff command tree.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/banshee-data/framediff/internal/fsutil"
	"github.com/banshee-data/framediff/internal/monitoring"
	"github.com/banshee-data/framediff/internal/timeutil"
)

// RootOptions holds global flags and the environment shared by all commands.
type RootOptions struct {
	Verbose bool
	Trace   bool

	FS    fsutil.FileSystem
	Clock timeutil.Clock
}

// NewRootCommand creates the root command using the real filesystem and clock.
func NewRootCommand() *cobra.Command {
	return NewRootCommandWith(&RootOptions{
		FS:    fsutil.OSFileSystem{},
		Clock: timeutil.RealClock{},
	})
}

// NewRootCommandWith creates the root command over the given environment.
// Flag values are written into opts.
func NewRootCommandWith(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "framediff",
		Short: "Compare a raw LiDAR frame with its motion-compensated version",
		Long: `framediff extracts one time window from a raw LiDAR point table, pairs it
with the corrected (FPGA-compensated) frame by row index, and reports how far
each point was moved. It can also render the two clouds and the displacement
histogram as PNG or interactive HTML.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			w := monitoring.LogWriters{Ops: cmd.ErrOrStderr()}
			if opts.Verbose || opts.Trace {
				w.Diag = cmd.ErrOrStderr()
			}
			if opts.Trace {
				w.Trace = cmd.ErrOrStderr()
			}
			monitoring.SetLogWriters(w)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log per-run diagnostics to stderr")
	cmd.PersistentFlags().BoolVar(&opts.Trace, "trace", false, "log per-chunk telemetry to stderr (implies --verbose)")

	cmd.AddCommand(NewCompareCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewWindowCommand(opts))
	cmd.AddCommand(NewVersionCommand())

	return cmd
}

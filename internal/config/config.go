// Package config loads framediff run configuration.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/banshee-data/framediff/internal/frame"
	"github.com/banshee-data/framediff/internal/units"
)

// Defaults applied by the Get* accessors.
const (
	DefaultChunkRows = frame.DefaultChunkRows
	DefaultPlotStep  = 5
	DefaultHistBins  = 50
	DefaultUnits     = units.CM
	DefaultFormat    = "text"

	maxFileSize = 1 * 1024 * 1024 // 1MB
)

// RunConfig holds the parameters of one comparison run. Every field is
// optional; unset fields fall back to defaults through the Get* methods so
// partial configs are safe.
type RunConfig struct {
	// Inputs
	RawPath       *string `json:"raw_path,omitempty" yaml:"raw_path,omitempty"`
	CorrectedPath *string `json:"corrected_path,omitempty" yaml:"corrected_path,omitempty"`
	ImportID      *string `json:"import_id,omitempty" yaml:"import_id,omitempty"` // frame store only

	// Window
	StartNs *int64 `json:"start_ns,omitempty" yaml:"start_ns,omitempty"`
	EndNs   *int64 `json:"end_ns,omitempty" yaml:"end_ns,omitempty"`

	// Scan
	ChunkRows *int `json:"chunk_rows,omitempty" yaml:"chunk_rows,omitempty"`

	// Presentation
	PlotStep   *int    `json:"plot_step,omitempty" yaml:"plot_step,omitempty"`
	HistBins   *int    `json:"hist_bins,omitempty" yaml:"hist_bins,omitempty"`
	Units      *string `json:"units,omitempty" yaml:"units,omitempty"`
	Format     *string `json:"format,omitempty" yaml:"format,omitempty"`
	OutputPNG  *string `json:"output_png,omitempty" yaml:"output_png,omitempty"`
	OutputHTML *string `json:"output_html,omitempty" yaml:"output_html,omitempty"`
}

// Helper functions to create pointers
func ptrInt(v int) *int          { return &v }
func ptrInt64(v int64) *int64    { return &v }
func ptrString(v string) *string { return &v }

// EmptyRunConfig returns a RunConfig with all fields set to nil.
func EmptyRunConfig() *RunConfig {
	return &RunConfig{}
}

// DefaultRunConfig returns a RunConfig with every defaulted field populated.
// The window and input paths have no defaults and stay nil.
func DefaultRunConfig() *RunConfig {
	return &RunConfig{
		ChunkRows: ptrInt(DefaultChunkRows),
		PlotStep:  ptrInt(DefaultPlotStep),
		HistBins:  ptrInt(DefaultHistBins),
		Units:     ptrString(DefaultUnits),
		Format:    ptrString(DefaultFormat),
	}
}

// LoadRunConfig loads a RunConfig from a .json, .yaml or .yml file.
// Files over 1MB are rejected. The result is validated.
func LoadRunConfig(path string) (*RunConfig, error) {
	cleanPath := filepath.Clean(path)
	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("config file must have .json, .yaml or .yml extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyRunConfig()
	switch ext {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *RunConfig) Validate() error {
	if c.StartNs != nil && c.EndNs != nil && *c.StartNs > *c.EndNs {
		return fmt.Errorf("start_ns (%d) must not be after end_ns (%d)", *c.StartNs, *c.EndNs)
	}
	if c.ChunkRows != nil && *c.ChunkRows <= 0 {
		return fmt.Errorf("chunk_rows must be positive, got %d", *c.ChunkRows)
	}
	if c.PlotStep != nil && *c.PlotStep <= 0 {
		return fmt.Errorf("plot_step must be positive, got %d", *c.PlotStep)
	}
	if c.HistBins != nil && *c.HistBins <= 0 {
		return fmt.Errorf("hist_bins must be positive, got %d", *c.HistBins)
	}
	if c.Units != nil && !units.IsValid(*c.Units) {
		return fmt.Errorf("invalid units %q: must be one of %s", *c.Units, units.GetValidUnitsString())
	}
	if c.Format != nil && *c.Format != "text" && *c.Format != "json" {
		return fmt.Errorf("invalid format %q: must be text or json", *c.Format)
	}
	return nil
}

// Window returns the configured window. Both bounds must be set.
func (c *RunConfig) Window() (frame.Window, error) {
	if c.StartNs == nil || c.EndNs == nil {
		return frame.Window{}, fmt.Errorf("start_ns and end_ns are required")
	}
	w := frame.Window{Start: *c.StartNs, End: *c.EndNs}
	return w, w.Validate()
}

// GetRawPath returns raw_path or "".
func (c *RunConfig) GetRawPath() string {
	if c.RawPath == nil {
		return ""
	}
	return *c.RawPath
}

// GetCorrectedPath returns corrected_path or "".
func (c *RunConfig) GetCorrectedPath() string {
	if c.CorrectedPath == nil {
		return ""
	}
	return *c.CorrectedPath
}

// GetImportID returns import_id or "" (meaning the latest import).
func (c *RunConfig) GetImportID() string {
	if c.ImportID == nil {
		return ""
	}
	return *c.ImportID
}

// GetChunkRows returns chunk_rows or the default.
func (c *RunConfig) GetChunkRows() int {
	if c.ChunkRows == nil {
		return DefaultChunkRows
	}
	return *c.ChunkRows
}

// GetPlotStep returns plot_step or the default.
func (c *RunConfig) GetPlotStep() int {
	if c.PlotStep == nil {
		return DefaultPlotStep
	}
	return *c.PlotStep
}

// GetHistBins returns hist_bins or the default.
func (c *RunConfig) GetHistBins() int {
	if c.HistBins == nil {
		return DefaultHistBins
	}
	return *c.HistBins
}

// GetUnits returns units or the default.
func (c *RunConfig) GetUnits() string {
	if c.Units == nil {
		return DefaultUnits
	}
	return *c.Units
}

// GetFormat returns format or the default.
func (c *RunConfig) GetFormat() string {
	if c.Format == nil {
		return DefaultFormat
	}
	return *c.Format
}

// GetOutputPNG returns output_png or "" (no PNG).
func (c *RunConfig) GetOutputPNG() string {
	if c.OutputPNG == nil {
		return ""
	}
	return *c.OutputPNG
}

// GetOutputHTML returns output_html or "" (no HTML).
func (c *RunConfig) GetOutputHTML() string {
	if c.OutputHTML == nil {
		return ""
	}
	return *c.OutputHTML
}

// Merge copies every non-nil field of o over c.
func (c *RunConfig) Merge(o *RunConfig) {
	if o == nil {
		return
	}
	if o.RawPath != nil {
		c.RawPath = o.RawPath
	}
	if o.CorrectedPath != nil {
		c.CorrectedPath = o.CorrectedPath
	}
	if o.ImportID != nil {
		c.ImportID = o.ImportID
	}
	if o.StartNs != nil {
		c.StartNs = o.StartNs
	}
	if o.EndNs != nil {
		c.EndNs = o.EndNs
	}
	if o.ChunkRows != nil {
		c.ChunkRows = o.ChunkRows
	}
	if o.PlotStep != nil {
		c.PlotStep = o.PlotStep
	}
	if o.HistBins != nil {
		c.HistBins = o.HistBins
	}
	if o.Units != nil {
		c.Units = o.Units
	}
	if o.Format != nil {
		c.Format = o.Format
	}
	if o.OutputPNG != nil {
		c.OutputPNG = o.OutputPNG
	}
	if o.OutputHTML != nil {
		c.OutputHTML = o.OutputHTML
	}
}

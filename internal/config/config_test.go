package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/framediff/internal/frame"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefaultRunConfig(t *testing.T) {
	cfg := DefaultRunConfig()

	if cfg.ChunkRows == nil || *cfg.ChunkRows != 100000 {
		t.Errorf("Expected ChunkRows 100000, got %v", cfg.ChunkRows)
	}
	if cfg.PlotStep == nil || *cfg.PlotStep != 5 {
		t.Errorf("Expected PlotStep 5, got %v", cfg.PlotStep)
	}
	if cfg.HistBins == nil || *cfg.HistBins != 50 {
		t.Errorf("Expected HistBins 50, got %v", cfg.HistBins)
	}
	if cfg.Units == nil || *cfg.Units != "cm" {
		t.Errorf("Expected Units cm, got %v", cfg.Units)
	}
	assert.Nil(t, cfg.StartNs)
	assert.Nil(t, cfg.EndNs)
	assert.NoError(t, cfg.Validate())
}

func TestEmptyRunConfig_Getters(t *testing.T) {
	cfg := EmptyRunConfig()

	assert.Equal(t, 100000, cfg.GetChunkRows())
	assert.Equal(t, 5, cfg.GetPlotStep())
	assert.Equal(t, 50, cfg.GetHistBins())
	assert.Equal(t, "cm", cfg.GetUnits())
	assert.Equal(t, "text", cfg.GetFormat())
	assert.Empty(t, cfg.GetRawPath())
	assert.Empty(t, cfg.GetCorrectedPath())
	assert.Empty(t, cfg.GetImportID())
	assert.Empty(t, cfg.GetOutputPNG())
	assert.Empty(t, cfg.GetOutputHTML())

	_, err := cfg.Window()
	assert.Error(t, err)
}

func TestLoadRunConfig_JSON(t *testing.T) {
	path := writeConfig(t, "run.json", `{
  "raw_path": "data/raw_lidar.csv",
  "corrected_path": "data/corrected_cloud.csv",
  "start_ns": 1574367378706156049,
  "end_ns": 1574367378806136034,
  "chunk_rows": 5000,
  "units": "mm"
}`)

	cfg, err := LoadRunConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "data/raw_lidar.csv", cfg.GetRawPath())
	assert.Equal(t, "data/corrected_cloud.csv", cfg.GetCorrectedPath())
	assert.Equal(t, 5000, cfg.GetChunkRows())
	assert.Equal(t, "mm", cfg.GetUnits())
	assert.Equal(t, 5, cfg.GetPlotStep(), "unset fields keep their defaults")

	w, err := cfg.Window()
	require.NoError(t, err)
	assert.Equal(t, frame.Window{Start: 1574367378706156049, End: 1574367378806136034}, w)
}

func TestLoadRunConfig_YAML(t *testing.T) {
	for _, name := range []string{"run.yaml", "run.yml"} {
		t.Run(name, func(t *testing.T) {
			path := writeConfig(t, name, `raw_path: raw.db
import_id: 3f1c
start_ns: 200
end_ns: 400
hist_bins: 20
plot_step: 1
format: json
output_png: out/frame.png
output_html: out/frame.html
`)
			cfg, err := LoadRunConfig(path)
			require.NoError(t, err)

			assert.Equal(t, "raw.db", cfg.GetRawPath())
			assert.Equal(t, "3f1c", cfg.GetImportID())
			assert.Equal(t, 20, cfg.GetHistBins())
			assert.Equal(t, 1, cfg.GetPlotStep())
			assert.Equal(t, "json", cfg.GetFormat())
			assert.Equal(t, "out/frame.png", cfg.GetOutputPNG())
			assert.Equal(t, "out/frame.html", cfg.GetOutputHTML())

			w, err := cfg.Window()
			require.NoError(t, err)
			assert.Equal(t, frame.Window{Start: 200, End: 400}, w)
		})
	}
}

func TestLoadRunConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		body    string
		wantErr string
	}{
		{"wrong extension", "run.toml", `x = 1`, "extension"},
		{"bad json", "run.json", `{"start_ns": `, "parse config JSON"},
		{"unknown json field", "run.json", `{"start": 1}`, "parse config JSON"},
		{"bad yaml", "run.yaml", "start_ns: [1", "parse config YAML"},
		{"unknown yaml field", "run.yaml", "chunk: 5\n", "parse config YAML"},
		{"inverted window", "run.json", `{"start_ns": 10, "end_ns": 5}`, "must not be after"},
		{"zero chunk rows", "run.json", `{"chunk_rows": 0}`, "chunk_rows must be positive"},
		{"negative step", "run.json", `{"plot_step": -1}`, "plot_step must be positive"},
		{"zero bins", "run.json", `{"hist_bins": 0}`, "hist_bins must be positive"},
		{"bad units", "run.json", `{"units": "km"}`, "invalid units"},
		{"bad format", "run.json", `{"format": "xml"}`, "invalid format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.file, tt.body)
			_, err := LoadRunConfig(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadRunConfig_MissingFile(t *testing.T) {
	_, err := LoadRunConfig(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to stat config file")
}

func TestLoadRunConfig_TooLarge(t *testing.T) {
	body := `{"raw_path": "` + strings.Repeat("a", maxFileSize) + `"}`
	path := writeConfig(t, "big.json", body)

	_, err := LoadRunConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}

func TestMerge(t *testing.T) {
	base := DefaultRunConfig()
	base.RawPath = ptrString("raw.csv")
	base.StartNs = ptrInt64(100)

	base.Merge(&RunConfig{
		StartNs:   ptrInt64(150),
		EndNs:     ptrInt64(250),
		ChunkRows: ptrInt(10),
	})

	assert.Equal(t, "raw.csv", base.GetRawPath())
	assert.Equal(t, 10, base.GetChunkRows())
	assert.Equal(t, 50, base.GetHistBins())
	w, err := base.Window()
	require.NoError(t, err)
	assert.Equal(t, frame.Window{Start: 150, End: 250}, w)

	base.Merge(nil)
	assert.Equal(t, 10, base.GetChunkRows())
}

package render

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/framediff/internal/frame"
	"github.com/banshee-data/framediff/internal/units"
)

var (
	viridis = []string{"#440154", "#482777", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"}
	plasma  = []string{"#0d0887", "#46039f", "#7201a8", "#9c179e", "#bd3786", "#d8576b", "#ed7953", "#fb9f3a", "#fdca26", "#f0f921"}
)

// PageHTML writes an interactive page with 3D scatters of both clouds and
// the displacement histogram.
func PageHTML(w io.Writer, in Input, o Options) error {
	if err := in.validate(); err != nil {
		return err
	}
	o = o.normalised()

	page := components.NewPage()
	page.PageTitle = "LiDAR frame comparison"
	page.AddCharts(
		scatter3D("Original", in.Original, o.Step, viridis),
		scatter3D("Corrected (FPGA)", in.Corrected, o.Step, plasma),
		histogramBar(in, o),
	)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

func scatter3D(title string, ps frame.PointSet, step int, colors []string) *charts.Scatter3D {
	pts := decimate(ps, step)
	lo, hi := intensityRange(pts)

	s := charts.NewScatter3D()
	s.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "600px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("points=%d shown=%d step=%d", len(ps), len(pts), step),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxis3DOpts(opts.XAxis3D{Name: "X (m)"}),
		charts.WithYAxis3DOpts(opts.YAxis3D{Name: "Y (m)"}),
		charts.WithZAxis3DOpts(opts.ZAxis3D{Name: "Z (m)"}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        float32(lo),
			Max:        float32(hi),
			Dimension:  "3",
			InRange:    &opts.VisualMapInRange{Color: colors},
		}),
	)

	data := make([]opts.Chart3DData, 0, len(pts))
	for _, p := range pts {
		data = append(data, opts.Chart3DData{Value: []interface{}{p.X, p.Y, p.Z, p.Intensity}})
	}
	s.AddSeries("points", data)
	return s
}

func histogramBar(in Input, o Options) *charts.Bar {
	vals := units.ConvertLengths(in.Result.Distances, o.Units)
	edges, counts := Histogram(vals, o.Bins)

	labels := make([]string, len(counts))
	data := make([]opts.BarData, len(counts))
	for i, c := range counts {
		labels[i] = fmt.Sprintf("%.2f", (edges[i]+edges[i+1])/2)
		data[i] = opts.BarData{Value: c}
	}

	mean := units.ConvertLength(in.Result.Mean, o.Units)
	maxV := units.ConvertLength(in.Result.Max, o.Units)

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Correction distribution (displacement)",
			Subtitle: fmt.Sprintf("Mean: %.2f %s  Max: %.2f %s  n=%d", mean, o.Units, maxV, o.Units, in.Result.Count),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: fmt.Sprintf("Displacement (%s)", o.Units), NameLocation: "middle", NameGap: 30}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Number of points"}),
	)
	bar.SetXAxis(labels).AddSeries("points", data)
	return bar
}

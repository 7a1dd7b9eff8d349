package render

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/banshee-data/framediff/internal/frame"
	"github.com/banshee-data/framediff/internal/units"
)

// Figure size, matching an 18x6 inch three-panel layout.
const (
	figureWidth  = 18 * vg.Inch
	figureHeight = 6 * vg.Inch
)

var (
	histFill  = color.RGBA{R: 135, G: 206, B: 235, A: 255} // skyblue
	meanColor = color.RGBA{R: 220, G: 50, B: 32, A: 255}
	maxColor  = color.RGBA{R: 0, G: 0, B: 0, A: 255}
)

// FigurePNG writes the three-panel comparison figure as PNG.
func FigurePNG(w io.Writer, in Input, o Options) error {
	if err := in.validate(); err != nil {
		return err
	}
	o = o.normalised()

	pOrig, err := scatterPlot("Original", in.Original, o.Step, moreland.SmoothBlueRed())
	if err != nil {
		return fmt.Errorf("original panel: %w", err)
	}
	pCorr, err := scatterPlot("Corrected (FPGA)", in.Corrected, o.Step, moreland.ExtendedBlackBody())
	if err != nil {
		return fmt.Errorf("corrected panel: %w", err)
	}
	pHist, err := histogramPlot(in, o)
	if err != nil {
		return fmt.Errorf("histogram panel: %w", err)
	}

	plots := [][]*plot.Plot{{pOrig, pCorr, pHist}}
	img := vgimg.New(figureWidth, figureHeight)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      1,
		Cols:      3,
		PadX:      vg.Millimeter * 6,
		PadTop:    vg.Millimeter * 3,
		PadBottom: vg.Millimeter * 3,
		PadLeft:   vg.Millimeter * 3,
		PadRight:  vg.Millimeter * 3,
	}
	canvases := plot.Align(plots, tiles, dc)
	for j := range plots[0] {
		plots[0][j].Draw(canvases[0][j])
	}

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}

// scatterPlot draws a top-down X/Y view of ps coloured by intensity.
func scatterPlot(title string, ps frame.PointSet, step int, cmap palette.ColorMap) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "X (m)"
	p.Y.Label.Text = "Y (m)"

	pts := decimate(ps, step)
	if len(pts) == 0 {
		return p, nil
	}

	lo, hi := intensityRange(pts)
	cmap.SetMin(lo)
	cmap.SetMax(hi)

	xys := make(plotter.XYs, len(pts))
	colors := make([]color.Color, len(pts))
	for i, pt := range pts {
		xys[i] = plotter.XY{X: pt.X, Y: pt.Y}
		c, err := cmap.At(pt.Intensity)
		if err != nil {
			return nil, fmt.Errorf("colour for intensity %v: %w", pt.Intensity, err)
		}
		colors[i] = c
	}

	sc, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, err
	}
	sc.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		return draw.GlyphStyle{Color: colors[i], Radius: vg.Points(1), Shape: draw.CircleGlyph{}}
	}
	p.Add(sc)
	return p, nil
}

// histogramPlot draws the displacement distribution in display units with
// vertical markers at the mean and maximum.
func histogramPlot(in Input, o Options) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Correction distribution (displacement)"
	p.X.Label.Text = fmt.Sprintf("Displacement (%s)", o.Units)
	p.Y.Label.Text = "Number of points"
	p.Add(plotter.NewGrid())

	vals := plotter.Values(units.ConvertLengths(in.Result.Distances, o.Units))
	h, err := plotter.NewHist(vals, o.Bins)
	if err != nil {
		return nil, err
	}
	h.FillColor = histFill
	p.Add(h)

	peak := 0.0
	for _, b := range h.Bins {
		peak = max(peak, b.Weight)
	}

	mean := units.ConvertLength(in.Result.Mean, o.Units)
	maxV := units.ConvertLength(in.Result.Max, o.Units)
	for _, m := range []struct {
		label string
		x     float64
		c     color.Color
	}{
		{fmt.Sprintf("Mean: %.2f %s", mean, o.Units), mean, meanColor},
		{fmt.Sprintf("Max: %.2f %s", maxV, o.Units), maxV, maxColor},
	} {
		line, err := plotter.NewLine(plotter.XYs{{X: m.x, Y: 0}, {X: m.x, Y: peak}})
		if err != nil {
			return nil, err
		}
		line.Color = m.c
		line.Width = vg.Points(1)
		line.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(line)
		p.Legend.Add(m.label, line)
	}
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}

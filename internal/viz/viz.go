// Package viz renders generated kernel tables for visual inspection: a
// radial profile and a lattice heatmap as PNG via gonum/plot, and a
// standalone HTML lattice chart via go-echarts.
package viz

import (
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/iwave.kernels/internal/kernel"
)

// viridis matches the ramp used by the operational dashboards.
var viridis = []string{
	"#440154", "#482777", "#3e4989", "#31688e", "#26828e",
	"#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725",
}

// RadialProfilePNG plots weight against offset distance r = sqrt(k^2+l^2)
// and saves the result as a PNG. Works for both output modes since it only
// uses the stored cells.
func RadialProfilePNG(path string, table kernel.Table) error {
	type sample struct {
		r, w float64
	}
	var samples []sample
	for _, k := range table.Ks() {
		for _, l := range table.Ls(k) {
			w, _ := table.Weight(k, l)
			samples = append(samples, sample{r: math.Hypot(float64(k), float64(l)), w: w})
		}
	}
	if len(samples) == 0 {
		return fmt.Errorf("table has no weights to plot")
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i].r < samples[j].r })

	pts := make(plotter.XYs, len(samples))
	for i, s := range samples {
		pts[i] = plotter.XY{X: s.r, Y: s.w}
	}

	p := plot.New()
	p.Title.Text = "iWave kernel radial profile"
	p.X.Label.Text = "r (lattice units)"
	p.Y.Label.Text = "weight"

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("build profile line: %w", err)
	}
	line.Width = vg.Points(1)
	p.Add(line, plotter.NewGrid())

	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// latticeGrid adapts a full-mode table to plotter.GridXYZ.
type latticeGrid struct {
	radius int
	table  kernel.Table
}

func (g latticeGrid) Dims() (c, r int) {
	side := 2*g.radius + 1
	return side, side
}

func (g latticeGrid) X(c int) float64 { return float64(c - g.radius) }
func (g latticeGrid) Y(r int) float64 { return float64(r - g.radius) }

func (g latticeGrid) Z(c, r int) float64 {
	w, _ := g.table.Weight(c-g.radius, r-g.radius)
	return w
}

// HeatmapPNG renders the square neighbourhood of a full-mode table as a
// heatmap. Compact tables are rejected: reconstructing their mirrored cells
// is the consumer's job, not the renderer's.
func HeatmapPNG(path string, table kernel.Table) error {
	radius, err := fullRadius(table)
	if err != nil {
		return err
	}

	pal := palette.Heat(12, 1)
	hm := plotter.NewHeatMap(latticeGrid{radius: radius, table: table}, pal)

	p := plot.New()
	p.Title.Text = "iWave kernel lattice"
	p.X.Label.Text = "k"
	p.Y.Label.Text = "l"
	p.Add(hm)

	if err := p.Save(7*vg.Inch, 7*vg.Inch, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// fullRadius verifies the table is a complete square neighbourhood and
// returns its radius.
func fullRadius(table kernel.Table) (int, error) {
	ks := table.Ks()
	if len(ks) == 0 {
		return 0, fmt.Errorf("table is empty")
	}
	radius := ks[len(ks)-1]
	side := 2*radius + 1
	if ks[0] != -radius || len(ks) != side || table.Len() != side*side {
		return 0, fmt.Errorf("table is not a full-mode lattice (radius %d, %d weights)", radius, table.Len())
	}
	return radius, nil
}

// LatticeHTML writes a standalone HTML scatter chart of the stored cells,
// coloured by weight. Works for both output modes.
func LatticeHTML(path string, table kernel.Table, subtitle string) error {
	if table.Len() == 0 {
		return fmt.Errorf("table has no weights to plot")
	}

	var weights []float64
	data := make([]opts.ScatterData, 0, table.Len())
	maxAbs := 0.0
	for _, k := range table.Ks() {
		if a := math.Abs(float64(k)); a > maxAbs {
			maxAbs = a
		}
		for _, l := range table.Ls(k) {
			w, _ := table.Weight(k, l)
			weights = append(weights, w)
			if a := math.Abs(float64(l)); a > maxAbs {
				maxAbs = a
			}
			data = append(data, opts.ScatterData{Value: []interface{}{k, l, w}})
		}
	}

	pad := maxAbs + 1

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "iWave Kernel", Theme: "dark", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: "iWave Kernel Lattice", Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Name: "k", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Name: "l", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        float32(floats.Min(weights)),
			Max:        float32(floats.Max(weights)),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: viridis},
		}),
	)
	scatter.AddSeries("weights", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 12}))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := scatter.Render(f); err != nil {
		f.Close()
		return fmt.Errorf("render %s: %w", path, err)
	}
	return f.Close()
}

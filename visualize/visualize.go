// Package visualize renders exploratory plots of datasets and training runs
// to PNG files: histograms, scatter plots, box plots, correlation heatmaps
// and learning curves.
package visualize

import (
	"image/color"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/mizupe/appliedml/pkg/errors"
)

// defaultSize is the rendered width and height of every plot.
const defaultSize = 6 * vg.Inch

// Histogram draws the value distribution of values with the given number of
// bins and writes a PNG to path.
func Histogram(values []float64, bins int, title, path string) error {
	if len(values) == 0 {
		return errors.NewModelError("visualize.Histogram", "empty data", errors.ErrEmptyData)
	}
	if bins < 1 {
		return errors.NewValidationError("bins", "must be at least 1", bins)
	}

	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "count"

	h, err := plotter.NewHist(plotter.Values(values), bins)
	if err != nil {
		return errors.Wrap(err, "visualize: histogram")
	}
	h.FillColor = color.RGBA{R: 100, G: 149, B: 237, A: 255}
	p.Add(h)

	return save(p, path)
}

// Scatter draws y against x, optionally colored by integer class labels;
// pass nil labels for a single series. Writes a PNG to path.
func Scatter(x, y []float64, labels []int, title, xLabel, yLabel, path string) error {
	if len(x) == 0 {
		return errors.NewModelError("visualize.Scatter", "empty data", errors.ErrEmptyData)
	}
	if len(x) != len(y) {
		return errors.NewDimensionError("visualize.Scatter", len(x), len(y), 0)
	}
	if labels != nil && len(labels) != len(x) {
		return errors.NewDimensionError("visualize.Scatter", len(x), len(labels), 0)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel

	groups := map[int]plotter.XYs{}
	for i := range x {
		class := 0
		if labels != nil {
			class = labels[i]
		}
		groups[class] = append(groups[class], plotter.XY{X: x[i], Y: y[i]})
	}

	palette := []color.Color{
		color.RGBA{R: 31, G: 119, B: 180, A: 255},
		color.RGBA{R: 255, G: 127, B: 14, A: 255},
		color.RGBA{R: 44, G: 160, B: 44, A: 255},
		color.RGBA{R: 214, G: 39, B: 40, A: 255},
		color.RGBA{R: 148, G: 103, B: 189, A: 255},
	}
	i := 0
	for class, pts := range groups {
		s, err := plotter.NewScatter(pts)
		if err != nil {
			return errors.Wrap(err, "visualize: scatter")
		}
		s.GlyphStyle.Color = palette[i%len(palette)]
		s.GlyphStyle.Radius = vg.Points(2.5)
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(s)
		if labels != nil {
			p.Legend.Add(intLabel(class), s)
		}
		i++
	}

	return save(p, path)
}

// Box draws one box plot per named series and writes a PNG to path.
func Box(series map[string][]float64, title, path string) error {
	if len(series) == 0 {
		return errors.NewModelError("visualize.Box", "empty data", errors.ErrEmptyData)
	}

	p := plot.New()
	p.Title.Text = title

	names := sortedKeys(series)
	for i, name := range names {
		if len(series[name]) == 0 {
			return errors.NewValueError("visualize.Box", "series "+name+" is empty")
		}
		b, err := plotter.NewBoxPlot(vg.Points(20), float64(i), plotter.Values(series[name]))
		if err != nil {
			return errors.Wrap(err, "visualize: box plot")
		}
		p.Add(b)
	}
	p.NominalX(names...)

	return save(p, path)
}

// CorrelationHeatmap renders a correlation matrix (values in [-1, 1]) as a
// heatmap with the given axis labels and writes a PNG to path.
func CorrelationHeatmap(corr mat.Matrix, names []string, title, path string) error {
	r, c := corr.Dims()
	if r == 0 {
		return errors.NewModelError("visualize.CorrelationHeatmap", "empty data", errors.ErrEmptyData)
	}
	if r != c {
		return errors.NewDimensionError("visualize.CorrelationHeatmap", r, c, 1)
	}
	if len(names) != r {
		return errors.NewDimensionError("visualize.CorrelationHeatmap", r, len(names), 0)
	}

	p := plot.New()
	p.Title.Text = title

	pal := moreland.SmoothBlueRed().Palette(255)
	hm := plotter.NewHeatMap(corrGrid{m: corr}, pal)
	hm.Min, hm.Max = -1, 1
	p.Add(hm)

	ticks := make([]plot.Tick, r)
	for i := range ticks {
		ticks[i] = plot.Tick{Value: float64(i), Label: names[i]}
	}
	p.X.Tick.Marker = plot.ConstantTicks(ticks)
	p.Y.Tick.Marker = plot.ConstantTicks(ticks)

	return save(p, path)
}

// corrGrid adapts a correlation matrix to the plotter.GridXYZ interface.
// Row 0 is drawn at the bottom.
type corrGrid struct {
	m mat.Matrix
}

func (g corrGrid) Dims() (int, int) {
	r, c := g.m.Dims()
	return c, r
}

func (g corrGrid) Z(col, row int) float64 { return g.m.At(row, col) }
func (g corrGrid) X(col int) float64      { return float64(col) }
func (g corrGrid) Y(row int) float64      { return float64(row) }

// LearningCurve plots one loss-per-epoch line per named training run and
// writes a PNG to path.
func LearningCurve(histories map[string][]float64, title, path string) error {
	if len(histories) == 0 {
		return errors.NewModelError("visualize.LearningCurve", "empty data", errors.ErrEmptyData)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "epoch"
	p.Y.Label.Text = "loss"

	palette := []color.Color{
		color.RGBA{R: 31, G: 119, B: 180, A: 255},
		color.RGBA{R: 255, G: 127, B: 14, A: 255},
		color.RGBA{R: 44, G: 160, B: 44, A: 255},
		color.RGBA{R: 214, G: 39, B: 40, A: 255},
		color.RGBA{R: 148, G: 103, B: 189, A: 255},
	}
	for i, name := range sortedKeys(histories) {
		history := histories[name]
		if len(history) == 0 {
			return errors.NewValueError("visualize.LearningCurve", "run "+name+" has no epochs")
		}
		pts := make(plotter.XYs, len(history))
		for e, loss := range history {
			pts[e] = plotter.XY{X: float64(e + 1), Y: loss}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return errors.Wrap(err, "visualize: learning curve")
		}
		line.Color = palette[i%len(palette)]
		p.Add(line)
		p.Legend.Add(name, line)
	}
	p.Legend.Top = true

	return save(p, path)
}

func save(p *plot.Plot, path string) error {
	if err := p.Save(defaultSize, defaultSize, path); err != nil {
		return errors.Wrapf(err, "visualize: save %s", path)
	}
	return nil
}

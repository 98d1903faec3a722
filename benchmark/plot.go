package benchmark

import (
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/regbench/model_selection"
	"github.com/YuminosukeSato/regbench/pkg/errors"
)

// PlotSearch draws the mean test score of every candidate against the
// resources it was given, one line per candidate, and saves the chart to
// path (the format follows the extension).
func PlotSearch(cv *model_selection.CVResults, title, path string) error {
	if cv == nil || cv.Len() == 0 {
		return errors.NewValueError("PlotSearch", "no search results to plot")
	}

	// 同じパラメータの行を1本の線にまとめる
	var order []string
	lines := map[string]plotter.XYs{}
	for i := 0; i < cv.Len(); i++ {
		key := fmt.Sprint(cv.Params[i])
		if _, ok := lines[key]; !ok {
			order = append(order, key)
		}
		score := cv.MeanTestScore[i]
		if math.IsNaN(score) || math.IsInf(score, 0) {
			continue
		}
		lines[key] = append(lines[key], plotter.XY{X: float64(cv.NResources[i]), Y: score})
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "n_resources"
	p.Y.Label.Text = "mean test R²"
	p.Add(plotter.NewGrid())

	for i, key := range order {
		xys := lines[key]
		if len(xys) == 0 {
			continue
		}
		line, points, err := plotter.NewLinePoints(xys)
		if err != nil {
			return errors.Wrap(err, "plot candidate")
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1)
		points.Color = plotutil.Color(i)
		points.Shape = plotutil.Shape(i)
		p.Add(line, points)
		if len(order) <= 10 {
			p.Legend.Add(key, line, points)
		}
	}

	if err := p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "save plot %s", path)
	}
	return nil
}

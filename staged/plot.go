package staged

import (
	"fmt"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/symforest/pkg/errors"
)

// Default image size of a rendered curve.
const (
	DefaultWidth  = 6 * vg.Inch
	DefaultHeight = 4 * vg.Inch
)

// Plot draws one or more curves against the number of trees. NaN scores are
// left out of the line.
func Plot(title string, curves ...*Curve) (*plot.Plot, error) {
	if len(curves) == 0 {
		return nil, errors.WithStack(errors.ErrEmptyData)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "trees"
	p.Y.Label.Text = curves[0].Metric
	p.Add(plotter.NewGrid())

	for i, c := range curves {
		pts := make(plotter.XYs, 0, len(c.Scores))
		for j, s := range c.Scores {
			if math.IsNaN(s) || math.IsInf(s, 0) {
				continue
			}
			pts = append(pts, plotter.XY{X: float64(c.Trees[j]), Y: s})
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, errors.Wrapf(err, "curve %d", i)
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("%s/%d", c.Metric, c.Step), line)
	}
	return p, nil
}

// Save renders the curves into path. The image format follows the file
// extension (png, svg, pdf, ...).
func Save(path, title string, curves ...*Curve) error {
	p, err := Plot(title, curves...)
	if err != nil {
		return err
	}
	if err := p.Save(DefaultWidth, DefaultHeight, path); err != nil {
		return errors.Wrapf(err, "save learning curve to %s", path)
	}
	return nil
}

// Render writes the curves to w in the given image format.
func Render(w io.Writer, format, title string, curves ...*Curve) error {
	p, err := Plot(title, curves...)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(DefaultWidth, DefaultHeight, format)
	if err != nil {
		return errors.Wrapf(err, "render learning curve as %s", format)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return errors.Wrap(err, "write learning curve")
	}
	return nil
}

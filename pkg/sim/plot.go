package sim

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Plot renders the x/y path of a trace, with waypoints marked, to an image
// file. The format follows the file extension.
func Plot(trace []Sample, waypoints []Pose, path string) error {
	p := plot.New()
	p.Title.Text = "Commanded trajectory (open loop)"
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "y (m)"
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, 0, len(trace))
	for _, s := range trace {
		pts = append(pts, plotter.XY{X: s.Pose.X, Y: s.Pose.Y})
	}
	if len(pts) > 0 {
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("path line: %w", err)
		}
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add("path", line)
	}

	if len(waypoints) > 0 {
		wps := make(plotter.XYs, 0, len(waypoints))
		for _, w := range waypoints {
			wps = append(wps, plotter.XY{X: w.X, Y: w.Y})
		}
		scatter, err := plotter.NewScatter(wps)
		if err != nil {
			return fmt.Errorf("waypoints: %w", err)
		}
		p.Add(scatter)
		p.Legend.Add("stop", scatter)
	}

	if err := p.Save(6*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save plot: %w", err)
	}
	return nil
}

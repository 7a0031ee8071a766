package cli

import (
	"image/color"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/treadline/pathfollow/trajectory"
)

var (
	leftColor  = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	rightColor = color.RGBA{R: 214, G: 39, B: 40, A: 255}
)

func velocityPoints(traj trajectory.Trajectory) plotter.XYs {
	pts := make(plotter.XYs, 0, traj.Len())
	for _, seg := range traj {
		pts = append(pts, plotter.XY{X: seg.Time.Seconds(), Y: seg.Velocity})
	}
	return pts
}

// plotPair draws the wheel velocities of `pair` over time and saves the image to `file`. The
// image format follows the file extension.
func plotPair(pair trajectory.Pair, title, file string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "Velocity (m/s)"

	for _, side := range []struct {
		name  string
		traj  trajectory.Trajectory
		color color.Color
	}{
		{"left", pair.Left, leftColor},
		{"right", pair.Right, rightColor},
	} {
		line, err := plotter.NewLine(velocityPoints(side.traj))
		if err != nil {
			return errors.Wrapf(err, "cannot plot %s wheel", side.name)
		}
		line.Color = side.color
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(side.name, line)
	}
	p.Add(plotter.NewGrid())

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	if err := p.Save(8*vg.Inch, 4*vg.Inch, file); err != nil {
		return errors.Wrapf(err, "cannot save plot to %s", file)
	}
	return nil
}

// PlotAction plots the wheel velocities of a saved path.
func PlotAction(c *cli.Context) error {
	cfg, state, err := readConfig(c)
	if err != nil {
		return err
	}

	id := c.String(flagID)
	store, err := loadPath(cfg, directoryFlag(c, cfg), id)
	if err != nil {
		return err
	}
	pair, err := store.Get(id)
	if err != nil {
		return err
	}

	out := c.String(flagOut)
	if err := plotPair(pair, id, out); err != nil {
		return err
	}
	state.sublogger("plot").Debugw("wrote plot", "path_id", id, "file", out)
	printf(c.App.Writer, "%s", out)
	return nil
}

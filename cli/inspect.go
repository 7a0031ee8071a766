package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/docker/go-units"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/treadline/pathfollow/trajectory"
)

// wheelSummary holds the statistics printed for one side of a path.
type wheelSummary struct {
	Wheel     string
	Samples   int
	Duration  string
	Distance  float64
	MaxV      float64
	MinV      float64
	MeanV     float64
	P95V      float64
	FileBytes int64
}

func summarize(wheel string, traj trajectory.Trajectory, file string) (wheelSummary, error) {
	summary := wheelSummary{
		Wheel:    wheel,
		Samples:  traj.Len(),
		Duration: traj.Duration().String(),
	}
	if traj.Len() == 0 {
		return summary, nil
	}
	summary.Distance = traj[traj.Len()-1].Position

	velocities := stats.Float64Data(traj.Velocities())
	var err error
	if summary.MaxV, err = velocities.Max(); err != nil {
		return summary, err
	}
	if summary.MinV, err = velocities.Min(); err != nil {
		return summary, err
	}
	if summary.MeanV, err = velocities.Mean(); err != nil {
		return summary, err
	}
	if summary.P95V, err = velocities.Percentile(95); err != nil {
		return summary, err
	}

	info, err := os.Stat(file)
	if err != nil {
		return summary, errors.Wrapf(err, "cannot stat %s", file)
	}
	summary.FileBytes = info.Size()
	return summary, nil
}

func renderSummaries(w io.Writer, summaries ...wheelSummary) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Wheel", "Samples", "Duration", "Distance (m)", "Max v", "Min v", "Mean v", "P95 v", "File size"})
	for _, s := range summaries {
		t.AppendRow(table.Row{
			s.Wheel,
			s.Samples,
			s.Duration,
			fmt.Sprintf("%.3f", s.Distance),
			fmt.Sprintf("%.3f", s.MaxV),
			fmt.Sprintf("%.3f", s.MinV),
			fmt.Sprintf("%.3f", s.MeanV),
			fmt.Sprintf("%.3f", s.P95V),
			units.HumanSize(float64(s.FileBytes)),
		})
	}
	t.Render()
}

const histogramWidth = 40

// printHistogram prints how the wheel's samples spread over velocity.
func printHistogram(w io.Writer, wheel string, traj trajectory.Trajectory, bins int) error {
	if traj.Len() == 0 {
		return nil
	}
	printf(w, "%s wheel velocity (m/s):", wheel)
	hist := histogram.Hist(bins, traj.Velocities())
	return errors.Wrapf(histogram.Fprint(w, hist, histogram.Linear(histogramWidth)), "cannot print %s histogram", wheel)
}

// InspectAction prints per-wheel statistics of a saved path.
func InspectAction(c *cli.Context) error {
	cfg, _, err := readConfig(c)
	if err != nil {
		return err
	}

	id, dir := c.String(flagID), directoryFlag(c, cfg)
	store, err := loadPath(cfg, dir, id)
	if err != nil {
		return err
	}
	pair, err := store.Get(id)
	if err != nil {
		return err
	}
	leftFile, rightFile, err := store.FilePaths(dir, id)
	if err != nil {
		return err
	}

	left, err := summarize("left", pair.Left, leftFile)
	if err != nil {
		return err
	}
	right, err := summarize("right", pair.Right, rightFile)
	if err != nil {
		return err
	}
	renderSummaries(c.App.Writer, left, right)

	if bins := c.Int(flagHistogram); bins > 0 {
		if err := printHistogram(c.App.Writer, "left", pair.Left, bins); err != nil {
			return err
		}
		return printHistogram(c.App.Writer, "right", pair.Right, bins)
	}
	return nil
}

package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"github.com/treadline/pathfollow/components/base/skidsteer"
	"github.com/treadline/pathfollow/components/motor"
	"github.com/treadline/pathfollow/components/motor/fake"
	"github.com/treadline/pathfollow/config"
	"github.com/treadline/pathfollow/control"
	"github.com/treadline/pathfollow/logging"
	"github.com/treadline/pathfollow/motionprofile"
	"github.com/treadline/pathfollow/operation"
	"github.com/treadline/pathfollow/utils"
)

const settlePollTime = 10 * time.Millisecond

// dryRun is a controller driving a base of fake motors.
type dryRun struct {
	motors     []*fake.Motor
	base       *skidsteer.Base
	controller *motionprofile.Controller
}

func newDryRun(cfg *config.Config, logger logging.Logger) (*dryRun, error) {
	baseCfg, err := cfg.BaseConfig()
	if err != nil {
		return nil, err
	}

	run := &dryRun{}
	deps := motor.Dependencies{}
	for _, name := range append(append([]string{}, baseCfg.Left...), baseCfg.Right...) {
		if _, ok := deps[name]; ok {
			continue
		}
		m := fake.NewMotor(name, logger.Sublogger(name))
		deps[name] = m
		run.motors = append(run.motors, m)
	}

	run.base, err = skidsteer.New("base", baseCfg, deps, logger.Sublogger("base"))
	if err != nil {
		return nil, err
	}
	run.controller, err = motionprofile.NewController(
		cfg.NewStore(), run.base, cfg.MotionProfile(), logger.Sublogger("motion_profile"))
	if err != nil {
		return nil, err
	}
	return run, nil
}

// follow runs the path to completion, then waits for the motors to report settled.
func (run *dryRun) follow(ctx context.Context, directory string, target motionprofile.Target,
	settleCfg control.SettledUtilConfig, logger logging.Logger,
) error {
	if err := run.controller.LoadPath(directory, target.PathID); err != nil {
		return errors.Wrapf(err, "cannot load path %q", target.PathID)
	}
	if err := run.controller.SetTarget(ctx, target.PathID, target.Backward, target.Mirrored); err != nil {
		return err
	}

	stopSlowLogger := utils.SlowLogger(ctx, clock.New(), "still following path", "path_id", target.PathID, logger)
	err := run.controller.WaitUntilSettled(ctx)
	stopSlowLogger()
	if err != nil {
		return err
	}

	settled := control.NewSettledUtil(settleCfg, nil)
	if err := operation.PollUntil(ctx, settlePollTime, func(ctx context.Context) (bool, error) {
		_, rpm, err := run.base.IsPowered(ctx, nil)
		if err != nil {
			return false, err
		}
		return settled.IsSettled(rpm), nil
	}); err != nil {
		return err
	}
	return run.base.WaitTillStopped(ctx)
}

func (run *dryRun) close(ctx context.Context) error {
	return multierr.Combine(run.controller.Close(ctx), run.base.Close(ctx))
}

func (run *dryRun) render(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Motor", "Commands", "Max RPM", "Min RPM", "Last RPM"})
	for _, m := range run.motors {
		t.AppendRow(table.Row{
			m.Name,
			m.Commands(),
			fmt.Sprintf("%.2f", m.MaxRPM()),
			fmt.Sprintf("%.2f", m.MinRPM()),
			fmt.Sprintf("%.2f", m.LastRPM()),
		})
	}
	t.Render()
}

// FollowAction dry-runs a saved path against fake motors and prints what each motor was told.
func FollowAction(c *cli.Context) (err error) {
	cfg, state, err := readConfig(c)
	if err != nil {
		return err
	}
	logger := state.sublogger("follow")

	run, err := newDryRun(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Combine(err, run.close(context.Background())) }()

	target := motionprofile.Target{
		PathID:   c.String(flagID),
		Backward: c.Bool(flagBackward),
		Mirrored: c.Bool(flagMirrored),
	}
	start := time.Now()
	if err := run.follow(c.Context, directoryFlag(c, cfg), target, cfg.SettledUtilConfig(), logger); err != nil {
		return err
	}

	logger.Infow("path followed", "path_id", target.PathID, "took", time.Since(start).String())
	run.render(c.App.Writer)
	return nil
}

// Package skidsteer implements a base that steers by running its left and right motor groups at
// different speeds.
package skidsteer

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"
	"golang.org/x/sync/errgroup"

	"github.com/treadline/pathfollow/components/motor"
	"github.com/treadline/pathfollow/logging"
	"github.com/treadline/pathfollow/operation"
	"github.com/treadline/pathfollow/utils"
)

const stopPollTime = 10 * time.Millisecond

// Config is how you configure a skid-steer base.
type Config struct {
	Left  []string `json:"left"`
	Right []string `json:"right"`
	// MaxRPM clamps every motor command. Zero means unlimited.
	MaxRPM float64 `json:"max_rpm,omitempty"`
}

// Validate ensures all parts of the config are valid and returns the motors it depends on.
func (cfg *Config) Validate(path string) ([]string, error) {
	var deps []string

	if len(cfg.Left) == 0 {
		return nil, goutils.NewConfigValidationFieldRequiredError(path, "left")
	}
	if len(cfg.Right) == 0 {
		return nil, goutils.NewConfigValidationFieldRequiredError(path, "right")
	}

	if len(cfg.Left) != len(cfg.Right) {
		return nil, goutils.NewConfigValidationError(path,
			fmt.Errorf("left and right need to have the same number of motors, not %d vs %d",
				len(cfg.Left), len(cfg.Right)))
	}

	if cfg.MaxRPM < 0 || !utils.IsFinite(cfg.MaxRPM) {
		return nil, goutils.NewConfigValidationError(path,
			fmt.Errorf("max_rpm must be a non-negative number, got %v", cfg.MaxRPM))
	}

	deps = append(deps, cfg.Left...)
	deps = append(deps, cfg.Right...)
	return deps, nil
}

// ConfigFromAttributes decodes a Config from loosely typed attributes.
func ConfigFromAttributes(attributes utils.AttributeMap) (*Config, error) {
	var conf Config
	if err := utils.TransformAttributeMap(attributes, &conf); err != nil {
		return nil, err
	}
	return &conf, nil
}

// Base drives two motor groups. It satisfies the controller's Drive contract.
type Base struct {
	name   string
	maxRPM float64
	logger logging.Logger

	left      []motor.Motor
	right     []motor.Motor
	allMotors []motor.Motor

	opMgr operation.SingleOperationManager
}

// New returns a base over the motors named in `cfg`, looked up in `deps`.
func New(name string, cfg *Config, deps motor.Dependencies, logger logging.Logger) (*Base, error) {
	if _, err := cfg.Validate(name); err != nil {
		return nil, err
	}

	base := &Base{
		name:   name,
		maxRPM: cfg.MaxRPM,
		logger: logger,
	}

	for _, motorName := range cfg.Left {
		m, err := motor.FromDependencies(deps, motorName)
		if err != nil {
			return nil, errors.Wrapf(err, "no left motor named (%s)", motorName)
		}
		base.left = append(base.left, m)
	}

	for _, motorName := range cfg.Right {
		m, err := motor.FromDependencies(deps, motorName)
		if err != nil {
			return nil, errors.Wrapf(err, "no right motor named (%s)", motorName)
		}
		base.right = append(base.right, m)
	}

	base.allMotors = append(base.allMotors, base.left...)
	base.allMotors = append(base.allMotors, base.right...)
	return base, nil
}

// Name returns the configured name of the base.
func (base *Base) Name() string {
	return base.name
}

// SetVelocity runs every left motor at `leftRPM` and every right motor at `rightRPM`. If any
// motor fails, the whole base is stopped.
func (base *Base) SetVelocity(ctx context.Context, leftRPM, rightRPM float64) error {
	leftRPM, rightRPM = base.clamp(leftRPM), base.clamp(rightRPM)

	group, groupCtx := errgroup.WithContext(ctx)
	for _, m := range base.left {
		m := m
		group.Go(func() error { return m.SetRPM(groupCtx, leftRPM, nil) })
	}
	for _, m := range base.right {
		m := m
		group.Go(func() error { return m.SetRPM(groupCtx, rightRPM, nil) })
	}

	if err := group.Wait(); err != nil {
		return multierr.Combine(err, base.Stop(ctx))
	}
	return nil
}

func (base *Base) clamp(rpm float64) float64 {
	if base.maxRPM == 0 || math.Abs(rpm) <= base.maxRPM {
		return rpm
	}
	base.logger.Debugf("clamping %.2f rpm to %.2f on base %s", rpm, base.maxRPM, base.name)
	return math.Copysign(base.maxRPM, rpm)
}

// Stop commands every motor to stop. All motors are asked even when some fail.
func (base *Base) Stop(ctx context.Context) error {
	var err error
	for _, m := range base.allMotors {
		err = multierr.Combine(err, m.Stop(ctx, nil))
	}
	return err
}

// IsPowered returns whether any motor is running, along with the fastest commanded speed.
func (base *Base) IsPowered(ctx context.Context, extra map[string]interface{}) (bool, float64, error) {
	anyOn := false
	fastest := 0.0
	for _, m := range base.allMotors {
		isOn, rpm, err := m.IsPowered(ctx, extra)
		if err != nil {
			return false, 0, err
		}
		anyOn = anyOn || isOn
		if math.Abs(rpm) > math.Abs(fastest) {
			fastest = rpm
		}
	}
	return anyOn, fastest, nil
}

// WaitTillStopped blocks until no motor is powered. If ctx ends first, or a second wait replaces
// this one, the base is stopped.
func (base *Base) WaitTillStopped(ctx context.Context) error {
	return base.opMgr.WaitTillNotPowered(ctx, stopPollTime, base,
		func(ctx context.Context, _ map[string]interface{}) error { return base.Stop(ctx) })
}

// Close stops the base.
func (base *Base) Close(ctx context.Context) error {
	return base.Stop(ctx)
}

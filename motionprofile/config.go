package motionprofile

import (
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	goutils "go.viam.com/utils"

	"github.com/treadline/pathfollow/trajectory"
	"github.com/treadline/pathfollow/utils"
)

const defaultPollInterval = 10 * time.Millisecond

// Config describes the chassis the controller drives and the limits paths are generated under.
type Config struct {
	Constraints trajectory.Constraints
	// WheelDiameter is in metres.
	WheelDiameter float64
	// GearRatio is motor turns per wheel turn. Zero means 1.
	GearRatio float64
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate(path string) error {
	if cfg.WheelDiameter == 0 {
		return goutils.NewConfigValidationFieldRequiredError(path, "wheel_diameter")
	}
	if cfg.WheelDiameter < 0 || !utils.IsFinite(cfg.WheelDiameter) {
		return goutils.NewConfigValidationError(path,
			fmt.Errorf("wheel_diameter must be positive, got %v", cfg.WheelDiameter))
	}
	if cfg.GearRatio < 0 || !utils.IsFinite(cfg.GearRatio) {
		return goutils.NewConfigValidationError(path,
			fmt.Errorf("gear_ratio must be positive, got %v", cfg.GearRatio))
	}
	if err := cfg.Constraints.WithDefaults().Validate(); err != nil {
		return goutils.NewConfigValidationError(path, err)
	}
	return nil
}

func (cfg Config) withDefaults() Config {
	cfg.Constraints = cfg.Constraints.WithDefaults()
	if cfg.GearRatio == 0 {
		cfg.GearRatio = 1
	}
	return cfg
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock makes the controller tick on `clk` instead of the wall clock.
func WithClock(clk clock.Clock) Option {
	return func(c *Controller) {
		c.clk = clk
	}
}

// WithPollInterval sets how often WaitUntilSettled checks the controller.
func WithPollInterval(interval time.Duration) Option {
	return func(c *Controller) {
		if interval > 0 {
			c.pollInterval = interval
		}
	}
}

// Package config defines the JSON configuration file shared by the path tools: the chassis, the
// limits paths are generated under, where paths are stored and how loggers are leveled.
package config

import (
	"fmt"
	"time"

	"github.com/invopop/jsonschema"
	"go.viam.com/utils"

	"github.com/treadline/pathfollow/components/base/skidsteer"
	"github.com/treadline/pathfollow/control"
	"github.com/treadline/pathfollow/logging"
	"github.com/treadline/pathfollow/motionprofile"
	"github.com/treadline/pathfollow/pathstore"
	"github.com/treadline/pathfollow/trajectory"
	rutils "github.com/treadline/pathfollow/utils"
)

// Config is the whole configuration file.
type Config struct {
	ConfigFilePath string `json:"-"`

	Chassis   Chassis                       `json:"chassis"`
	Limits    Limits                        `json:"limits"`
	Storage   Storage                       `json:"storage,omitempty"`
	Base      rutils.AttributeMap           `json:"base,omitempty"`
	Settle    Settle                        `json:"settle,omitempty"`
	LogConfig []logging.LoggerPatternConfig `json:"log,omitempty"`
	Debug     bool                          `json:"debug,omitempty"`
}

// Chassis describes the physical vehicle. Lengths are in metres.
type Chassis struct {
	TrackWidth    float64 `json:"track_width_m"`
	WheelDiameter float64 `json:"wheel_diameter_m"`
	GearRatio     float64 `json:"gear_ratio,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (c Chassis) Validate(path string) error {
	if c.TrackWidth == 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "track_width_m")
	}
	if c.WheelDiameter == 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "wheel_diameter_m")
	}
	for _, field := range []struct {
		name  string
		value float64
	}{
		{"track_width_m", c.TrackWidth},
		{"wheel_diameter_m", c.WheelDiameter},
		{"gear_ratio", c.GearRatio},
	} {
		if field.value < 0 || !rutils.IsFinite(field.value) {
			return utils.NewConfigValidationError(path, fmt.Errorf("%s must be positive, got %v", field.name, field.value))
		}
	}
	return nil
}

// Limits are the kinematic limits paths are generated under, in metres and seconds.
type Limits struct {
	MaxVelocity     float64 `json:"max_velocity"`
	MaxAcceleration float64 `json:"max_acceleration"`
	MaxJerk         float64 `json:"max_jerk"`
	MaxCurvature    float64 `json:"max_curvature,omitempty"`
	SamplePeriodMs  int     `json:"sample_period_ms,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (l Limits) Validate(path string) error {
	if l.MaxVelocity == 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "max_velocity")
	}
	if l.MaxAcceleration == 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "max_acceleration")
	}
	if l.MaxJerk == 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "max_jerk")
	}
	if l.SamplePeriodMs < 0 {
		return utils.NewConfigValidationError(path,
			fmt.Errorf("sample_period_ms must be positive, got %d", l.SamplePeriodMs))
	}
	return nil
}

// Storage says where paths are saved.
type Storage struct {
	// Root defaults to pathstore.DefaultRoot.
	Root      string `json:"root,omitempty"`
	Directory string `json:"directory,omitempty"`
}

// Settle tunes settle detection. Zero values take the control package defaults.
type Settle struct {
	AtTargetError      float64 `json:"at_target_error,omitempty"`
	AtTargetDerivative float64 `json:"at_target_derivative,omitempty"`
	AtTargetTimeMs     int     `json:"at_target_time_ms,omitempty"`
}

// Validate checks every section, naming the offending field in the error.
func (cfg *Config) Validate() error {
	if err := cfg.Chassis.Validate("chassis"); err != nil {
		return err
	}
	if err := cfg.Limits.Validate("limits"); err != nil {
		return err
	}
	mp := cfg.MotionProfile()
	if err := mp.Validate("limits"); err != nil {
		return err
	}
	if _, err := cfg.BaseConfig(); err != nil {
		return err
	}
	if cfg.Settle.AtTargetError < 0 || cfg.Settle.AtTargetDerivative < 0 || cfg.Settle.AtTargetTimeMs < 0 {
		return utils.NewConfigValidationError("settle", fmt.Errorf("settle thresholds must not be negative"))
	}
	for i, lpc := range cfg.LogConfig {
		if err := lpc.Validate(); err != nil {
			return utils.NewConfigValidationError(fmt.Sprintf("log.%d", i), err)
		}
	}
	return nil
}

// Constraints returns the generation limits.
func (cfg *Config) Constraints() trajectory.Constraints {
	return trajectory.Constraints{
		MaxVelocity:     cfg.Limits.MaxVelocity,
		MaxAcceleration: cfg.Limits.MaxAcceleration,
		MaxJerk:         cfg.Limits.MaxJerk,
		TrackWidth:      cfg.Chassis.TrackWidth,
		SamplePeriod:    time.Duration(cfg.Limits.SamplePeriodMs) * time.Millisecond,
		MaxCurvature:    cfg.Limits.MaxCurvature,
	}.WithDefaults()
}

// MotionProfile returns the path controller's configuration.
func (cfg *Config) MotionProfile() motionprofile.Config {
	return motionprofile.Config{
		Constraints:   cfg.Constraints(),
		WheelDiameter: cfg.Chassis.WheelDiameter,
		GearRatio:     cfg.Chassis.GearRatio,
	}
}

// BaseConfig decodes the base attributes. A missing base section means one motor per side, named
// "left" and "right".
func (cfg *Config) BaseConfig() (*skidsteer.Config, error) {
	if len(cfg.Base) == 0 {
		return &skidsteer.Config{Left: []string{"left"}, Right: []string{"right"}}, nil
	}
	for _, side := range []string{"left", "right"} {
		if _, err := cfg.Base.StringSlice(side); err != nil {
			return nil, utils.NewConfigValidationError("base", err)
		}
	}
	if _, err := cfg.Base.Float64("max_rpm", 0); err != nil {
		return nil, utils.NewConfigValidationError("base", err)
	}
	baseCfg, err := skidsteer.ConfigFromAttributes(cfg.Base)
	if err != nil {
		return nil, utils.NewConfigValidationError("base", err)
	}
	if _, err := baseCfg.Validate("base"); err != nil {
		return nil, err
	}
	return baseCfg, nil
}

// SettledUtilConfig returns the settle detection thresholds.
func (cfg *Config) SettledUtilConfig() control.SettledUtilConfig {
	return control.SettledUtilConfig{
		AtTargetError:      cfg.Settle.AtTargetError,
		AtTargetDerivative: cfg.Settle.AtTargetDerivative,
		AtTargetTime:       time.Duration(cfg.Settle.AtTargetTimeMs) * time.Millisecond,
	}
}

// NewStore returns an empty path store rooted where the config says.
func (cfg *Config) NewStore() *pathstore.Store {
	return pathstore.NewStore(cfg.Storage.Root)
}

// Schema returns the JSON schema of the configuration file.
func Schema() *jsonschema.Schema {
	return jsonschema.Reflect(&Config{})
}

package config

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"go.viam.com/test"

	"github.com/treadline/pathfollow/logging"
	"github.com/treadline/pathfollow/pathstore"
	"github.com/treadline/pathfollow/testutils"
	"github.com/treadline/pathfollow/utils"
)

const validConfig = `{
	"chassis": {"track_width_m": 0.2667, "wheel_diameter_m": 0.1016, "gear_ratio": 0.5},
	"limits": {"max_velocity": 1, "max_acceleration": 2, "max_jerk": 10},
	"storage": {"root": "${PATHS_ROOT}", "directory": "runs"},
	"base": {"left": ["fl", "bl"], "right": ["fr", "br"], "max_rpm": "200"},
	"settle": {"at_target_time_ms": 100},
	"log": [{"pattern": "pathgen.*", "level": "debug"}]
}`

func TestRead(t *testing.T) {
	logger := logging.NewTestLogger(t)
	dir := testutils.TempDir(t, "config")
	t.Setenv("PATHS_ROOT", dir)
	path := testutils.WriteTempFile(t, dir, "cfg*.json", validConfig)

	cfg, err := Read(path, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.ConfigFilePath, test.ShouldEqual, path)
	test.That(t, cfg.Storage.Root, test.ShouldEqual, dir)
	test.That(t, cfg.Storage.Directory, test.ShouldEqual, "runs")

	constraints := cfg.Constraints()
	test.That(t, constraints.MaxVelocity, test.ShouldEqual, 1)
	test.That(t, constraints.TrackWidth, test.ShouldEqual, 0.2667)
	test.That(t, constraints.SamplePeriod, test.ShouldEqual, 10*time.Millisecond)
	test.That(t, constraints.MaxCurvature, test.ShouldAlmostEqual, 4/0.2667)

	mp := cfg.MotionProfile()
	test.That(t, mp.WheelDiameter, test.ShouldEqual, 0.1016)
	test.That(t, mp.GearRatio, test.ShouldEqual, 0.5)

	baseCfg, err := cfg.BaseConfig()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, baseCfg.Left, test.ShouldResemble, []string{"fl", "bl"})
	test.That(t, baseCfg.MaxRPM, test.ShouldEqual, 200)

	test.That(t, cfg.SettledUtilConfig().AtTargetTime, test.ShouldEqual, 100*time.Millisecond)
	test.That(t, cfg.NewStore().Root(), test.ShouldEqual, dir)
	test.That(t, cfg.LogConfig, test.ShouldHaveLength, 1)
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read("/does/not/exist.json", logging.NewTestLogger(t))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestDefaults(t *testing.T) {
	cfg, err := FromReader("", strings.NewReader(`{
		"chassis": {"track_width_m": 0.3, "wheel_diameter_m": 0.1},
		"limits": {"max_velocity": 1, "max_acceleration": 2, "max_jerk": 10, "sample_period_ms": 20}
	}`), logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Constraints().SamplePeriod, test.ShouldEqual, 20*time.Millisecond)
	test.That(t, cfg.NewStore().Root(), test.ShouldEqual, pathstore.DefaultRoot)

	baseCfg, err := cfg.BaseConfig()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, baseCfg.Left, test.ShouldResemble, []string{"left"})
	test.That(t, baseCfg.Right, test.ShouldResemble, []string{"right"})
}

func TestValidationErrorsNameField(t *testing.T) {
	logger := logging.NewTestLogger(t)
	for _, tc := range []struct {
		name  string
		input string
		want  string
	}{
		{
			"missing track width",
			`{"chassis": {"wheel_diameter_m": 0.1}, "limits": {"max_velocity": 1, "max_acceleration": 2, "max_jerk": 10}}`,
			"track_width_m",
		},
		{
			"missing wheel diameter",
			`{"chassis": {"track_width_m": 0.3}, "limits": {"max_velocity": 1, "max_acceleration": 2, "max_jerk": 10}}`,
			"wheel_diameter_m",
		},
		{
			"negative gear ratio",
			`{"chassis": {"track_width_m": 0.3, "wheel_diameter_m": 0.1, "gear_ratio": -2},
			  "limits": {"max_velocity": 1, "max_acceleration": 2, "max_jerk": 10}}`,
			"gear_ratio",
		},
		{
			"missing jerk",
			`{"chassis": {"track_width_m": 0.3, "wheel_diameter_m": 0.1}, "limits": {"max_velocity": 1, "max_acceleration": 2}}`,
			"max_jerk",
		},
		{
			"uneven base",
			`{"chassis": {"track_width_m": 0.3, "wheel_diameter_m": 0.1},
			  "limits": {"max_velocity": 1, "max_acceleration": 2, "max_jerk": 10},
			  "base": {"left": ["a", "b"], "right": ["c"]}}`,
			"same number of motors",
		},
		{
			"non-numeric max rpm",
			`{"chassis": {"track_width_m": 0.3, "wheel_diameter_m": 0.1},
			  "limits": {"max_velocity": 1, "max_acceleration": 2, "max_jerk": 10},
			  "base": {"left": ["a"], "right": ["b"], "max_rpm": "fast"}}`,
			`attribute "max_rpm"`,
		},
		{
			"bad log pattern",
			`{"chassis": {"track_width_m": 0.3, "wheel_diameter_m": 0.1},
			  "limits": {"max_velocity": 1, "max_acceleration": 2, "max_jerk": 10},
			  "log": [{"pattern": "a..b", "level": "info"}]}`,
			"log.0",
		},
		{
			"unknown field",
			`{"chassis": {"track_width_m": 0.3, "wheel_diameter_m": 0.1, "wheels": 4}}`,
			"wheels",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FromReader("", strings.NewReader(tc.input), logger)
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, err.Error(), test.ShouldContainSubstring, tc.want)
		})
	}
}

func TestChassisValidateReportsFirstBadField(t *testing.T) {
	chassis := Chassis{TrackWidth: -1, WheelDiameter: -1, GearRatio: -1}
	for i := 0; i < 20; i++ {
		err := chassis.Validate("chassis")
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "track_width_m")
		test.That(t, err.Error(), test.ShouldNotContainSubstring, "gear_ratio")
	}

	chassis.TrackWidth = 0.3
	err := chassis.Validate("chassis")
	test.That(t, err.Error(), test.ShouldContainSubstring, "wheel_diameter_m")
}

func TestReadWaypoints(t *testing.T) {
	waypoints, err := WaypointsFromReader(strings.NewReader(`[
		{"x": 0, "y": 0, "heading_deg": 0},
		{"x": 0.9144, "y": 0, "heading_deg": 45}
	]`))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, waypoints, test.ShouldHaveLength, 2)
	test.That(t, waypoints[1].X, test.ShouldEqual, 0.9144)
	test.That(t, waypoints[1].Heading, test.ShouldAlmostEqual, utils.DegToRad(45))

	_, err = WaypointsFromReader(strings.NewReader(`[{"x": 0, "heading": 1}]`))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestSchema(t *testing.T) {
	raw, err := json.Marshal(Schema())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(raw), test.ShouldContainSubstring, "track_width_m")
	test.That(t, string(raw), test.ShouldContainSubstring, "sample_period_ms")
}

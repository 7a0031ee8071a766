package skidsteer

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.viam.com/test"

	"github.com/treadline/pathfollow/components/motor"
	"github.com/treadline/pathfollow/components/motor/fake"
	"github.com/treadline/pathfollow/logging"
	"github.com/treadline/pathfollow/utils"
)

var testCfg = &Config{
	Left:  []string{"fl-m", "bl-m"},
	Right: []string{"fr-m", "br-m"},
}

func fakeMotorDependencies(t *testing.T, names []string) (motor.Dependencies, map[string]*fake.Motor) {
	t.Helper()
	logger := logging.NewTestLogger(t)

	deps := make(motor.Dependencies)
	fakes := make(map[string]*fake.Motor)
	for _, name := range names {
		m := fake.NewMotor(name, logger)
		deps[name] = m
		fakes[name] = m
	}
	return deps, fakes
}

func TestValidate(t *testing.T) {
	deps, err := testCfg.Validate("path")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, deps, test.ShouldResemble, []string{"fl-m", "bl-m", "fr-m", "br-m"})

	cfg := &Config{Right: []string{"r"}}
	_, err = cfg.Validate("path")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "left")

	cfg = &Config{Left: []string{"l"}}
	_, err = cfg.Validate("path")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "right")

	cfg = &Config{Left: []string{"l1", "l2"}, Right: []string{"r"}}
	_, err = cfg.Validate("path")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "same number of motors")

	cfg = &Config{Left: []string{"l"}, Right: []string{"r"}, MaxRPM: -1}
	_, err = cfg.Validate("path")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "max_rpm")
}

func TestConfigFromAttributes(t *testing.T) {
	cfg, err := ConfigFromAttributes(utils.AttributeMap{
		"left":    []interface{}{"l"},
		"right":   []interface{}{"r"},
		"max_rpm": "120",
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Left, test.ShouldResemble, []string{"l"})
	test.That(t, cfg.MaxRPM, test.ShouldEqual, 120)

	_, err = ConfigFromAttributes(utils.AttributeMap{"left": []interface{}{"l"}, "wheels": 4})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestNewMissingMotor(t *testing.T) {
	deps, _ := fakeMotorDependencies(t, []string{"fl-m", "bl-m", "fr-m"})
	_, err := New("base", testCfg, deps, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "br-m")
}

func TestSetVelocityAndStop(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewTestLogger(t)
	cfgDeps, err := testCfg.Validate("path")
	test.That(t, err, test.ShouldBeNil)
	deps, fakes := fakeMotorDependencies(t, cfgDeps)

	base, err := New("base", testCfg, deps, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, base.Name(), test.ShouldEqual, "base")

	test.That(t, base.SetVelocity(ctx, 30, -45), test.ShouldBeNil)
	test.That(t, fakes["fl-m"].LastRPM(), test.ShouldEqual, 30)
	test.That(t, fakes["bl-m"].LastRPM(), test.ShouldEqual, 30)
	test.That(t, fakes["fr-m"].LastRPM(), test.ShouldEqual, -45)
	test.That(t, fakes["br-m"].LastRPM(), test.ShouldEqual, -45)

	powered, fastest, err := base.IsPowered(ctx, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, powered, test.ShouldBeTrue)
	test.That(t, fastest, test.ShouldEqual, -45)

	test.That(t, base.Stop(ctx), test.ShouldBeNil)
	for _, m := range fakes {
		test.That(t, m.LastRPM(), test.ShouldEqual, 0)
	}
	powered, _, err = base.IsPowered(ctx, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, powered, test.ShouldBeFalse)
	test.That(t, base.WaitTillStopped(ctx), test.ShouldBeNil)
}

func TestSetVelocityClamps(t *testing.T) {
	ctx := context.Background()
	cfg := &Config{Left: []string{"l"}, Right: []string{"r"}, MaxRPM: 100}
	deps, fakes := fakeMotorDependencies(t, []string{"l", "r"})
	base, err := New("base", cfg, deps, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	test.That(t, base.SetVelocity(ctx, 150, -250), test.ShouldBeNil)
	test.That(t, fakes["l"].LastRPM(), test.ShouldEqual, 100)
	test.That(t, fakes["r"].LastRPM(), test.ShouldEqual, -100)
}

func TestSetVelocityFailureStops(t *testing.T) {
	ctx := context.Background()
	cfgDeps, err := testCfg.Validate("path")
	test.That(t, err, test.ShouldBeNil)
	deps, fakes := fakeMotorDependencies(t, cfgDeps)
	base, err := New("base", testCfg, deps, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	test.That(t, base.SetVelocity(ctx, 10, 10), test.ShouldBeNil)

	boom := errors.New("bus fault")
	fakes["br-m"].SetFailure(boom)
	err = base.SetVelocity(ctx, 20, 20)
	test.That(t, errors.Is(err, boom), test.ShouldBeTrue)
	// The healthy motors were stopped; the failed one could not be.
	test.That(t, fakes["fl-m"].LastRPM(), test.ShouldEqual, 0)
	test.That(t, fakes["bl-m"].LastRPM(), test.ShouldEqual, 0)
	test.That(t, fakes["fr-m"].LastRPM(), test.ShouldEqual, 0)

	err = base.Stop(ctx)
	test.That(t, errors.Is(err, boom), test.ShouldBeTrue)
}

func TestWaitTillStoppedCancelled(t *testing.T) {
	deps, fakes := fakeMotorDependencies(t, []string{"l", "r"})
	base, err := New("base", &Config{Left: []string{"l"}, Right: []string{"r"}}, deps, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	test.That(t, base.SetVelocity(context.Background(), 10, 10), test.ShouldBeNil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err = base.WaitTillStopped(ctx)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, fakes["l"].LastRPM(), test.ShouldEqual, 0)
	test.That(t, fakes["r"].LastRPM(), test.ShouldEqual, 0)
}

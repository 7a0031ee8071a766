package fake

import (
	"context"
	"errors"
	"math"
	"testing"

	"go.viam.com/test"

	"github.com/treadline/pathfollow/logging"
)

func TestMotorRecordsSpeeds(t *testing.T) {
	ctx := context.Background()
	m := NewMotor("left", logging.NewTestLogger(t))

	powered, rpm, err := m.IsPowered(ctx, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, powered, test.ShouldBeFalse)
	test.That(t, rpm, test.ShouldEqual, 0)

	test.That(t, m.SetRPM(ctx, 40, nil), test.ShouldBeNil)
	test.That(t, m.SetRPM(ctx, 90, nil), test.ShouldBeNil)
	test.That(t, m.SetRPM(ctx, -30, nil), test.ShouldBeNil)
	test.That(t, m.LastRPM(), test.ShouldEqual, -30)
	test.That(t, m.MaxRPM(), test.ShouldEqual, 90)
	test.That(t, m.MinRPM(), test.ShouldEqual, -30)
	test.That(t, m.Commands(), test.ShouldEqual, 3)

	powered, rpm, err = m.IsPowered(ctx, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, powered, test.ShouldBeTrue)
	test.That(t, rpm, test.ShouldEqual, -30)

	test.That(t, m.Stop(ctx, nil), test.ShouldBeNil)
	test.That(t, m.LastRPM(), test.ShouldEqual, 0)
	test.That(t, m.MaxRPM(), test.ShouldEqual, 90)

	m.ResetStats()
	test.That(t, m.MaxRPM(), test.ShouldEqual, 0)
	test.That(t, m.Commands(), test.ShouldEqual, 0)
}

func TestMotorFailures(t *testing.T) {
	ctx := context.Background()
	m := NewMotor("right", nil)

	err := m.SetRPM(ctx, math.NaN(), nil)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "non-finite")

	boom := errors.New("bus fault")
	m.SetFailure(boom)
	test.That(t, m.SetRPM(ctx, 10, nil), test.ShouldEqual, boom)
	test.That(t, m.Stop(ctx, nil), test.ShouldEqual, boom)
	test.That(t, m.Commands(), test.ShouldEqual, 0)

	m.SetFailure(nil)
	test.That(t, m.SetRPM(ctx, 10, nil), test.ShouldBeNil)
	test.That(t, m.LastRPM(), test.ShouldEqual, 10)
}

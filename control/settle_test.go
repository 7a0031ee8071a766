package control

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"go.viam.com/test"
)

func TestSettledUtilDefaults(t *testing.T) {
	mock := clock.NewMock()
	su := NewSettledUtil(SettledUtilConfig{}, mock)

	// Far from target never settles.
	test.That(t, su.IsSettled(100), test.ShouldBeFalse)
	mock.Add(time.Second)
	test.That(t, su.IsSettled(100), test.ShouldBeFalse)

	// Entering the window starts the timer; the jump from 100 to 10 is not steady yet.
	test.That(t, su.IsSettled(10), test.ShouldBeFalse)
	test.That(t, su.IsSettled(9), test.ShouldBeFalse)
	mock.Add(DefaultAtTargetTime - time.Millisecond)
	test.That(t, su.IsSettled(8), test.ShouldBeFalse)
	mock.Add(time.Millisecond)
	test.That(t, su.IsSettled(8), test.ShouldBeTrue)
	mock.Add(time.Second)
	test.That(t, su.IsSettled(7), test.ShouldBeTrue)
}

func TestSettledUtilLeavingWindowResets(t *testing.T) {
	mock := clock.NewMock()
	su := NewSettledUtil(SettledUtilConfig{AtTargetError: 1, AtTargetDerivative: 0.5, AtTargetTime: 100 * time.Millisecond}, mock)

	test.That(t, su.IsSettled(0.5), test.ShouldBeFalse)
	mock.Add(90 * time.Millisecond)
	test.That(t, su.IsSettled(0.4), test.ShouldBeFalse)

	// A fast change inside the error band still resets the timer.
	test.That(t, su.IsSettled(-0.4), test.ShouldBeFalse)
	mock.Add(20 * time.Millisecond)
	test.That(t, su.IsSettled(-0.3), test.ShouldBeFalse)
	mock.Add(80 * time.Millisecond)
	test.That(t, su.IsSettled(-0.3), test.ShouldBeTrue)

	su.Reset()
	test.That(t, su.IsSettled(-0.3), test.ShouldBeFalse)
}

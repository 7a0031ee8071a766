package logging

import (
	"testing"

	"go.viam.com/test"
)

func TestLoggerPatternConfig(t *testing.T) {
	for _, pattern := range []string{"pathgen", "pathgen.*", "*.controller", "a.b_c.d-e"} {
		test.That(t, LoggerPatternConfig{Pattern: pattern, Level: "debug"}.Validate(), test.ShouldBeNil)
	}
	for _, pattern := range []string{"", ".", "a..b", "a.", "a b"} {
		test.That(t, LoggerPatternConfig{Pattern: pattern, Level: "debug"}.Validate(), test.ShouldNotBeNil)
	}
	test.That(t, LoggerPatternConfig{Pattern: "a", Level: "loud"}.Validate(), test.ShouldNotBeNil)

	lpc := LoggerPatternConfig{Pattern: "pathgen.*", Level: "debug"}
	test.That(t, lpc.Matches("pathgen.controller"), test.ShouldBeTrue)
	test.That(t, lpc.Matches("pathgen.base.left"), test.ShouldBeTrue)
	test.That(t, lpc.Matches("pathgen"), test.ShouldBeFalse)
	test.That(t, lpc.Matches("other.controller"), test.ShouldBeFalse)
}

func TestRegistryUpdateConfig(t *testing.T) {
	reg := NewRegistry()
	root := NewBlankLogger("pathgen")
	controller := root.Sublogger("controller")
	store := root.Sublogger("store")
	reg.Register(controller)
	reg.Register(store)

	err := reg.UpdateConfig([]LoggerPatternConfig{
		{Pattern: "pathgen.*", Level: "warn"},
		{Pattern: "pathgen.controller", Level: "debug"},
		{Pattern: "bad..pattern", Level: "error"},
	}, NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, controller.GetLevel(), test.ShouldEqual, DEBUG)
	test.That(t, store.GetLevel(), test.ShouldEqual, WARN)

	late := root.Sublogger("generator")
	reg.Register(late)
	test.That(t, late.GetLevel(), test.ShouldEqual, WARN)

	test.That(t, reg.UpdateConfig(nil, NewTestLogger(t)), test.ShouldBeNil)
	test.That(t, controller.GetLevel(), test.ShouldEqual, INFO)

	test.That(t, reg.SetLevel("pathgen.store", ERROR), test.ShouldBeNil)
	test.That(t, store.GetLevel(), test.ShouldEqual, ERROR)
	test.That(t, reg.SetLevel("nope", ERROR), test.ShouldNotBeNil)

	logger, ok := reg.LoggerNamed("pathgen.controller")
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, logger, test.ShouldEqual, controller)
	test.That(t, reg.Deregister("pathgen.controller"), test.ShouldBeTrue)
	test.That(t, reg.Deregister("pathgen.controller"), test.ShouldBeFalse)
}

// Package control contains helpers shared by closed-loop controllers.
package control

import (
	"math"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// SettleDetector reports whether a system has stabilized given a stream of error samples. It is
// stateful: each call is one sample.
type SettleDetector interface {
	IsSettled(err float64) bool
}

const (
	// DefaultAtTargetError is the largest |error| considered on target.
	DefaultAtTargetError = 50
	// DefaultAtTargetDerivative is the largest change in error between samples considered steady.
	DefaultAtTargetDerivative = 5
	// DefaultAtTargetTime is how long the error must stay on target.
	DefaultAtTargetTime = 250 * time.Millisecond
)

// SettledUtilConfig configures a SettledUtil. Zero values take the defaults.
type SettledUtilConfig struct {
	AtTargetError      float64       `json:"at_target_error,omitempty"`
	AtTargetDerivative float64       `json:"at_target_derivative,omitempty"`
	AtTargetTime       time.Duration `json:"at_target_time,omitempty"`
}

// SettledUtil is settled once |error| ≤ AtTargetError and the change in error since the previous
// sample is ≤ AtTargetDerivative, continuously for AtTargetTime.
type SettledUtil struct {
	mu      sync.Mutex
	cfg     SettledUtilConfig
	clk     clock.Clock
	last    float64
	hasLast bool
	since   time.Time
	onTgt   bool
}

var _ SettleDetector = &SettledUtil{}

// NewSettledUtil returns a SettledUtil timed by clk. A nil clock uses the wall clock.
func NewSettledUtil(cfg SettledUtilConfig, clk clock.Clock) *SettledUtil {
	if cfg.AtTargetError == 0 {
		cfg.AtTargetError = DefaultAtTargetError
	}
	if cfg.AtTargetDerivative == 0 {
		cfg.AtTargetDerivative = DefaultAtTargetDerivative
	}
	if cfg.AtTargetTime == 0 {
		cfg.AtTargetTime = DefaultAtTargetTime
	}
	if clk == nil {
		clk = clock.New()
	}
	return &SettledUtil{cfg: cfg, clk: clk}
}

// IsSettled records one error sample and reports whether the error has been on target for long
// enough.
func (su *SettledUtil) IsSettled(err float64) bool {
	su.mu.Lock()
	defer su.mu.Unlock()

	derivative := 0.0
	if su.hasLast {
		derivative = err - su.last
	}
	su.last, su.hasLast = err, true

	if math.Abs(err) > su.cfg.AtTargetError || math.Abs(derivative) > su.cfg.AtTargetDerivative {
		su.onTgt = false
		return false
	}
	if !su.onTgt {
		su.onTgt = true
		su.since = su.clk.Now()
	}
	return su.clk.Since(su.since) >= su.cfg.AtTargetTime
}

// Reset forgets all samples.
func (su *SettledUtil) Reset() {
	su.mu.Lock()
	defer su.mu.Unlock()
	su.hasLast = false
	su.onTgt = false
}

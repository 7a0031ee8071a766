// Package fake implements a fake motor that records the speeds it is commanded.
package fake

import (
	"context"
	"math"
	"sync"

	"go.uber.org/atomic"

	"github.com/treadline/pathfollow/components/motor"
	"github.com/treadline/pathfollow/logging"
)

var _ motor.Motor = &Motor{}

// A Motor pretends to turn at the last RPM it was given. It remembers the largest RPM ever
// commanded so tests can tell whether, and which way, a motor was driven.
type Motor struct {
	Name   string
	Logger logging.Logger

	mu       sync.Mutex
	lastRPM  float64
	maxRPM   float64
	minRPM   float64
	failWith error

	commands atomic.Int64
}

// NewMotor returns a stopped fake motor.
func NewMotor(name string, logger logging.Logger) *Motor {
	return &Motor{Name: name, Logger: logger}
}

// SetRPM records the commanded speed, or returns the injected failure if one is set.
func (m *Motor) SetRPM(ctx context.Context, rpm float64, extra map[string]interface{}) error {
	if math.IsNaN(rpm) || math.IsInf(rpm, 0) {
		return motor.NewNonFiniteRPMError(m.Name, rpm)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	m.commands.Inc()
	m.setRPM(rpm)
	return nil
}

func (m *Motor) setRPM(rpm float64) {
	m.lastRPM = rpm
	m.maxRPM = math.Max(m.maxRPM, rpm)
	m.minRPM = math.Min(m.minRPM, rpm)
}

// Stop has the motor pretend to be off. Injected failures apply to Stop too.
func (m *Motor) Stop(ctx context.Context, extra map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	if m.Logger != nil {
		m.Logger.Debugf("motor %s stopped", m.Name)
	}
	m.setRPM(0)
	return nil
}

// IsPowered returns if the motor is pretending to be on or not, and its last RPM.
func (m *Motor) IsPowered(ctx context.Context, extra map[string]interface{}) (bool, float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastRPM != 0, m.lastRPM, nil
}

// LastRPM returns the most recently commanded speed.
func (m *Motor) LastRPM() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastRPM
}

// MaxRPM returns the largest speed commanded so far, or 0 if the motor never ran forward.
func (m *Motor) MaxRPM() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxRPM
}

// MinRPM returns the most negative speed commanded so far, or 0 if the motor never ran backward.
func (m *Motor) MinRPM() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.minRPM
}

// Commands returns how many SetRPM calls succeeded.
func (m *Motor) Commands() int64 {
	return m.commands.Load()
}

// SetFailure makes every later command fail with `err`. A nil error clears it.
func (m *Motor) SetFailure(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWith = err
}

// ResetStats forgets the recorded speeds and command count.
func (m *Motor) ResetStats() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastRPM, m.maxRPM, m.minRPM = 0, 0, 0
	m.commands.Store(0)
}

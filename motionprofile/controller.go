// Package motionprofile follows stored trajectory pairs on a skid-steer drive. A single worker
// goroutine replays the active pair one sample per tick; callers change what it follows through
// requests the worker acknowledges between ticks.
package motionprofile

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"golang.org/x/time/rate"

	"github.com/treadline/pathfollow/kinematics"
	"github.com/treadline/pathfollow/logging"
	"github.com/treadline/pathfollow/operation"
	"github.com/treadline/pathfollow/pathstore"
	"github.com/treadline/pathfollow/trajectory"
	"github.com/treadline/pathfollow/utils"
)

type requestKind int

const (
	requestTarget requestKind = iota
	requestAbandon
	requestDisable
	requestReset
)

type request struct {
	kind     requestKind
	target   Target
	pair     trajectory.Pair
	disabled bool
	ack      chan struct{}
}

// Controller replays trajectory pairs from a path store on a Drive.
type Controller struct {
	store        *pathstore.Store
	drive        Drive
	cfg          Config
	logger       logging.Logger
	clk          clock.Clock
	pollInterval time.Duration

	requests chan request
	workers  utils.StoppableWorkers
	closed   atomic.Bool
	opMgr    operation.SingleOperationManager

	mu        sync.Mutex
	state     State
	target    Target
	hasTarget bool
	disabled  bool

	// Owned by the worker goroutine.
	pair     trajectory.Pair
	index    int
	period   time.Duration
	errorLog rate.Sometimes
}

// NewController validates `cfg` and starts the worker goroutine. The controller begins Idle and
// enabled.
func NewController(
	store *pathstore.Store,
	drive Drive,
	cfg Config,
	logger logging.Logger,
	opts ...Option,
) (*Controller, error) {
	if err := cfg.Validate("motion_profile"); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	c := &Controller{
		store:        store,
		drive:        drive,
		cfg:          cfg,
		logger:       logger,
		clk:          clock.New(),
		pollInterval: defaultPollInterval,
		requests:     make(chan request),
		period:       cfg.Constraints.SamplePeriod,
		errorLog:     rate.Sometimes{First: 1, Interval: time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}

	c.workers = utils.NewStoppableWorkers(c.run)
	return c, nil
}

// GeneratePath generates a pair under the controller's constraints and stores it as `id`,
// replacing any path of that name. Zero waypoints is a no-op. Generation errors leave the store
// untouched.
func (c *Controller) GeneratePath(ctx context.Context, waypoints []trajectory.Waypoint, id string) error {
	if c.closed.Load() {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(waypoints) == 0 {
		c.logger.Infow("not generating a path from zero waypoints", "path_id", id)
		return nil
	}

	start := c.clk.Now()
	pair, err := kinematics.GeneratePair(waypoints, c.cfg.Constraints)
	if err != nil {
		return errors.Wrapf(err, "cannot generate path %q", id)
	}
	if err := c.store.Put(id, pair); err != nil {
		return err
	}
	c.logger.Debugw("generated path",
		"path_id", id,
		"samples", pair.Len(),
		"duration", pair.Left.Duration().String(),
		"took", c.clk.Since(start).String())
	return nil
}

// RemovePath deletes a stored path. Removing an unknown path is a no-op. A path that is being
// followed keeps being followed.
func (c *Controller) RemovePath(id string) {
	c.store.Remove(id)
}

// Paths returns the stored path IDs in insertion order.
func (c *Controller) Paths() []string {
	return c.store.Keys()
}

// StorePath saves a stored path under `directory` in the store's root.
func (c *Controller) StorePath(directory, id string) error {
	return c.store.SaveFiles(directory, id)
}

// LoadPath loads a path saved by StorePath into the store.
func (c *Controller) LoadPath(directory, id string) error {
	return c.store.LoadFiles(directory, id)
}

// SetTarget starts following path `id` from its first sample, superseding whatever was being
// followed. An unknown id returns a NotFoundError and changes nothing. While disabled the target
// is recorded and starts once re-enabled.
func (c *Controller) SetTarget(ctx context.Context, id string, backward, mirrored bool) error {
	pair, err := c.store.Get(id)
	if err != nil {
		c.logger.Warnw("cannot follow unknown path", "path_id", id)
		return err
	}
	if err := pair.Validate(); err != nil {
		return errors.Wrapf(err, "cannot follow path %q", id)
	}
	return c.send(ctx, request{
		kind:   requestTarget,
		target: Target{PathID: id, Backward: backward, Mirrored: mirrored},
		pair:   kinematics.Apply(pair, backward, mirrored),
	})
}

// Target returns the path being followed. The zero Target is returned when there is none.
func (c *Controller) Target() Target {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

// FlipDisable suspends execution and stops the drive when `disabled` is true. Re-enabling
// restarts an unfinished target from its first sample.
func (c *Controller) FlipDisable(ctx context.Context, disabled bool) error {
	return c.send(ctx, request{kind: requestDisable, disabled: disabled})
}

// Reset clears the target, stops the drive and leaves the controller Idle and enabled.
func (c *Controller) Reset(ctx context.Context) error {
	return c.send(ctx, request{kind: requestReset})
}

// State returns the controller's state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsSettled returns whether the controller has stopped commanding motion: it is not Tracking, or
// it is closed.
func (c *Controller) IsSettled() bool {
	if c.closed.Load() {
		return true
	}
	return c.State() != Tracking
}

// IsDisabled returns whether execution is suspended.
func (c *Controller) IsDisabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disabled
}

// WaitUntilSettled blocks until IsSettled is true or ctx ends. It has no timeout of its own.
func (c *Controller) WaitUntilSettled(ctx context.Context) error {
	return operation.PollUntil(ctx, c.pollInterval, func(context.Context) (bool, error) {
		return c.IsSettled(), nil
	})
}

// MoveTo generates a temporary path through `waypoints`, follows it until settled and removes it.
// A later MoveTo supersedes this one. If ctx ends first, the temporary path is abandoned and the
// drive stopped, unless something else is being followed by then.
func (c *Controller) MoveTo(ctx context.Context, waypoints []trajectory.Waypoint, backward, mirrored bool) error {
	ctx, done := c.opMgr.New(ctx)
	defer done()

	id := "moveto-" + uuid.NewString()
	if err := c.GeneratePath(ctx, waypoints, id); err != nil {
		return err
	}
	defer c.RemovePath(id)
	if len(waypoints) == 0 {
		return nil
	}

	if err := c.SetTarget(ctx, id, backward, mirrored); err != nil {
		return err
	}
	if err := c.WaitUntilSettled(ctx); err != nil {
		abandonErr := c.send(context.Background(), request{kind: requestAbandon, target: Target{PathID: id}})
		if errors.Is(abandonErr, ErrClosed) {
			abandonErr = nil
		}
		return multierr.Combine(err, abandonErr)
	}
	return nil
}

// Close stops the worker, which stops the drive on its way out. Waiters are released.
func (c *Controller) Close(ctx context.Context) error {
	if c.closed.Swap(true) {
		return nil
	}
	c.opMgr.CancelRunning(ctx)
	c.workers.Stop()
	return nil
}

// send hands a request to the worker and waits until it has been applied.
func (c *Controller) send(ctx context.Context, req request) error {
	if c.closed.Load() {
		return ErrClosed
	}
	req.ack = make(chan struct{}, 1)
	select {
	case c.requests <- req:
	case <-c.workers.Context().Done():
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	<-req.ack
	return nil
}

func (c *Controller) run(ctx context.Context) {
	ticker := c.clk.Ticker(c.period)
	defer ticker.Stop()

	for {
		if ctx.Err() != nil {
			c.shutdown()
			return
		}
		select {
		case <-ctx.Done():
			c.shutdown()
			return
		case req := <-c.requests:
			c.handle(ctx, req, ticker)
			req.ack <- struct{}{}
		case <-ticker.C:
			c.step(ctx, ticker)
		}
	}
}

func (c *Controller) shutdown() {
	c.stopDrive(context.Background())
	c.setState(Idle)
	c.logger.Debug("path controller worker exited")
}

func (c *Controller) handle(ctx context.Context, req request, ticker *clock.Ticker) {
	switch req.kind {
	case requestTarget:
		c.mu.Lock()
		c.target, c.hasTarget = req.target, true
		disabled := c.disabled
		c.mu.Unlock()

		c.pair, c.index = req.pair, 0
		c.setPeriod(ticker, req.pair.Left[0].Dt)
		if disabled {
			c.logger.Infow("target set while disabled", "path_id", req.target.PathID)
			return
		}
		c.logger.Infow("following path",
			"path_id", req.target.PathID, "backward", req.target.Backward, "mirrored", req.target.Mirrored)
		c.setState(Tracking)

	case requestAbandon:
		c.mu.Lock()
		current := c.hasTarget && c.target.PathID == req.target.PathID
		c.mu.Unlock()
		if !current {
			return
		}
		c.clearTarget()
		c.stopDrive(ctx)
		if !c.IsDisabled() {
			c.setState(Idle)
		}

	case requestDisable:
		c.mu.Lock()
		c.disabled = req.disabled
		hasTarget := c.hasTarget
		c.mu.Unlock()

		if req.disabled {
			c.stopDrive(ctx)
			c.setState(Disabled)
			return
		}
		switch {
		case !hasTarget:
			c.setState(Idle)
		case c.index >= c.pair.Len():
			c.setState(Settled)
		default:
			c.index = 0
			c.setState(Tracking)
		}

	case requestReset:
		c.mu.Lock()
		c.disabled = false
		c.mu.Unlock()
		c.clearTarget()
		c.stopDrive(ctx)
		c.setState(Idle)
	}
}

func (c *Controller) clearTarget() {
	c.mu.Lock()
	c.target, c.hasTarget = Target{}, false
	c.mu.Unlock()
	c.pair, c.index = trajectory.Pair{}, 0
}

// step emits one sample while Tracking. One tick after the last sample the drive is stopped.
func (c *Controller) step(ctx context.Context, ticker *clock.Ticker) {
	if c.State() != Tracking {
		return
	}

	if c.index >= c.pair.Len() {
		c.stopDrive(ctx)
		c.setState(Settled)
		c.logger.Infow("path finished", "path_id", c.Target().PathID)
		return
	}

	left, right := c.pair.Left[c.index], c.pair.Right[c.index]
	leftRPM := kinematics.LinearToRotational(left.Velocity, c.cfg.WheelDiameter, c.cfg.GearRatio)
	rightRPM := kinematics.LinearToRotational(right.Velocity, c.cfg.WheelDiameter, c.cfg.GearRatio)
	if err := c.drive.SetVelocity(ctx, leftRPM, rightRPM); err != nil {
		c.errorLog.Do(func() {
			c.logger.Errorw("drive command failed, abandoning path",
				"path_id", c.Target().PathID, "sample", c.index, "error", err)
		})
		c.index = c.pair.Len()
		c.stopDrive(ctx)
		c.setState(Settled)
		return
	}
	c.index++

	c.setPeriod(ticker, left.Dt)
}

// setPeriod retimes the ticker. Loaded paths may carry a step other than the configured sample
// period.
func (c *Controller) setPeriod(ticker *clock.Ticker, period time.Duration) {
	if period > 0 && period != c.period {
		c.period = period
		ticker.Reset(period)
	}
}

// stopDrive issues a best-effort stop.
func (c *Controller) stopDrive(ctx context.Context) {
	if err := c.drive.Stop(ctx); err != nil {
		c.errorLog.Do(func() {
			c.logger.Errorw("drive stop failed", "error", err)
		})
	}
}

func (c *Controller) setState(state State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != state {
		c.logger.Debugw("state change", "from", c.state.String(), "to", state.String())
	}
	c.state = state
}

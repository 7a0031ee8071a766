// Package operation serializes blocking operations so that a new one cancels the one in flight.
package operation

import (
	"context"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.viam.com/utils"
)

type opKey struct{}

type op struct {
	cancel context.CancelFunc
}

// SingleOperationManager runs at most one operation at a time. Starting an operation cancels the
// one in progress unless the new one is nested inside it, i.e. started from its context.
type SingleOperationManager struct {
	mu      sync.Mutex
	current *op
}

// New starts an operation and returns its context along with a function that must be called
// when the operation is done. A context that already belongs to an operation is returned as is.
func (sm *SingleOperationManager) New(ctx context.Context) (context.Context, func()) {
	if ctx.Value(opKey{}) != nil {
		return ctx, func() {}
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.cancelCurrentLocked(ctx)

	mine := &op{}
	ctx, mine.cancel = context.WithCancel(context.WithValue(ctx, opKey{}, mine))
	sm.current = mine

	return ctx, func() {
		mine.cancel()
		sm.mu.Lock()
		if sm.current == mine {
			sm.current = nil
		}
		sm.mu.Unlock()
	}
}

// CancelRunning cancels the operation in progress unless ctx belongs to one.
func (sm *SingleOperationManager) CancelRunning(ctx context.Context) {
	if ctx.Value(opKey{}) != nil {
		return
	}
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.cancelCurrentLocked(ctx)
}

// OpRunning returns whether an operation is in progress.
func (sm *SingleOperationManager) OpRunning() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.current != nil
}

func (sm *SingleOperationManager) cancelCurrentLocked(ctx context.Context) {
	if sm.current == nil || ctx.Value(opKey{}) == sm.current {
		return
	}
	sm.current.cancel()
	sm.current = nil
}

// Powered reports whether a device is running, along with its last commanded speed in RPM.
type Powered interface {
	IsPowered(ctx context.Context, extra map[string]interface{}) (bool, float64, error)
}

// WaitTillNotPowered waits until the device reports it is off. If the wait ends early, because
// `ctx` ended or a newer operation replaced it, `stop` is called so the device is not left running.
func (sm *SingleOperationManager) WaitTillNotPowered(
	ctx context.Context,
	pollTime time.Duration,
	device Powered,
	stop func(context.Context, map[string]interface{}) error,
) (err error) {
	ctx, done := sm.New(ctx)
	defer done()

	defer func() {
		if ctx.Err() != nil {
			err = multierr.Combine(err, stop(context.Background(), map[string]interface{}{}))
		}
	}()
	return PollUntil(ctx, pollTime, func(ctx context.Context) (bool, error) {
		on, _, err := device.IsPowered(ctx, nil)
		return !on, err
	})
}

// WaitForSuccess runs PollUntil as an operation, cancelling whatever operation was in progress.
func (sm *SingleOperationManager) WaitForSuccess(
	ctx context.Context,
	pollTime time.Duration,
	testFunc func(ctx context.Context) (bool, error),
) error {
	ctx, done := sm.New(ctx)
	defer done()
	return PollUntil(ctx, pollTime, testFunc)
}

// PollUntil calls testFunc every pollTime until it returns true, it returns an error, or ctx ends.
// It takes part in no operation, so concurrent pollers never cancel each other.
func PollUntil(ctx context.Context, pollTime time.Duration, testFunc func(ctx context.Context) (bool, error)) error {
	for {
		ok, err := testFunc(ctx)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if !utils.SelectContextOrWait(ctx, pollTime) {
			return ctx.Err()
		}
	}
}

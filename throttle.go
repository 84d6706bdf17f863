// Package throttle limits how often a function runs in response to
// repeated triggers.
//
// A Throttle invokes its function at most once per wait window on the
// leading edge, the trailing edge, or both:
//
//	th, err := throttle.New(render, 100*time.Millisecond, &throttle.Config{
//		Edges: []throttle.Edge{throttle.Leading, throttle.Trailing},
//	})
//	if err != nil {
//		return err
//	}
//	onResize := th.Func()
//
// With Leading the first call of a window runs immediately and the rest
// of the window is ignored. With Trailing calls made during a window are
// coalesced into a single call at its end using the latest argument.
// Cancelling Config.Signal stops the throttle for good.
package throttle

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Throttle wraps a func(T) and gates how often it is invoked. It is safe
// for concurrent use. A Throttle must be created with New; the zero value
// has no function to invoke.
type Throttle[T any] struct {
	fn       func(T)
	wait     time.Duration
	leading  bool
	trailing bool
	signal   Signal
	log      *zap.Logger
	onPanic  func(any)

	mu          sync.Mutex
	lastInvoked time.Time // zero until the first invocation
	args        T
	hasArgs     bool
	timer       *deferred
	aborted     bool
	detach      func() bool

	inflight sync.WaitGroup // trailing calls claimed by fire but not yet returned
}

// New returns a Throttle that invokes fn at most once every wait.
// A nil cfg selects the defaults: leading edge only, no signal.
func New[T any](fn func(T), wait time.Duration, cfg *Config) (*Throttle[T], error) {
	if fn == nil {
		return nil, ErrNilFunc
	}
	if wait < 0 {
		return nil, fmt.Errorf("wait[%s] %w", wait, ErrNegativeWait)
	}
	edges, err := cfg.edges()
	if err != nil {
		return nil, fmt.Errorf("edges: %w", err)
	}

	t := &Throttle[T]{
		fn:       fn,
		wait:     wait,
		leading:  edges.leading,
		trailing: edges.trailing,
		signal:   cfg.signal(),
		log:      cfg.logger().Named("throttle"),
		onPanic:  cfg.onPanic(),
	}

	if t.signal != nil {
		if t.signal.Cancelled() {
			t.aborted = true
			t.log.Debug("signal already cancelled, throttle is inert")
			return t, nil
		}
		t.detach = t.signal.OnCancel(t.abort)
	}

	return t, nil
}

// Func returns Call as a plain function value.
func (t *Throttle[T]) Func() func(T) {
	return t.Call
}

// Call is a single trigger. Depending on the enabled edges and the time
// since the last invocation it invokes fn synchronously, schedules a
// trailing invocation, or drops arg.
func (t *Throttle[T]) Call(arg T) {
	if !t.lock() {
		t.mu.Unlock()
		return
	}

	now := time.Now()
	elapsed := now.Sub(t.lastInvoked)
	if t.lastInvoked.IsZero() || elapsed >= t.wait {
		if t.leading {
			t.cancelTimerLocked()
			t.clearArgsLocked()
			t.lastInvoked = now
			t.mu.Unlock()

			t.fn(arg)
			return
		}

		t.setArgsLocked(arg)
		t.scheduleLocked(t.wait)
		t.mu.Unlock()
		return
	}

	if !t.trailing {
		t.mu.Unlock()
		t.log.Debug("call dropped", zap.Duration("elapsed", elapsed), zap.Duration("wait", t.wait))
		return
	}

	t.setArgsLocked(arg)
	t.scheduleLocked(t.wait - elapsed)
	t.mu.Unlock()
}

// Flush runs a pending trailing call immediately. It does nothing when no
// call is pending or the throttle has been stopped.
func (t *Throttle[T]) Flush() {
	if !t.lock() || t.timer == nil {
		t.mu.Unlock()
		return
	}

	t.cancelTimerLocked()
	if !t.hasArgs {
		t.mu.Unlock()
		return
	}
	arg := t.args
	t.clearArgsLocked()
	t.lastInvoked = time.Now()
	t.mu.Unlock()

	t.log.Debug("flushing trailing call")
	t.fn(arg)
}

// Pending reports whether a trailing call is scheduled.
func (t *Throttle[T]) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.timer != nil && !t.aborted
}

// Stop permanently disables the throttle, discarding any pending call and
// detaching from its signal.
func (t *Throttle[T]) Stop() {
	t.mu.Lock()
	detach := t.detach
	t.detach = nil
	t.mu.Unlock()

	if detach != nil {
		detach()
	}
	t.abort()
}

// abort is the signal's cancellation callback.
func (t *Throttle[T]) abort() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.abortLocked()
}

func (t *Throttle[T]) abortLocked() {
	if t.aborted {
		return
	}
	t.aborted = true
	pending := t.timer != nil
	t.cancelTimerLocked()
	t.clearArgsLocked()
	t.log.Debug("throttle aborted", zap.Bool("discarded_pending", pending))
}

// lock acquires t.mu and reports whether the throttle is still active.
// The signal is polled before locking, so a cancellation is honoured
// before its notification arrives and Signal.Cancelled never runs under
// t.mu.
func (t *Throttle[T]) lock() bool {
	cancelled := t.signal != nil && t.signal.Cancelled()
	t.mu.Lock()
	if cancelled {
		t.abortLocked()
	}
	return !t.aborted
}

// drain blocks until every trailing call already started by a timer has
// returned. Once the throttle is stopped no new ones can start.
func (t *Throttle[T]) drain() {
	t.inflight.Wait()
}

func (t *Throttle[T]) scheduleLocked(d time.Duration) {
	if t.timer != nil {
		return
	}
	t.timer = schedule(d, t.fire)
	t.log.Debug("trailing call scheduled", zap.Duration("in", d))
}

func (t *Throttle[T]) fire(h *deferred) {
	active := t.lock()
	if t.timer != h || !h.claim() {
		t.mu.Unlock()
		return
	}
	t.timer = nil

	if !active || !t.hasArgs {
		t.clearArgsLocked()
		t.mu.Unlock()
		return
	}
	arg := t.args
	t.clearArgsLocked()
	t.lastInvoked = time.Now()
	t.inflight.Add(1)
	t.mu.Unlock()

	defer t.inflight.Done()
	t.invokeDeferred(arg)
}

func (t *Throttle[T]) invokeDeferred(arg T) {
	if t.onPanic != nil {
		defer func() {
			if r := recover(); r != nil {
				t.log.Error("trailing call panicked", zap.Any("panic", r))
				t.onPanic(r)
			}
		}()
	}
	t.fn(arg)
}

func (t *Throttle[T]) cancelTimerLocked() {
	if t.timer == nil {
		return
	}
	t.timer.cancel()
	t.timer = nil
}

func (t *Throttle[T]) setArgsLocked(arg T) {
	t.args = arg
	t.hasArgs = true
}

func (t *Throttle[T]) clearArgsLocked() {
	var zero T
	t.args = zero
	t.hasArgs = false
}

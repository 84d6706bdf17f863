package throttle

import "time"

type deferredState int

const (
	deferredPending deferredState = iota
	deferredFired
	deferredCancelled
)

// deferred is the single outstanding trailing-call timer of a Throttle.
// All transitions happen under the owning throttle's lock.
type deferred struct {
	timer *time.Timer
	state deferredState
}

// schedule starts a one-shot timer that calls fire with its own handle,
// so fire can tell whether the handle is still the current one.
func schedule(d time.Duration, fire func(*deferred)) *deferred {
	h := &deferred{state: deferredPending}
	h.timer = time.AfterFunc(d, func() { fire(h) })
	return h
}

// claim moves a pending handle to fired. It reports false when the
// handle was already cancelled or fired.
func (h *deferred) claim() bool {
	if h.state != deferredPending {
		return false
	}
	h.state = deferredFired
	return true
}

func (h *deferred) cancel() {
	if h.state != deferredPending {
		return
	}
	h.state = deferredCancelled
	h.timer.Stop()
}

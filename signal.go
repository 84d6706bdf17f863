package throttle

import "context"

// Signal is an external cancellation token observed by a Throttle.
// The throttle only queries and subscribes; it never cancels the signal.
type Signal interface {
	// Cancelled reports whether the signal has fired.
	Cancelled() bool
	// OnCancel arranges for fn to run once the signal fires. The returned
	// stop function detaches fn and reports whether it did so before fn
	// was started. fn takes the throttle's lock, so it must not be run
	// while holding a lock that Cancelled also acquires.
	OnCancel(fn func()) (stop func() bool)
}

type contextSignal struct {
	ctx context.Context
}

// ContextSignal adapts ctx to a Signal that fires when ctx is done.
func ContextSignal(ctx context.Context) Signal {
	return contextSignal{ctx: ctx}
}

func (s contextSignal) Cancelled() bool {
	return s.ctx.Err() != nil
}

func (s contextSignal) OnCancel(fn func()) func() bool {
	return context.AfterFunc(s.ctx, fn)
}

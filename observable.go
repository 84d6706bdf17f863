package throttle

import (
	"context"
	"time"

	"github.com/reactivex/rxgo/v2"
)

// Observe returns an Observable emitting the values of src throttled to at
// most one per wait, following cfg's edges. Error items pass through
// unthrottled. Once src completes, a pending trailing value is flushed
// before the returned Observable completes.
//
// Cancelling ctx stops the throttle, abandons any blocked emission and
// completes the returned Observable; a consumer that stops reading must
// cancel ctx to release the goroutines behind it. opts are applied to the
// returned Observable.
func Observe(ctx context.Context, src rxgo.Observable, wait time.Duration, cfg *Config, opts ...rxgo.Option) (rxgo.Observable, error) {
	out := make(chan rxgo.Item)

	emit := func(item rxgo.Item) {
		select {
		case out <- item:
		case <-ctx.Done():
		}
	}

	th, err := New(func(v interface{}) { emit(rxgo.Of(v)) }, wait, cfg)
	if err != nil {
		return nil, err
	}

	go func() {
		// Every emitter is done once drain returns, so out can be closed
		// without guarding sends.
		defer close(out)
		defer th.drain()
		defer th.Stop()

		next := src.Observe(rxgo.WithContext(ctx))
		for {
			select {
			case <-ctx.Done():
				return
			case item, ok := <-next:
				if !ok {
					th.Flush()
					return
				}
				if item.Error() {
					emit(item)
					continue
				}
				th.Call(item.V)
			}
		}
	}()

	return rxgo.FromChannel(out, opts...), nil
}

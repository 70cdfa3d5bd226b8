package reactive

import "context"

// Map applies fn to every value of in.
func Map[A, B any](ctx context.Context, in <-chan A, fn func(A) B) <-chan B {
	out := make(chan B)
	go func() {
		defer close(out)
		for {
			select {
			case a, ok := <-in:
				if !ok {
					return
				}
				select {
				case out <- fn(a):
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// SwitchMap starts project(k) for every value k of keys and forwards its
// values, switching to the latest key as soon as it arrives.
//
// Before the next inner stream is started the previous one has its context
// cancelled and is drained until it closes, so at most one inner stream is
// live at a time and no value of an older key is forwarded after a newer
// key has been received. The output closes when ctx is done or keys closes.
func SwitchMap[K, V any](ctx context.Context, keys <-chan K, project func(ctx context.Context, key K) <-chan V) <-chan V {
	out := make(chan V)

	go func() {
		defer close(out)

		var (
			inner       <-chan V
			cancelInner context.CancelFunc = func() {}
		)
		stopInner := func() {
			cancelInner()
			if inner != nil {
				for range inner {
				}
			}
			inner = nil
		}
		switchTo := func(k K) {
			stopInner()
			var innerCtx context.Context
			innerCtx, cancelInner = context.WithCancel(ctx)
			inner = project(innerCtx, k)
		}
		defer stopInner()

		for {
			select {
			case <-ctx.Done():
				return

			case k, ok := <-keys:
				if !ok {
					return
				}
				switchTo(k)

			case v, ok := <-inner:
				if !ok {
					inner = nil
					continue
				}
				// A new key received while delivering v wins: v is dropped
				// and the switch happens on the next iteration.
				select {
				case out <- v:
				case <-ctx.Done():
					return
				case k, ok := <-keys:
					if !ok {
						return
					}
					switchTo(k)
				}
			}
		}
	}()

	return out
}

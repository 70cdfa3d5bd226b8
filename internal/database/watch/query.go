package watch

import (
	"context"
	"log"
)

// Query runs load once immediately and again after every change to one of
// tables, sending each result on the returned channel. The channel is closed
// when ctx is cancelled.
//
// A failed load is logged and produces no emission; the query stays
// subscribed and retries on the next change.
func Query[T any](ctx context.Context, t *Tracker, tables []string, load func(ctx context.Context) (T, error)) <-chan T {
	out := make(chan T)

	// Subscribe before the first load so a write racing with it is not lost.
	changed, unsubscribe := t.subscribe(tables)

	go func() {
		defer close(out)
		defer unsubscribe()

		for {
			result, err := load(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Printf("[WATCH] query on %v failed: %v", tables, err)
			} else {
				select {
				case out <- result:
				case <-ctx.Done():
					return
				}
			}

			select {
			case <-changed:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

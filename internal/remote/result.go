package remote

import "context"

// Result is the outcome of one remote fetch.
type Result[T any] struct {
	Value T
	Err   error
}

// Ok reports whether the fetch succeeded.
func (r Result[T]) Ok() bool { return r.Err == nil }

// Go runs fetch on its own goroutine. The returned channel receives exactly
// one Result and is then closed.
func Go[T any](ctx context.Context, fetch func(ctx context.Context) (T, error)) <-chan Result[T] {
	ch := make(chan Result[T], 1)
	go func() {
		defer close(ch)
		v, err := fetch(ctx)
		ch <- Result[T]{Value: v, Err: err}
	}()
	return ch
}

// Package reactive provides the small set of channel-based stream operators
// the read path needs: a conflating broadcast value, Map and SwitchMap.
//
// Every stream is a receive-only channel that is closed when the producing
// context is cancelled or the upstream closes.
package reactive

import (
	"context"
	"sync"
)

// Subject holds a current value and broadcasts changes to subscribers.
// Slow subscribers only ever see the latest value; intermediate values may
// be skipped.
type Subject[T comparable] struct {
	mu     sync.Mutex
	value  T
	subs   map[uint64]chan T
	nextID uint64
}

// NewSubject creates a subject holding initial.
func NewSubject[T comparable](initial T) *Subject[T] {
	return &Subject[T]{value: initial, subs: make(map[uint64]chan T)}
}

// Value returns the current value.
func (s *Subject[T]) Value() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Set replaces the current value. Setting the value already held does not
// emit.
func (s *Subject[T]) Set(v T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v == s.value {
		return false
	}
	s.value = v
	for _, ch := range s.subs {
		offerLatest(ch, v)
	}
	return true
}

// Subscribe returns a stream that yields the current value immediately and
// every later change until ctx is done.
func (s *Subject[T]) Subscribe(ctx context.Context) <-chan T {
	mailbox := make(chan T, 1)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = mailbox
	mailbox <- s.value
	s.mu.Unlock()

	out := make(chan T)
	go func() {
		defer close(out)
		defer func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		}()

		for {
			select {
			case v := <-mailbox:
				select {
				case out <- v:
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

// SubscriberCount returns the number of active subscriptions.
func (s *Subject[T]) SubscriberCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// offerLatest puts v in a one-slot mailbox, replacing an unread value.
// Callers hold the subject lock, so there is a single writer per mailbox.
func offerLatest[T any](ch chan T, v T) {
	select {
	case ch <- v:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- v
}

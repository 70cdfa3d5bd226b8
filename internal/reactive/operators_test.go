package reactive

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ticker emits prefix-0, prefix-1, ... every interval until ctx is done.
func ticker(ctx context.Context, prefix string, interval time.Duration, active *atomic.Int32, maxActive *atomic.Int32) <-chan string {
	out := make(chan string)
	n := active.Add(1)
	for {
		m := maxActive.Load()
		if n <= m || maxActive.CompareAndSwap(m, n) {
			break
		}
	}
	go func() {
		defer close(out)
		defer active.Add(-1)
		for i := 0; ; i++ {
			select {
			case out <- fmt.Sprintf("%s-%d", prefix, i):
			case <-ctx.Done():
				return
			}
			select {
			case <-time.After(interval):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func TestMap(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := make(chan int)
	out := Map(ctx, in, func(i int) string { return fmt.Sprint(i * 2) })

	go func() {
		in <- 1
		in <- 2
		close(in)
	}()

	assert.Equal(t, "2", receive(t, out))
	assert.Equal(t, "4", receive(t, out))
	_, ok := <-out
	assert.False(t, ok)
}

func TestSwitchMap_FollowsLatestKey(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var active, maxActive atomic.Int32
	lang := NewSubject("en")
	out := SwitchMap(ctx, lang.Subscribe(ctx), func(ctx context.Context, key string) <-chan string {
		return ticker(ctx, key, time.Millisecond, &active, &maxActive)
	})

	assert.Equal(t, "en-0", receive(t, out))

	lang.Set("fr")
	lang.Set("de")

	// Once a "de" value is seen no other language may follow.
	seenLatest := false
	for i := 0; i < 50; i++ {
		v := receive(t, out)
		if v[:2] == "de" {
			seenLatest = true
			continue
		}
		require.False(t, seenLatest, "received %q after switching to de", v)
	}
	assert.True(t, seenLatest)
	assert.LessOrEqual(t, maxActive.Load(), int32(1))
}

func TestSwitchMap_ClosesInnerOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var active, maxActive atomic.Int32
	keys := make(chan string, 1)
	keys <- "en"
	out := SwitchMap(ctx, keys, func(ctx context.Context, key string) <-chan string {
		return ticker(ctx, key, time.Millisecond, &active, &maxActive)
	})
	receive(t, out)

	cancel()
	for range out {
	}
	assert.Eventually(t, func() bool { return active.Load() == 0 }, time.Second, 10*time.Millisecond)
}

func TestSwitchMap_ClosesWhenKeysClose(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	keys := make(chan string)
	out := SwitchMap(ctx, keys, func(ctx context.Context, key string) <-chan string {
		ch := make(chan string)
		close(ch)
		return ch
	})
	close(keys)

	select {
	case _, ok := <-out:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("output not closed")
	}
}

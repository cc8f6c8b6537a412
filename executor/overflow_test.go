package executor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOverflowQueueFIFO(t *testing.T) {
	q := newOverflowQueue(0)
	q.push(fakeExecutable{"a"})
	q.push(fakeExecutable{"b"})

	e, ok := q.pop()
	require.True(t, ok)
	require.Equal(t, "a", e.(fakeExecutable).name)
	require.Equal(t, 1, q.len())
}

func TestOverflowQueuePopFromEmptyFails(t *testing.T) {
	q := newOverflowQueue(0)
	_, ok := q.pop()
	require.False(t, ok)
}

func TestOverflowQueueBackpressuresAtCapacity(t *testing.T) {
	// Capacity 2 is lfq's minimum; fill both slots before testing that a
	// third push retries until a pop frees one.
	q := newOverflowQueue(2)
	q.push(fakeExecutable{"a"})
	q.push(fakeExecutable{"b"})

	pushed := make(chan struct{})
	go func() {
		q.push(fakeExecutable{"c"})
		close(pushed)
	}()

	select {
	case <-pushed:
		t.Fatal("third push should have retried at capacity 2")
	case <-time.After(50 * time.Millisecond):
	}

	_, ok := q.pop()
	require.True(t, ok)

	select {
	case <-pushed:
	case <-time.After(time.Second):
		t.Fatal("push did not complete after a pop freed capacity")
	}
}

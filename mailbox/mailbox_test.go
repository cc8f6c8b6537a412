package mailbox

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/harborlight/actorsub/message"
)

type actorStub struct{}

func normalMsg(command string) message.Message[actorStub] {
	return message.Message[actorStub]{Header: message.Header[actorStub]{Command: command, Priority: message.Normal}}
}

func highMsg(command string) message.Message[actorStub] {
	return message.Message[actorStub]{Header: message.Header[actorStub]{Command: command, Priority: message.High}}
}

func TestFirstEnqueueReportsNotScheduled(t *testing.T) {
	m := New[actorStub]()
	require.False(t, m.Enqueue(normalMsg("a")))
	require.True(t, m.Enqueue(normalMsg("b")))
}

func TestPopOneIsFIFOWithinPriority(t *testing.T) {
	m := New[actorStub]()
	m.Enqueue(normalMsg("a"))
	m.Enqueue(normalMsg("b"))
	m.Enqueue(normalMsg("c"))

	for _, want := range []string{"a", "b", "c"} {
		msg, ok := m.PopOne()
		require.True(t, ok)
		require.Equal(t, want, msg.Header.Command)
	}
	_, ok := m.PopOne()
	require.False(t, ok)
}

func TestHighPriorityDominatesNormal(t *testing.T) {
	m := New[actorStub]()
	m.Enqueue(normalMsg("low-1"))
	m.Enqueue(highMsg("urgent"))
	m.Enqueue(normalMsg("low-2"))

	msg, ok := m.PopOne()
	require.True(t, ok)
	require.Equal(t, "urgent", msg.Header.Command)

	msg, ok = m.PopOne()
	require.True(t, ok)
	require.Equal(t, "low-1", msg.Header.Command)
}

func TestMarkIdleIfEmptyOnlySucceedsWhenBothQueuesDrained(t *testing.T) {
	m := New[actorStub]()
	m.Enqueue(normalMsg("a"))
	require.False(t, m.MarkIdleIfEmpty())

	_, _ = m.PopOne()
	require.True(t, m.MarkIdleIfEmpty())
}

func TestLenCountsBothPriorities(t *testing.T) {
	m := New[actorStub]()
	m.Enqueue(normalMsg("a"))
	m.Enqueue(highMsg("b"))
	require.Equal(t, 2, m.Len())
}

// TestPopOneRespectsPriorityAndFIFOProperty is a property check over
// randomized interleavings of high/normal enqueues: every high-priority
// message must drain before any normal message enqueued before it, and
// within a priority class, order is preserved.
func TestPopOneRespectsPriorityAndFIFOProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		m := New[actorStub]()
		n := rapid.IntRange(0, 50).Draw(rt, "n")

		var wantHigh, wantNormal []string
		for i := 0; i < n; i++ {
			command := rapid.StringMatching(`[a-z]{1,8}`).Draw(rt, "command")
			if rapid.Bool().Draw(rt, "isHigh") {
				m.Enqueue(highMsg(command))
				wantHigh = append(wantHigh, command)
			} else {
				m.Enqueue(normalMsg(command))
				wantNormal = append(wantNormal, command)
			}
		}

		var gotHigh, gotNormal []string
		seenNormal := false
		for {
			msg, ok := m.PopOne()
			if !ok {
				break
			}
			if msg.Header.Priority == message.High {
				if seenNormal {
					rt.Fatalf("high-priority message %q drained after a normal message", msg.Header.Command)
				}
				gotHigh = append(gotHigh, msg.Header.Command)
			} else {
				seenNormal = true
				gotNormal = append(gotNormal, msg.Header.Command)
			}
		}

		if !equalSlices(wantHigh, gotHigh) {
			rt.Fatalf("high priority order: want %v, got %v", wantHigh, gotHigh)
		}
		if !equalSlices(wantNormal, gotNormal) {
			rt.Fatalf("normal priority order: want %v, got %v", wantNormal, gotNormal)
		}
	})
}

func equalSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

package supervisor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/harborlight/actorsub/actor"
	"github.com/harborlight/actorsub/observability"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// syncExecutor runs every Executable inline, so tests don't need a real
// Device fleet to exercise routing and teardown ordering.
type syncExecutor struct{}

func (syncExecutor) Execute(ex actor.Executable) {
	ex.Run(syncDevice{}, 64)
	ex.Release()
}

type syncDevice struct{}

func (syncDevice) ID() int { return 0 }

func newTestSupervisor() *Supervisor {
	return New("root", syncExecutor{}, observability.NewSink(observability.NopLogger{}))
}

func TestSupervisorRoutesToOwnDispatchByDefault(t *testing.T) {
	s := newTestSupervisor()
	got := false
	require.NoError(t, s.AddHandler("ping", func() { got = true }))
	s.Seal()

	s.Enqueue(actor.Envelope{Header: actor.Header{Command: "ping"}})
	require.Eventually(t, func() bool { return got }, time.Second, time.Millisecond)
}

func TestSupervisorRoutesToKnownChild(t *testing.T) {
	s := newTestSupervisor()
	s.Seal()

	var got int
	childAddr, err := s.SpawnActor("worker", func(child *actor.Actor) error {
		return child.AddHandler("add", func(n int) { got += n })
	})
	require.NoError(t, err)

	s.Deliver(actor.Envelope{
		Header:  actor.Header{Command: "add", Recipient: childAddr},
		Payload: []any{7},
	})
	require.Eventually(t, func() bool { return got == 7 }, time.Second, time.Millisecond)
}

func TestSupervisorRecordsUnroutableRecipient(t *testing.T) {
	metrics := observability.NewSink(observability.NopLogger{})
	s := New("root", syncExecutor{}, metrics)
	s.Seal()

	// An address spawned under a different supervisor is never in s's
	// children map, so routing to it must be recorded as unroutable.
	other := newTestSupervisor()
	other.Seal()
	otherAddr, err := other.SpawnActor("elsewhere", nil)
	require.NoError(t, err)

	s.Deliver(actor.Envelope{Header: actor.Header{Command: "noop", Recipient: otherAddr}})
	require.Eventually(t, func() bool {
		return metrics.Count(string(observability.KindUnroutable)) == 1
	}, time.Second, time.Millisecond)
}

func TestSpawnSupervisorInheritsParentExecutor(t *testing.T) {
	s := newTestSupervisor()
	s.Seal()

	subAddr, err := s.SpawnSupervisor("child-tree", nil, func(child *Supervisor) error {
		require.Equal(t, s.Executor(), child.Executor())
		return nil
	})
	require.NoError(t, err)
	require.False(t, subAddr.IsZero())
}

func TestSupervisorStopTearsDownInReverseOrder(t *testing.T) {
	s := newTestSupervisor()
	s.Seal()

	var order []string
	for _, name := range []string{"first", "second", "third"} {
		n := name
		_, err := s.SpawnActor(n, func(child *actor.Actor) error {
			child.OnStop(func(ctx context.Context) error {
				order = append(order, n)
				return nil
			})
			return nil
		})
		require.NoError(t, err)
	}

	require.NoError(t, s.Stop(context.Background()))
	require.Equal(t, []string{"third", "second", "first"}, order)
}

func TestSupervisorStopAggregatesChildErrors(t *testing.T) {
	s := newTestSupervisor()
	s.Seal()

	_, err := s.SpawnActor("bad-one", func(child *actor.Actor) error {
		child.OnStop(func(ctx context.Context) error { return context.DeadlineExceeded })
		return nil
	})
	require.NoError(t, err)
	_, err = s.SpawnActor("bad-two", func(child *actor.Actor) error {
		child.OnStop(func(ctx context.Context) error { return context.Canceled })
		return nil
	})
	require.NoError(t, err)

	err = s.Stop(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.ErrorIs(t, err, context.Canceled)
}

func TestChildrenAndSubSupervisorsReportSpawnOrder(t *testing.T) {
	s := newTestSupervisor()
	s.Seal()

	a1, err := s.SpawnActor("a1", nil)
	require.NoError(t, err)
	a2, err := s.SpawnActor("a2", nil)
	require.NoError(t, err)

	children := s.Children()
	require.Len(t, children, 2)
	require.True(t, children[0].Equal(a1))
	require.True(t, children[1].Equal(a2))
}

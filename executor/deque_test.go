package executor

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/harborlight/actorsub/actor"
)

type fakeExecutable struct {
	name string
}

func (fakeExecutable) Run(device actor.Device, maxThroughput int) {}
func (fakeExecutable) Retain()                                    {}
func (fakeExecutable) Release()                                   {}

func TestDequePopBottomIsLIFO(t *testing.T) {
	d := &deque{}
	d.pushBottom(fakeExecutable{"a"})
	d.pushBottom(fakeExecutable{"b"})

	e, ok := d.popBottom()
	require.True(t, ok)
	require.Equal(t, "b", e.(fakeExecutable).name)

	e, ok = d.popBottom()
	require.True(t, ok)
	require.Equal(t, "a", e.(fakeExecutable).name)

	_, ok = d.popBottom()
	require.False(t, ok)
}

func TestDequeStealTopIsFIFO(t *testing.T) {
	d := &deque{}
	d.pushBottom(fakeExecutable{"a"})
	d.pushBottom(fakeExecutable{"b"})
	d.pushBottom(fakeExecutable{"c"})

	e, ok := d.stealTop()
	require.True(t, ok)
	require.Equal(t, "a", e.(fakeExecutable).name)
	require.Equal(t, 2, d.len())
}

func TestDequeStealFromEmptyFails(t *testing.T) {
	d := &deque{}
	_, ok := d.stealTop()
	require.False(t, ok)
}

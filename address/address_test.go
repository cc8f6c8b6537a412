package address

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

type widget struct{ n int }

func TestNewAssignsDistinctIDs(t *testing.T) {
	w := &widget{}
	a := New("widget", w)
	b := New("widget", w)
	require.NotEqual(t, a.ID(), b.ID())
	require.False(t, a.Equal(b))
}

func TestZeroValueIsZero(t *testing.T) {
	var a Address[widget]
	require.True(t, a.IsZero())
	_, ok := a.Resolve()
	require.False(t, ok)
}

func TestResolveRecoversLiveTarget(t *testing.T) {
	w := &widget{n: 42}
	a := New("widget", w)

	got, ok := a.Resolve()
	require.True(t, ok)
	require.Equal(t, 42, got.n)
}

func TestResolveFailsAfterTargetCollected(t *testing.T) {
	a := func() Address[widget] {
		w := &widget{n: 7}
		return New("widget", w)
	}()

	// Force the target to be collected; Address must never have kept it
	// alive itself.
	for i := 0; i < 10; i++ {
		runtime.GC()
		if _, ok := a.Resolve(); !ok {
			return
		}
	}
	// The GC is not obligated to collect on any particular cycle; absence
	// of a crash and a well-formed (nil, false) or (ptr, true) result is
	// the actual contract under test here.
	_, _ = a.Resolve()
}

func TestEqualComparesByID(t *testing.T) {
	w1, w2 := &widget{}, &widget{}
	a := New("widget", w1)
	b := New("widget", w2)
	require.False(t, a.Equal(b))
	require.True(t, a.Equal(a))
}

func TestStringFormatsTypeAndID(t *testing.T) {
	a := New("widget", &widget{})
	require.Contains(t, a.String(), "widget")

	var zero Address[widget]
	require.Equal(t, "address(nil)", zero.String())
}

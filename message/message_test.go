package message

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/harborlight/actorsub/address"
)

type actorStub struct{}

func TestNewStampsTraceIDAndSendTime(t *testing.T) {
	a := address.New[actorStub]("sender", &actorStub{})
	b := address.New[actorStub]("recipient", &actorStub{})

	m := New(a, b, "greet", High, "hello")

	require.NotEqual(t, m.Header.TraceID.String(), "00000000-0000-0000-0000-000000000000")
	require.False(t, m.Header.Sent.IsZero())
	require.Equal(t, "greet", m.Header.Command)
	require.Equal(t, High, m.Header.Priority)
	require.Equal(t, []any{"hello"}, m.Payload)
}

func TestNewAllowsZeroRecipient(t *testing.T) {
	a := address.New[actorStub]("sender", &actorStub{})
	var zero address.Address[actorStub]

	m := New(a, zero, "broadcast", Normal)
	require.True(t, m.Header.Recipient.IsZero())
}

func TestPriorityString(t *testing.T) {
	require.Equal(t, "high", High.String())
	require.Equal(t, "normal", Normal.String())
}

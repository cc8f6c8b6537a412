// Package message defines the wire shape actors exchange: a header carrying
// routing and priority information plus an opaque, typed payload.
package message

import (
	"time"

	"github.com/google/uuid"

	"github.com/harborlight/actorsub/address"
)

// Priority distinguishes the two delivery classes a Mailbox maintains.
type Priority int

const (
	// Normal is the default priority.
	Normal Priority = iota
	// High-priority messages are drained before Normal ones whenever both
	// queues are non-empty.
	High
)

func (p Priority) String() string {
	if p == High {
		return "high"
	}
	return "normal"
}

// Header carries routing metadata for a Message. Recipient is optional: its
// zero value means "whoever's mailbox this lands in," which is the common
// case for direct sends. TraceID is a correlation id for structured logging
// only — it plays no part in actor identity or routing.
type Header[T any] struct {
	Sender    address.Address[T]
	Recipient address.Address[T]
	Command   string
	Priority  Priority
	TraceID   uuid.UUID
	Sent      time.Time
}

// Message pairs a Header with a heterogeneous, type-erased payload. Messages
// are single-consumer: once delivered into a mailbox only that actor's
// dispatch loop reads them.
type Message[T any] struct {
	Header  Header[T]
	Payload []any
}

// New constructs a Message, stamping a fresh trace id and send time.
func New[T any](sender address.Address[T], recipient address.Address[T], command string, priority Priority, payload ...any) Message[T] {
	return Message[T]{
		Header: Header[T]{
			Sender:    sender,
			Recipient: recipient,
			Command:   command,
			Priority:  priority,
			TraceID:   uuid.New(),
			Sent:      time.Now(),
		},
		Payload: payload,
	}
}

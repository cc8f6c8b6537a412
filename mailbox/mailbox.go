// Package mailbox implements the two-priority, single-consumer queue that
// sits in front of every actor.
package mailbox

import (
	"sync"

	"github.com/harborlight/actorsub/message"
)

// Mailbox is a bounded-in-spirit (backed by a growable slice), thread-safe
// multi-producer single-consumer queue with two priority levels. The
// scheduled flag and the queue contents share one critical section so the
// "drain then reschedule if work arrived meanwhile" handoff is race-free:
// the only place scheduled transitions false is MarkIdleIfEmpty, observing
// an empty mailbox under the same lock any producer must take to enqueue.
type Mailbox[T any] struct {
	mu        sync.Mutex
	high      []message.Message[T]
	normal    []message.Message[T]
	scheduled bool
}

// New returns an empty, unscheduled Mailbox.
func New[T any]() *Mailbox[T] {
	return &Mailbox[T]{}
}

// Enqueue pushes msg onto the queue matching its priority and returns the
// mailbox's scheduled state from just before this call. Callers use a false
// return to know they must submit the owning actor to the executor.
func (m *Mailbox[T]) Enqueue(msg message.Message[T]) (wasScheduled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if msg.Header.Priority == message.High {
		m.high = append(m.high, msg)
	} else {
		m.normal = append(m.normal, msg)
	}

	wasScheduled = m.scheduled
	m.scheduled = true
	return wasScheduled
}

// PopOne drains high before normal, per the mailbox's priority-dominance
// invariant.
func (m *Mailbox[T]) PopOne() (message.Message[T], bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.high) > 0 {
		msg := m.high[0]
		m.high = m.high[1:]
		if len(m.high) == 0 {
			m.high = nil
		}
		return msg, true
	}
	if len(m.normal) > 0 {
		msg := m.normal[0]
		m.normal = m.normal[1:]
		if len(m.normal) == 0 {
			m.normal = nil
		}
		return msg, true
	}

	var zero message.Message[T]
	return zero, false
}

// MarkIdleIfEmpty clears the scheduled flag and returns true if, under the
// mailbox's lock, both queues are empty ("safe to stop scheduling"). If new
// messages are present it leaves scheduled set and returns false, telling
// the caller to resubmit itself rather than go idle.
func (m *Mailbox[T]) MarkIdleIfEmpty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.high) == 0 && len(m.normal) == 0 {
		m.scheduled = false
		return true
	}
	return false
}

// Len reports the total number of queued messages across both priorities.
// Intended for diagnostics, not for control flow.
func (m *Mailbox[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.high) + len(m.normal)
}

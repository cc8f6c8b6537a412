// Package supervisor implements ownership and routing for a tree of actors.
// A Supervisor is itself an Actor — it reuses the mailbox and dispatch
// machinery unchanged and adds child/sub-supervisor ownership plus message
// routing by recipient address, per the design notes' "composition, not
// inheritance-for-inheritance's-sake" guidance.
package supervisor

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/multierr"

	"github.com/harborlight/actorsub/actor"
	"github.com/harborlight/actorsub/observability"
)

// ActorFactory configures a freshly constructed child actor: registering
// handlers, wiring an OnStop hook, capturing whatever user state the
// closures need. It runs on the spawning goroutine, never inside a
// dispatch.
type ActorFactory func(child *actor.Actor) error

// SupervisorFactory is ActorFactory's counterpart for sub-supervisors.
type SupervisorFactory func(child *Supervisor) error

// Supervisor owns a set of child actors and sub-supervisors, in the order
// they were spawned, and routes messages addressed to a known child. Per
// the data model, a child appears under exactly one parent and the
// ownership graph has no cycles — both are guaranteed here structurally:
// SpawnActor/SpawnSupervisor are the only ways to populate children, and
// they always create a brand new address.
type Supervisor struct {
	*actor.Actor

	mu             sync.RWMutex
	children       map[uint64]*actor.Actor
	childOrder     []uint64
	subSupervisors map[uint64]*Supervisor
	subOrder       []uint64

	parent  *Supervisor
	exec    actor.Executor
	metrics observability.MetricsSink
}

// New constructs a root (or standalone) Supervisor bound to exec. Use
// SpawnSupervisor to create a child supervisor that inherits (or overrides)
// its parent's executor instead.
func New(typeTag string, exec actor.Executor, metrics observability.MetricsSink) *Supervisor {
	s := &Supervisor{
		Actor:          actor.New(typeTag, metrics),
		children:       make(map[uint64]*actor.Actor),
		subSupervisors: make(map[uint64]*Supervisor),
		exec:           exec,
		metrics:        metrics,
	}
	s.Actor.SetExecutor(exec)
	s.Actor.SetSink(s)
	return s
}

// Executor returns the executor this subtree schedules onto.
func (s *Supervisor) Executor() actor.Executor { return s.exec }

// Parent returns the owning supervisor, or nil for the root.
func (s *Supervisor) Parent() *Supervisor { return s.parent }

// SpawnActor constructs a child actor under this supervisor: it inherits
// the supervisor's executor, runs factory to register handlers, seals the
// dispatch table, and records ownership — all on the calling goroutine, as
// required by the data model ("must run on the creating thread; is not
// itself a message"). It returns the child's address.
func (s *Supervisor) SpawnActor(typeTag string, factory ActorFactory) (actor.Addr, error) {
	child := actor.New(typeTag, s.metrics)
	child.SetExecutor(s.exec)

	if factory != nil {
		if err := factory(child); err != nil {
			return actor.Addr{}, fmt.Errorf("supervisor %s: spawn_actor %q: %w", s.Address(), typeTag, err)
		}
	}
	child.Seal()

	addr := child.Address()
	s.mu.Lock()
	s.children[addr.ID()] = child
	s.childOrder = append(s.childOrder, addr.ID())
	s.mu.Unlock()

	return addr, nil
}

// SpawnSupervisor constructs a sub-supervisor under this one. If exec is
// nil, the child inherits this supervisor's executor, per the data model's
// "children inherit their parent's executor unless they override."
func (s *Supervisor) SpawnSupervisor(typeTag string, exec actor.Executor, factory SupervisorFactory) (actor.Addr, error) {
	useExec := exec
	if useExec == nil {
		useExec = s.exec
	}

	child := New(typeTag, useExec, s.metrics)
	child.parent = s

	if factory != nil {
		if err := factory(child); err != nil {
			return actor.Addr{}, fmt.Errorf("supervisor %s: spawn_supervisor %q: %w", s.Address(), typeTag, err)
		}
	}
	child.Seal()

	addr := child.Address()
	s.mu.Lock()
	s.subSupervisors[addr.ID()] = child
	s.subOrder = append(s.subOrder, addr.ID())
	s.mu.Unlock()

	return addr, nil
}

// Deliver implements actor.Sink. A message whose recipient is empty or is
// this supervisor's own address dispatches through its own table (exactly
// like a plain Actor); a message addressed to a known child is forwarded to
// that child's mailbox; anything else is dropped with an unroutable
// observation, per the data model's routing rule in §4.4.
func (s *Supervisor) Deliver(msg actor.Envelope) {
	recipient := msg.Header.Recipient
	if recipient.IsZero() || recipient.Equal(s.Address()) {
		s.Actor.Dispatch(msg)
		return
	}

	s.mu.RLock()
	child, ok := s.children[recipient.ID()]
	s.mu.RUnlock()
	if ok {
		child.Enqueue(msg)
		return
	}

	s.mu.RLock()
	sub, ok := s.subSupervisors[recipient.ID()]
	s.mu.RUnlock()
	if ok {
		sub.Enqueue(msg)
		return
	}

	if s.metrics != nil {
		s.metrics.Unroutable(s.Address().ID(), recipient.ID())
	}
}

// Stop tears down the subtree: sub-supervisors first, then children, both
// in reverse spawn order, then the supervisor itself — mirroring the
// teardown order in the concurrency model ("dropping child actors in
// reverse insertion order"). Every failure is collected, not just the
// first, via multierr.
func (s *Supervisor) Stop(ctx context.Context) error {
	s.mu.Lock()
	subOrder := append([]uint64(nil), s.subOrder...)
	childOrder := append([]uint64(nil), s.childOrder...)
	s.mu.Unlock()

	var errs error
	for i := len(subOrder) - 1; i >= 0; i-- {
		s.mu.RLock()
		sub := s.subSupervisors[subOrder[i]]
		s.mu.RUnlock()
		if err := sub.Stop(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	for i := len(childOrder) - 1; i >= 0; i-- {
		s.mu.RLock()
		child := s.children[childOrder[i]]
		s.mu.RUnlock()
		if err := safeStop(ctx, child); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	if err := safeStop(ctx, s.Actor); err != nil {
		errs = multierr.Append(errs, err)
	}
	return errs
}

func safeStop(ctx context.Context, a *actor.Actor) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("actor %s: panic during stop: %v", a.Address(), r)
		}
	}()
	return a.Stop(ctx)
}

// Children returns the addresses of directly owned child actors, in spawn
// order. Diagnostics only.
func (s *Supervisor) Children() []actor.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]actor.Addr, 0, len(s.childOrder))
	for _, id := range s.childOrder {
		out = append(out, s.children[id].Address())
	}
	return out
}

// SubSupervisors returns the addresses of directly owned sub-supervisors,
// in spawn order. Diagnostics only.
func (s *Supervisor) SubSupervisors() []actor.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]actor.Addr, 0, len(s.subOrder))
	for _, id := range s.subOrder {
		out = append(out, s.subSupervisors[id].Address())
	}
	return out
}

// ChildNodes returns the directly owned child actors themselves, in spawn
// order. Unlike Children, this keeps the live *actor.Actor so a caller can
// read its current mailbox depth — diagnostics only (cmd/actorctl tree).
func (s *Supervisor) ChildNodes() []*actor.Actor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*actor.Actor, 0, len(s.childOrder))
	for _, id := range s.childOrder {
		out = append(out, s.children[id])
	}
	return out
}

// SubSupervisorNodes returns the directly owned sub-supervisors themselves,
// in spawn order, so a caller can recurse into their own ownership subtree.
// Diagnostics only (cmd/actorctl tree).
func (s *Supervisor) SubSupervisorNodes() []*Supervisor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Supervisor, 0, len(s.subOrder))
	for _, id := range s.subOrder {
		out = append(out, s.subSupervisors[id])
	}
	return out
}

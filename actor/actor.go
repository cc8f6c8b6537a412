// Package actor implements the behavioural unit of the runtime: a mailbox,
// a dispatch table, and the Executable contract the scheduler drives.
package actor

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/harborlight/actorsub/address"
	"github.com/harborlight/actorsub/dispatch"
	"github.com/harborlight/actorsub/mailbox"
	"github.com/harborlight/actorsub/message"
	"github.com/harborlight/actorsub/observability"
)

// Addr, Header and Envelope fix the generic message/address types to Actor
// itself, since every address in this runtime ultimately names an Actor
// (a Supervisor is an Actor too — see the supervisor package).
type (
	Addr     = address.Address[Actor]
	Header   = message.Header[Actor]
	Envelope = message.Message[Actor]
)

// Device is the minimal view of a scheduler worker an Actor needs: enough
// to identify it for diagnostics. Run does not use it to choose where it is
// resubmitted; that placement is left to Executor.Execute. The concrete
// type lives in package executor; Actor never imports it, avoiding an
// import cycle.
type Device interface {
	ID() int
}

// Executor is the minimal view of the scheduler an Actor needs to submit
// itself for another run. The concrete type lives in package executor.
type Executor interface {
	Execute(Executable)
}

// Executable is anything the scheduler can Run. Actors (and, by embedding,
// Supervisors) implement it. Retain/Release express the "not destroyed
// while running" contract from the design notes: the scheduler holds
// exactly one Retain per queue slot and calls Release exactly once after
// Run returns. In Go this doesn't manage memory (the GC does that) — it
// exists so tests can assert the "at most one concurrent Run" invariant
// and so the contract in the design notes has a literal implementation.
type Executable interface {
	Run(device Device, maxThroughput int)
	Retain()
	Release()
}

// Sink is the polymorphic message-handling capability the design notes
// describe: "a polymorphic message sink capability exposed via a
// trait/interface so both kinds [Actor and Supervisor] can appear as
// recipients." The default Actor delivers into its own dispatch table; a
// Supervisor overrides this to add child routing before falling back to the
// same table.
type Sink interface {
	Deliver(msg Envelope)
}

type defaultSink struct{ a *Actor }

func (d defaultSink) Deliver(msg Envelope) { d.a.Dispatch(msg) }

// Actor is the runtime's core behavioural unit: private state (via
// closures captured by registered handlers), a mailbox, and a dispatch
// table. It is never subclassed — behaviour comes entirely from handlers
// registered with AddHandler before the actor is sealed and spawned.
type Actor struct {
	addr     Addr
	typeTag  string
	mailbox  *mailbox.Mailbox[Actor]
	dispatch *dispatch.Table
	sink     Sink
	exec     Executor
	metrics  observability.MetricsSink

	refs    int64
	alive   int32
	blocked bool

	onStop func(context.Context) error
}

// New constructs an unsealed, unscheduled Actor. It must be assigned an
// Executor (SetExecutor) before any message enqueued against it can be
// scheduled; Supervisor.SpawnActor does this automatically.
func New(typeTag string, metrics observability.MetricsSink) *Actor {
	a := &Actor{
		typeTag:  typeTag,
		mailbox:  mailbox.New[Actor](),
		dispatch: dispatch.New(),
		metrics:  metrics,
		alive:    1,
	}
	a.addr = address.New(typeTag, a)
	a.sink = defaultSink{a}
	return a
}

// NewBlocked constructs an Actor whose mailbox is drained by the host
// thread via Drain, never by an Executor. Per the design notes' resolution
// of the "blocking actor" open question, no further semantics (timers, a
// dedicated thread) are inferred — it is exactly "an actor whose mailbox is
// drained by the host rather than the executor."
func NewBlocked(typeTag string, metrics observability.MetricsSink) *Actor {
	a := New(typeTag, metrics)
	a.blocked = true
	return a
}

// Address returns the actor's stable, weak address.
func (a *Actor) Address() Addr { return a.addr }

// Blocked reports whether this actor was constructed with NewBlocked.
func (a *Actor) Blocked() bool { return a.blocked }

// AddHandler registers fn under command. Valid only before Seal is called;
// see dispatch.Table.AddHandler for the exact contract.
func (a *Actor) AddHandler(command string, fn any) error {
	if err := a.dispatch.AddHandler(command, fn); err != nil {
		return fmt.Errorf("actor %s: %w", a.addr, err)
	}
	return nil
}

// OnStop registers a cleanup hook invoked once, when the owning supervisor
// tears this actor down.
func (a *Actor) OnStop(fn func(context.Context) error) { a.onStop = fn }

// Seal freezes the dispatch table. Called by a Supervisor once a spawned
// actor's factory has finished registering handlers.
func (a *Actor) Seal() { a.dispatch.Seal() }

// SetExecutor wires the Executor this actor schedules itself onto. Called
// by a Supervisor at spawn time; children inherit their parent's executor
// unless a different one is supplied.
func (a *Actor) SetExecutor(exec Executor) { a.exec = exec }

// SetSink overrides how incoming messages are handled. Supervisor uses this
// to interpose routing ahead of its own dispatch table.
func (a *Actor) SetSink(s Sink) { a.sink = s }

// Dispatch looks the command up in this actor's own table and invokes it,
// recording an observation on a miss. Exported so Sink implementations
// (notably Supervisor) can fall back to "handle it myself" after deciding a
// message isn't meant to be routed elsewhere.
func (a *Actor) Dispatch(msg Envelope) {
	switch a.dispatch.Dispatch(msg.Header.Command, msg.Payload) {
	case dispatch.Unhandled:
		if a.metrics != nil {
			a.metrics.Unhandled(a.addr.ID(), msg.Header.Command)
		}
	case dispatch.BadMessage:
		if a.metrics != nil {
			a.metrics.BadMessage(a.addr.ID(), msg.Header.Command)
		}
	}
}

// Enqueue is the entry point senders use. Under the mailbox's lock it
// pushes msg and checks the previous scheduled flag; on a false->true
// transition it submits this actor to its executor. Sending to a stopped
// actor is a silent no-op, per the runtime's fire-and-forget send contract.
func (a *Actor) Enqueue(msg Envelope) {
	if atomic.LoadInt32(&a.alive) == 0 {
		if a.metrics != nil {
			a.metrics.Dropped()
		}
		return
	}

	wasScheduled := a.mailbox.Enqueue(msg)
	if !wasScheduled {
		a.schedule()
	}
}

func (a *Actor) schedule() {
	if a.exec == nil {
		// Blocked actors, or actors not yet wired to an executor: there is
		// nothing to submit to. The host is expected to drive Drain itself.
		return
	}
	a.Retain()
	a.exec.Execute(a)
}

// Retain increments the scheduler-held reference count. See Executable's
// doc comment for what this does and doesn't guarantee in a GC'd runtime.
func (a *Actor) Retain() { atomic.AddInt64(&a.refs, 1) }

// Release decrements the scheduler-held reference count.
func (a *Actor) Release() { atomic.AddInt64(&a.refs, -1) }

// InFlight reports the current scheduler-held reference count. Exposed for
// tests asserting the "at most one concurrent Run" invariant and for
// diagnostics.
func (a *Actor) InFlight() int64 { return atomic.LoadInt64(&a.refs) }

// Run drains up to maxThroughput messages, dispatching each through the
// actor's current Sink. If the mailbox is non-empty when draining stops —
// either the throughput cap was hit, or new messages raced in while the
// last one was being dispatched — the actor resubmits itself rather than
// going idle. The caller (a Device) is responsible for calling Release
// exactly once after Run returns; Run itself only ever Retains, for its own
// resubmission.
func (a *Actor) Run(device Device, maxThroughput int) {
	for i := 0; i < maxThroughput; i++ {
		msg, ok := a.mailbox.PopOne()
		if !ok {
			break
		}
		a.sink.Deliver(msg)
	}

	if !a.mailbox.MarkIdleIfEmpty() {
		a.Retain()
		if a.exec != nil {
			a.exec.Execute(a)
		}
	}
}

// Drain is the blocked-actor counterpart to Run: it pops and dispatches up
// to n messages on the calling goroutine, honouring ctx cancellation
// between messages. It is a misuse to call Drain on an actor scheduled by
// an Executor.
func (a *Actor) Drain(ctx context.Context, n int) error {
	if !a.blocked {
		return fmt.Errorf("actor %s: Drain called on a non-blocked actor", a.addr)
	}
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		msg, ok := a.mailbox.PopOne()
		if !ok {
			break
		}
		a.sink.Deliver(msg)
	}
	return nil
}

// MailboxLen reports the number of queued messages. Diagnostics only.
func (a *Actor) MailboxLen() int { return a.mailbox.Len() }

// Stop marks the actor as no longer accepting messages and runs its OnStop
// hook, if any. Called by a Supervisor during teardown, in reverse spawn
// order.
func (a *Actor) Stop(ctx context.Context) error {
	atomic.StoreInt32(&a.alive, 0)
	if a.onStop == nil {
		return nil
	}
	return a.onStop(ctx)
}

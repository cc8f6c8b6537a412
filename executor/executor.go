// Package executor implements the work-sharing scheduler: a fixed fleet of
// Devices, a shared overflow queue, and the placement/stealing policy that
// keeps them busy.
package executor

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/harborlight/actorsub/actor"
	"github.com/harborlight/actorsub/config"
	"github.com/harborlight/actorsub/observability"
)

// Executor is the fixed-size fleet of Devices plus the shared overflow
// queue named in §3: the entry point anything Executable submits itself
// to.
type Executor struct {
	devices    []*Device
	overflow   *overflowQueue
	throughput int
	stealing   bool

	stopped int32

	mu   sync.Mutex
	cond *sync.Cond

	byGoroutine map[uint64]*Device
	goMu        sync.Mutex

	group *errgroup.Group

	metrics observability.MetricsSink
	logger  observability.Logger
}

// New builds an Executor per cfg. It does not start any workers — call
// Start for that.
func New(cfg config.ExecutorConfig, metrics observability.MetricsSink, logger observability.Logger) *Executor {
	if cfg.Threads <= 0 {
		cfg.Threads = 1
	}
	if cfg.ThroughputPerRun <= 0 {
		cfg.ThroughputPerRun = 1
	}
	if logger == nil {
		logger = observability.NopLogger{}
	}

	e := &Executor{
		throughput:  cfg.ThroughputPerRun,
		stealing:    cfg.Stealing,
		metrics:     metrics,
		logger:      logger,
		byGoroutine: make(map[uint64]*Device),
	}
	e.cond = sync.NewCond(&e.mu)

	var overflowCapacity int64
	if !cfg.Stealing {
		// A pure work-sharing fleet (no stealing) backpressures instead of
		// letting the overflow queue grow without bound.
		overflowCapacity = int64(cfg.Threads*cfg.ThroughputPerRun) * 16
	}
	e.overflow = newOverflowQueue(overflowCapacity)

	e.devices = make([]*Device, cfg.Threads)
	for i := range e.devices {
		e.devices[i] = &Device{id: i, exec: e}
	}

	return e
}

// MaxThroughput returns the scheduler-wide per-run message cap.
func (e *Executor) MaxThroughput() int { return e.throughput }

// Start spawns one goroutine per Device, each running the work-sharing
// loop, tracked by an errgroup that Stop waits on. The loop returns no
// error of its own, so Stop's result is always nil; neither the loop nor
// actor.Actor.Run recovers a panic.
func (e *Executor) Start(ctx context.Context) {
	g, gctx := errgroup.WithContext(ctx)
	e.group = g

	for _, d := range e.devices {
		dev := d
		g.Go(func() error {
			dev.loop(gctx)
			return nil
		})
	}
}

// Stop sets the stopped flag, wakes every sleeping Device, and waits for
// all of them to exit. It does not wait for mailboxes to drain: in-flight
// Runs complete, queued-but-not-running Executables are simply abandoned,
// per the failure model's teardown rule.
func (e *Executor) Stop() error {
	atomic.StoreInt32(&e.stopped, 1)
	e.wake()

	if e.group == nil {
		return nil
	}
	return e.group.Wait()
}

// Execute submits ex for execution: onto the calling Device's own local
// deque if the caller is itself running inside a Device's loop, or onto the
// shared overflow queue otherwise. A stopped executor silently drops the
// submission, per the "send after executor stop" rule in the failure
// model.
func (e *Executor) Execute(ex actor.Executable) {
	if atomic.LoadInt32(&e.stopped) != 0 {
		if e.metrics != nil {
			e.metrics.Dropped()
		}
		return
	}

	if d := e.currentDevice(); d != nil {
		d.local.pushBottom(ex)
	} else {
		e.overflow.push(ex)
	}
	e.wake()
}

func (e *Executor) currentDevice() *Device {
	e.goMu.Lock()
	defer e.goMu.Unlock()
	return e.byGoroutine[goroutineID()]
}

func (e *Executor) registerDevice(goid uint64, d *Device) {
	e.goMu.Lock()
	e.byGoroutine[goid] = d
	e.goMu.Unlock()
}

func (e *Executor) unregisterDevice(goid uint64) {
	e.goMu.Lock()
	delete(e.byGoroutine, goid)
	e.goMu.Unlock()
}

func (e *Executor) wake() {
	e.mu.Lock()
	e.cond.Broadcast()
	e.mu.Unlock()
}

// sleepUntilWork parks the calling Device until there's reason to believe
// work exists, or the executor has stopped. Device.loop re-checks all
// sources itself on wake, so a spurious wake (or a wake meant for another
// device) is harmless.
func (e *Executor) sleepUntilWork(d *Device) {
	e.mu.Lock()
	for atomic.LoadInt32(&e.stopped) == 0 &&
		d.local.len() == 0 &&
		e.overflow.len() == 0 {
		e.cond.Wait()
	}
	e.mu.Unlock()
}

// Devices returns the fleet, for diagnostics (cmd/actorctl).
func (e *Executor) Devices() []*Device { return e.devices }

// QueueDepth reports a Device's local deque length. Diagnostics only.
func (d *Device) QueueDepth() int { return d.local.len() }

// OverflowDepth reports the shared overflow queue's length. Diagnostics
// only.
func (e *Executor) OverflowDepth() int { return e.overflow.len() }

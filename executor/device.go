package executor

import (
	"context"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/harborlight/actorsub/actor"
)

// Device is one worker: a dedicated goroutine standing in for the design's
// "one OS thread," owning a local deque and running the work-sharing loop
// in §4.5 — local deque, then overflow, then a steal attempt, then sleep.
type Device struct {
	id    int
	exec  *Executor
	local *deque
}

// ID identifies the device for diagnostics. It satisfies actor.Device.
func (d *Device) ID() int { return d.id }

func (d *Device) loop(ctx context.Context) {
	goid := goroutineID()
	d.exec.registerDevice(goid, d)
	defer d.exec.unregisterDevice(goid)

	rnd := rand.New(rand.NewSource(time.Now().UnixNano() ^ int64(d.id)<<32))

	for {
		if atomic.LoadInt32(&d.exec.stopped) != 0 {
			return
		}
		if ctx.Err() != nil {
			return
		}

		if e, ok := d.local.popBottom(); ok {
			d.runExecutable(e)
			continue
		}
		if e, ok := d.exec.overflow.pop(); ok {
			d.runExecutable(e)
			continue
		}
		if d.exec.stealing {
			if e, ok := d.steal(rnd); ok {
				d.runExecutable(e)
				continue
			}
		}

		d.exec.sleepUntilWork(d)
	}
}

func (d *Device) runExecutable(e actor.Executable) {
	e.Run(d, d.exec.throughput)
	e.Release()
}

// steal takes from a random peer's top (oldest) end, giving FIFO-ordered
// stealing across the fleet while each owner treats its own deque as a
// LIFO stack, per §4.5.
func (d *Device) steal(rnd *rand.Rand) (actor.Executable, bool) {
	peers := d.exec.devices
	n := len(peers)
	if n <= 1 {
		return nil, false
	}

	start := rnd.Intn(n)
	for i := 0; i < n; i++ {
		peer := peers[(start+i)%n]
		if peer == d {
			continue
		}
		if e, ok := peer.local.stealTop(); ok {
			if d.exec.metrics != nil {
				d.exec.metrics.Stolen(d.id, peer.id)
			}
			return e, true
		}
	}
	return nil, false
}

package executor

import (
	"runtime"
	"sync/atomic"

	lfq "code.hybscloud.com/lfq"

	"github.com/harborlight/actorsub/actor"
)

// unboundedOverflowCapacity backs the overflow queue when stealing is
// enabled: large enough that a submitter essentially never observes
// backpressure, since idle Devices are expected to steal the fleet back
// down to empty long before this fills.
const unboundedOverflowCapacity = 1 << 20

// overflowQueue is the shared "multiple submitters, multiple Devices"
// queue Executables land on when they aren't submitted from a worker's own
// goroutine — exactly the Worker Pool pattern lfq documents for its MPMC
// variant. Capacity is fixed at construction (lfq has no growable queue);
// a full queue makes push retry with a Gosched-backoff rather than block on
// a semaphore, since lfq's own ErrWouldBlock is the backpressure signal.
//
// lfq deliberately does not expose a length query (accurate counts in a
// lock-free queue require cross-core synchronization it isn't willing to
// pay for), so depth is tracked here with a plain counter for the sleep/wake
// heuristic and for diagnostics. It only ever needs to be a hint: pop's own
// (value, ok) result is the real source of truth, and a stale "looks empty"
// reading just costs one extra loop iteration before the next check.
type overflowQueue struct {
	q     *lfq.MPMC[actor.Executable]
	depth int64
}

func newOverflowQueue(capacity int64) *overflowQueue {
	n := int(capacity)
	switch {
	case capacity <= 0:
		n = unboundedOverflowCapacity
	case n < 2:
		// lfq panics below its minimum capacity of 2.
		n = 2
	}
	return &overflowQueue{q: lfq.NewMPMC[actor.Executable](n)}
}

func (q *overflowQueue) push(e actor.Executable) {
	for {
		if err := q.q.Enqueue(&e); err == nil {
			atomic.AddInt64(&q.depth, 1)
			return
		}
		runtime.Gosched()
	}
}

func (q *overflowQueue) pop() (actor.Executable, bool) {
	e, err := q.q.Dequeue()
	if err != nil {
		return nil, false
	}
	atomic.AddInt64(&q.depth, -1)
	return *e, true
}

func (q *overflowQueue) len() int {
	return int(atomic.LoadInt64(&q.depth))
}

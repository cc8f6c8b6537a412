package executor

import (
	"sync"

	"github.com/harborlight/actorsub/actor"
)

// deque is a bounded-in-spirit, lock-based double-ended queue of
// Executables, one per Device. The owning Device pushes and pops its own
// bottom end (LIFO, producer/consumer side); peers steal from the top
// (FIFO, oldest-first), per the work-sharing design in §4.5. A lock-based
// implementation is explicitly permitted by the design as an alternative to
// a Chase-Lev deque, and is far simpler to get right.
type deque struct {
	mu    sync.Mutex
	items []actor.Executable
}

func (d *deque) pushBottom(e actor.Executable) {
	d.mu.Lock()
	d.items = append(d.items, e)
	d.mu.Unlock()
}

func (d *deque) popBottom() (actor.Executable, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := len(d.items)
	if n == 0 {
		return nil, false
	}
	e := d.items[n-1]
	d.items[n-1] = nil
	d.items = d.items[:n-1]
	return e, true
}

func (d *deque) stealTop() (actor.Executable, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.items) == 0 {
		return nil, false
	}
	e := d.items[0]
	d.items[0] = nil
	d.items = d.items[1:]
	return e, true
}

func (d *deque) len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.items)
}

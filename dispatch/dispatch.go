// Package dispatch implements the per-actor command table: a map from
// command name to a type-erased handler, built once at construction time
// and only read once the owning actor starts running. Every lookup takes a
// shared read lock.
package dispatch

import (
	"fmt"
	"reflect"
	"sync"
)

// Result classifies the outcome of a Dispatch call.
type Result int

const (
	// Dispatched means the handler was found, its arguments matched, and
	// it was invoked.
	Dispatched Result = iota
	// Unhandled means no handler is registered for the command. Non-fatal:
	// the message is dropped and the caller should record an observation.
	Unhandled
	// BadMessage means a handler was found but the payload's arity or
	// types didn't match its declared parameters. Fatal to that message
	// only: dropped, observation recorded, the actor keeps running.
	BadMessage
)

// handler carries everything needed to verify and invoke a registered
// function: its declared arity, the expected type of each parameter, and
// the reflect.Value used to make the call.
type handler struct {
	name       string
	paramTypes []reflect.Type
	fn         reflect.Value
}

// Table is a command-name -> handler map. Registration is only valid before
// the owning actor's first run (see Seal); after that it's read-only and
// safe for concurrent lookup without additional locking beyond the RWMutex
// used defensively here.
type Table struct {
	mu       sync.RWMutex
	handlers map[string]*handler
	sealed   bool
}

// New returns an empty, unsealed Table.
func New() *Table {
	return &Table{handlers: make(map[string]*handler)}
}

// AddHandler inspects fn's parameter list and registers it under name. fn
// must be a func value; it may take any number of parameters (including
// zero) of any type recoverable from a message payload. Registering the
// same name twice, registering a non-func, or registering after Seal has
// been called is a static misuse and returns an error — fatal at
// construction, per the runtime's failure model.
func (t *Table) AddHandler(name string, fn any) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.sealed {
		return fmt.Errorf("dispatch: cannot register %q: table is sealed", name)
	}
	if _, exists := t.handlers[name]; exists {
		return fmt.Errorf("dispatch: handler %q already registered", name)
	}

	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func {
		return fmt.Errorf("dispatch: handler %q: expected a func, got %T", name, fn)
	}

	rt := rv.Type()
	params := make([]reflect.Type, rt.NumIn())
	for i := range params {
		params[i] = rt.In(i)
	}

	t.handlers[name] = &handler{name: name, paramTypes: params, fn: rv}
	return nil
}

// Seal marks the table read-only. Called once, when the owning actor is
// handed to its supervisor and may start running.
func (t *Table) Seal() {
	t.mu.Lock()
	t.sealed = true
	t.mu.Unlock()
}

// Dispatch looks up command and, if found, verifies payload against the
// handler's declared parameter types before invoking it. Return values from
// the handler, if any, are ignored — Handle calls are fire-and-forget from
// the dispatcher's point of view.
func (t *Table) Dispatch(command string, payload []any) Result {
	t.mu.RLock()
	h, ok := t.handlers[command]
	t.mu.RUnlock()
	if !ok {
		return Unhandled
	}

	if len(payload) != len(h.paramTypes) {
		return BadMessage
	}

	args := make([]reflect.Value, len(payload))
	for i, v := range payload {
		want := h.paramTypes[i]

		if v == nil {
			switch want.Kind() {
			case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
				args[i] = reflect.Zero(want)
				continue
			default:
				return BadMessage
			}
		}

		pv := reflect.ValueOf(v)
		if pv.Type().AssignableTo(want) {
			args[i] = pv
		} else if pv.Type().ConvertibleTo(want) {
			args[i] = pv.Convert(want)
		} else {
			return BadMessage
		}
	}

	h.fn.Call(args)
	return Dispatched
}

// Has reports whether command is registered. Dispatch does not call it;
// it is a query for callers that want to check ahead of sending.
func (t *Table) Has(command string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.handlers[command]
	return ok
}

// Package address implements the non-owning actor handle described by the
// runtime's data model: a cheap, comparable identity that never keeps its
// target alive.
package address

import (
	"fmt"
	"sync/atomic"
	"weak"
)

var nextID uint64

// Address is a weak, non-owning handle to a value of type T. It is the
// generic form of the runtime's actor address: instantiated as
// Address[actor.Actor] it identifies an actor without extending its
// lifetime, matching the "weak, non-owning" requirement in the data model.
//
// The zero value is a well-formed "no address" sentinel (IsZero reports
// true), used for a Message's optional recipient field.
type Address[T any] struct {
	id      uint64
	typeTag string
	ref     weak.Pointer[T]
}

// New allocates a fresh id and wraps target in a weak reference. typeTag is
// a short, host-supplied label (e.g. the actor's kind) carried for
// diagnostics; it plays no role in identity or equality.
func New[T any](typeTag string, target *T) Address[T] {
	return Address[T]{
		id:      atomic.AddUint64(&nextID, 1),
		typeTag: typeTag,
		ref:     weak.Make(target),
	}
}

// ID returns the address's opaque 64-bit identity.
func (a Address[T]) ID() uint64 { return a.id }

// Type returns the type tag the address was created with.
func (a Address[T]) Type() string { return a.typeTag }

// IsZero reports whether this is the zero-value "no address" sentinel.
func (a Address[T]) IsZero() bool { return a.id == 0 }

// Equal compares two addresses by id, per the data model's "comparing two
// addresses compares id" rule.
func (a Address[T]) Equal(other Address[T]) bool { return a.id == other.id }

// Resolve attempts to recover the target. It returns (nil, false) once the
// target has been collected after its owner dropped it — an Address never
// extends the target's lifetime to make this succeed.
func (a Address[T]) Resolve() (*T, bool) {
	if a.id == 0 {
		return nil, false
	}
	v := a.ref.Value()
	return v, v != nil
}

func (a Address[T]) String() string {
	if a.IsZero() {
		return "address(nil)"
	}
	return fmt.Sprintf("address(%s#%d)", a.typeTag, a.id)
}

// Package psi maps StateID -> T, growing lazily as new states are
// registered and releasing its storage when the owning registry is torn
// down. It is the collaborator-facing counterpart of
// registry.Registry: search spaces (whose nodes also hold the h-dirty
// flag) are built on Info[T], and Bitset is its one-bit-per-state
// counterpart.
package psi

import (
	"github.com/sasplan/planner/internal/registry"
	"github.com/sasplan/planner/internal/segvec"
)

// Sized is the subset of *registry.Registry a PerStateInformation needs:
// its current size, so storage can be grown up to it lazily.
type Sized interface {
	Size() int
}

// Info maps StateID -> T, backed by a SegmentedVector so references handed
// out by At stay valid as more states are registered. It subscribes to its
// registry on construction and releases its storage when notified of the
// registry's destruction; reading any index afterward
// returns T's zero value (or the configured default) rather than panicking.
type Info[T any] struct {
	reg       Sized
	def       T
	store     *segvec.SegmentedVector[T]
	destroyed bool
}

// New returns a PerStateInformation over reg whose entries default to the
// zero value of T, and subscribes it to reg's destruction notification.
func New[T any](reg interface {
	Sized
	Subscribe(registry.Subscriber)
}) *Info[T] {
	return NewWithDefault[T](reg, *new(T))
}

// NewWithDefault is like New but returns def for any state that was never
// explicitly written.
func NewWithDefault[T any](reg interface {
	Sized
	Subscribe(registry.Subscriber)
}, def T) *Info[T] {
	info := &Info[T]{reg: reg, def: def, store: segvec.New[T]()}
	reg.Subscribe(info)
	return info
}

// OnRegistryDestroy implements registry.Subscriber: it releases this
// Info's storage so it cannot observe stale states after its registry is
// gone.
func (p *Info[T]) OnRegistryDestroy() {
	p.store = nil
	p.destroyed = true
}

// growTo ensures storage has at least n entries, filling new ones with def.
func (p *Info[T]) growTo(n int) {
	for p.store.Size() < n {
		p.store.PushBack(p.def)
	}
}

// Get returns the value stored for id, or def if id was never written (or
// this Info's registry has since been destroyed).
func (p *Info[T]) Get(id registry.StateID) T {
	if p.destroyed || int(id) >= p.store.Size() {
		return p.def
	}
	return *p.store.At(int(id))
}

// Set stores val for id, growing storage as needed. It is a no-op after
// the owning registry has been destroyed.
func (p *Info[T]) Set(id registry.StateID, val T) {
	if p.destroyed {
		return
	}
	p.growTo(int(id) + 1)
	*p.store.At(int(id)) = val
}

// Ref returns a stable pointer to id's slot, creating it (with the default
// value) if it doesn't exist yet. Mutating through it is equivalent to a
// Set, without a second lookup — the pattern SearchSpace uses to update a
// node in place.
func (p *Info[T]) Ref(id registry.StateID) *T {
	if p.destroyed {
		d := p.def
		return &d
	}
	p.growTo(int(id) + 1)
	return p.store.At(int(id))
}

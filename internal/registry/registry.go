// Package registry canonicalizes reached states to unique, stable
// StateIDs and owns their packed storage. Hashing and equality of two
// packed buffers are defined over their raw bit pattern: a 64-bit hash
// buckets candidates, every registered state is listed under its hash,
// and the candidates in a bucket are compared word for word.
package registry

import (
	"fmt"

	"github.com/sasplan/planner/internal/packer"
	"github.com/sasplan/planner/internal/segvec"
	"github.com/sasplan/planner/pkg/task"
)

// StateID is an immutable handle into one registry's canonical storage.
// Two StateIDs from different registries are never comparable.
type StateID int32

// NoState is the reserved "no state" sentinel.
const NoState StateID = -1

// Subscriber is notified before a Registry releases its storage, so
// collaborators tied to the registry's lifetime (PerStateInformation) can
// release their own storage in turn.
type Subscriber interface {
	OnRegistryDestroy()
}

// Registry canonicalizes packed states for one task and owns their
// storage. The first state registered is always ID 0.
type Registry struct {
	task    *task.Task
	packer  *packer.Packer
	storage *segvec.SegmentedArrayVector

	// index buckets candidate StateIDs by a 64-bit FNV-1a hash of their
	// packed bytes; ties (true hash collisions) are resolved by comparing
	// packed bytes directly, so the stored StateID is still the sole
	// source of truth for identity.
	index map[uint64][]StateID

	axiomLayers [][]int // axiom indices grouped by ascending layer

	subscribers []Subscriber
	destroyed   bool
}

// New builds an empty registry for t and registers the initial state as ID
// 0, applying axioms to fixpoint first.
func New(t *task.Task) (*Registry, error) {
	p, err := packer.New(t.DomainSizes())
	if err != nil {
		return nil, task.NewInputError("registry: failed to build state packer", err)
	}
	r := &Registry{
		task:        t,
		packer:      p,
		storage:     segvec.NewArrayVector(p.BinsPerState()),
		index:       make(map[uint64][]StateID),
		axiomLayers: groupAxiomsByLayer(t),
	}
	initial := append([]int(nil), t.Initial...)
	r.applyAxioms(initial)
	if _, err := r.canonicalize(initial); err != nil {
		return nil, err
	}
	return r, nil
}

func groupAxiomsByLayer(t *task.Task) [][]int {
	if len(t.Axioms) == 0 {
		return nil
	}
	maxLayer := 0
	layers := t.AxiomLayer
	if layers == nil {
		layers = make([]int, len(t.Axioms))
	}
	for _, l := range layers {
		if l > maxLayer {
			maxLayer = l
		}
	}
	grouped := make([][]int, maxLayer+1)
	for i := range t.Axioms {
		l := 0
		if i < len(layers) {
			l = layers[i]
		}
		grouped[l] = append(grouped[l], i)
	}
	return grouped
}

// applyAxioms evaluates axioms to a fixpoint in-place over state, one
// stratification layer at a time: every axiom in the current
// layer is repeatedly re-evaluated against the (possibly lower-layer-
// updated) state until nothing in that layer changes, before moving on to
// the next layer.
func (r *Registry) applyAxioms(state []int) {
	for _, layer := range r.axiomLayers {
		for {
			changed := false
			for _, idx := range layer {
				ax := &r.task.Axioms[idx]
				for _, eff := range ax.Effects {
					if !conditionsHold(eff.Conditions, state) {
						continue
					}
					if state[eff.Post.Var] != eff.Post.Value {
						state[eff.Post.Var] = eff.Post.Value
						changed = true
					}
				}
			}
			if !changed {
				break
			}
		}
	}
}

func conditionsHold(conds []task.Fact, state []int) bool {
	for _, c := range conds {
		if state[c.Var] != c.Value {
			return false
		}
	}
	return true
}

// InitialState returns the task's initial state, always ID 0.
func (r *Registry) InitialState() StateID { return 0 }

// Successor applies op's effects to a copy of parent's unpacked values,
// evaluating every effect's conditions against parent's state (never
// against partially-updated successor values, ), then runs axioms
// to fixpoint and canonicalizes the result.
func (r *Registry) Successor(parent StateID, op *task.Operator) (StateID, error) {
	parentValues := r.unpack(parent)
	child := append([]int(nil), parentValues...)
	for _, eff := range op.Effects {
		if conditionsHold(eff.Conditions, parentValues) {
			child[eff.Post.Var] = eff.Post.Value
		}
	}
	r.applyAxioms(child)
	return r.canonicalize(child)
}

// Lookup returns a read-only view of the state registered under id.
func (r *Registry) Lookup(id StateID) State {
	return State{reg: r, id: id}
}

// Size returns the number of states registered so far.
func (r *Registry) Size() int { return r.storage.Size() }

// Subscribe registers s to be notified before this registry tears down its
// storage.
func (r *Registry) Subscribe(s Subscriber) {
	r.subscribers = append(r.subscribers, s)
}

// Unsubscribe removes s if present; a no-op if it was never subscribed.
func (r *Registry) Unsubscribe(s Subscriber) {
	for i, sub := range r.subscribers {
		if sub == s {
			r.subscribers = append(r.subscribers[:i], r.subscribers[i+1:]...)
			return
		}
	}
}

// Destroy notifies every subscriber, in subscription order, then releases
// this registry's packed-state storage. A destroyed registry must not be used again.
func (r *Registry) Destroy() {
	if r.destroyed {
		return
	}
	for _, s := range r.subscribers {
		s.OnRegistryDestroy()
	}
	r.subscribers = nil
	r.storage = nil
	r.index = nil
	r.destroyed = true
}

func (r *Registry) unpack(id StateID) []int {
	rec := r.storage.At(int(id))
	out := make([]int, len(r.task.Variables))
	for v := range out {
		out[v] = r.packer.Get(rec, v)
	}
	return out
}

// canonicalize packs values, and returns the existing StateID for an
// identical packed buffer if one is already registered, else registers a
// new one.
func (r *Registry) canonicalize(values []int) (StateID, error) {
	if len(values) != len(r.task.Variables) {
		return NoState, task.NewCriticalError(fmt.Sprintf("registry: state has %d values, task has %d variables", len(values), len(r.task.Variables)), nil)
	}
	buffer := r.packer.NewBuffer()
	for v, val := range values {
		r.packer.Set(buffer, v, val)
	}
	h := hashWords(buffer)
	for _, candidate := range r.index[h] {
		if wordsEqual(r.storage.At(int(candidate)), buffer) {
			return candidate, nil
		}
	}
	id := StateID(r.storage.Size())
	r.storage.PushBack(buffer)
	r.index[h] = append(r.index[h], id)
	return id, nil
}

func wordsEqual(a, b []uint64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// hashWords computes a 64-bit FNV-1a hash over a packed buffer's raw bit
// pattern, used to bucket candidates before a byte-equality check settles
// any collision.
func hashWords(buffer []uint64) uint64 {
	const (
		offsetBasis uint64 = 14695981039346656037
		prime       uint64 = 1099511628211
	)
	h := offsetBasis
	for _, w := range buffer {
		for i := 0; i < 8; i++ {
			h ^= (w >> (8 * i)) & 0xff
			h *= prime
		}
	}
	return h
}

// State is a read-only view of one registered state.
type State struct {
	reg *Registry
	id  StateID
}

// ID returns the StateID this view was looked up under.
func (s State) ID() StateID { return s.id }

// Get returns the value variable v holds in this state.
func (s State) Get(v task.Var) int {
	rec := s.reg.storage.At(int(s.id))
	return s.reg.packer.Get(rec, int(v))
}

// Values decodes every variable's value, in variable order.
func (s State) Values() []int { return s.reg.unpack(s.id) }

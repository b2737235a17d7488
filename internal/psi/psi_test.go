package psi

import (
	"testing"

	"github.com/sasplan/planner/internal/registry"
	"github.com/sasplan/planner/pkg/task"
)

func newTestRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	vars := []task.Variable{{Name: "a", DomainSZ: 2}}
	op := task.Operator{
		Name:    "flip",
		Effects: []task.EffectCond{{Post: task.Fact{Var: 0, Value: 1}}},
		Cost:    1,
	}
	tk, err := task.New(vars, []task.Operator{op}, nil, []int{0}, task.Goal{})
	if err != nil {
		t.Fatalf("task.New: %v", err)
	}
	r, err := registry.New(tk)
	if err != nil {
		t.Fatalf("registry.New: %v", err)
	}
	return r
}

func TestInfoDefaultsAndSet(t *testing.T) {
	r := newTestRegistry(t)
	info := NewWithDefault[int](r, -1)
	if got := info.Get(r.InitialState()); got != -1 {
		t.Fatalf("Get on unset entry = %d, want default -1", got)
	}
	info.Set(r.InitialState(), 42)
	if got := info.Get(r.InitialState()); got != 42 {
		t.Fatalf("Get = %d, want 42", got)
	}
}

func TestInfoRefMutatesInPlace(t *testing.T) {
	r := newTestRegistry(t)
	info := New[int](r)
	p := info.Ref(r.InitialState())
	*p = 7
	if got := info.Get(r.InitialState()); got != 7 {
		t.Fatalf("Get after Ref mutation = %d, want 7", got)
	}
}

func TestInfoReleasesStorageOnRegistryDestroy(t *testing.T) {
	r := newTestRegistry(t)
	info := NewWithDefault[int](r, -1)
	info.Set(r.InitialState(), 5)
	r.Destroy()
	if got := info.Get(r.InitialState()); got != -1 {
		t.Fatalf("Get after registry destroyed = %d, want default -1", got)
	}
}

func TestBitsetGetSetAndLifecycle(t *testing.T) {
	r := newTestRegistry(t)
	bs := NewBitset(r)
	if bs.Get(r.InitialState()) {
		t.Fatalf("expected unset bit to read false")
	}
	bs.Set(r.InitialState(), true)
	if !bs.Get(r.InitialState()) {
		t.Fatalf("expected bit to read true after Set")
	}
	r.Destroy()
	if bs.Get(r.InitialState()) {
		t.Fatalf("expected bit to read false after registry destroyed")
	}
}

func TestBitsetGrowsAcrossWordBoundary(t *testing.T) {
	r := newTestRegistry(t)
	bs := NewBitset(r)
	bs.Set(registry.StateID(130), true)
	if !bs.Get(registry.StateID(130)) {
		t.Fatalf("expected bit 130 to be set")
	}
	if bs.Get(registry.StateID(129)) {
		t.Fatalf("expected neighboring bit 129 to remain unset")
	}
}

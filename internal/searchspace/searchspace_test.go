package searchspace

import (
	"testing"

	"github.com/sasplan/planner/internal/registry"
	"github.com/sasplan/planner/pkg/task"
)

func buildRegistry(t *testing.T) (*registry.Registry, *task.Task) {
	t.Helper()
	vars := []task.Variable{{Name: "a", DomainSZ: 3}}
	op := task.Operator{
		Name:    "inc",
		Effects: []task.EffectCond{{Post: task.Fact{Var: 0, Value: 1}}},
		Cost:    5,
	}
	tk, err := task.New(vars, []task.Operator{op}, nil, []int{0}, task.Goal{})
	if err != nil {
		t.Fatalf("task.New: %v", err)
	}
	r, err := registry.New(tk)
	if err != nil {
		t.Fatalf("registry.New: %v", err)
	}
	return r, tk
}

func TestOpenInitial(t *testing.T) {
	r, _ := buildRegistry(t)
	ss := New(r)
	n := ss.GetNode(r.InitialState())
	if !n.IsNew() {
		t.Fatalf("expected fresh node to be NEW")
	}
	n, err := n.OpenInitial()
	if err != nil {
		t.Fatalf("OpenInitial: %v", err)
	}
	if !n.IsOpen() || n.G() != 0 {
		t.Fatalf("expected OPEN with g=0, got status=%v g=%d", n.Status(), n.G())
	}
	if parent, op := n.Parent(); parent != registry.NoState || op != noOperator {
		t.Fatalf("expected no parent for initial node, got (%v,%d)", parent, op)
	}
}

func TestOpenChildComputesG(t *testing.T) {
	r, tk := buildRegistry(t)
	ss := New(r)
	parent, err := ss.GetNode(r.InitialState()).OpenInitial()
	if err != nil {
		t.Fatalf("OpenInitial: %v", err)
	}
	childID, err := r.Successor(r.InitialState(), &tk.Operators[0])
	if err != nil {
		t.Fatalf("Successor: %v", err)
	}
	child := ss.GetNode(childID)
	child, err = child.Open(parent, 0, 5, 5)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if child.G() != 5 || child.RealG() != 5 {
		t.Fatalf("child g/realG = %d/%d, want 5/5", child.G(), child.RealG())
	}
	if p, op := child.Parent(); p != parent.StateID() || op != 0 {
		t.Fatalf("child parent = (%v,%d), want (%v,0)", p, op, parent.StateID())
	}
}

func TestReopenRequiresStrictImprovement(t *testing.T) {
	r, tk := buildRegistry(t)
	ss := New(r)
	parent, _ := ss.GetNode(r.InitialState()).OpenInitial()
	childID, _ := r.Successor(r.InitialState(), &tk.Operators[0])
	child, _ := ss.GetNode(childID).Open(parent, 0, 10, 10)
	child, err := child.Close()
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := child.Reopen(parent, 0, 10, 10); err == nil {
		t.Fatalf("expected reopen with equal g to fail")
	}
	reopened, err := child.Reopen(parent, 0, 3, 3)
	if err != nil {
		t.Fatalf("Reopen with smaller g: %v", err)
	}
	if !reopened.IsOpen() || reopened.G() != 3 {
		t.Fatalf("expected reopened node OPEN with g=3, got status=%v g=%d", reopened.Status(), reopened.G())
	}
}

func TestTracePlanReconstructsOperatorSequence(t *testing.T) {
	r, tk := buildRegistry(t)
	ss := New(r)
	initialNode, _ := ss.GetNode(r.InitialState()).OpenInitial()
	childID, _ := r.Successor(r.InitialState(), &tk.Operators[0])
	ss.GetNode(childID).Open(initialNode, 0, 5, 5)

	plan := ss.TracePlan(childID)
	if len(plan) != 1 || plan[0] != 0 {
		t.Fatalf("TracePlan = %v, want [0]", plan)
	}
	if plan0 := ss.TracePlan(r.InitialState()); len(plan0) != 0 {
		t.Fatalf("TracePlan(initial) = %v, want empty", plan0)
	}
}

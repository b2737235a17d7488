// Package succgen builds and evaluates the decision tree that yields the
// applicable operators for a state. The tree is built once per
// task; axioms are never inserted into it.
package succgen

import "github.com/sasplan/planner/pkg/task"

// node is the decision-tree's internal sum type: exactly one of switchNode
// or leaf is non-nil test-wise; emptyNode is the zero value of both.
type node interface {
	generate(state []int, out *[]task.OperatorID)
}

// emptyNode emits nothing.
type emptyNode struct{}

func (emptyNode) generate(state []int, out *[]task.OperatorID) {}

// leaf emits a fixed set of operator IDs unconditionally.
type leaf struct {
	ops []task.OperatorID
}

func (l leaf) generate(_ []int, out *[]task.OperatorID) {
	*out = append(*out, l.ops...)
}

// switchNode dispatches on the current value of Var: it always
// emits Immediate (operators with no further precondition at all), then
// recurses into whichever Children entry matches state[Var] (if any), then
// recurses into Default (operators with no precondition on Var, but
// possibly preconditions elsewhere). Order is fixed so that generation is
// deterministic given the tree shape and the state.
type switchNode struct {
	v         int
	children  map[int]node
	immediate []task.OperatorID
	def       node
}

func (s *switchNode) generate(state []int, out *[]task.OperatorID) {
	*out = append(*out, s.immediate...)
	if child, ok := s.children[state[s.v]]; ok {
		child.generate(state, out)
	}
	if s.def != nil {
		s.def.generate(state, out)
	}
}

// Generator is a built decision tree over one task's (non-axiom) operators.
type Generator struct {
	root node
}

// opBuild tracks one operator's not-yet-consumed preconditions while the
// tree is being partitioned.
type opBuild struct {
	id        task.OperatorID
	remaining []task.Fact
}

// Build constructs a successor generator for t's operators; t.Axioms are
// never included.
func Build(t *task.Task) *Generator {
	ops := make([]opBuild, len(t.Operators))
	for i, op := range t.Operators {
		ops[i] = opBuild{id: task.OperatorID(i), remaining: append([]task.Fact(nil), op.Preconditions...)}
	}
	return &Generator{root: build(ops)}
}

func build(ops []opBuild) node {
	if len(ops) == 0 {
		return emptyNode{}
	}

	var immediate []task.OperatorID
	var rest []opBuild
	for _, ob := range ops {
		if len(ob.remaining) == 0 {
			immediate = append(immediate, ob.id)
		} else {
			rest = append(rest, ob)
		}
	}

	if len(rest) == 0 {
		return leaf{ops: immediate}
	}

	v := rest[0].remaining[0].Var

	var without []opBuild
	byValue := make(map[int][]opBuild)
	for _, ob := range rest {
		idx, val, has := findPrecondition(ob.remaining, v)
		if !has {
			without = append(without, ob)
			continue
		}
		trimmed := make([]task.Fact, 0, len(ob.remaining)-1)
		trimmed = append(trimmed, ob.remaining[:idx]...)
		trimmed = append(trimmed, ob.remaining[idx+1:]...)
		byValue[val] = append(byValue[val], opBuild{id: ob.id, remaining: trimmed})
	}

	children := make(map[int]node, len(byValue))
	for val, group := range byValue {
		children[val] = build(group)
	}

	return &switchNode{
		v:         int(v),
		children:  children,
		immediate: immediate,
		def:       build(without),
	}
}

func findPrecondition(facts []task.Fact, v task.Var) (idx int, val int, ok bool) {
	for i, f := range facts {
		if f.Var == v {
			return i, f.Value, true
		}
	}
	return 0, 0, false
}

// Generate appends the IDs of every operator applicable in state to out,
// in the tree's deterministic order, and returns the (possibly extended)
// slice.
func (g *Generator) Generate(state []int, out []task.OperatorID) []task.OperatorID {
	g.root.generate(state, &out)
	return out
}

// Package searchspace tracks per-state search-node bookkeeping: status,
// g-value, and parent linkage. It is built
// on top of psi.Info, the same lazily-grown, registry-lifetime-scoped
// storage every other per-state collaborator uses.
package searchspace

import (
	"fmt"

	"github.com/sasplan/planner/internal/psi"
	"github.com/sasplan/planner/internal/registry"
	"github.com/sasplan/planner/pkg/task"
)

// Status is a search node's lifecycle state.
type Status int

const (
	StatusNew Status = iota
	Open
	Closed
	DeadEnd
)

func (s Status) String() string {
	switch s {
	case StatusNew:
		return "new"
	case Open:
		return "open"
	case Closed:
		return "closed"
	case DeadEnd:
		return "dead_end"
	default:
		return "unknown"
	}
}

// node is the payload PerStateInformation stores per StateID. creatingOp
// uses a pointer-free sentinel (noOperator, -1) so nodes remain a plain,
// copyable value.
type node struct {
	status     Status
	g          int
	realG      int
	parent     registry.StateID
	creatingOp int // index into Task.Operators, or -1 for "no operator"
	hDirty     bool
}

const noOperator = -1

// SearchSpace owns one SearchNode per registered state.
type SearchSpace struct {
	nodes *psi.Info[node]
}

// New returns an empty SearchSpace over reg.
func New(reg interface {
	psi.Sized
	Subscribe(registry.Subscriber)
}) *SearchSpace {
	return &SearchSpace{nodes: psi.New[node](reg)}
}

// Node is a handle to one state's search-node bookkeeping. It is returned
// by value; mutating methods write back through the SearchSpace.
type Node struct {
	space *SearchSpace
	id    registry.StateID
	n     node
}

// GetNode returns the (possibly NEW) node for id.
func (s *SearchSpace) GetNode(id registry.StateID) Node {
	return Node{space: s, id: id, n: s.nodes.Get(id)}
}

func (s *SearchSpace) save(id registry.StateID, n node) {
	s.nodes.Set(id, n)
}

// StateID returns the state this node describes.
func (n Node) StateID() registry.StateID { return n.id }

// Status returns the node's lifecycle status.
func (n Node) Status() Status { return n.n.status }

// IsNew, IsOpen, IsClosed, IsDeadEnd are readability aliases over Status.
func (n Node) IsNew() bool     { return n.n.status == StatusNew }
func (n Node) IsOpen() bool    { return n.n.status == Open }
func (n Node) IsClosed() bool  { return n.n.status == Closed }
func (n Node) IsDeadEnd() bool { return n.n.status == DeadEnd }

// G returns the best known path cost from the initial state. Undefined
// (returns 0) while the node is still NEW.
func (n Node) G() int { return n.n.g }

// RealG returns the sum of unadjusted operator costs along the best known
// path: distinct from G when a cost type other than NORMAL is in
// use.
func (n Node) RealG() int { return n.n.realG }

// Parent returns the parent StateID and the OperatorID that created this
// node, or (registry.NoState, -1) for the initial state.
func (n Node) Parent() (registry.StateID, int) {
	if n.n.status == StatusNew {
		return registry.NoState, noOperator
	}
	return n.n.parent, n.n.creatingOp
}

// HDirty reports whether this node's cached h-value may be stale under
// multi-path dependence.
func (n Node) HDirty() bool { return n.n.hDirty }

// SetHDirty sets the h_dirty flag and persists it.
func (n Node) SetHDirty(dirty bool) Node {
	n.n.hDirty = dirty
	n.space.save(n.id, n.n)
	return n
}

// OpenInitial transitions a NEW initial-state node to OPEN with g=0 and no
// parent. It is an error to call this on a non-NEW node.
func (n Node) OpenInitial() (Node, error) {
	if n.n.status != StatusNew {
		return n, task.NewCriticalError("search space: open_initial on a non-NEW node", nil)
	}
	n.n.status = Open
	n.n.g = 0
	n.n.realG = 0
	n.n.parent = registry.NoState
	n.n.creatingOp = noOperator
	n.space.save(n.id, n.n)
	return n, nil
}

// Open transitions a NEW node to OPEN, computing g/real_g from parent
//. costAdjusted is the operator's cost under the search's
// active cost type; opCost is its unadjusted cost.
func (n Node) Open(parent Node, opID int, costAdjusted, opCost int) (Node, error) {
	if n.n.status != StatusNew {
		return n, task.NewCriticalError("search space: open on a non-NEW node", nil)
	}
	n.n.status = Open
	n.n.g = parent.n.g + costAdjusted
	n.n.realG = parent.n.realG + opCost
	n.n.parent = parent.id
	n.n.creatingOp = opID
	n.space.save(n.id, n.n)
	return n, nil
}

// Reopen transitions a CLOSED node back to OPEN when a strictly cheaper
// path has been found.
func (n Node) Reopen(parent Node, opID int, costAdjusted, opCost int) (Node, error) {
	if n.n.status != Closed {
		return n, task.NewCriticalError("search space: reopen on a non-CLOSED node", nil)
	}
	newG := parent.n.g + costAdjusted
	if newG >= n.n.g {
		return n, fmt.Errorf("search space: reopen requires strictly smaller g (new %d, old %d)", newG, n.n.g)
	}
	n.n.status = Open
	n.n.g = newG
	n.n.realG = parent.n.realG + opCost
	n.n.parent = parent.id
	n.n.creatingOp = opID
	n.space.save(n.id, n.n)
	return n, nil
}

// UpdateParent refreshes parent/operator and recomputes g for a cheaper
// path found while reopening is disabled, without touching status.
func (n Node) UpdateParent(parent Node, opID int, costAdjusted, opCost int) Node {
	n.n.g = parent.n.g + costAdjusted
	n.n.realG = parent.n.realG + opCost
	n.n.parent = parent.id
	n.n.creatingOp = opID
	n.space.save(n.id, n.n)
	return n
}

// Close transitions an OPEN node to CLOSED.
func (n Node) Close() (Node, error) {
	if n.n.status != Open {
		return n, task.NewCriticalError("search space: close on a non-OPEN node", nil)
	}
	n.n.status = Closed
	n.space.save(n.id, n.n)
	return n, nil
}

// MarkDeadEnd transitions any non-terminal node to DEAD_END.
func (n Node) MarkDeadEnd() Node {
	n.n.status = DeadEnd
	n.space.save(n.id, n.n)
	return n
}

// TracePlan follows parent links from goal back to the initial state and
// returns the operator indices in forward (initial-to-goal) order.
func (s *SearchSpace) TracePlan(goal registry.StateID) []int {
	var reversed []int
	cur := s.GetNode(goal)
	for {
		parent, opID := cur.Parent()
		if parent == registry.NoState {
			break
		}
		reversed = append(reversed, opID)
		cur = s.GetNode(parent)
	}
	plan := make([]int, len(reversed))
	for i, op := range reversed {
		plan[len(reversed)-1-i] = op
	}
	return plan
}

// Package task defines the grounded-task contract the search core consumes:
// finite-domain variables, operators with conditional effects, axioms, an
// initial state, and a goal. Task ingestion (parsing a problem file) and
// grounding are out of scope; callers build a Task programmatically
// with New.
package task

import "fmt"

// Var identifies a state variable by its index into Task.Variables.
type Var int

// Fact pairs a variable with one of its domain values. Invariant:
// 0 <= Value < domain size of Var.
type Fact struct {
	Var   Var
	Value int
}

// Variable describes one finite-domain state variable.
type Variable struct {
	Name      string
	DomainSZ  int      // domain size; values are 0..DomainSZ-1
	ValueName []string // optional display names, len 0 or DomainSZ
}

// EffectCond is one conditional effect: Conditions must all hold in the
// state the operator is applied to for Post to fire.
type EffectCond struct {
	Conditions []Fact
	Post       Fact
}

// Operator has preconditions, a list of (possibly conditional) effects, a
// nonnegative cost, and a display name. Axiom marks a cost-0 derivation
// rule; axioms are applied to fixpoint after every operator application and
// are never returned by successor generation.
type Operator struct {
	Name          string
	Preconditions []Fact
	Effects       []EffectCond
	Cost          int
	Axiom         bool
}

// OperatorID indexes Task.Operators (non-axiom operators only, as exposed
// by the successor generator) or Task.Axioms.
type OperatorID int

// Goal is a conjunction of facts that must all hold.
type Goal struct {
	Facts []Fact
}

// Task is a grounded SAS+ planning task: a finite set of variables, a set
// of operators and axioms over them, an initial state, and a goal.
type Task struct {
	Variables []Variable
	Operators []Operator // axiom == false
	Axioms    []Operator // axiom == true, cost 0
	Initial   []int      // one value per variable
	Goal      Goal

	// AxiomLayer, when non-nil, gives each axiom's stratification layer
	//. Axioms are applied in non-decreasing layer order,
	// iterating each layer to a local fixpoint before moving to the next.
	// When nil, all axioms are treated as a single layer iterated to a
	// global fixpoint.
	AxiomLayer []int
}

// New constructs a Task from explicit variables, operators, axioms, an
// initial assignment and a goal, validating structural invariants.
func New(vars []Variable, ops, axioms []Operator, initial []int, goal Goal) (*Task, error) {
	t := &Task{
		Variables: vars,
		Operators: ops,
		Axioms:    axioms,
		Initial:   initial,
		Goal:      goal,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks every structural invariant requires: variable
// domains are positive, every fact references an in-range (var, value)
// pair, the initial state assigns exactly one value per variable, axioms
// carry cost 0 and the Axiom flag, and operators do not.
func (t *Task) Validate() error {
	if len(t.Variables) == 0 {
		return NewInputError("task has no variables", nil)
	}
	for i, v := range t.Variables {
		if v.DomainSZ <= 0 {
			return NewInputError(fmt.Sprintf("variable %d (%s) has non-positive domain", i, v.Name), nil)
		}
		if len(v.ValueName) != 0 && len(v.ValueName) != v.DomainSZ {
			return NewInputError(fmt.Sprintf("variable %d (%s) has %d value names for domain %d", i, v.Name, len(v.ValueName), v.DomainSZ), nil)
		}
	}
	if len(t.Initial) != len(t.Variables) {
		return NewInputError("initial state assigns the wrong number of variables", nil)
	}
	for v, val := range t.Initial {
		if err := t.checkFact(Fact{Var: Var(v), Value: val}); err != nil {
			return err
		}
	}
	for _, f := range t.Goal.Facts {
		if err := t.checkFact(f); err != nil {
			return err
		}
	}
	for i := range t.Operators {
		if err := t.validateOperator(&t.Operators[i], false); err != nil {
			return fmt.Errorf("operator %d: %w", i, err)
		}
	}
	for i := range t.Axioms {
		if err := t.validateOperator(&t.Axioms[i], true); err != nil {
			return fmt.Errorf("axiom %d: %w", i, err)
		}
	}
	return nil
}

func (t *Task) checkFact(f Fact) error {
	if int(f.Var) < 0 || int(f.Var) >= len(t.Variables) {
		return NewInputError(fmt.Sprintf("fact references out-of-range variable %d", f.Var), nil)
	}
	dom := t.Variables[f.Var].DomainSZ
	if f.Value < 0 || f.Value >= dom {
		return NewInputError(fmt.Sprintf("fact (%d,%d) out of domain [0,%d)", f.Var, f.Value, dom), nil)
	}
	return nil
}

func (t *Task) validateOperator(op *Operator, isAxiom bool) error {
	if op.Axiom != isAxiom {
		return NewInputError("axiom flag does not match containing slice", nil)
	}
	if isAxiom && op.Cost != 0 {
		return NewInputError("axiom has nonzero cost", nil)
	}
	if !isAxiom && op.Cost < 0 {
		return NewInputError("operator has negative cost", nil)
	}
	for _, f := range op.Preconditions {
		if err := t.checkFact(f); err != nil {
			return err
		}
	}
	for _, eff := range op.Effects {
		for _, c := range eff.Conditions {
			if err := t.checkFact(c); err != nil {
				return err
			}
		}
		if err := t.checkFact(eff.Post); err != nil {
			return err
		}
	}
	return nil
}

// DomainSizes returns the domain size of each variable in order, the shape
// IntPacker.New consumes.
func (t *Task) DomainSizes() []int {
	out := make([]int, len(t.Variables))
	for i, v := range t.Variables {
		out[i] = v.DomainSZ
	}
	return out
}

// IsApplicable reports whether every precondition of op holds in state.
func IsApplicable(op *Operator, state []int) bool {
	for _, f := range op.Preconditions {
		if state[f.Var] != f.Value {
			return false
		}
	}
	return true
}

// FactName renders a fact using the task's display names, falling back to
// numeric form when none were supplied.
func (t *Task) FactName(f Fact) string {
	if int(f.Var) < 0 || int(f.Var) >= len(t.Variables) {
		return fmt.Sprintf("var%d=%d", f.Var, f.Value)
	}
	v := t.Variables[f.Var]
	if f.Value >= 0 && f.Value < len(v.ValueName) {
		return fmt.Sprintf("%s=%s", v.Name, v.ValueName[f.Value])
	}
	return fmt.Sprintf("%s=%d", v.Name, f.Value)
}

// GoalSatisfied reports whether every fact in the goal holds in state.
func GoalSatisfied(goal Goal, state []int) bool {
	for _, f := range goal.Facts {
		if state[f.Var] != f.Value {
			return false
		}
	}
	return true
}

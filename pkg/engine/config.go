// Package engine parses search configuration descriptions and runs them
// end to end against a task.Task.
package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sasplan/planner/internal/evaluation"
	"github.com/sasplan/planner/pkg/task"
)

// evalNode is the parsed, not-yet-built form of an evaluator expression:
// building it into an evaluation.Evaluator is deferred until a task's
// Goal is known, since blind()/goalcount() need it.
type evalNode struct {
	name   string
	args   []evalNode
	number float64
	isNum  bool
}

// build resolves a parsed evalNode into a live evaluation.Evaluator.
func (n evalNode) build(goal task.Goal) (evaluation.Evaluator, error) {
	switch n.name {
	case "g":
		return evaluation.GEvaluator{}, nil
	case "pref":
		return evaluation.PrefEvaluator{}, nil
	case "blind":
		return evaluation.NewBlindEvaluator(goal), nil
	case "goalcount":
		return evaluation.NewGoalCountEvaluator(goal), nil
	case "const":
		if len(n.args) != 1 || !n.args[0].isNum {
			return nil, fmt.Errorf("const() takes exactly one numeric argument")
		}
		return evaluation.ConstEvaluator{Value: int(n.args[0].number)}, nil
	case "weighted":
		if len(n.args) != 2 || !n.args[1].isNum {
			return nil, fmt.Errorf("weighted(evaluator, weight) takes an evaluator and a numeric weight")
		}
		sub, err := n.args[0].build(goal)
		if err != nil {
			return nil, err
		}
		return &evaluation.WeightedEvaluator{Sub: sub, Weight: int(n.args[1].number)}, nil
	case "sum", "max":
		subs := make([]evaluation.Evaluator, len(n.args))
		for i, a := range n.args {
			sub, err := a.build(goal)
			if err != nil {
				return nil, err
			}
			subs[i] = sub
		}
		if n.name == "sum" {
			return &evaluation.SumEvaluator{Subs: subs}, nil
		}
		return &evaluation.MaxEvaluator{Subs: subs}, nil
	default:
		return nil, fmt.Errorf("unknown evaluator %q", n.name)
	}
}

// EngineSpec is a parsed, not-yet-built search configuration: which
// algorithm, over which evaluator expression(s), plus any numeric
// parameters the algorithm itself takes (e.g. wastar's weight). Phases is
// only populated for "iterated": the sequence of sub-specs to run one
// after another.
type EngineSpec struct {
	Algorithm string // "eager", "eager_greedy", "astar", "wastar"/"eager_wastar", "lazy", "lazy_greedy", "lazy_wastar", "ehc", "iterated"
	Main      evalNode
	Weight    int // wastar/lazy_wastar only; defaults to 1
	Phases    []*EngineSpec
}

// ParseDescription parses a description string such as
// "astar(sum([weighted(g(),1),blind()]))" into an EngineSpec. "iterated"
// takes a bracketed list of its own phase specs, e.g.
// "iterated([lazy_greedy(h()), lazy_wastar(h(), 2), astar(h())])".
func ParseDescription(s string) (*EngineSpec, error) {
	p := &parser{tokens: tokenize(s)}
	node, err := p.parseTerm()
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	if !p.atEnd() {
		return nil, fmt.Errorf("engine: unexpected trailing input after %q", s)
	}
	return buildSpec(node)
}

// buildSpec resolves one parsed evalNode into an EngineSpec, recursing
// into each phase when node names "iterated".
func buildSpec(node evalNode) (*EngineSpec, error) {
	switch node.name {
	case "eager", "eager_greedy", "astar", "lazy", "lazy_greedy", "ehc":
		if len(node.args) != 1 {
			return nil, fmt.Errorf("engine: %s() takes exactly one evaluator argument", node.name)
		}
		return &EngineSpec{Algorithm: node.name, Main: node.args[0], Weight: 1}, nil
	case "wastar", "eager_wastar", "lazy_wastar":
		if len(node.args) != 2 || !node.args[1].isNum {
			return nil, fmt.Errorf("engine: %s(evaluator, weight) takes an evaluator and a numeric weight", node.name)
		}
		return &EngineSpec{Algorithm: node.name, Main: node.args[0], Weight: int(node.args[1].number)}, nil
	case "iterated":
		if len(node.args) == 0 {
			return nil, fmt.Errorf("engine: iterated() needs at least one phase")
		}
		phases := make([]*EngineSpec, len(node.args))
		for i, arg := range node.args {
			if arg.name == "iterated" {
				return nil, fmt.Errorf("engine: iterated() phases cannot themselves be iterated()")
			}
			phase, err := buildSpec(arg)
			if err != nil {
				return nil, err
			}
			phases[i] = phase
		}
		return &EngineSpec{Algorithm: "iterated", Phases: phases}, nil
	default:
		return nil, fmt.Errorf("engine: unknown algorithm %q", node.name)
	}
}

// --- lexer ---

type token struct {
	kind string // "ident", "num", "(", ")", "[", "]", ","
	text string
}

func tokenize(s string) []token {
	var toks []token
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n':
			i++
		case c == '(' || c == ')' || c == '[' || c == ']' || c == ',':
			toks = append(toks, token{kind: string(c)})
			i++
		case isIdentStart(c):
			j := i + 1
			for j < len(s) && isIdentPart(s[j]) {
				j++
			}
			toks = append(toks, token{kind: "ident", text: s[i:j]})
			i = j
		case isDigit(c) || (c == '-' && i+1 < len(s) && isDigit(s[i+1])):
			j := i + 1
			for j < len(s) && (isDigit(s[j]) || s[j] == '.') {
				j++
			}
			toks = append(toks, token{kind: "num", text: s[i:j]})
			i = j
		default:
			i++ // skip unrecognized characters rather than fail the whole lex
		}
	}
	return toks
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }
func isDigit(c byte) bool     { return c >= '0' && c <= '9' }

// --- recursive-descent parser ---

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) atEnd() bool { return p.pos >= len(p.tokens) }

func (p *parser) peek() (token, bool) {
	if p.atEnd() {
		return token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *parser) expect(kind string) error {
	t, ok := p.peek()
	if !ok || t.kind != kind {
		return fmt.Errorf("expected %q, got %q", kind, tokenText(t, ok))
	}
	p.pos++
	return nil
}

func tokenText(t token, ok bool) string {
	if !ok {
		return "<end of input>"
	}
	if t.text != "" {
		return t.text
	}
	return t.kind
}

// parseTerm parses one name(args) call, a bare name() / name, or a
// bracketed list [term, term, ...] (used for sum/max's sub-evaluator
// list), or a bare number.
func (p *parser) parseTerm() (evalNode, error) {
	t, ok := p.peek()
	if !ok {
		return evalNode{}, fmt.Errorf("unexpected end of input")
	}

	if t.kind == "num" {
		p.pos++
		v, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return evalNode{}, fmt.Errorf("invalid number %q", t.text)
		}
		return evalNode{isNum: true, number: v}, nil
	}

	if t.kind == "[" {
		p.pos++
		var args []evalNode
		if next, ok := p.peek(); ok && next.kind != "]" {
			for {
				arg, err := p.parseTerm()
				if err != nil {
					return evalNode{}, err
				}
				args = append(args, arg)
				if next, ok := p.peek(); ok && next.kind == "," {
					p.pos++
					continue
				}
				break
			}
		}
		if err := p.expect("]"); err != nil {
			return evalNode{}, err
		}
		return evalNode{name: "list", args: args}, nil
	}

	if t.kind != "ident" {
		return evalNode{}, fmt.Errorf("expected an identifier, got %q", tokenText(t, ok))
	}
	p.pos++
	node := evalNode{name: strings.ToLower(t.text)}

	if next, ok := p.peek(); !ok || next.kind != "(" {
		return node, nil // bare name with no call, e.g. a future zero-arg evaluator
	}
	p.pos++ // consume "("

	if next, ok := p.peek(); ok && next.kind == ")" {
		p.pos++
		return node, nil
	}
	for {
		arg, err := p.parseTerm()
		if err != nil {
			return evalNode{}, err
		}
		// A single bracketed list argument (sum's/max's sub-list) is
		// flattened into the parent's argument list directly.
		if arg.name == "list" {
			node.args = append(node.args, arg.args...)
		} else {
			node.args = append(node.args, arg)
		}
		if next, ok := p.peek(); ok && next.kind == "," {
			p.pos++
			continue
		}
		break
	}
	if err := p.expect(")"); err != nil {
		return evalNode{}, err
	}
	return node, nil
}

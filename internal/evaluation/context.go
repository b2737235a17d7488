package evaluation

// Context is the ephemeral, per-state-and-g cache that lets a composite
// evaluator share its leaves' results instead of recomputing them:
// calling Eval twice for the same Evaluator inside one Context returns the
// cached Result from the first call, unconditionally.
type Context struct {
	State     []int
	G         int
	Preferred bool

	cache map[Evaluator]Result
}

// NewContext builds a fresh, empty-cache context for one (state, g)
// evaluation. preferred marks whether the entry under evaluation was
// generated via a preferred operator, for evaluators like PrefEvaluator
// that read it back.
func NewContext(state []int, g int, preferred bool) *Context {
	return &Context{State: state, G: g, Preferred: preferred, cache: make(map[Evaluator]Result)}
}

// Eval returns e's Result for this context, computing and caching it on
// first use and returning the cached value on every subsequent call.
func (c *Context) Eval(e Evaluator) Result {
	if r, ok := c.cache[e]; ok {
		return r
	}
	r := e.Compute(c)
	c.cache[e] = r
	return r
}
